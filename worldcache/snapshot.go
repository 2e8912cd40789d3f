package worldcache

import (
	"log/slog"

	"github.com/rudolph-nck/botmind/internal/fsstore"
)

// LoadSnapshot reads a persisted snapshot. A missing or empty file is not an
// error; ok reports whether a snapshot was found.
func LoadSnapshot(path string) (Snapshot, bool, error) {
	var snap Snapshot
	ok, err := fsstore.ReadJSON(path, &snap)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, ok, nil
}

// PersistFunc returns a best-effort persist callback writing snapshots
// atomically to path. Failures are logged and dropped.
func PersistFunc(path string, logger *slog.Logger) func(Snapshot) {
	return func(snap Snapshot) {
		if err := fsstore.WriteJSONAtomic(path, snap); err != nil {
			logger.Warn("worldcache_snapshot_write_failed", "path", path, "error", err)
		}
	}
}
