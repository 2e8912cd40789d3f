package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/rudolph-nck/botmind/brain"
	"github.com/rudolph-nck/botmind/cycle"
	"github.com/rudolph-nck/botmind/decision"
	"github.com/rudolph-nck/botmind/dispatch"
	"github.com/rudolph-nck/botmind/internal/fsstore"
	"github.com/rudolph-nck/botmind/internal/logutil"
	"github.com/rudolph-nck/botmind/llm"
	"github.com/rudolph-nck/botmind/memory"
	"github.com/rudolph-nck/botmind/perception"
	"github.com/rudolph-nck/botmind/providers/openai"
	"github.com/rudolph-nck/botmind/store"
	"github.com/rudolph-nck/botmind/worldcache"
)

// runtime bundles everything a command needs, wired once from viper.
type runtime struct {
	logger *slog.Logger
	store  *store.Store
	runner *cycle.Runner
	audit  *fsstore.JSONLWriter // nil when the audit trail is disabled
}

func (r *runtime) Close() {
	if r.audit != nil {
		_ = r.audit.Close()
	}
}

func buildRuntime() (*runtime, error) {
	logger, err := logutil.LoggerFromViper()
	if err != nil {
		return nil, err
	}

	stateDir, err := expandHome(viper.GetString("state_dir"))
	if err != nil {
		return nil, err
	}
	if err := fsstore.EnsureDir(stateDir); err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}

	st, err := store.Open(store.Config{
		DSN: viper.GetString("store.dsn"),
		SQLite: store.SQLiteConfig{
			BusyTimeoutMs: viper.GetInt("store.busy_timeout_ms"),
			WAL:           viper.GetBool("store.wal"),
		},
		AutoMigrate: true,
	})
	if err != nil {
		return nil, err
	}

	world := buildWorldCache(st, stateDir, logger)

	brains := brain.NewFileProvider(filepath.Join(stateDir, viper.GetString("brains.dir_name")))

	builder := perception.NewBuilder(st, world, memory.NewStore(st.MemoryLog()), logger,
		perception.WithBrains(brains))

	engine := decision.NewEngine(buildGenerator(), logger,
		decision.WithModel(viper.GetString("llm.model")),
		decision.WithTimeout(viper.GetDuration("llm.request_timeout")),
		decision.WithSampling(viper.GetInt("llm.max_tokens"), viper.GetFloat64("llm.temperature")),
		decision.WithLimiter(buildLimiter()),
	)

	dispatcher := dispatch.New(st, logger)

	var opts []cycle.Option
	var audit *fsstore.JSONLWriter
	if name := strings.TrimSpace(viper.GetString("audit.file_name")); name != "" {
		audit, err = fsstore.NewJSONLWriter(filepath.Join(stateDir, name), viper.GetInt64("audit.rotate_max_bytes"))
		if err != nil {
			return nil, fmt.Errorf("audit log: %w", err)
		}
		opts = append(opts, cycle.WithAudit(audit))
	}

	return &runtime{
		logger: logger,
		store:  st,
		runner: cycle.NewRunner(builder, engine, dispatcher, logger, opts...),
		audit:  audit,
	}, nil
}

// buildGenerator returns nil when no API key is configured; the decision
// engine then runs fallback-only, which is a supported mode.
func buildGenerator() llm.Client {
	apiKey := strings.TrimSpace(viper.GetString("llm.api_key"))
	if apiKey == "" {
		return nil
	}
	return openai.New(viper.GetString("llm.endpoint"), apiKey)
}

func buildLimiter() *rate.Limiter {
	perMinute := viper.GetInt("llm.rate_per_minute")
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
}

func buildWorldCache(st *store.Store, stateDir string, logger *slog.Logger) *worldcache.Cache {
	window := viper.GetDuration("world.window")
	topN := viper.GetInt("world.top_topics")
	fetch := func(ctx context.Context) ([]string, error) {
		return st.TopTopics(ctx, time.Now().Add(-window), topN)
	}

	opts := []worldcache.Option{worldcache.WithTTL(viper.GetDuration("world.ttl"))}
	if name := strings.TrimSpace(viper.GetString("world.snapshot_file_name")); name != "" {
		path := filepath.Join(stateDir, name)
		persist := worldcache.PersistFunc(path, logger)
		if snap, ok, err := worldcache.LoadSnapshot(path); err == nil && ok {
			opts = append(opts, worldcache.WithSnapshot(snap, persist))
		} else {
			opts = append(opts, worldcache.WithSnapshot(worldcache.Snapshot{}, persist))
		}
	}
	return worldcache.New(fetch, logger, opts...)
}

func expandHome(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
