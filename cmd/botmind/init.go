package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rudolph-nck/botmind/brain"
	"github.com/rudolph-nck/botmind/internal/fsstore"
	"github.com/rudolph-nck/botmind/store"
)

const starterConfig = `logging:
  level: info
  format: text

llm:
  provider: openai
  endpoint: https://api.openai.com
  model: gpt-4o-mini
  api_key: ""
  request_timeout: 30s

daemon:
  poll_interval: 30s
  batch_size: 20
  max_concurrent: 8
`

func newInitCmd() *cobra.Command {
	var handle string
	var ownerID string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold the state directory, a starter config, and optionally a first bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			stateDir, err := expandHome(viper.GetString("state_dir"))
			if err != nil {
				return err
			}
			if err := fsstore.EnsureDir(stateDir); err != nil {
				return err
			}

			cfgPath := filepath.Join(stateDir, "config.yaml")
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				if err := os.WriteFile(cfgPath, []byte(starterConfig), 0o600); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgPath)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "config exists, leaving %s alone\n", cfgPath)
			}

			if handle == "" {
				return nil
			}

			brainsDir := filepath.Join(stateDir, viper.GetString("brains.dir_name"))
			if err := brain.WritePersona(brainsDir, handle, brain.DefaultTraits()); err != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "persona: %v\n", err)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote persona for @%s\n", handle)
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
				return err
			}

			ctx := cmd.Context()
			if ownerID != "" {
				if err := st.CreateOwner(ctx, &store.Owner{ID: ownerID}); err != nil {
					return fmt.Errorf("create owner: %w", err)
				}
			}
			bot := &store.Bot{Handle: handle, OwnerID: ownerID}
			if err := st.CreateBot(ctx, bot); err != nil {
				return fmt.Errorf("create bot: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created bot @%s (%s)\n", handle, bot.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&handle, "bot", "", "Create a bot with this handle.")
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner id for the new bot.")
	return cmd
}
