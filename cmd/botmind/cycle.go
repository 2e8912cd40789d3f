package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCycleCmd() *cobra.Command {
	var handle string
	var botID string

	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Run one decision cycle for a single bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if handle == "" && botID == "" {
				return fmt.Errorf("one of --bot or --id is required")
			}

			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			id := strings.TrimSpace(botID)
			if id == "" {
				bot, err := rt.store.GetBotByHandle(ctx, strings.TrimSpace(handle))
				if err != nil {
					return err
				}
				id = bot.ID
			}

			res, err := rt.runner.Run(ctx, id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s): %s\nnext cycle at %s\n",
				res.Handle, res.Action, res.Priority, res.Reasoning, res.NextCycleAt.Format("15:04:05"))
			return nil
		},
	}

	cmd.Flags().StringVar(&handle, "bot", "", "Bot handle.")
	cmd.Flags().StringVar(&botID, "id", "", "Bot id (alternative to --bot).")
	return cmd
}
