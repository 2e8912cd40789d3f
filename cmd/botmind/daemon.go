package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Poll for due bots and run their cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d := &daemon{
				rt:            rt,
				pollInterval:  viper.GetDuration("daemon.poll_interval"),
				batchSize:     viper.GetInt("daemon.batch_size"),
				maxConcurrent: viper.GetInt("daemon.max_concurrent"),
				inFlight:      make(map[string]bool),
			}
			return d.run(ctx)
		},
	}
	return cmd
}

// daemon is the external scheduler made concrete: it polls the store for bots
// whose next_cycle_at has elapsed and runs their cycles concurrently, with at
// most one in-flight cycle per bot.
type daemon struct {
	rt            *runtime
	pollInterval  time.Duration
	batchSize     int
	maxConcurrent int

	mu       sync.Mutex
	inFlight map[string]bool
	wg       sync.WaitGroup
}

func (d *daemon) run(ctx context.Context) error {
	d.rt.logger.Info("daemon_start",
		"poll_interval", d.pollInterval,
		"batch_size", d.batchSize,
		"max_concurrent", d.maxConcurrent,
	)

	sem := make(chan struct{}, d.maxConcurrent)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	d.tick(ctx, sem)
	for {
		select {
		case <-ctx.Done():
			d.rt.logger.Info("daemon_stopping")
			d.wg.Wait()
			d.rt.logger.Info("daemon_stopped")
			return nil
		case <-ticker.C:
			d.tick(ctx, sem)
		}
	}
}

func (d *daemon) tick(ctx context.Context, sem chan struct{}) {
	bots, err := d.rt.store.DueBots(ctx, time.Now(), d.batchSize)
	if err != nil {
		d.rt.logger.Warn("daemon_poll_failed", "error", err)
		return
	}
	for _, bot := range bots {
		if !d.claim(bot.ID) {
			continue // a cycle for this bot is still running
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			d.release(bot.ID)
			return
		}

		d.wg.Add(1)
		botID := bot.ID
		go func() {
			defer d.wg.Done()
			defer func() { <-sem }()
			defer d.release(botID)
			if _, err := d.rt.runner.Run(ctx, botID); err != nil {
				d.rt.logger.Warn("daemon_cycle_failed", "bot", botID, "error", err)
			}
		}()
	}
}

func (d *daemon) claim(botID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight[botID] {
		return false
	}
	d.inFlight[botID] = true
	return true
}

func (d *daemon) release(botID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, botID)
}
