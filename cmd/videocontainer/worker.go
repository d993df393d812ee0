package main

import (
	"github.com/amankumarsingh77/video-containers/internal/worker"
	"github.com/spf13/cobra"
)

func workerCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "drain the task ledger until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			appLogger := newLogger(cfg)
			conns, err := connect(cfg, appLogger)
			if err != nil {
				return err
			}
			defer conns.close(appLogger)

			b := conns.backend(cfg, appLogger)
			ctx, stop := signalContext()
			defer stop()
			w := worker.NewWorker(cfg, b.TaskUC, b.Wakeups, b.Store, b.Now, appLogger)
			if err = w.Start(ctx); err != nil {
				return err
			}
			w.Wait()
			appLogger.Info("Shutting down worker")
			return nil
		},
	}
}
