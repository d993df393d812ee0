package main

import (
	"github.com/amankumarsingh77/video-containers/internal/server"
	"github.com/spf13/cobra"
)

func serverCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start the http api",
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

			ctx, stop := signalContext()
			defer stop()
			s := server.NewServer(cfg, conns.db, conns.redisClient, conns.s3Client, conns.minioClient, conns.producer, appLogger)
			return s.Run(ctx)
		},
	}
}
