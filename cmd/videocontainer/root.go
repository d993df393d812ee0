package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/server"
	"github.com/amankumarsingh77/video-containers/pkg/db/aws"
	"github.com/amankumarsingh77/video-containers/pkg/db/kafka"
	"github.com/amankumarsingh77/video-containers/pkg/db/minio"
	"github.com/amankumarsingh77/video-containers/pkg/db/postgres"
	"github.com/amankumarsingh77/video-containers/pkg/db/redis"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"
	goRedis "github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	minioGo "github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func Root() *cobra.Command {
	var configFile string
	rootCmd := &cobra.Command{
		Use:           "videocontainer",
		Short:         "video container API and task worker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yml", "path to the config file")
	rootCmd.AddCommand(serverCmd(&configFile))
	rootCmd.AddCommand(workerCmd(&configFile))
	rootCmd.AddCommand(tokenCmd(&configFile))
	return rootCmd
}

func loadConfig(configFile string) (*config.Config, error) {
	v, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "loadConfig")
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		return nil, errors.Wrap(err, "parseConfig")
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logger.Logger {
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)
	return appLogger
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// connections holds every client both subcommands need. close releases them in reverse order.
type connections struct {
	db          *sqlx.DB
	redisClient *goRedis.Client
	s3Client    *awsS3.Client
	minioClient *minioGo.Client
	producer    sarama.SyncProducer
}

func connect(cfg *config.Config, appLogger logger.Logger) (*connections, error) {
	conns := &connections{}
	var err error

	conns.db, err = postgres.NewPsqlDB(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to db")
	}
	appLogger.Infof("db connected, status: %#v", conns.db.Stats())

	conns.redisClient, err = redis.NewRedisClient(cfg)
	if err != nil {
		conns.close(appLogger)
		return nil, errors.Wrap(err, "could not connect to redis")
	}
	appLogger.Infof("redis connected")

	conns.s3Client, err = aws.NewAWSClient(cfg.S3)
	if err != nil {
		conns.close(appLogger)
		return nil, errors.Wrap(err, "could not create s3 client")
	}

	conns.minioClient, err = minio.NewMinioClient(cfg.Publish)
	if err != nil {
		conns.close(appLogger)
		return nil, errors.Wrap(err, "could not create publish store client")
	}

	conns.producer, err = kafka.NewSyncProducer(cfg.Kafka)
	if err != nil {
		conns.close(appLogger)
		return nil, errors.Wrap(err, "could not connect to kafka")
	}
	appLogger.Infof("kafka producer connected")
	return conns, nil
}

func (c *connections) backend(cfg *config.Config, appLogger logger.Logger) *server.Backend {
	return server.NewBackend(cfg, c.db, c.redisClient, c.s3Client, c.minioClient, c.producer, appLogger)
}

func (c *connections) close(appLogger logger.Logger) {
	if c.producer != nil {
		if err := c.producer.Close(); err != nil {
			appLogger.Warnf("kafka producer close error: %v", err)
		}
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			appLogger.Warnf("redis close error: %v", err)
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			appLogger.Warnf("db close error: %v", err)
		}
	}
}
