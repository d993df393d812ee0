package server

import (
	"net/http"
	"time"

	"github.com/IBM/sarama"
	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/formatter"
	"github.com/amankumarsingh77/video-containers/internal/resumable"
	"github.com/amankumarsingh77/video-containers/internal/storage"
	storageRepository "github.com/amankumarsingh77/video-containers/internal/storage/repository"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/store/postgres"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/internal/tasks/processors"
	taskRepository "github.com/amankumarsingh77/video-containers/internal/tasks/repository"
	taskUsecase "github.com/amankumarsingh77/video-containers/internal/tasks/usecase"
	usageRepository "github.com/amankumarsingh77/video-containers/internal/usage/repository"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/minio/minio-go/v7"
)

const resumableTimeout = 30 * time.Second

// Backend is the state shared by the API server and the worker: the ledger store, both object stores and the
// task use case with every processor registered.
type Backend struct {
	Store   store.Store
	Wakeups tasks.WakeupRepository
	Primary storage.PrimaryStore
	Publish storage.PublishStore
	TaskUC  tasks.UseCase
	Now     func() time.Time
}

func NewBackend(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, s3Client *s3.Client, minioClient *minio.Client, usageProducer sarama.SyncProducer, logger logger.Logger) *Backend {
	now := time.Now
	wakeups := taskRepository.NewWakeupRedisRepo(redisClient, cfg.Redis.WakeupChannel, logger)
	st := postgres.NewPgStore(db, wakeups, logger)

	resumableClient := resumable.NewClient(
		&http.Client{Timeout: resumableTimeout},
		cfg.S3.ResumableEndpoint,
		cfg.S3.ResumableToken,
		logger,
	)
	primary := storageRepository.NewPrimaryRepository(s3Client, resumableClient, cfg.S3.UploadBucket)
	publish := storageRepository.NewPublishRepository(minioClient, cfg.Publish.Bucket)
	recorder := usageRepository.NewKafkaRecorder(usageProducer, cfg.Kafka.UsageTopic)
	fmtr := formatter.NewExecFormatter(cfg.Formatter.Executable, cfg.Formatter.Args, cfg.Formatter.Timeout, logger)
	backoff := tasks.FlatBackoff(cfg.Tasks.RetryBackoff)

	taskUC := taskUsecase.NewTaskUseCase(
		st,
		now,
		logger,
		processors.NewFormattingProcessor(st, primary, fmtr, backoff, now, logger),
		processors.NewDeleteKeyProcessor(st, publish, backoff, now, logger),
		processors.NewDeleteUploadFileProcessor(st, primary, backoff, now, logger),
		processors.NewPlaylistWritingProcessor(st, publish, backoff, now, logger),
		processors.NewPlaylistSyncingProcessor(st, publish, backoff, now, logger),
		processors.NewUsageStartProcessor(st, recorder, backoff, now, logger),
		processors.NewUsageEndProcessor(st, recorder, backoff, now, logger),
	)
	return &Backend{
		Store:   st,
		Wakeups: wakeups,
		Primary: primary,
		Publish: publish,
		TaskUC:  taskUC,
		Now:     now,
	}
}
