package repository

import (
	"context"
	"strings"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/go-redis/redis/v8"
)

type wakeupRedisRepo struct {
	redisClient *redis.Client
	channel     string
	logger      logger.Logger
}

func NewWakeupRedisRepo(redisClient *redis.Client, channel string, logger logger.Logger) tasks.WakeupRepository {
	return &wakeupRedisRepo{redisClient: redisClient, channel: channel, logger: logger}
}

// TasksInserted publishes the kinds as one comma separated message. Losing a wake-up only delays work until the next poll.
func (r *wakeupRedisRepo) TasksInserted(ctx context.Context, kinds []models.TaskKind) {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	if err := r.redisClient.Publish(ctx, r.channel, strings.Join(names, ",")).Err(); err != nil {
		r.logger.Warnf("TasksInserted - Publish error: %v", err)
	}
}

func (r *wakeupRedisRepo) Subscribe(ctx context.Context) (<-chan models.TaskKind, error) {
	pubsub := r.redisClient.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	out := make(chan models.TaskKind, len(models.AllTaskKinds))
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				for _, name := range strings.Split(msg.Payload, ",") {
					kind, ok := models.ParseTaskKind(name)
					if !ok {
						continue
					}
					select {
					case out <- kind:
					default:
					}
				}
			}
		}
	}()
	return out, nil
}
