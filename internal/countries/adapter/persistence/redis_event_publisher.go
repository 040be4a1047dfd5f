package persistence

import (
	"context"
	"time"

	"country-cache/internal/countries/domain/model"
	"country-cache/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// RedisRefreshPublisher announces committed reconciliations on a Redis
// Stream so other services can react to cache refreshes without polling.
type RedisRefreshPublisher struct {
	client *redis.Client
	stream string
	logger logger.Logger
}

// NewRedisRefreshPublisher creates a publisher writing to the given stream.
func NewRedisRefreshPublisher(client *redis.Client, stream string, log logger.Logger) *RedisRefreshPublisher {
	return &RedisRefreshPublisher{
		client: client,
		stream: stream,
		logger: log.WithComponent("refresh_publisher"),
	}
}

// PublishRefreshCompleted appends one entry describing the refresh outcome.
func (p *RedisRefreshPublisher) PublishRefreshCompleted(ctx context.Context, result model.RefreshResult) error {
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"run_id":            result.RunID,
			"inserted":          result.Inserted,
			"updated":           result.Updated,
			"total":             result.Total,
			"last_refreshed_at": result.LastRefreshedAt.Format(time.RFC3339),
		},
	}).Result()
	if err != nil {
		p.logger.WithFields(map[string]interface{}{
			"stream": p.stream,
			"run_id": result.RunID,
		}).Errorf("failed to publish refresh event: %v", err)
		return err
	}

	p.logger.WithFields(map[string]interface{}{
		"stream": p.stream,
		"run_id": result.RunID,
		"total":  result.Total,
	}).Debug("refresh event published")
	return nil
}
