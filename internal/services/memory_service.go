package services

import (
	"consultgpt-pipeline/internal/config"
	"consultgpt-pipeline/internal/models"
	"consultgpt-pipeline/internal/pkg/logger"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

// MemoryService persists chat transcripts and titles in Redis so follow-up
// turns can reference previous results. Every chat key carries a TTL; memory
// is a convenience, not a system of record.
type MemoryService struct {
	client *redis.Client
	config config.RedisConfig
	logger *logger.Logger
}

func NewMemoryService(cfg config.RedisConfig, log *logger.Logger) (*MemoryService, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	opt.PoolSize = cfg.PoolSize
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout

	service := &MemoryService{
		client: redis.NewClient(opt),
		config: cfg,
		logger: log,
	}

	if err := service.awaitConnection(); err != nil {
		return nil, fmt.Errorf("connection to Redis failed: %w", err)
	}

	log.Info("Memory service initialized",
		"pool_size", cfg.PoolSize,
		"chat_ttl", cfg.ChatTTL.String())

	return service, nil
}

// awaitConnection pings with exponential backoff so a service booting
// alongside Redis does not lose the race.
func (service *MemoryService) awaitConnection() error {
	ping := func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return struct{}{}, service.client.Ping(ctx).Err()
	}

	_, err := backoff.Retry(context.Background(), ping,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(30*time.Second))
	if err != nil {
		return err
	}

	service.logger.Info("Redis connection established")
	return nil
}

func (service *MemoryService) Close() error {
	service.logger.Info("Closing memory service")
	return service.client.Close()
}

func chatKey(chatID string) string {
	return fmt.Sprintf("chat:%s:messages", chatID)
}

func titleKey(chatID string) string {
	return fmt.Sprintf("chat:%s:title", chatID)
}

// AppendMessages pushes messages onto the chat transcript and refreshes the
// TTL.
func (service *MemoryService) AppendMessages(ctx context.Context, chatID string, messages ...models.StoredMessage) error {
	if chatID == "" || len(messages) == 0 {
		return nil
	}

	key := chatKey(chatID)
	startTime := time.Now()

	encoded := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return models.NewInternalError(models.CodeSerialization, "failed to serialize chat message").WithCause(err)
		}
		encoded = append(encoded, string(data))
	}

	pipe := service.client.Pipeline()
	pipe.RPush(ctx, key, encoded...)
	pipe.Expire(ctx, key, service.config.ChatTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		service.logger.LogService("redis", "append_messages", time.Since(startTime), map[string]any{
			"chat_id": chatID,
			"count":   len(messages),
		}, err)
		return models.NewExternalError(models.CodeRedisError, "failed to store chat messages").WithCause(err)
	}

	service.logger.LogService("redis", "append_messages", time.Since(startTime), map[string]any{
		"chat_id": chatID,
		"count":   len(messages),
	}, nil)

	return nil
}

// History returns the full transcript for a chat, oldest first. A missing
// chat yields an empty slice.
func (service *MemoryService) History(ctx context.Context, chatID string) ([]models.StoredMessage, error) {
	key := chatKey(chatID)
	startTime := time.Now()

	raw, err := service.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		service.logger.LogService("redis", "history", time.Since(startTime), map[string]any{
			"chat_id": chatID,
		}, err)
		return nil, models.NewExternalError(models.CodeRedisError, "failed to load chat history").WithCause(err)
	}

	messages := make([]models.StoredMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.StoredMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			service.logger.WithError(err).WithFields(logger.Fields{"chat_id": chatID}).Warn("skipping unreadable chat message")
			continue
		}
		messages = append(messages, msg)
	}

	service.logger.LogService("redis", "history", time.Since(startTime), map[string]any{
		"chat_id": chatID,
		"count":   len(messages),
	}, nil)

	return messages, nil
}

func (service *MemoryService) SetTitle(ctx context.Context, chatID, title string) error {
	if chatID == "" {
		return nil
	}

	err := service.client.Set(ctx, titleKey(chatID), title, service.config.ChatTTL).Err()
	if err != nil {
		return models.NewExternalError(models.CodeRedisError, "failed to store chat title").WithCause(err)
	}
	return nil
}

// Title returns the stored title, or empty when none was generated yet.
func (service *MemoryService) Title(ctx context.Context, chatID string) (string, error) {
	title, err := service.client.Get(ctx, titleKey(chatID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", models.NewExternalError(models.CodeRedisError, "failed to load chat title").WithCause(err)
	}
	return title, nil
}

func (service *MemoryService) DeleteChat(ctx context.Context, chatID string) error {
	if err := service.client.Del(ctx, chatKey(chatID), titleKey(chatID)).Err(); err != nil {
		return models.NewExternalError(models.CodeRedisError, "failed to delete chat").WithCause(err)
	}
	return nil
}

func (service *MemoryService) HealthCheck(ctx context.Context) error {
	if err := service.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("memory connection unhealthy: %w", err)
	}
	return nil
}
