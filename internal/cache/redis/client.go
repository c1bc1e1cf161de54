package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/storage/models"
	"github.com/campus-buddy/backend/pkg/logger"
)

// maxTurns bounds each session list.
const maxTurns = 200

// Client keeps chat sessions as JSON lists under chat:<session id>.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized",
		zap.String("addr", fmt.Sprintf("%s:%d", host, port)),
		zap.Duration("history_ttl", ttl),
	)

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("chat:%s", sessionID)
}

func (c *Client) Append(ctx context.Context, sessionID string, turns ...models.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal turn: %w", err)
		}
		values = append(values, data)
	}

	key := sessionKey(sessionID)
	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, -maxTurns, -1)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append turns: %w", err)
	}

	logger.Debug("Chat turns stored", zap.String("session_id", sessionID), zap.Int("count", len(turns)))
	return nil
}

func (c *Client) History(ctx context.Context, sessionID string) ([]models.Turn, error) {
	raw, err := c.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err == redis.Nil {
		return []models.Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	turns := make([]models.Turn, 0, len(raw))
	for _, item := range raw {
		var t models.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			logger.Warn("Skipping malformed chat turn", zap.String("session_id", sessionID), zap.Error(err))
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (c *Client) Reset(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	logger.Debug("Chat history reset", zap.String("session_id", sessionID))
	return nil
}
