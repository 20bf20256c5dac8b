package querylog

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig - параметры RedisAppender
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`

	// Key - список, в который дописываются записи (RPUSH)
	Key string `yaml:"key"`

	// Channel - канал PUBLISH; пусто = не публиковать
	Channel string `yaml:"channel,omitempty"`
}

// RedisAppender дублирует записи журнала в Redis:
//
//	RPUSH <key> <JSON>      - полный журнал, без обрезки
//	PUBLISH <channel> <JSON> - для подписчиков
type RedisAppender struct {
	client  *redis.Client
	key     string
	channel string
}

// NewRedisAppender создает appender с собственным клиентом
func NewRedisAppender(config RedisConfig) *RedisAppender {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return NewRedisAppenderWithClient(client, config.Key, config.Channel)
}

// NewRedisAppenderWithClient создает appender поверх готового клиента
func NewRedisAppenderWithClient(client *redis.Client, key, channel string) *RedisAppender {
	if key == "" {
		key = "recordkit:querylog"
	}
	return &RedisAppender{client: client, key: key, channel: channel}
}

// Append - записать entry
func (ra *RedisAppender) Append(ctx context.Context, entry Entry) error {
	payload, err := entry.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := ra.client.RPush(ctx, ra.key, payload).Err(); err != nil {
		return fmt.Errorf("redis RPUSH failed: %w", err)
	}

	if ra.channel != "" {
		if err := ra.client.Publish(ctx, ra.channel, payload).Err(); err != nil {
			return fmt.Errorf("redis PUBLISH failed: %w", err)
		}
	}
	return nil
}

// Close закрывает соединение с Redis
func (ra *RedisAppender) Close() error {
	return ra.client.Close()
}
