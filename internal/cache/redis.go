// Package cache реализует хранилище снапшотов срезов состояния на Redis.
// После каждой фиксации store сохраняет сюда срезы identity, diary и
// explore; при старте приложения они восстанавливаются до отрисовки UI.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/wellbeing-journal/internal/config"
)

// Ключи снапшотов в Redis.
const keyPrefix = "journal:snapshot:"

// languageOnlySnapshot минимальный снапшот identity, переживающий выход
// из аккаунта: сохраняется только выбранный язык.
type languageOnlySnapshot struct {
	Language string `json:"language"`
}

// Cache хранилище снапшотов на Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Save сериализует срез и сохраняет его без срока жизни.
func (c *Cache) Save(slice string, value any) error {
	const op = "cache.Save"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.Set(context.Background(), keyPrefix+slice, jsonData, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load читает снапшот среза. Возвращает (false, nil), если снапшота нет,
// и ошибку при повреждённых данных — вызывающая сторона откатывается на
// начальное состояние.
func (c *Cache) Load(slice string, into any) (bool, error) {
	const op = "cache.Load"
	val, err := c.Db.Get(context.Background(), keyPrefix+slice).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal([]byte(val), into); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Reset удаляет все снапшоты и заново сохраняет identity, содержащий
// только язык. Используется при выходе из аккаунта.
func (c *Cache) Reset(keepLanguage string) error {
	const op = "cache.Reset"
	ctx := context.Background()
	keys := []string{
		keyPrefix + "identity",
		keyPrefix + "diary",
		keyPrefix + "explore",
	}
	if err := c.Db.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if keepLanguage == "" {
		return nil
	}
	return c.Save("identity", languageOnlySnapshot{Language: keepLanguage})
}

// Close закрывает соединение с Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}

// WaitReady пингует Redis с повторами, пока не истечёт timeout.
func (c *Cache) WaitReady(ctx context.Context, timeout time.Duration) error {
	const op = "cache.WaitReady"
	deadline := time.Now().Add(timeout)
	for {
		if err := c.Db.Ping(ctx).Err(); err == nil {
			return nil
		} else if time.Now().After(deadline) {
			return fmt.Errorf("%s: %w", op, err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(200 * time.Millisecond):
		}
	}
}
