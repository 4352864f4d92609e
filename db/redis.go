// db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/prevet-io/prevet/catalog"
	logger "github.com/prevet-io/prevet/logging"
)

const declarationHash = "prevet:declarations"

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// declarationField keys a declaration inside the shared hash. Type-level
// declarations use the bare type id.
func declarationField(decl catalog.Declaration) string {
	if decl.Method == "" {
		return decl.Type
	}
	return decl.Type + "#" + decl.Method
}

// StoreDeclaration persists one policy declaration so other instances can
// pick it up on startup.
func StoreDeclaration(ctx context.Context, decl catalog.Declaration) error {
	data, err := json.Marshal(decl)
	if err != nil {
		return fmt.Errorf("failed to marshal declaration: %w", err)
	}
	if err := RedisClient.HSet(ctx, declarationHash, declarationField(decl), data).Err(); err != nil {
		return fmt.Errorf("failed to store declaration: %w", err)
	}
	logger.Debug("Stored policy declaration", zap.String("field", declarationField(decl)))
	return nil
}

// FetchDeclarations returns every persisted policy declaration.
func FetchDeclarations(ctx context.Context) ([]catalog.Declaration, error) {
	entries, err := RedisClient.HGetAll(ctx, declarationHash).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch declarations: %w", err)
	}

	decls := make([]catalog.Declaration, 0, len(entries))
	for field, data := range entries {
		var decl catalog.Declaration
		if err := json.Unmarshal([]byte(data), &decl); err != nil {
			return nil, fmt.Errorf("failed to unmarshal declaration %s: %w", field, err)
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// RedisDeclarationStore adapts the shared declaration hash to the service
// layer's declaration store.
type RedisDeclarationStore struct{}

func (RedisDeclarationStore) FetchDeclarations(ctx context.Context) ([]catalog.Declaration, error) {
	return FetchDeclarations(ctx)
}

func (RedisDeclarationStore) UpsertDeclaration(ctx context.Context, decl catalog.Declaration) error {
	return StoreDeclaration(ctx, decl)
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
