package store

import (
	"fmt"

	"lotsawa/internal/types"

	"github.com/sirupsen/logrus"
)

// NewStore creates a Store based on configuration: Redis when REDIS_DSN is
// set, in-memory otherwise.
func NewStore(configManager types.ConfigManager) (Store, error) {
	dsn := configManager.GetRedisDSN()
	if dsn == "" {
		logrus.Info("No REDIS_DSN configured, using in-memory store")
		return NewMemoryStore(), nil
	}

	redisStore, err := NewRedisStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logrus.Info("Connected to redis store")
	return redisStore, nil
}
