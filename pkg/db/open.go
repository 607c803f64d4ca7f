package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	connectAttempts = 5
	connectBaseWait = 500 * time.Millisecond
)

// Open establishes the gorm connection. Connection establishment retries with
// exponential backoff to ride out serverless database cold starts; the retry
// budget is fixed and small, and exhausting it fails the caller.
func Open(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	wait := connectBaseWait
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		conn, err := gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			return conn, nil
		}
		lastErr = err
		log.Warn("database connect failed",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
		if attempt < connectAttempts {
			time.Sleep(wait)
			wait *= 2
		}
	}
	return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, lastErr)
}
