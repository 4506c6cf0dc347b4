package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New creates a zap logger with default production configuration, falling
// back to a no-op logger if it cannot be built.
func New() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// NewDevelopment creates a zap logger configured for human-readable output.
func NewDevelopment() (*zap.Logger, error) {
	l, err := zap.NewDevelopmentConfig().Build()
	if err != nil {
		return nil, fmt.Errorf("build development logger: %w", err)
	}
	return l, nil
}
