package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger. Components derive their own with
// Named.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
