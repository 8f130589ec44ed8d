package designer

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-emsforms/pkg/model"
)

// Option customises an Engine.
type Option func(*Engine)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDGenerator overrides the placeholder id source used by AddField.
func WithIDGenerator(next func() model.FieldID) Option {
	return func(e *Engine) {
		if next != nil {
			e.newID = next
		}
	}
}

func defaultIDGenerator() model.FieldID {
	return model.FieldID("new-" + uuid.NewString())
}
