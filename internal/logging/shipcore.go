package logging

import (
	"go.uber.org/zap/zapcore"

	"github.com/danshapiro/codexlink/internal/logship"
)

// shipCore is a zapcore.Core that converts entries into logship records and
// enqueues them. Enqueue is non-blocking, so attaching this core never slows
// the logger down.
type shipCore struct {
	zapcore.LevelEnabler
	dispatcher *logship.Dispatcher
	fields     []zapcore.Field
}

// NewShipCore wraps dispatcher as a zap core at the given level.
func NewShipCore(dispatcher *logship.Dispatcher, enab zapcore.LevelEnabler) zapcore.Core {
	return &shipCore{LevelEnabler: enab, dispatcher: dispatcher}
}

func (c *shipCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &shipCore{
		LevelEnabler: c.LevelEnabler,
		dispatcher:   c.dispatcher,
		fields:       make([]zapcore.Field, 0, len(c.fields)+len(fields)),
	}
	clone.fields = append(clone.fields, c.fields...)
	clone.fields = append(clone.fields, fields...)
	return clone
}

func (c *shipCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *shipCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	rec := logship.NewRecord(ent.Level.CapitalString(), ent.Message)
	rec.Time = ent.Time.UTC()

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	if v, ok := enc.Fields["event"].(string); ok {
		rec.Event = v
	}
	if v, ok := enc.Fields["provider"].(string); ok {
		rec.Provider = v
	}
	if v, ok := enc.Fields["model"].(string); ok {
		rec.Model = v
	}
	if v, ok := enc.Fields["path"].(string); ok {
		rec.Path = v
	}
	if v, ok := enc.Fields["error_type"].(string); ok {
		rec.ErrorType = v
	}
	switch v := enc.Fields["duration_ms"].(type) {
	case int64:
		rec.DurationMS = v
	case int:
		rec.DurationMS = int64(v)
	case float64:
		rec.DurationMS = int64(v)
	}

	c.dispatcher.Enqueue(rec)
	return nil
}

func (c *shipCore) Sync() error { return nil }
