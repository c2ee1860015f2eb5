package log

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type elapsed struct {
	t   time.Time
	key string
}

func (v *elapsed) MarshalLogObject(e zapcore.ObjectEncoder) error {
	e.AddDuration(v.key, time.Since(v.t))
	return nil
}

// Elapsed returns a field that reports the time since it was created
// each time it is encoded.
func Elapsed(key string) zap.Field {
	return zap.Inline(&elapsed{
		t:   time.Now(),
		key: key,
	})
}

// Provider tags log lines with the DNS provider and domain they concern.
func Provider(name, domain string) []zap.Field {
	return []zap.Field{zap.String("provider", name), zap.String("domain", domain)}
}
