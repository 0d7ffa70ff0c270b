// Package logging provides the structured logger used by batch operations on
// directory records.
package logging

import (
	"context"
	"errors"
	"maps"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/fgardt/lldap/internal/domain"
)

// LevelEnvPrefix prefixes the environment variable that sets a subsystem's
// level, e.g. LLDAP_LOG_SCHEMA=debug.
const LevelEnvPrefix = "LLDAP_LOG"

// Field values logged under these keys are masked.
var sensitiveFieldKeys = []string{
	"password",
	"user_password",
	"secret",
	"token",
}

// Logger interface for directory operations.
type Logger interface {
	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Trace(msg string, fields map[string]any)
}

// TFLogger wraps tflog subsystem logging.
type TFLogger struct {
	ctx       context.Context
	subsystem string
}

// NewTFLogger registers subsystem on the root logger carried by ctx and
// returns a logger bound to it. Without a root logger in ctx, output is
// discarded.
func NewTFLogger(ctx context.Context, subsystem string) *TFLogger {
	ctx = tflog.NewSubsystem(ctx, subsystem, tflog.WithLevelFromEnv(LevelEnvPrefix, subsystem))
	ctx = tflog.SubsystemMaskFieldValuesWithFieldKeys(ctx, subsystem, sensitiveFieldKeys...)

	return &TFLogger{
		ctx:       ctx,
		subsystem: subsystem,
	}
}

func (l *TFLogger) Debug(msg string, fields map[string]any) {
	tflog.SubsystemDebug(l.ctx, l.subsystem, msg, fields)
}

func (l *TFLogger) Info(msg string, fields map[string]any) {
	tflog.SubsystemInfo(l.ctx, l.subsystem, msg, fields)
}

func (l *TFLogger) Warn(msg string, fields map[string]any) {
	tflog.SubsystemWarn(l.ctx, l.subsystem, msg, fields)
}

func (l *TFLogger) Error(msg string, fields map[string]any) {
	tflog.SubsystemError(l.ctx, l.subsystem, msg, fields)
}

func (l *TFLogger) Trace(msg string, fields map[string]any) {
	tflog.SubsystemTrace(l.ctx, l.subsystem, msg, fields)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, map[string]any) {}
func (NopLogger) Info(string, map[string]any)  {}
func (NopLogger) Warn(string, map[string]any)  {}
func (NopLogger) Error(string, map[string]any) {}
func (NopLogger) Trace(string, map[string]any) {}

// OrNop returns logger, or a NopLogger when logger is nil.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return NopLogger{}
	}
	return logger
}

// LogOperation runs fn, logging its start and its outcome with timing.
// The caller's fields map is not modified.
func LogOperation(logger Logger, operation string, fields map[string]any, fn func() error) error {
	logger = OrNop(logger)
	start := time.Now()

	entryFields := make(map[string]any, len(fields)+1)
	maps.Copy(entryFields, fields)
	entryFields["operation"] = operation

	logger.Debug("Starting operation", entryFields)

	err := fn()

	exitFields := maps.Clone(entryFields)
	exitFields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		exitFields["error"] = err.Error()
		logger.Error("Operation failed", exitFields)
	} else {
		logger.Debug("Operation completed successfully", exitFields)
	}

	return err
}

// ValidationFields returns log fields describing err. A *domain.ValidationError
// anywhere in the chain contributes its kind, entity and field.
func ValidationFields(err error, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+4)
	maps.Copy(out, fields)
	out["error"] = err.Error()

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		out["validation_kind"] = string(validationErr.Kind)
		if validationErr.Entity != "" {
			out["entity"] = validationErr.Entity
		}
		if validationErr.Field != "" {
			out["field"] = validationErr.Field
		}
	}

	return out
}

// LogValidationError logs a rejected record at Warn level.
func LogValidationError(logger Logger, msg string, err error, fields map[string]any) {
	OrNop(logger).Warn(msg, ValidationFields(err, fields))
}
