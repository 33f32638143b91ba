package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/stockroom/pkg/config"
	"github.com/angelmondragon/stockroom/pkg/logger"
	"github.com/angelmondragon/stockroom/pkg/metrics"
	"gorm.io/gorm"
)

// Recorder is the best-effort audit surface used on rejection paths.
type Recorder interface {
	Record(ctx context.Context, message string, at time.Time)
}

// Auditor additionally runs mutations together with their audit event.
type Auditor interface {
	Recorder
	Within(ctx context.Context, message string, at time.Time, fn func(tx *gorm.DB) error) error
}

type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Params bundles the dependencies of the audit logger.
type Params struct {
	DB      txRunner
	Config  config.AuditConfig
	Logger  *logger.Logger
	Metrics *metrics.AuthMetrics
	Now     func() time.Time
}

// Logger persists audit events. In best-effort mode write failures are logged
// and counted but never reach the caller; in strict mode audited mutations
// share a transaction with their event.
type Logger struct {
	db      txRunner
	repo    *Repository
	strict  bool
	logg    *logger.Logger
	metrics *metrics.AuthMetrics
	now     func() time.Time
}

// NewLogger builds an audit logger.
func NewLogger(params Params) (*Logger, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Logger{
		db:      params.DB,
		repo:    NewRepository(params.DB.DB()),
		strict:  params.Config.Strict(),
		logg:    logg,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Record appends one event. Failures are swallowed after logging.
func (l *Logger) Record(ctx context.Context, message string, at time.Time) {
	if _, err := l.repo.Append(ctx, message, l.timestamp(at)); err != nil {
		l.failed(ctx, message, err)
	}
}

// Within runs fn as an audited mutation. fn receives the handle it must use
// for its writes.
func (l *Logger) Within(ctx context.Context, message string, at time.Time, fn func(tx *gorm.DB) error) error {
	at = l.timestamp(at)
	if !l.strict {
		if err := fn(l.db.DB().WithContext(ctx)); err != nil {
			return err
		}
		l.Record(ctx, message, at)
		return nil
	}

	return l.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return err
		}
		if _, err := l.repo.WithTx(tx).Append(ctx, message, at); err != nil {
			l.failed(ctx, message, err)
			return &WriteError{Err: err}
		}
		return nil
	})
}

func (l *Logger) timestamp(at time.Time) time.Time {
	if at.IsZero() {
		return l.now()
	}
	return at
}

func (l *Logger) failed(ctx context.Context, message string, err error) {
	l.metrics.IncAuditFailure()
	ctx = l.logg.WithFields(ctx, map[string]any{"audit_event": message, "audit_strict": l.strict})
	l.logg.Error(ctx, "audit.write_failed", err)
}

// WriteError reports a strict-mode audit insert failure.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "audit write failed: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
