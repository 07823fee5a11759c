package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// DraftClosePolicy decides what closing a period does with entries that were never posted.
type DraftClosePolicy string

const (
	// BlockOnDrafts refuses to close a period that still has drafts.
	BlockOnDrafts DraftClosePolicy = "block"
	// CancelDrafts cancels them in the closing transaction.
	CancelDrafts DraftClosePolicy = "cancel"
)

// Policy holds ledger-wide behaviour switches.
type Policy struct {
	RequireApproval      bool
	DraftClosePolicy     DraftClosePolicy
	MaxRetries           int
	RetryInitialInterval time.Duration
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		DraftClosePolicy:     BlockOnDrafts,
		MaxRetries:           3,
		RetryInitialInterval: 20 * time.Millisecond,
	}
}

// BaseService provides common functionality for all services
type BaseService struct {
	txManager portsrepo.TransactionManager
	policy    Policy
	clock     func() time.Time
}

// ServiceOption is a functional option shared by every service constructor
type ServiceOption func(*BaseService)

// WithPolicy overrides the default ledger policy.
func WithPolicy(p Policy) ServiceOption {
	return func(s *BaseService) {
		if p.DraftClosePolicy == "" {
			p.DraftClosePolicy = BlockOnDrafts
		}
		if p.MaxRetries < 0 {
			p.MaxRetries = 0
		}
		if p.RetryInitialInterval <= 0 {
			p.RetryInitialInterval = DefaultPolicy().RetryInitialInterval
		}
		s.policy = p
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *BaseService) {
		if now != nil {
			s.clock = now
		}
	}
}

func newBaseService(txManager portsrepo.TransactionManager, options ...ServiceOption) BaseService {
	base := BaseService{
		txManager: txManager,
		policy:    DefaultPolicy(),
		clock:     time.Now,
	}
	for _, option := range options {
		option(&base)
	}
	return base
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

func (s *BaseService) now() time.Time {
	return s.clock().UTC()
}

func (s *BaseService) today() time.Time {
	return domain.DateOnly(s.now())
}

func newID() string {
	return uuid.NewString()
}

// newReference returns a sortable, unique journal reference number.
func newReference() string {
	return "JE-" + ulid.Make().String()
}
