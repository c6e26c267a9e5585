// Package service orchestrates the draw engine: registration, winner
// selection, export, and the administrative draw lifecycle. Handlers stay
// thin; stores stay dumb; the invariants live here and in the store locks.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"luckydraw/internal/draw/cache"
	drawmetrics "luckydraw/internal/draw/metrics"
	"luckydraw/internal/draw/models"
	"luckydraw/internal/identity"
	"luckydraw/internal/notify"
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/platform/sentinel"
)

// DrawStore persists Draw records. Execute must hold a lock (mutex or FOR
// UPDATE) across validate and mutate so the winner-is-null check and the
// commit are one atomic step.
type DrawStore interface {
	Create(ctx context.Context, d *models.Draw) error
	FindByID(ctx context.Context, drawID id.DrawID) (*models.Draw, error)
	Execute(ctx context.Context, drawID id.DrawID, validate func(*models.Draw) error, mutate func(*models.Draw)) (*models.Draw, error)
	Delete(ctx context.Context, drawID id.DrawID) error
}

// RegistrationStore persists the append-only ledger. Append must make the
// (draw, registrant) dedup check atomic with the insert.
type RegistrationStore interface {
	Append(ctx context.Context, entry models.RegistrationEntry) (models.RegistrationEntry, error)
	ListByDraw(ctx context.Context, drawID id.DrawID) ([]models.RegistrationEntry, error)
	CountByDraw(ctx context.Context, drawID id.DrawID) (int, error)
	FindByDrawAndUser(ctx context.Context, drawID id.DrawID, userID id.UserID) (*models.RegistrationEntry, error)
	DeleteByDraw(ctx context.Context, drawID id.DrawID) error
}

// DrawService implements the engine operations.
type DrawService struct {
	draws    DrawStore
	ledger   RegistrationStore
	notifier notify.Emitter
	resolver identity.Resolver
	winners  *cache.WinnerCache
	metrics  *drawmetrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer

	// randIntN draws a uniform index in [0, n). The default is the runtime-
	// seeded generator, which participants cannot reproduce; tests inject a
	// deterministic one.
	randIntN func(n int) int

	// retryAttempts bounds internal retries of transient storage failures.
	retryAttempts int
}

type serviceConfig struct {
	notifier      notify.Emitter
	resolver      identity.Resolver
	winners       *cache.WinnerCache
	metrics       *drawmetrics.Metrics
	logger        *slog.Logger
	randIntN      func(n int) int
	retryAttempts int
}

// Option configures a DrawService.
type Option func(*serviceConfig)

func WithNotifier(n notify.Emitter) Option {
	return func(c *serviceConfig) { c.notifier = n }
}

func WithIdentityResolver(r identity.Resolver) Option {
	return func(c *serviceConfig) { c.resolver = r }
}

func WithWinnerCache(w *cache.WinnerCache) Option {
	return func(c *serviceConfig) { c.winners = w }
}

func WithMetrics(m *drawmetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = l }
}

// WithRandIntN overrides the random index source; tests use this.
func WithRandIntN(fn func(n int) int) Option {
	return func(c *serviceConfig) { c.randIntN = fn }
}

// WithRetryAttempts overrides the bounded retry count for transient storage
// failures.
func WithRetryAttempts(n int) Option {
	return func(c *serviceConfig) { c.retryAttempts = n }
}

// New constructs a DrawService over the given stores.
func New(draws DrawStore, ledger RegistrationStore, opts ...Option) *DrawService {
	cfg := &serviceConfig{
		randIntN:      rand.IntN,
		retryAttempts: 3,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.notifier == nil {
		cfg.notifier = notify.NewMemoryEmitter()
	}
	return &DrawService{
		draws:         draws,
		ledger:        ledger,
		notifier:      cfg.notifier,
		resolver:      cfg.resolver,
		winners:       cfg.winners,
		metrics:       cfg.metrics,
		logger:        cfg.logger,
		tracer:        otel.Tracer("luckydraw/draw"),
		randIntN:      cfg.randIntN,
		retryAttempts: cfg.retryAttempts,
	}
}

// wrapStoreErr translates store sentinels into coded domain errors. Errors
// that already carry a code (validate closures return them for state
// rejections) pass through untouched. Unknown errors become internal so
// storage details never leak to callers.
func wrapStoreErr(err error, notFoundMsg string) error {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "storage temporarily unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}
