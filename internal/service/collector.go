package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/sfl-lite/internal/observability"
	"github.com/example/sfl-lite/internal/storage"
	"github.com/example/sfl-lite/pkg/id"
	"github.com/example/sfl-lite/sfl/collector"
	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/heuristic"
)

// CollectorService holds the collection sessions driven by remote test
// runners and persists them when they end.
type CollectorService struct {
	storage  storage.Storage
	registry *heuristic.Registry
	metrics  *observability.Metrics
	logger   *slog.Logger
	idGen    func() string

	mu       sync.Mutex
	sessions map[string]*collector.Session
}

// CollectorOption configures a CollectorService.
type CollectorOption func(*CollectorService)

// WithStorage persists finished and aborted sessions.
func WithStorage(s storage.Storage) CollectorOption {
	return func(c *CollectorService) {
		c.storage = s
	}
}

// WithMetrics shares one metrics sink across all sessions.
func WithMetrics(m *observability.Metrics) CollectorOption {
	return func(c *CollectorService) {
		c.metrics = m
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) CollectorOption {
	return func(c *CollectorService) {
		c.logger = l
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() string) CollectorOption {
	return func(c *CollectorService) {
		c.idGen = gen
	}
}

// WithRegistry sets the heuristic registry.
func WithRegistry(r *heuristic.Registry) CollectorOption {
	return func(c *CollectorService) {
		c.registry = r
	}
}

// NewCollector creates a new CollectorService.
func NewCollector(opts ...CollectorOption) *CollectorService {
	c := &CollectorService{
		logger:   slog.Default(),
		idGen:    id.Generate,
		sessions: make(map[string]*collector.Session),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = heuristic.NewRegistry()
	}
	if c.metrics == nil {
		c.metrics = observability.NewMetrics()
	}
	return c
}

// Metrics returns the shared metrics sink.
func (c *CollectorService) Metrics() *observability.Metrics { return c.metrics }

// StartSession creates a collecting session and returns its id.
func (c *CollectorService) StartSession(ctx context.Context, cfg domain.SessionConfig) (string, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if _, err := c.registry.Lookup(cfg.Heuristic); err != nil {
		return "", err
	}

	sessionID := c.idGen()
	session := collector.NewSession(sessionID, cfg,
		collector.WithLogger(c.logger.With("session", sessionID)),
		collector.WithMetrics(c.metrics),
		collector.WithRegistry(c.registry))

	c.mu.Lock()
	c.sessions[sessionID] = session
	c.mu.Unlock()

	c.logger.Info("session started", "session", sessionID, "project", cfg.Project, "heuristic", cfg.Heuristic)
	return sessionID, nil
}

// TestStarted forwards a test start to the session.
func (c *CollectorService) TestStarted(ctx context.Context, sessionID, test string) error {
	session, err := c.session(sessionID)
	if err != nil {
		return err
	}
	return session.OnTestStarted(test)
}

// TestFinished forwards a test outcome and its coverage to the session.
func (c *CollectorService) TestFinished(ctx context.Context, sessionID, test string, outcome domain.TestOutcome, snapshot *domain.Snapshot) error {
	session, err := c.session(sessionID)
	if err != nil {
		return err
	}
	return session.OnTestFinished(test, outcome, snapshot)
}

// Finish ends a session and ranks it. An empty heuristic name uses the one
// given at start. The session is persisted when storage is configured.
func (c *CollectorService) Finish(ctx context.Context, sessionID, heuristicName string) (*domain.RankResult, error) {
	session, err := c.session(sessionID)
	if err != nil {
		return nil, err
	}
	if heuristicName != "" {
		// Resolve first so that a typo does not consume the session.
		if _, err := c.registry.Lookup(heuristicName); err != nil {
			return nil, err
		}
	}

	if err := session.Finish(); err != nil {
		return nil, err
	}
	result, err := session.Rank(heuristicName)
	if err != nil {
		return nil, err
	}
	c.remove(sessionID)

	if err := c.persist(ctx, session, result.Summary, domain.StatusFinished); err != nil {
		return nil, err
	}
	c.logger.Info("session finished",
		"session", sessionID,
		"tests", result.Summary.TotalTests,
		"failed", result.Summary.FailedTests,
		"requirements", len(result.Entries))
	return result, nil
}

// Abort ends a session without a rank.
func (c *CollectorService) Abort(ctx context.Context, sessionID string) error {
	session, err := c.session(sessionID)
	if err != nil {
		return err
	}
	session.Abort()
	c.remove(sessionID)

	c.logger.Warn("session aborted", "session", sessionID)
	return c.persist(ctx, session, session.Summary(), domain.StatusAborted)
}

// Active returns the number of sessions still collecting.
func (c *CollectorService) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *CollectorService) session(sessionID string) (*collector.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session, ok := c.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return session, nil
}

func (c *CollectorService) remove(sessionID string) {
	c.mu.Lock()
	delete(c.sessions, sessionID)
	c.mu.Unlock()
}

func (c *CollectorService) persist(ctx context.Context, session *collector.Session, summary domain.Summary, status domain.SessionStatus) error {
	if c.storage == nil {
		return nil
	}
	rec := storage.NewSessionRecord(summary, status)
	if err := storage.SaveSession(ctx, c.storage, rec, session.Requirements()); err != nil {
		return err
	}
	c.logger.Debug("session stored", "session", session.ID(), "status", status)
	return nil
}
