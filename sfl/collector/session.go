// Package collector implements the per-test listener that feeds coverage
// snapshots into a spectrum and ranks it once the session ends.
package collector

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/sfl-lite/internal/observability"
	"github.com/example/sfl-lite/sfl/domain"
	"github.com/example/sfl-lite/sfl/heuristic"
	"github.com/example/sfl-lite/sfl/rank"
	"github.com/example/sfl-lite/sfl/spectrum"
)

// Session is the explicit state of one fault-localization run. It is created
// at start, receives OnTestStarted/OnTestFinished for every test, and is
// consumed once by Rank after Finish.
type Session struct {
	id       string
	config   domain.SessionConfig
	logger   *slog.Logger
	metrics  *observability.Metrics
	registry *heuristic.Registry
	now      func() time.Time

	mu       sync.Mutex
	store    *spectrum.Store
	counters spectrum.Counters
	running  map[string]int
	status   domain.SessionStatus
	started  time.Time
	finished time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithRegistry sets the heuristic registry used by Rank.
func WithRegistry(r *heuristic.Registry) Option {
	return func(s *Session) {
		s.registry = r
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// NewSession creates a session in the collecting state.
func NewSession(id string, config domain.SessionConfig, opts ...Option) *Session {
	s := &Session{
		id:      id,
		config:  config.WithDefaults(),
		logger:  slog.Default(),
		now:     time.Now,
		store:   spectrum.NewStore(),
		running: make(map[string]int),
		status:  domain.StatusCollecting,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics()
	}
	if s.registry == nil {
		s.registry = heuristic.NewRegistry()
	}
	s.started = s.now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Config returns the session configuration.
func (s *Session) Config() domain.SessionConfig { return s.config }

// Metrics returns the metrics sink.
func (s *Session) Metrics() *observability.Metrics { return s.metrics }

// Status returns the lifecycle state.
func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// OnTestStarted counts a new test.
func (s *Session) OnTestStarted(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsTerminal() {
		return fmt.Errorf("%w: test %s started after %s", domain.ErrSessionClosed, name, s.status)
	}
	n := s.counters.TestStarted()
	s.running[name]++
	s.logger.Debug("test started", "test", name, "number", n)
	return nil
}

// OnTestFinished records the outcome of a started test and applies its
// coverage snapshot to the spectrum. A rejected snapshot leaves the session
// untouched and the test still running.
func (s *Session) OnTestFinished(name string, outcome domain.TestOutcome, snapshot *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsTerminal() {
		return fmt.Errorf("%w: test %s finished after %s", domain.ErrSessionClosed, name, s.status)
	}
	if s.running[name] == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNoTestRunning, name)
	}

	start := s.now()
	b, err := prepare(snapshot)
	if err != nil {
		return err
	}
	failed := outcome.Failed()
	if err := s.store.UpdateAll(b.covered, failed); err != nil {
		return err
	}

	s.running[name]--
	if s.running[name] == 0 {
		delete(s.running, name)
	}
	if failed {
		s.counters.TestFailed()
		s.logger.Info("test failed", "test", name)
	} else {
		s.logger.Debug("test passed", "test", name)
	}
	s.record(b)
	s.metrics.CollectDuration().Observe(s.now().Sub(start))
	return nil
}

// batch is a validated snapshot reduced to one entry per requirement key.
type batch struct {
	covered      []domain.Element
	lines, duas  int
	coveredLines int
	coveredDuas  int
}

// prepare validates every observation and merges repeated keys. A key is
// covered when any of its observations is. Two observations sharing a key
// must describe the same element.
func prepare(snapshot *domain.Snapshot) (batch, error) {
	var b batch
	if snapshot == nil {
		return b, nil
	}

	seen := make(map[string]int, len(snapshot.Observations))
	elements := make([]domain.Element, 0, len(snapshot.Observations))
	covered := make([]bool, 0, len(snapshot.Observations))
	for _, obs := range snapshot.Observations {
		if err := obs.Element.Validate(); err != nil {
			return batch{}, err
		}
		key := obs.Element.Key()
		i, ok := seen[key]
		if !ok {
			seen[key] = len(elements)
			elements = append(elements, obs.Element)
			covered = append(covered, obs.Covered())
			continue
		}
		if elements[i] != obs.Element {
			return batch{}, fmt.Errorf("%w: key %s listed twice with different metadata in one snapshot",
				domain.ErrRequirementConflict, key)
		}
		covered[i] = covered[i] || obs.Covered()
	}

	for i, e := range elements {
		switch e.Kind {
		case domain.KindLine:
			b.lines++
		case domain.KindDefUse:
			b.duas++
		}
		if !covered[i] {
			continue
		}
		b.covered = append(b.covered, e)
		switch e.Kind {
		case domain.KindLine:
			b.coveredLines++
		case domain.KindDefUse:
			b.coveredDuas++
		}
	}
	return b, nil
}

func (s *Session) record(b batch) {
	s.metrics.Observed().WithLabels(domain.KindLine.String()).Add(int64(b.lines))
	s.metrics.Observed().WithLabels(domain.KindDefUse.String()).Add(int64(b.duas))
	s.metrics.Covered().WithLabels(domain.KindLine.String()).Add(int64(b.coveredLines))
	s.metrics.Covered().WithLabels(domain.KindDefUse.String()).Add(int64(b.coveredDuas))
	if b.lines > 0 {
		s.logger.Debug("collected lines", "lines", b.lines, "covered", b.coveredLines)
	}
	if b.duas > 0 {
		s.logger.Debug("collected duas", "duas", b.duas, "covered", b.coveredDuas)
	}
}

// Finish closes the session for new events and records the elapsed time.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsTerminal() {
		return fmt.Errorf("%w: cannot finish a session in state %s", domain.ErrSessionClosed, s.status)
	}
	s.status = domain.StatusFinished
	s.finished = s.now()
	return nil
}

// Abort marks the session as incomplete; Rank will refuse it.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.IsTerminal() {
		return
	}
	s.status = domain.StatusAborted
	s.finished = s.now()
}

// Summary returns the session counters and timing.
func (s *Session) Summary() domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) summaryLocked() domain.Summary {
	end := s.finished
	if end.IsZero() {
		end = s.now()
	}
	return domain.Summary{
		SessionID:    s.id,
		Project:      s.config.Project,
		Heuristic:    s.config.Heuristic,
		TotalTests:   s.counters.Total(),
		FailedTests:  s.counters.Failed(),
		Requirements: s.store.Len(),
		Elapsed:      end.Sub(s.started),
		FinishedAt:   end,
	}
}

// Requirements returns the spectrum snapshot.
func (s *Session) Requirements() []domain.Requirement {
	return s.store.All()
}

// Rank resolves the heuristic by name (the configured one when empty) and
// ranks the spectrum. The session must be finished.
func (s *Session) Rank(heuristicName string) (*domain.RankResult, error) {
	if heuristicName == "" {
		heuristicName = s.config.Heuristic
	}
	h, err := s.registry.Lookup(heuristicName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.status {
	case domain.StatusAborted:
		return nil, domain.ErrSessionAborted
	case domain.StatusCollecting:
		return nil, domain.ErrSessionNotFinished
	}

	summary := s.summaryLocked()
	summary.Heuristic = h.Name
	entries := rank.Generate(s.store.All(), summary.PassedTests(), summary.FailedTests, h)

	s.logger.Debug("rank generated",
		"heuristic", h.Name,
		"requirements", len(entries),
		"tests", summary.TotalTests,
		"failed", summary.FailedTests)

	return &domain.RankResult{Summary: summary, Entries: entries}, nil
}
