package review

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"artconnect/internal/analytics"
	"artconnect/internal/interaction"
	"artconnect/internal/reply"
	"artconnect/internal/scoring"
	"artconnect/internal/storage"
)

var ErrNotFound = errors.New("interaction not found")

// Opportunity is a scored interaction together with its suggested reply.
type Opportunity struct {
	scoring.Scored
	ReplyCategory  string `json:"reply_category"`
	SuggestedReply string `json:"suggested_reply"`
}

// Filter narrows the opportunity list. Zero values mean no restriction.
type Filter struct {
	Platform interaction.Platform
	MinScore float64
	Limit    int
}

// Service is the single entry point the review surfaces share: it owns the
// scored batch and the decision log handle.
type Service struct {
	scorer   *scoring.Scorer
	replies  *reply.Selector
	recorder storage.Recorder
	logger   *zap.Logger
	now      func() time.Time
	hooks    []func(storage.Entry)

	mu     sync.RWMutex
	scored []scoring.Scored
	byID   map[string]int
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDecisionHook registers a callback run after each decision is logged.
func WithDecisionHook(h func(storage.Entry)) Option {
	return func(s *Service) { s.hooks = append(s.hooks, h) }
}

func New(scorer *scoring.Scorer, replies *reply.Selector, recorder storage.Recorder, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		scorer:   scorer,
		replies:  replies,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		byID:     map[string]int{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AddDecisionHook registers h after construction.
func (s *Service) AddDecisionHook(h func(storage.Entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Load scores items as one batch and replaces the current one.
func (s *Service) Load(items []interaction.Interaction) {
	now := s.now()
	scored := s.scorer.ScoreAll(items, now)
	byID := make(map[string]int, len(scored))
	for i, sc := range scored {
		byID[sc.ID] = i
	}

	s.mu.Lock()
	s.scored = scored
	s.byID = byID
	s.mu.Unlock()

	high := 0
	for _, sc := range scored {
		if sc.IsHighValue() {
			high++
		}
	}
	s.logger.Info("🎯 Batch scored", zap.Int("interactions", len(scored)), zap.Int("high_value", high))
}

// Scored returns the current batch, highest score first.
func (s *Service) Scored() []scoring.Scored {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]scoring.Scored(nil), s.scored...)
}

// Opportunities lists the batch in score order after applying f.
func (s *Service) Opportunities(f Filter) []Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Opportunity
	for _, sc := range s.scored {
		if f.Platform != "" && sc.Platform != f.Platform {
			continue
		}
		if sc.OpportunityScore < f.MinScore {
			continue
		}
		out = append(out, s.opportunity(sc))
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// Get returns one scored interaction.
func (s *Service) Get(id string) (Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return Opportunity{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.opportunity(s.scored[i]), nil
}

// Score scores an interaction that is not part of the batch. It is normalized
// against the current batch with the interaction added to it.
func (s *Service) Score(in interaction.Interaction) (scoring.Breakdown, error) {
	now := s.now()
	if err := in.Validate(now); err != nil {
		return scoring.Breakdown{}, err
	}
	s.mu.RLock()
	items := make([]interaction.Interaction, 0, len(s.scored)+1)
	for _, sc := range s.scored {
		items = append(items, sc.Interaction)
	}
	s.mu.RUnlock()
	items = append(items, in)
	return s.scorer.NewBatch(items, now).Score(in), nil
}

// Suggest returns the suggested reply for one interaction.
func (s *Service) Suggest(id string) (string, error) {
	op, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return op.SuggestedReply, nil
}

func (s *Service) opportunity(sc scoring.Scored) Opportunity {
	return Opportunity{
		Scored:         sc,
		ReplyCategory:  reply.Classify(sc.Text).String(),
		SuggestedReply: s.replies.Suggest(sc.Interaction),
	}
}

// Decide logs a reviewer decision. An approval without text sends the
// suggested reply unchanged; an edit must carry the edited text.
func (s *Service) Decide(id string, action storage.Action, finalText string) (storage.Entry, error) {
	op, err := s.Get(id)
	if err != nil {
		return storage.Entry{}, err
	}
	if action == storage.ActionApprove && strings.TrimSpace(finalText) == "" {
		finalText = op.SuggestedReply
	}
	e, err := storage.NewEntry(op.ID, action, finalText, s.now())
	if err != nil {
		return storage.Entry{}, err
	}
	e.Platform = string(op.Platform)
	e.UserHandle = op.Author
	e.OriginalReply = op.SuggestedReply
	if err := s.recorder.Append(e); err != nil {
		s.logger.Error("❌ Failed to log decision", zap.String("interaction_id", op.ID), zap.Error(err))
		return storage.Entry{}, fmt.Errorf("log decision: %w", err)
	}
	s.logger.Info("📝 Decision logged",
		zap.String("interaction_id", e.InteractionID),
		zap.String("action", string(e.Action)),
		zap.String("decision_id", e.DecisionID))

	s.mu.RLock()
	hooks := append([]func(storage.Entry){}, s.hooks...)
	s.mu.RUnlock()
	for _, h := range hooks {
		h(e)
	}
	return e, nil
}

// Decisions returns the last limit entries of the log, all of them when limit <= 0.
func (s *Service) Decisions(limit int) ([]storage.Entry, error) {
	entries, err := s.recorder.Load()
	if err != nil {
		return nil, fmt.Errorf("load decisions: %w", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// ApprovalRate reads the whole log.
func (s *Service) ApprovalRate() (float64, error) {
	entries, err := s.Decisions(0)
	if err != nil {
		return 0, err
	}
	return analytics.ApprovalRate(entries), nil
}

// ActionBreakdown reads the whole log.
func (s *Service) ActionBreakdown() (analytics.Breakdown, error) {
	entries, err := s.Decisions(0)
	if err != nil {
		return analytics.Breakdown{}, err
	}
	return analytics.ActionBreakdown(entries), nil
}

// Report builds the KPI report for the current batch.
func (s *Service) Report() (*analytics.Report, error) {
	entries, err := s.Decisions(0)
	if err != nil {
		return nil, err
	}
	return analytics.BuildReport(s.Scored(), entries, s.now()), nil
}

// Daily summarizes the decisions of day.
func (s *Service) Daily(day time.Time) (*analytics.DailyStats, error) {
	entries, err := s.Decisions(0)
	if err != nil {
		return nil, err
	}
	return analytics.AnalyzeDailyDecisions(entries, day), nil
}

// Now exposes the service clock.
func (s *Service) Now() time.Time { return s.now() }
