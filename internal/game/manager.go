package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mind-engage/whosthat/internal/catalog"
	"github.com/mind-engage/whosthat/internal/events"
)

// CatalogSource is the read side of catalog.Loader.
type CatalogSource interface {
	Entries() ([]catalog.Entry, error)
}

type ManagerConfig struct {
	Catalog  CatalogSource
	Recorder events.Recorder // nil -> events.Nop
	Logger   *zap.Logger     // nil -> no-op logger
	TTL      time.Duration   // idle sessions older than this are swept; 0 disables
	NewRand  func() Rand     // nil -> NewRand
	Now      func() time.Time
}

// Manager owns one Session per player id.
type Manager struct {
	catalog  CatalogSource
	recorder events.Recorder
	logger   *zap.Logger
	ttl      time.Duration
	newRand  func() Rand
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*managed
}

type managed struct {
	session  *Session
	lastSeen time.Time
}

func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		catalog:  cfg.Catalog,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		ttl:      cfg.TTL,
		newRand:  cfg.NewRand,
		now:      cfg.Now,
		sessions: map[string]*managed{},
	}
	if m.recorder == nil {
		m.recorder = events.Nop{}
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.newRand == nil {
		m.newRand = NewRand
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Session returns the player's session, starting a new game with its first
// question on first use. It fails while the catalog is loading or after the
// load failed.
func (m *Manager) Session(ctx context.Context, id string) (*Session, error) {
	if s, ok := m.lookup(id); ok {
		return s, nil
	}
	m.mu.Lock()
	if ms, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return ms.session, nil
	}
	entries, err := m.catalog.Entries()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	s, err := NewSession(entries, m.newRand(), WithClock(m.now))
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	q, err := s.NewQuestion()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.sessions[id] = &managed{session: s, lastSeen: m.now()}
	m.mu.Unlock()

	m.logger.Debug("session started", zap.String("session", id))
	m.record(ctx, id, events.TypeQuestion, q, nil, s.Snapshot())
	return s, nil
}

// Answer submits chosen for the question with questionID. ok is false when
// the submission was stale and nothing changed. A player without a live
// session has no open question, so the answer is stale and no session is
// created.
func (m *Manager) Answer(ctx context.Context, id string, questionID string, chosen string) (Outcome, bool, error) {
	s, found := m.lookup(id)
	if !found {
		m.logger.Debug("answer for unknown session ignored", zap.String("session", id), zap.String("question", questionID))
		return Outcome{}, false, nil
	}
	out, ok := s.SubmitAnswerFor(questionID, chosen)
	if !ok {
		m.logger.Debug("stale submission ignored", zap.String("session", id), zap.String("question", questionID))
		return Outcome{}, false, nil
	}
	snap := s.Snapshot()
	q := Question{ID: questionID, CorrectName: out.CorrectName}
	if snap.Question != nil {
		q.Number = snap.Question.Number
	}
	m.record(ctx, id, events.TypeAnswer, q, &out, snap)
	return out, true, nil
}

func (m *Manager) lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	ms.lastSeen = m.now()
	return ms.session, true
}

// Next advances to a new question once the current one is answered.
func (m *Manager) Next(ctx context.Context, id string) (Question, error) {
	s, err := m.Session(ctx, id)
	if err != nil {
		return Question{}, err
	}
	q, err := s.NewQuestion()
	if err != nil {
		return Question{}, err
	}
	m.record(ctx, id, events.TypeQuestion, q, nil, s.Snapshot())
	return q, nil
}

// Reset starts the player's game over.
func (m *Manager) Reset(ctx context.Context, id string) (Question, error) {
	s, err := m.Session(ctx, id)
	if err != nil {
		return Question{}, err
	}
	q, err := s.Reset()
	if err != nil {
		return Question{}, err
	}
	m.record(ctx, id, events.TypeReset, q, nil, s.Snapshot())
	return q, nil
}

// Sweep drops sessions idle for longer than the TTL and reports how many
// were removed.
func (m *Manager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, ms := range m.sessions {
		if now.Sub(ms.lastSeen) > m.ttl {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) record(ctx context.Context, id string, typ events.Type, q Question, out *Outcome, snap Snapshot) {
	e := events.Event{
		SessionID:      id,
		Type:           typ,
		QuestionNumber: q.Number,
		CorrectName:    q.CorrectName,
		Score:          snap.Score,
		QuestionsAsked: snap.QuestionsAsked,
		CreatedAt:      m.now(),
	}
	if out != nil {
		e.Chosen = out.Chosen
		e.Correct = out.Correct
	}
	if err := m.recorder.Record(ctx, e); err != nil {
		m.logger.Warn("record event", zap.String("session", id), zap.String("type", string(typ)), zap.Error(err))
	}
}
