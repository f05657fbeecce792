package game

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/whosthat/internal/catalog"
)

// ErrQuestionPending is returned when a new question is requested while the
// current one is still waiting for an answer.
var ErrQuestionPending = errors.New("current question has not been answered")

type State int

const (
	AwaitingQuestion State = iota
	QuestionActive
	AnswerRevealed
)

func (s State) String() string {
	switch s {
	case AwaitingQuestion:
		return "awaiting_question"
	case QuestionActive:
		return "question_active"
	case AnswerRevealed:
		return "answer_revealed"
	default:
		return "unknown"
	}
}

// Question is one round. Number is the value of QuestionsAsked when the
// question was created and restarts with the game; ID is unique per question
// and is what a submission names to pin the answer to the round.
type Question struct {
	ID          string
	Number      int
	CorrectName string
	Options     []string
	ImageID     int
}

type Outcome struct {
	Correct     bool
	CorrectName string
	Chosen      string
}

// Snapshot is a point-in-time copy of a session for rendering.
type Snapshot struct {
	State          State
	Score          int
	QuestionsAsked int
	Question       *Question
	Outcome        *Outcome
	RevealedAt     time.Time
}

// Session is the per-player state machine:
// AwaitingQuestion -> QuestionActive -> AnswerRevealed -> QuestionActive ...
type Session struct {
	mu      sync.Mutex
	entries []catalog.Entry
	rng     Rand
	now     func() time.Time

	state      State
	score      int
	asked      int
	current    *Question
	last       *Outcome
	revealedAt time.Time
}

type Option func(*Session)

// WithClock overrides the clock used to stamp reveals.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// NewSession returns a session in AwaitingQuestion. The catalog must hold at
// least OptionCount distinct names.
func NewSession(entries []catalog.Entry, rng Rand, opts ...Option) (*Session, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	if n := distinctOthers(entries, ""); n < OptionCount {
		return nil, ErrInsufficientCatalog
	}
	if rng == nil {
		rng = NewRand()
	}
	s := &Session{entries: entries, rng: rng, now: time.Now, state: AwaitingQuestion}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// NewQuestion builds and publishes the next question. The question counter is
// bumped before the question is returned, so it counts the question being
// asked rather than completed ones.
func (s *Session) NewQuestion() (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newQuestionLocked()
}

func (s *Session) newQuestionLocked() (Question, error) {
	if s.state == QuestionActive {
		return Question{}, ErrQuestionPending
	}
	correct, err := Sample(s.rng, s.entries)
	if err != nil {
		return Question{}, err
	}
	wrong, err := Distractors(s.rng, s.entries, correct, OptionCount-1)
	if err != nil {
		return Question{}, err
	}
	options := Shuffle(s.rng, append([]string{correct.Name}, wrong...))

	s.asked++
	s.current = &Question{
		ID:          uuid.NewString(),
		Number:      s.asked,
		CorrectName: correct.Name,
		Options:     options,
		ImageID:     correct.ID,
	}
	s.last = nil
	s.revealedAt = time.Time{}
	s.state = QuestionActive
	return cloneQuestion(s.current), nil
}

// SubmitAnswer scores chosen against the current question. Outside
// QuestionActive the call is ignored and ok is false; in particular a second
// submission for the same question never changes the score.
func (s *Session) SubmitAnswer(chosen string) (out Outcome, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(chosen)
}

// SubmitAnswerFor is SubmitAnswer for the question with the given ID. A
// submission for any other question, including one asked before a Reset, is
// ignored.
func (s *Session) SubmitAnswerFor(questionID string, chosen string) (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || questionID == "" || s.current.ID != questionID {
		return Outcome{}, false
	}
	return s.submitLocked(chosen)
}

func (s *Session) submitLocked(chosen string) (Outcome, bool) {
	if s.state != QuestionActive || s.current == nil {
		return Outcome{}, false
	}
	// raw names only; display formatting never takes part in the comparison
	out := Outcome{
		Correct:     chosen == s.current.CorrectName,
		CorrectName: s.current.CorrectName,
		Chosen:      chosen,
	}
	if out.Correct {
		s.score++
	}
	s.last = &out
	s.revealedAt = s.now()
	s.state = AnswerRevealed
	return out, true
}

// Reset zeroes the score and counter and immediately asks a new question.
func (s *Session) Reset() (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.score, s.asked = 0, 0
	s.current, s.last = nil, nil
	s.revealedAt = time.Time{}
	s.state = AwaitingQuestion
	return s.newQuestionLocked()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:          s.state,
		Score:          s.score,
		QuestionsAsked: s.asked,
		RevealedAt:     s.revealedAt,
	}
	if s.current != nil {
		q := cloneQuestion(s.current)
		snap.Question = &q
	}
	if s.last != nil {
		o := *s.last
		snap.Outcome = &o
	}
	return snap
}

func cloneQuestion(q *Question) Question {
	c := *q
	c.Options = slices.Clone(q.Options)
	return c
}
