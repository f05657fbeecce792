// Package events keeps an append-only log of game actions. The log is never
// read back into a session.
package events

import (
	"context"
	"database/sql"
	"time"
)

type Type string

const (
	TypeQuestion Type = "question"
	TypeAnswer   Type = "answer"
	TypeReset    Type = "reset"
)

type Event struct {
	SessionID      string
	Type           Type
	QuestionNumber int
	CorrectName    string
	Chosen         string
	Correct        bool
	Score          int
	QuestionsAsked int
	CreatedAt      time.Time
}

type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// Nop drops every event; it is used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

type SQLRecorder struct {
	db *sql.DB
}

func NewSQLRecorder(db *sql.DB) *SQLRecorder { return &SQLRecorder{db: db} }

func (r *SQLRecorder) Record(ctx context.Context, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	correct := 0
	if e.Correct {
		correct = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_events (session_id, typ, question_number, correct_name, chosen, correct, score, questions_asked, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.SessionID, string(e.Type), e.QuestionNumber, e.CorrectName, e.Chosen, correct, e.Score, e.QuestionsAsked, e.CreatedAt.Unix())
	return err
}
