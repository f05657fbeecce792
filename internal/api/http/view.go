package http

import (
	"time"

	"github.com/mind-engage/whosthat/internal/catalog"
	"github.com/mind-engage/whosthat/internal/game"
)

type optionView struct {
	Name  string `json:"name"`  // raw value to submit
	Label string `json:"label"` // display text
}

type questionView struct {
	ID       string       `json:"id"`
	Number   int          `json:"number"`
	ImageURL string       `json:"image_url"`
	Revealed bool         `json:"revealed"`
	Options  []optionView `json:"options"`
}

type outcomeView struct {
	Correct      bool   `json:"correct"`
	CorrectName  string `json:"correct_name"`
	CorrectLabel string `json:"correct_label"`
	Chosen       string `json:"chosen"`
	Feedback     string `json:"feedback"`
}

type stateView struct {
	Status         catalog.Status `json:"status"`
	Error          string         `json:"error,omitempty"`
	State          string         `json:"state,omitempty"`
	Score          int            `json:"score"`
	QuestionsAsked int            `json:"questions_asked"`
	Question       *questionView  `json:"question,omitempty"`
	Outcome        *outcomeView   `json:"outcome,omitempty"`
	AdvanceAfterMS int64          `json:"advance_after_ms"`
}

// Feedback is the line shown after an answer.
func Feedback(o game.Outcome) string {
	if o.Correct {
		return "Correct!"
	}
	return "Wrong! It's " + game.FormatName(o.CorrectName)
}

func buildState(snap game.Snapshot, artworkURL string, revealDelay time.Duration, now time.Time) stateView {
	v := stateView{
		Status:         catalog.StatusReady,
		State:          snap.State.String(),
		Score:          snap.Score,
		QuestionsAsked: snap.QuestionsAsked,
	}
	if q := snap.Question; q != nil {
		// CorrectName stays server-side until an outcome exists.
		qv := &questionView{
			ID:       q.ID,
			Number:   q.Number,
			ImageURL: catalog.ImageURL(artworkURL, q.ImageID),
			Revealed: snap.State == game.AnswerRevealed,
			Options:  make([]optionView, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			qv.Options = append(qv.Options, optionView{Name: o, Label: game.FormatName(o)})
		}
		v.Question = qv
	}
	if o := snap.Outcome; o != nil {
		v.Outcome = &outcomeView{
			Correct:      o.Correct,
			CorrectName:  o.CorrectName,
			CorrectLabel: game.FormatName(o.CorrectName),
			Chosen:       o.Chosen,
			Feedback:     Feedback(*o),
		}
		if wait := snap.RevealedAt.Add(revealDelay).Sub(now); wait > 0 {
			v.AdvanceAfterMS = wait.Milliseconds()
		}
	}
	return v
}
