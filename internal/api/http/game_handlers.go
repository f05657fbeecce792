package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	auth "github.com/mind-engage/whosthat/internal/auth/middleware"
	"github.com/mind-engage/whosthat/internal/catalog"
	"github.com/mind-engage/whosthat/internal/game"
)

// CatalogStatus is the part of catalog.Loader the API reads.
type CatalogStatus interface {
	Status() catalog.Status
	Entries() ([]catalog.Entry, error)
}

type GameDeps struct {
	Manager     *game.Manager
	Catalog     CatalogStatus
	ArtworkURL  string
	RevealDelay time.Duration
	Logger      *zap.Logger
	Now         func() time.Time
}

func (d GameDeps) withDefaults() GameDeps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// MountGame registers the game API under r (normally /api).
func MountGame(r chi.Router, d GameDeps) {
	d = d.withDefaults()
	r.Get("/state", StateHandler(d))
	r.Post("/answer", AnswerHandler(d))
	r.Post("/next", NextHandler(d))
	r.Post("/reset", ResetHandler(d))
}

// GET /api/state
func StateHandler(d GameDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		s, err := d.Manager.Session(r.Context(), sid)
		if err != nil {
			writeGameError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, d.view(s.Snapshot()))
	}
}

// POST /api/answer  { "question_id": "<question.id>", "answer": "pikachu" }
func AnswerHandler(d GameDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		var req struct {
			QuestionID string `json:"question_id"`
			Answer     string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuestionID == "" || req.Answer == "" {
			http.Error(w, "question_id and answer required", http.StatusBadRequest)
			return
		}
		_, accepted, err := d.Manager.Answer(r.Context(), sid, req.QuestionID, req.Answer)
		if err != nil {
			writeGameError(w, d, err)
			return
		}
		s, err := d.Manager.Session(r.Context(), sid)
		if err != nil {
			writeGameError(w, d, err)
			return
		}
		status := http.StatusOK
		if !accepted {
			// stale, duplicate or expired-session submission; report the current state
			status = http.StatusConflict
		}
		writeJSON(w, status, d.view(s.Snapshot()))
	}
}

// POST /api/next
func NextHandler(d GameDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		if _, err := d.Manager.Next(r.Context(), sid); err != nil {
			writeGameError(w, d, err)
			return
		}
		s, err := d.Manager.Session(r.Context(), sid)
		if err != nil {
			writeGameError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, d.view(s.Snapshot()))
	}
}

// POST /api/reset
func ResetHandler(d GameDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, ok := sessionID(w, r)
		if !ok {
			return
		}
		if _, err := d.Manager.Reset(r.Context(), sid); err != nil {
			writeGameError(w, d, err)
			return
		}
		s, err := d.Manager.Session(r.Context(), sid)
		if err != nil {
			writeGameError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, d.view(s.Snapshot()))
	}
}

func (d GameDeps) view(snap game.Snapshot) stateView {
	return buildState(snap, d.ArtworkURL, d.RevealDelay, d.Now())
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid := auth.SessionIDFromContext(r.Context())
	if sid == "" {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return "", false
	}
	return sid, true
}

const loadFailedMessage = "Failed to load Pokémon data. Please refresh the page."

func writeGameError(w http.ResponseWriter, d GameDeps, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotReady):
		writeJSON(w, http.StatusServiceUnavailable, stateView{Status: catalog.StatusLoading})
	case errors.Is(err, catalog.ErrCatalogLoad),
		errors.Is(err, catalog.ErrEmptyCatalog),
		errors.Is(err, catalog.ErrInsufficientCatalog):
		writeJSON(w, http.StatusServiceUnavailable, stateView{Status: catalog.StatusFailed, Error: loadFailedMessage})
	case errors.Is(err, game.ErrQuestionPending):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		d.Logger.Error("game request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
