package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/mind-engage/whosthat/internal/api/http"
	auth "github.com/mind-engage/whosthat/internal/auth/middleware"
	"github.com/mind-engage/whosthat/internal/catalog"
	"github.com/mind-engage/whosthat/internal/game"
)

var starters = []catalog.Entry{
	{ID: 1, Name: "bulbasaur"},
	{ID: 4, Name: "charmander"},
	{ID: 7, Name: "squirtle"},
	{ID: 122, Name: "mr-mime"},
}

// scripted replays vals (mod n), then counts upward.
type scripted struct {
	vals []int
	i    int
}

func (s *scripted) IntN(n int) int {
	var v int
	if s.i < len(s.vals) {
		v = s.vals[s.i]
	} else {
		v = s.i - len(s.vals)
	}
	s.i++
	return v % n
}

type state struct {
	Status         string `json:"status"`
	Error          string `json:"error"`
	State          string `json:"state"`
	Score          int    `json:"score"`
	QuestionsAsked int    `json:"questions_asked"`
	Question       *struct {
		ID       string `json:"id"`
		Number   int    `json:"number"`
		ImageURL string `json:"image_url"`
		Revealed bool   `json:"revealed"`
		Options  []struct {
			Name  string `json:"name"`
			Label string `json:"label"`
		} `json:"options"`
	} `json:"question"`
	Outcome *struct {
		Correct      bool   `json:"correct"`
		CorrectName  string `json:"correct_name"`
		CorrectLabel string `json:"correct_label"`
		Chosen       string `json:"chosen"`
		Feedback     string `json:"feedback"`
	} `json:"outcome"`
	AdvanceAfterMS int64 `json:"advance_after_ms"`
}

type harness struct {
	srv    *httptest.Server
	client *http.Client
	loader *catalog.Loader
}

func newHarness(t *testing.T, provider catalog.Provider, load bool) *harness {
	t.Helper()
	loader := catalog.NewLoader(provider, game.OptionCount, nil)
	if load {
		_ = loader.Load(context.Background())
	}
	now := func() time.Time { return time.Unix(1700000000, 0) }
	mgr := game.NewManager(game.ManagerConfig{
		Catalog: loader,
		// first question of every session: mr-mime, then bulbasaur/charmander/squirtle
		NewRand: func() game.Rand { return &scripted{vals: []int{3, 0, 1, 2}} },
		Now:     now,
	})
	h := api.NewRouter(api.RouterConfig{
		Game: api.GameDeps{
			Manager:     mgr,
			Catalog:     loader,
			ArtworkURL:  "https://img.test/%d.png",
			RevealDelay: time.Second,
			Now:         now,
		},
		Auth:        auth.NewAuthService("test-secret", time.Hour),
		CORSOrigins: []string{"http://localhost:3000"},
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{srv: srv, client: &http.Client{Jar: jar}, loader: loader}
}

func (h *harness) do(t *testing.T, method, path string, body any) (int, state) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rdr)
	require.NoError(t, err)
	res, err := h.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var st state
	if res.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&st))
	}
	return res.StatusCode, st
}

func staticProvider(entries []catalog.Entry) catalog.Provider {
	return catalog.ProviderFunc(func(context.Context) ([]catalog.Entry, error) { return entries, nil })
}

func TestState_Loading(t *testing.T) {
	h := newHarness(t, staticProvider(starters), false)

	code, st := h.do(t, http.MethodGet, "/api/state", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "loading", st.Status)

	res, err := h.client.Get(h.srv.URL + "/readyz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestState_LoadFailed(t *testing.T) {
	h := newHarness(t, catalog.ProviderFunc(func(context.Context) ([]catalog.Entry, error) {
		return nil, errors.New("connection refused")
	}), true)

	code, st := h.do(t, http.MethodGet, "/api/state", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "failed", st.Status)
	assert.NotEmpty(t, st.Error)
	assert.Nil(t, st.Question)
}

func TestGameFlow(t *testing.T) {
	h := newHarness(t, staticProvider(starters), true)

	res, err := h.client.Get(h.srv.URL + "/readyz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	code, st := h.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", st.Status)
	assert.Equal(t, "question_active", st.State)
	assert.Equal(t, 1, st.QuestionsAsked)
	require.NotNil(t, st.Question)
	assert.Equal(t, 1, st.Question.Number)
	assert.Equal(t, "https://img.test/122.png", st.Question.ImageURL)
	assert.False(t, st.Question.Revealed)
	assert.Nil(t, st.Outcome)
	require.Len(t, st.Question.Options, 4)
	labels := map[string]string{}
	for _, o := range st.Question.Options {
		labels[o.Name] = o.Label
	}
	assert.Equal(t, "Mr mime", labels["mr-mime"])

	q1 := st.Question.ID
	require.NotEmpty(t, q1)

	// wrong guess reveals the answer
	code, st = h.do(t, http.MethodPost, "/api/answer", map[string]any{"question_id": q1, "answer": "bulbasaur"})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, st.Outcome)
	assert.False(t, st.Outcome.Correct)
	assert.Equal(t, "mr-mime", st.Outcome.CorrectName)
	assert.Equal(t, "Wrong! It's Mr mime", st.Outcome.Feedback)
	assert.True(t, st.Question.Revealed)
	assert.Equal(t, int64(1000), st.AdvanceAfterMS)
	assert.Zero(t, st.Score)

	// double click
	code, st = h.do(t, http.MethodPost, "/api/answer", map[string]any{"question_id": q1, "answer": "mr-mime"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Zero(t, st.Score)

	code, st = h.do(t, http.MethodPost, "/api/next", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, st.Question.Number)
	assert.NotEqual(t, q1, st.Question.ID)
	assert.Nil(t, st.Outcome)

	code, _ = h.do(t, http.MethodPost, "/api/next", nil)
	assert.Equal(t, http.StatusConflict, code)

	// a late answer for question 1 does not touch question 2
	code, st = h.do(t, http.MethodPost, "/api/answer", map[string]any{"question_id": q1, "answer": "bulbasaur"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "question_active", st.State)

	code, st = h.do(t, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, st.Score)
	assert.Equal(t, 1, st.QuestionsAsked)
	assert.Equal(t, 1, st.Question.Number)
	fresh := st.Question.ID
	assert.NotEqual(t, q1, fresh)

	// the old game's question 1 is not the new game's question 1
	code, st = h.do(t, http.MethodPost, "/api/answer", map[string]any{"question_id": q1, "answer": st.Question.Options[0].Name})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "question_active", st.State)
	assert.Nil(t, st.Outcome)

	code, st = h.do(t, http.MethodPost, "/api/answer", map[string]any{"question_id": fresh, "answer": "bulbasaur"})
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, st.Outcome)
}

func TestAnswer_UnknownSessionIsStale(t *testing.T) {
	h := newHarness(t, staticProvider(starters), true)

	// no prior state call: the player has never been shown a question
	code, st := h.do(t, http.MethodPost, "/api/answer", map[string]any{"question_id": "0b8f5c2e-gone", "answer": "mr-mime"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "question_active", st.State)
	assert.Nil(t, st.Outcome)
	assert.Zero(t, st.Score)
}

func TestCorrectAnswerScores(t *testing.T) {
	h := newHarness(t, staticProvider(starters), true)

	code, st := h.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, code)

	code, st = h.do(t, http.MethodPost, "/api/answer", map[string]any{"question_id": st.Question.ID, "answer": "mr-mime"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, st.Outcome.Correct)
	assert.Equal(t, "Correct!", st.Outcome.Feedback)
	assert.Equal(t, 1, st.Score)
}

func TestAnswer_BadRequest(t *testing.T) {
	h := newHarness(t, staticProvider(starters), true)

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/api/answer", bytes.NewBufferString("{"))
	require.NoError(t, err)
	res, err := h.client.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	code, _ := h.do(t, http.MethodPost, "/api/answer", map[string]any{"question_id": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = h.do(t, http.MethodPost, "/api/answer", map[string]any{"question": 1, "answer": "mr-mime"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAssets(t *testing.T) {
	h := newHarness(t, staticProvider(starters), true)
	for _, path := range []string{"/", "/static/app.js", "/static/style.css"} {
		res, err := h.client.Get(h.srv.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(res.Body)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode, path)
		assert.NotEmpty(t, body, path)
	}
}

func TestFeedback(t *testing.T) {
	assert.Equal(t, "Correct!", api.Feedback(game.Outcome{Correct: true, CorrectName: "pikachu"}))
	assert.Equal(t, "Wrong! It's Pikachu", api.Feedback(game.Outcome{CorrectName: "pikachu"}))
}
