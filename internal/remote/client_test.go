package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilohertztli/Mathenique/internal/quiz"
)

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	var tp TokenProvider
	if token != "" {
		tp = staticToken(token)
	}
	return NewClient(Config{BaseURL: srv.URL}, tp)
}

func TestLogin_SendsFormAndReturnsToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		w.Write([]byte(`{"access_token": "tok-abc", "token_type": "bearer"}`))
	}), "")

	tok, err := c.Login(context.Background(), "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)
}

func TestLogin_BadCredentials(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"incorrect email or password"}`, http.StatusUnauthorized)
	}), "")

	_, err := c.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, quiz.ErrAuthExpired)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/register", r.URL.Path)
		http.Error(w, `{"detail":"email already registered"}`, http.StatusConflict)
	}), "")

	err := c.Register(context.Background(), "Alice", "alice@example.com", "hunter2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestQuestions_QueryAndAuthHeader(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/questions", r.URL.Path)
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "challenge", q.Get("mode"))
		assert.Equal(t, "10", q.Get("count"))
		assert.Equal(t, "algebra", q.Get("subject"))
		assert.Empty(t, q.Get("is_lesson"))
		w.Write([]byte(`[{"id":101,"text":"2+2?","options":["3","4","5","6"],"correct_index":1,"subject":"algebra","difficulty":1}]`))
	}), "tok-abc")

	qs, err := c.Questions(context.Background(), QuestionParams{Mode: "challenge", Count: 10, Subject: "algebra"})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, 101, qs[0].ID)
	assert.Equal(t, "2+2?", qs[0].Text)
	assert.Equal(t, 1, qs[0].CorrectIndex)
}

func TestQuestions_LessonFlag(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "true", q.Get("is_lesson"))
		assert.Empty(t, q.Get("mode"))
		w.Write([]byte(`[]`))
	}), "tok-abc")

	_, err := c.Questions(context.Background(), QuestionParams{IsLesson: true, Count: 5})
	require.NoError(t, err)
}

func TestStats_RoundTrip(t *testing.T) {
	var putBody Stats
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"total_questions":40,"correct_answers":31,"games_played":7,"lessons_completed":3,"challenge_high_score":120,"challenge_best_streak":6,"apocalypse_high_score":200,"apocalypse_best_streak":9}`))
		case http.MethodPut:
			require.NoError(t, decodeJSON(r, &putBody))
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}), "tok-abc")

	got, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, got.TotalQuestions)
	assert.Equal(t, 120, got.ChallengeHighScore)
	assert.Equal(t, 9, got.ApocalypseBestStreak)

	got.GamesPlayed++
	require.NoError(t, c.PutStats(context.Background(), got))
	assert.Equal(t, 8, putBody.GamesPlayed)
	assert.Equal(t, 31, putBody.CorrectAnswers)
}

func TestLessonProgress_ExpiredToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"could not validate credentials"}`, http.StatusUnauthorized)
	}), "stale")

	_, err := c.LessonProgress(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, quiz.ErrAuthExpired)
}

func TestPostLessonProgress(t *testing.T) {
	var body struct {
		LessonID int `json:"lesson_id"`
		Stars    int `json:"stars"`
	}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/lessons/progress", r.URL.Path)
		require.NoError(t, decodeJSON(r, &body))
		w.WriteHeader(http.StatusCreated)
	}), "tok-abc")

	require.NoError(t, c.PostLessonProgress(context.Background(), 4, 3))
	assert.Equal(t, 4, body.LessonID)
	assert.Equal(t, 3, body.Stars)
}

func TestDo_ServerErrorIncludesBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	}), "")

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "database unavailable")
	assert.False(t, errors.Is(err, quiz.ErrAuthExpired))
}
