// Package remote speaks the Mathenique backend contract: JSON over HTTPS
// with bearer-token authentication.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kilohertztli/Mathenique/internal/quiz"
)

// ErrEmailTaken is returned by Register when the email is already in use.
var ErrEmailTaken = errors.New("email already registered")

// TokenProvider supplies the current bearer token, empty when logged out.
type TokenProvider interface {
	Token() string
}

// Config holds client construction options.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a thin wrapper over the backend's HTTP API.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenProvider
}

// NewClient builds a client for the given base URL. tokens may be nil for
// unauthenticated use.
func NewClient(cfg Config, tokens TokenProvider) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
	}
}

// Question is the wire question shape.
type Question struct {
	ID           int      `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Subject      string   `json:"subject"`
	Difficulty   int      `json:"difficulty"`
}

// Stats is the wire aggregate-statistics shape, shared by GET and PUT.
type Stats struct {
	TotalQuestions       int `json:"total_questions"`
	CorrectAnswers       int `json:"correct_answers"`
	GamesPlayed          int `json:"games_played"`
	LessonsCompleted     int `json:"lessons_completed"`
	ChallengeHighScore   int `json:"challenge_high_score"`
	ChallengeBestStreak  int `json:"challenge_best_streak"`
	ApocalypseHighScore  int `json:"apocalypse_high_score"`
	ApocalypseBestStreak int `json:"apocalypse_best_streak"`
}

// LessonProgress is the wire per-lesson completion record. completed
// arrives as 0/1 from the backend.
type LessonProgress struct {
	LessonID  int `json:"lesson_id"`
	Stars     int `json:"stars"`
	Completed int `json:"completed"`
}

// User is the authenticated account shape.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// QuestionParams narrows a /questions fetch.
type QuestionParams struct {
	Mode       string
	Count      int
	Subject    string
	Difficulty int
	IsLesson   bool
}

// Login exchanges form-encoded credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Register creates an account; a duplicate email maps to ErrEmailTaken.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body, err := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/register", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	err := c.get(ctx, "/me", nil, &u)
	return u, err
}

// Questions fetches a question batch.
func (c *Client) Questions(ctx context.Context, p QuestionParams) ([]Question, error) {
	q := url.Values{}
	if p.Mode != "" {
		q.Set("mode", p.Mode)
	}
	if p.Count > 0 {
		q.Set("count", strconv.Itoa(p.Count))
	}
	if p.Subject != "" {
		q.Set("subject", p.Subject)
	}
	if p.Difficulty > 0 {
		q.Set("difficulty", strconv.Itoa(p.Difficulty))
	}
	if p.IsLesson {
		q.Set("is_lesson", "true")
	}

	var out []Question
	if err := c.get(ctx, "/questions", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats fetches the aggregate statistics for the current user.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.get(ctx, "/stats", nil, &s)
	return s, err
}

// PutStats persists the full statistics snapshot.
func (c *Client) PutStats(ctx context.Context, s Stats) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+"/stats", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// LessonProgress fetches all per-lesson completion records.
func (c *Client) LessonProgress(ctx context.Context) ([]LessonProgress, error) {
	var out []LessonProgress
	if err := c.get(ctx, "/lessons/progress", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PostLessonProgress records a lesson completion. The backend applies the
// max-stars merge itself.
func (c *Client) PostLessonProgress(ctx context.Context, lessonID, stars int) error {
	body, err := json.Marshal(map[string]int{"lesson_id": lessonID, "stars": stars})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/lessons/progress", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// authed reports whether a bearer token is currently available.
func (c *Client) authed() bool {
	return c.tokens != nil && c.tokens.Token() != ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, quiz.ErrAuthExpired)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrEmailTaken)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
