// Package client is a typed HTTP client for the NextUp API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (%d %s)", e.Message, e.StatusCode, e.Code)
}

// User is the account as returned by the API.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// Team is a team as returned by the API.
type Team struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Topic         string   `json:"topic"`
	Members       []string `json:"members"`
	Notes         *string  `json:"notes"`
	CreatedAt     string   `json:"createdAt"`
	Presentations []Record `json:"presentations,omitempty"`
}

// Record is a presentation record as returned by the API.
type Record struct {
	ID                  string `json:"id"`
	TeamID              string `json:"teamId"`
	PresentationSeconds int    `json:"presentationSeconds"`
	QASeconds           int    `json:"qaSeconds"`
	PresentedAt         string `json:"presentedAt"`
}

// Status is the round status.
type Status struct {
	RemainingCount int   `json:"remainingCount"`
	LastSelected   *Team `json:"lastSelected"`
}

// Draw is the result of a randomize call.
type Draw struct {
	Team           Team `json:"team"`
	RemainingCount int  `json:"remainingCount"`
}

// Client calls the API with an optional bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for baseURL, e.g. "http://localhost:5001".
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns the bearer token in use.
func (c *Client) Token() string {
	return c.token
}

type authData struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password)
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*User, error) {
	var data authData
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, path, body, &data); err != nil {
		return nil, err
	}
	c.token = data.Token
	return &data.User, nil
}

// Me returns the current account.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Teams lists the roster.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var data struct {
		Teams []Team `json:"teams"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/teams", nil, &data); err != nil {
		return nil, err
	}
	return data.Teams, nil
}

// CreateTeam adds a team to the roster.
func (c *Client) CreateTeam(ctx context.Context, name, topic string, members []string) (*Team, error) {
	var data struct {
		Team Team `json:"team"`
	}
	body := map[string]any{"name": name, "topic": topic, "members": members}
	if err := c.do(ctx, http.MethodPost, "/api/teams", body, &data); err != nil {
		return nil, err
	}
	return &data.Team, nil
}

// Status returns the round status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Randomize draws the next team.
func (c *Client) Randomize(ctx context.Context) (*Draw, error) {
	var d Draw
	if err := c.do(ctx, http.MethodPost, "/api/randomize", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ResetRound restarts the round and returns the remaining count.
func (c *Client) ResetRound(ctx context.Context) (int, error) {
	var data struct {
		RemainingCount int `json:"remainingCount"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/reset", nil, &data); err != nil {
		return 0, err
	}
	return data.RemainingCount, nil
}

// SaveNotes replaces the notes of a team.
func (c *Client) SaveNotes(ctx context.Context, teamID, notes string) (*Team, error) {
	var data struct {
		Team Team `json:"team"`
	}
	path := "/api/teams/" + url.PathEscape(teamID) + "/notes"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"notes": notes}, &data); err != nil {
		return nil, err
	}
	return &data.Team, nil
}

// Record submits one duration pair. It satisfies timer.Recorder.
func (c *Client) Record(ctx context.Context, teamID uuid.UUID, presentationSeconds, qaSeconds int) error {
	body := map[string]int{
		"presentationSeconds": presentationSeconds,
		"qaSeconds":           qaSeconds,
	}
	return c.do(ctx, http.MethodPost, "/api/teams/"+teamID.String()+"/presentation", body, nil)
}

// Export downloads the account export in the given format ("csv" or "json").
func (c *Client) Export(ctx context.Context, format string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/export?format="+url.QueryEscape(format), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting export: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, body)
	}
	return body, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
