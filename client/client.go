// Package client is a typed HTTP client for the vacation API. A Client is
// cheap and stateless apart from the Session the caller attaches to it after
// Login; there is no package-level token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUserHasVacations   = errors.New("user still has vacation requests")
	ErrCannotDeleteSelf   = errors.New("cannot delete own account")
	ErrOverlap            = errors.New("dates overlap an approved vacation")
	ErrNotPending         = errors.New("request already decided")
)

// APIError is a non-2xx response decoded from the server. It matches the
// package sentinels through errors.Is, so callers can branch without looking
// at status codes.
type APIError struct {
	StatusCode       int
	Code             string            `json:"error"`
	Details          map[string]string `json:"details,omitempty"`
	HasVacations     bool              `json:"hasVacations,omitempty"`
	CannotDeleteSelf bool              `json:"cannotDeleteSelf,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Code)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidCredentials:
		return e.Code == "invalid_credentials"
	case ErrUserHasVacations:
		return e.HasVacations || e.Code == "user_has_vacations"
	case ErrCannotDeleteSelf:
		return e.CannotDeleteSelf || e.Code == "cannot_delete_self"
	case ErrOverlap:
		return e.Code == "dates_overlap_approved_vacation"
	case ErrNotPending:
		return e.Code == "request_not_pending"
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Client talks to one API server. Authenticated calls require Session to be
// set; pass the Session returned by Login (or one restored from storage).
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    *Session
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithSession returns a copy of the client bound to the given session.
func (c *Client) WithSession(s *Session) *Client {
	out := *c
	out.Session = s
	return &out
}

// Login authenticates and returns the session. It does not mutate the client;
// attach the session with WithSession or by assigning Session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var sess Session
	err := c.do(ctx, http.MethodPost, "/auth/login",
		map[string]string{"email": email, "password": password}, &sess, false)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) GetUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users, true); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/users", in, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), in, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, true)
}

func (c *Client) GetVacations(ctx context.Context) ([]VacationRequest, error) {
	var out []VacationRequest
	if err := c.do(ctx, http.MethodGet, "/vacations", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateVacation(ctx context.Context, start, end Date) (*VacationRequest, error) {
	var vr VacationRequest
	body := map[string]Date{"startDate": start, "endDate": end}
	if err := c.do(ctx, http.MethodPost, "/vacations", body, &vr, true); err != nil {
		return nil, err
	}
	return &vr, nil
}

func (c *Client) ApproveVacation(ctx context.Context, id uint) (*VacationRequest, error) {
	return c.moderate(ctx, id, "approve")
}

func (c *Client) RejectVacation(ctx context.Context, id uint) (*VacationRequest, error) {
	return c.moderate(ctx, id, "reject")
}

func (c *Client) moderate(ctx context.Context, id uint, action string) (*VacationRequest, error) {
	var vr VacationRequest
	path := fmt.Sprintf("/vacations/%d/%s", id, action)
	if err := c.do(ctx, http.MethodPut, path, nil, &vr, true); err != nil {
		return nil, err
	}
	return &vr, nil
}

func (c *Client) DeleteVacation(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/vacations/%d", id), nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if c.Session == nil || c.Session.Token == "" {
			return ErrUnauthorized
		}
		req.Header.Set("Authorization", "Bearer "+c.Session.Token)
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if b, rerr := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); rerr == nil {
			_ = json.Unmarshal(b, apiErr)
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
