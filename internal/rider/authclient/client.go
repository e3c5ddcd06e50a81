// Package authclient is the rider session's view of authentication: it
// signs riders in against the rider API and publishes who is signed in.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ridecab/service-ride/internal/platform/logger"
	"github.com/ridecab/service-ride/internal/platform/requesting"
	"github.com/ridecab/service-ride/internal/platform/sched"
)

// GenericError is shown when the API gave no usable message.
const GenericError = "Something went wrong. Please try again."

// User is the signed-in rider.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Result is the outcome of a login or registration.
type Result struct {
	Success bool
	Error   string
}

// State is the published session identity.
type State struct {
	User    *User
	Token   string
	Loading bool
}

// SignedIn reports whether a rider is signed in.
func (s State) SignedIn() bool {
	return s.User != nil
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the auth endpoints of the rider API.
type Client struct {
	http *http.Client
	base string
	log  *zap.Logger

	mu      sync.Mutex
	state   State
	changes sched.Emitter[State]
}

// New creates a signed-out client for the API at baseURL.
func New(client *http.Client, baseURL string, log *zap.Logger) *Client {
	return &Client{
		http: client,
		base: strings.TrimRight(baseURL, "/"),
		log:  logger.OrNop(log).Named("auth"),
	}
}

// State returns the current identity.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every identity change.
func (c *Client) Subscribe(fn func(State)) (cancel func()) {
	return c.changes.Subscribe(fn)
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) Result {
	return c.authenticate(ctx, "/api/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and signs in with it.
func (c *Client) Register(ctx context.Context, email, password, name string) Result {
	return c.authenticate(ctx, "/api/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) Result {
	c.setLoading(true)

	var out authResponse
	err := c.do(ctx, http.MethodPost, path, "", body, &out)
	if err != nil {
		c.setLoading(false)
		c.log.Info("authentication failed", zap.String("path", path), zap.Error(err))
		return Result{Error: userMessage(err)}
	}

	user := out.User
	c.set(State{User: &user, Token: out.Token})
	return Result{Success: true}
}

// Restore resumes a session from a stored token.
func (c *Client) Restore(ctx context.Context, token string) error {
	c.setLoading(true)

	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/verify", token, nil, &out); err != nil {
		c.set(State{})
		return fmt.Errorf("failed to verify token: %w", err)
	}

	user := out.User
	c.set(State{User: &user, Token: token})
	return nil
}

// Logout forgets the signed-in rider.
func (c *Client) Logout() {
	c.set(State{})
}

func (c *Client) setLoading(loading bool) {
	c.mu.Lock()
	st := c.state
	st.Loading = loading
	c.state = st
	c.changes.Queue(st)
	c.mu.Unlock()

	c.changes.Flush()
}

func (c *Client) set(st State) {
	c.mu.Lock()
	c.state = st
	c.changes.Queue(st)
	c.mu.Unlock()

	c.changes.Flush()
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	body := bytes.NewReader(nil)
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := requesting.CheckResponse(c.http.Do(req))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// userMessage extracts the API's error message, falling back to a generic
// text for transport failures.
func userMessage(err error) string {
	var se *requesting.StatusError
	if !errors.As(err, &se) {
		return GenericError
	}
	var body errorResponse
	if json.Unmarshal([]byte(se.Message), &body) == nil && body.Error != "" {
		return body.Error
	}
	return GenericError
}
