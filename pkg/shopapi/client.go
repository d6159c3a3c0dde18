package shopapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tokodash/internal/models"

	"github.com/gofiber/fiber/v2"
)

// APIError is returned when the backend answers with success:false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shop api returned status %d", e.Status)
	}
	return fmt.Sprintf("shop api returned status %d: %s", e.Status, e.Message)
}

// Config holds the backend location and request timeout.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the shop REST API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fiber.Client
}

type ordersResponse struct {
	Success bool           `json:"success"`
	Orders  []models.Order `json:"orders"`
	Message string         `json:"message"`
}

type wishlistResponse struct {
	Success  bool                   `json:"success"`
	Wishlist []models.WishlistEntry `json:"wishlist"`
	Message  string                 `json:"message"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the token and profile issued by the backend.
type LoginResult struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
	Message string      `json:"message"`
}

// NewClient creates a client for the API rooted at cfg.BaseURL.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		http: &fiber.Client{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
}

// Orders fetches the orders of the user owning token.
func (c *Client) Orders(ctx context.Context, token string) ([]models.Order, error) {
	var resp ordersResponse
	status, err := c.getJSON(ctx, "/api/shop/orders", token, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Status: status, Message: resp.Message}
	}
	return resp.Orders, nil
}

// Wishlist fetches the wishlist of the user owning token.
func (c *Client) Wishlist(ctx context.Context, token string) ([]models.WishlistEntry, error) {
	var resp wishlistResponse
	status, err := c.getJSON(ctx, "/api/shop/wishlist", token, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch wishlist: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Status: status, Message: resp.Message}
	}
	return resp.Wishlist, nil
}

// Login exchanges credentials for a bearer token and user record.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	timeout, err := c.deadline(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	var resp LoginResult
	agent := c.http.Post(c.baseURL+"/api/auth/login").
		JSON(loginRequest{Username: username, Password: password}).
		Timeout(timeout)
	status, _, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return nil, fmt.Errorf("login: %w", errors.Join(errs...))
	}
	if !resp.Success || resp.Token == "" {
		return nil, &APIError{Status: status, Message: resp.Message}
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, out interface{}) (int, error) {
	timeout, err := c.deadline(ctx)
	if err != nil {
		return 0, err
	}

	agent := c.http.Get(c.baseURL+path).
		Set(fiber.HeaderAuthorization, "Bearer "+token).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON).
		Timeout(timeout)
	status, body, errs := agent.Struct(out)
	if len(errs) > 0 {
		if status >= http.StatusBadRequest && len(body) == 0 {
			return status, &APIError{Status: status}
		}
		return status, errors.Join(errs...)
	}
	return status, nil
}

// deadline bounds the client timeout by the context deadline.
func (c *Client) deadline(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}
	return timeout, nil
}
