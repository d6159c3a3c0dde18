package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tokodash/internal/errx"
	"tokodash/internal/session"
	logx "tokodash/pkg/logger"
	"tokodash/pkg/shopapi"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminDisabled      = errors.New("admin login is disabled")
)

// LoginClient exchanges credentials with the shop API.
type LoginClient interface {
	Login(ctx context.Context, username, password string) (*shopapi.LoginResult, error)
}

// LoginRequest represents the login form.
type LoginRequest struct {
	Username string `form:"username" validate:"required,max=100"`
	Password string `form:"password" validate:"required"`
}

// AuthService creates sessions for shoppers and moderators.
type AuthService struct {
	shop          LoginClient
	validate      *validator.Validate
	adminUsername string
	adminHash     []byte
}

// NewAuthService creates a new AuthService. An empty adminPasswordHash
// disables moderator login.
func NewAuthService(shop LoginClient, adminUsername, adminPasswordHash string) *AuthService {
	return &AuthService{
		shop:          shop,
		validate:      validator.New(),
		adminUsername: adminUsername,
		adminHash:     []byte(adminPasswordHash),
	}
}

func (s *AuthService) validateRequest(req LoginRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return errx.BadRequest(err, "Username and password are required.")
	}
	return nil
}

// Login authenticates against the shop API and caches the issued session.
func (s *AuthService) Login(ctx context.Context, cache session.Cache, req LoginRequest) error {
	if err := s.validateRequest(req); err != nil {
		return err
	}

	res, err := s.shop.Login(ctx, req.Username, req.Password)
	if err != nil {
		var apiErr *shopapi.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = "Invalid username or password"
			}
			return errx.New(fmt.Errorf("%w: %v", ErrInvalidCredentials, err), http.StatusUnauthorized, msg)
		}
		logx.Error().Err(err).Str("username", req.Username).Msg("login request failed")
		return errx.New(err, http.StatusBadGateway, "Login failed. Please try again.")
	}

	sess, err := session.New(res.Token, res.User)
	if err != nil {
		return errx.Internal(err)
	}
	if err := sess.Save(cache); err != nil {
		return errx.Internal(err)
	}
	logx.Info().Int("user_id", res.User.ID).Msg("user logged in")
	return nil
}

// AdminLogin checks the moderator credentials and flags the session.
func (s *AuthService) AdminLogin(cache session.Cache, req LoginRequest) error {
	if err := s.validateRequest(req); err != nil {
		return err
	}
	if len(s.adminHash) == 0 {
		return errx.New(ErrAdminDisabled, http.StatusForbidden, "Admin login is not configured.")
	}

	// bcrypt runs for unknown usernames too.
	hashErr := bcrypt.CompareHashAndPassword(s.adminHash, []byte(req.Password))
	if req.Username != s.adminUsername || hashErr != nil {
		logx.Warn().Str("username", req.Username).Msg("failed admin login")
		return errx.New(ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password")
	}

	session.SetAdmin(cache, req.Username)
	logx.Info().Str("username", req.Username).Msg("admin logged in")
	return nil
}

// AdminLogout clears the moderator flag.
func (s *AuthService) AdminLogout(cache session.Cache) {
	session.ClearAdmin(cache)
}
