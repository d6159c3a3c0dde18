package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"tokodash/internal/models"
	"tokodash/internal/session"
	logx "tokodash/pkg/logger"
	"tokodash/pkg/shopapi"
)

const (
	MsgLoginRequired   = "You must be logged in to access the dashboard"
	MsgDashboardFailed = "Something went wrong loading your dashboard."
	MsgOrdersFailed    = "Failed to load orders"
	MsgWishlistFailed  = "Failed to load wishlist"
)

// ShopClient is the part of the shop API the account page reads from.
type ShopClient interface {
	Orders(ctx context.Context, token string) ([]models.Order, error)
	Wishlist(ctx context.Context, token string) ([]models.WishlistEntry, error)
}

// Notice is a user-visible message rendered on the page.
type Notice struct {
	Type    string
	Message string
}

// AccountView is everything the account page renders.
type AccountView struct {
	User       *models.User
	Orders     []models.Order
	Wishlist   []models.WishlistEntry
	Notices    []Notice
	RedirectTo string
	// Failed is set when the cached session could not be read.
	Failed bool
}

// AccountService builds the signed-in user's dashboard.
type AccountService struct {
	shop     ShopClient
	loginURL string
	now      func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(shop ShopClient, loginURL string) *AccountService {
	return &AccountService{
		shop:     shop,
		loginURL: loginURL,
		now:      time.Now,
	}
}

// LoginURL is where visitors without a session are sent.
func (s *AccountService) LoginURL() string {
	return s.loginURL
}

// Activate reads the cached session and, if present, fetches the user's
// orders and wishlist concurrently. A missing or expired session yields a
// redirect and no data; a malformed one a generic failure notice.
func (s *AccountService) Activate(ctx context.Context, cache session.Cache) *AccountView {
	sess, err := session.Load(cache, s.now())
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrExpired):
		session.Destroy(cache)
		session.AddFlash(cache, "error", MsgLoginRequired)
		return &AccountView{RedirectTo: s.loginURL}
	case err != nil:
		logx.Error().Err(err).Msg("error parsing cached session")
		return &AccountView{
			Failed:  true,
			Notices: []Notice{{Type: "error", Message: MsgDashboardFailed}},
		}
	}

	view := &AccountView{
		User:     &sess.User,
		Orders:   []models.Order{},
		Wishlist: []models.WishlistEntry{},
	}

	var (
		wg             sync.WaitGroup
		ordersNotice   *Notice
		wishlistNotice *Notice
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		orders, err := s.shop.Orders(ctx, sess.Token)
		if err != nil {
			ordersNotice = failureNotice(err, MsgOrdersFailed)
			logx.Warn().Err(err).Int("user_id", sess.User.ID).Msg("failed to load orders")
			return
		}
		if orders != nil {
			view.Orders = orders
		}
	}()
	go func() {
		defer wg.Done()
		wishlist, err := s.shop.Wishlist(ctx, sess.Token)
		if err != nil {
			wishlistNotice = failureNotice(err, MsgWishlistFailed)
			logx.Warn().Err(err).Int("user_id", sess.User.ID).Msg("failed to load wishlist")
			return
		}
		if wishlist != nil {
			view.Wishlist = wishlist
		}
	}()
	wg.Wait()

	for _, n := range []*Notice{ordersNotice, wishlistNotice} {
		if n != nil {
			view.Notices = append(view.Notices, *n)
		}
	}
	return view
}

// failureNotice prefers the server-provided message over fallback.
func failureNotice(err error, fallback string) *Notice {
	msg := fallback
	var apiErr *shopapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return &Notice{Type: "error", Message: msg}
}

// Logout destroys the cached session and returns the login URL.
// Calling it without a session behaves the same.
func (s *AccountService) Logout(cache session.Cache) string {
	session.Destroy(cache)
	return s.loginURL
}
