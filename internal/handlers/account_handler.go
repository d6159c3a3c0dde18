package handlers

import (
	"tokodash/internal/services"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

// AccountHandler serves the signed-in shopper's dashboard.
type AccountHandler struct {
	accountService *services.AccountService
	store          *fibersession.Store
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *services.AccountService, store *fibersession.Store) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		store:          store,
	}
}

// RegisterRoutes registers the account routes with the Fiber app.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
	router.Post("/logout", h.HandleLogout)
	router.Get("/logout", h.HandleLogout)
}

// HandleDashboard renders the profile, wishlist and orders of the visitor,
// or redirects to the login page when there is no session.
func (h *AccountHandler) HandleDashboard(c *fiber.Ctx) error {
	cache, err := openSession(h.store, c)
	if err != nil {
		return err
	}

	view := h.accountService.Activate(c.UserContext(), cache)
	if view.RedirectTo != "" {
		if err := commit(cache); err != nil {
			return err
		}
		return redirect(c, view.RedirectTo)
	}

	if err := c.Render("dashboard", page(c, cache, "Dashboard", fiber.Map{
		"User":     view.User,
		"Orders":   view.Orders,
		"Wishlist": view.Wishlist,
		"Notices":  view.Notices,
		"Failed":   view.Failed,
	})); err != nil {
		return err
	}
	return commit(cache)
}

// HandleLogout destroys the session and returns to the login page.
func (h *AccountHandler) HandleLogout(c *fiber.Ctx) error {
	cache, err := openSession(h.store, c)
	if err != nil {
		return err
	}
	location := h.accountService.Logout(cache)
	if err := commit(cache); err != nil {
		return err
	}
	return redirect(c, location)
}
