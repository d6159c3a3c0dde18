package handlers

import (
	"tokodash/internal/errx"
	"tokodash/internal/services"
	"tokodash/internal/session"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

// AuthHandler serves the shopper and moderator sign-in forms.
type AuthHandler struct {
	authService *services.AuthService
	store       *fibersession.Store
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, store *fibersession.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		store:       store,
	}
}

// RegisterRoutes registers the login routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/login", h.HandleLoginPage)
	router.Post("/login", h.HandleLogin)

	adminRoutes := router.Group("/admin")
	adminRoutes.Get("/login", h.HandleAdminLoginPage)
	adminRoutes.Post("/login", h.HandleAdminLogin)
	adminRoutes.Post("/logout", h.HandleAdminLogout)
}

func (h *AuthHandler) renderLogin(c *fiber.Ctx, cache session.Cache, admin bool, username, errMsg string) error {
	action, title := "/login", "Sign in"
	if admin {
		action, title = "/admin/login", "Admin sign in"
	}
	return c.Render("login", page(c, cache, title, fiber.Map{
		"Action":   action,
		"Admin":    admin,
		"Username": username,
		"Error":    errMsg,
	}))
}

// HandleLoginPage shows the shopper login form.
func (h *AuthHandler) HandleLoginPage(c *fiber.Ctx) error {
	cache, err := openSession(h.store, c)
	if err != nil {
		return err
	}
	if err := h.renderLogin(c, cache, false, "", ""); err != nil {
		return err
	}
	return commit(cache)
}

// HandleLogin signs the shopper in and redirects to the dashboard.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	cache, err := openSession(h.store, c)
	if err != nil {
		return err
	}

	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.BadRequest(err, "Invalid form submission.")
	}

	if err := h.authService.Login(c.UserContext(), cache, req); err != nil {
		status := errx.StatusOf(err)
		if status >= fiber.StatusInternalServerError && status != fiber.StatusBadGateway {
			return err
		}
		c.Status(status)
		return h.renderLogin(c, cache, false, req.Username, errx.MessageOf(err))
	}

	if err := commit(cache); err != nil {
		return err
	}
	return redirect(c, "/dashboard")
}

// HandleAdminLoginPage shows the moderator login form.
func (h *AuthHandler) HandleAdminLoginPage(c *fiber.Ctx) error {
	cache, err := openSession(h.store, c)
	if err != nil {
		return err
	}
	if _, ok := session.Admin(cache); ok {
		return redirect(c, "/admin")
	}
	if err := h.renderLogin(c, cache, true, "", ""); err != nil {
		return err
	}
	return commit(cache)
}

// HandleAdminLogin signs the moderator in.
func (h *AuthHandler) HandleAdminLogin(c *fiber.Ctx) error {
	cache, err := openSession(h.store, c)
	if err != nil {
		return err
	}

	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.BadRequest(err, "Invalid form submission.")
	}

	if err := h.authService.AdminLogin(cache, req); err != nil {
		c.Status(errx.StatusOf(err))
		return h.renderLogin(c, cache, true, req.Username, errx.MessageOf(err))
	}

	if err := commit(cache); err != nil {
		return err
	}
	return redirect(c, "/admin")
}

// HandleAdminLogout signs the moderator out.
func (h *AuthHandler) HandleAdminLogout(c *fiber.Ctx) error {
	cache, err := openSession(h.store, c)
	if err != nil {
		return err
	}
	h.authService.AdminLogout(cache)
	session.AddFlash(cache, "success", "You have been logged out.")
	if err := commit(cache); err != nil {
		return err
	}
	return redirect(c, "/admin/login")
}
