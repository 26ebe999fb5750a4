package server

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
)

const csrfHeader = "X-CSRF-Token"

// Engine loads the page templates with the helpers they use.
func Engine(dir string, reload bool) *html.Engine {
	engine := html.New(dir, ".html")
	engine.Reload(reload)
	engine.AddFunc("money", func(v float64) string { return fmt.Sprintf("%.2f", v) })
	engine.AddFunc("add", func(a, b int) int { return a + b })
	return engine
}

// ErrorHandler logs the failure and shows a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		msg = "Page not found"
		if code != fiber.StatusNotFound {
			msg = "That request could not be handled."
		}
	} else {
		applog.Error(c, "server.error", err, nil)
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// New builds the storefront app on an open database.
func New(cfg config.Config, db *sqlx.DB) *fiber.App {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 120
	}
	if cfg.LoginLimit <= 0 {
		cfg.LoginLimit = 5
	}

	app := fiber.New(fiber.Config{
		Views:        Engine(cfg.TemplatesDir, cfg.TemplateReload),
		ErrorHandler: ErrorHandler,
		// Global body size guard
		BodyLimit: 1 << 20,
	})

	deps := handlers.NewDeps(db, cfg)

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: applog.Writer()}))
	app.Use(helmet.New())
	app.Use(handlers.LoadUser(deps.Auth))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please slow down.")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.CookieSecure,
		ContextKey:     "csrf",
		// Scripts send the header; plain forms send the hidden field.
		Extractor: func(c *fiber.Ctx) (string, error) {
			if tok := c.Get(csrfHeader); tok != "" {
				return tok, nil
			}
			return csrf.CsrfFromForm("csrf")(c)
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
			if strings.HasPrefix(c.Path(), "/api/") {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "security check failed"})
			}
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	app.Static("/static", cfg.StaticDir)
	app.Get("/media/*", mediaHandler(mediaDir))

	// ---------- Ops ----------
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// ---------- Catalog (public) ----------
	app.Get("/", deps.CatalogHandler.Home)
	app.Get("/search", deps.CatalogHandler.Search)
	for _, cat := range domain.Categories {
		app.Get("/"+cat.Slug()+"/:data?", deps.CatalogHandler.List(cat))
	}
	app.Get("/product-detail/:id", deps.ProductHandler.Detail)
	app.Get("/trackorder", deps.OrderHandler.Track)
	app.Post("/trackorder", strictLimit(cfg.RateLimit/4+1, "track", "trackorder"), deps.OrderHandler.Track)

	// ---------- Accounts ----------
	authH := deps.AuthHandler
	app.Get("/login", authH.LoginForm)
	app.Post("/login", strictLimit(cfg.LoginLimit, "login", "login"), authH.Login)
	app.Get("/logout", authH.Logout)
	app.Post("/logout", authH.Logout)
	app.Get("/registration", authH.RegisterForm)
	app.Post("/registration", strictLimit(cfg.LoginLimit, "registration", "registration"), authH.Register)
	app.Get("/forgot-password", authH.ForgotForm)
	app.Post("/forgot-password", strictLimit(cfg.LoginLimit, "forgot", "forgot_password"), authH.Forgot)

	// ---------- Logged-in pages ----------
	user := handlers.RequireUser()
	app.Get("/changepassword", user, authH.ChangePasswordForm)
	app.Post("/changepassword", user, authH.ChangePassword)

	app.Get("/cart", user, deps.CartHandler.View)
	app.Post("/cart", user, deps.CartHandler.Add)
	app.Post("/cart/remove/:id", user, deps.CartHandler.Remove)
	app.Post("/cart/update/:id/:action", user, deps.CartHandler.Update)
	app.Post("/api/cart/update", handlers.RequireUserJSON(), deps.CartHandler.APIUpdate)

	orderH := deps.OrderHandler
	app.Get("/buy", user, orderH.BuyForm)
	app.Post("/buy", user, orderH.BuyNow)
	app.Get("/checkout", user, orderH.CheckoutForm)
	app.Post("/checkout", user, orderH.Checkout)
	app.Get("/orders", user, orderH.List)
	app.Post("/order/cancel/:id", user, orderH.Cancel)
	app.Post("/order/return/:id", user, orderH.Return)

	for _, p := range []string{"/address", "/profile"} {
		app.Get(p, user, deps.AddressHandler.Page)
		app.Post(p, user, deps.AddressHandler.Create)
	}

	// ---------- Admin ----------
	admin := app.Group("/admin", handlers.RequireAdmin())
	admin.Get("/", deps.AdminHandler.OrdersPage)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/orders/export", deps.AdminHandler.ExportOrders)
	admin.Post("/profiles/clear", deps.AdminHandler.ClearProfiles)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	return app
}

// strictLimit guards a sensitive form post; hits are counted per IP over ten minutes.
func strictLimit(n int, name, tmpl string) fiber.Handler {
	const msg = "Too many attempts. Please try again later."
	return limiter.New(limiter.Config{
		Max:        n,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate."+name+".hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render(tmpl, fiber.Map{
				"Err":   msg,
				"Flash": handlers.Flash{Level: "error", Message: msg},
			})
		},
	})
}

// mediaHandler serves product images from dir and refuses traversal.
func mediaHandler(dir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		// Block encoded traversal attempts as well as raw .. or null bytes
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(dir, clean), true)
	}
}
