package handlers

import (
	"errors"
	"strings"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth   *services.AuthService
	Secure bool // mark the session cookie Secure (behind TLS)
}

// safeNext keeps post-login redirects on this site.
func safeNext(s string) string {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.Contains(s, `\`) {
		return "/"
	}
	return s
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/")
	}
	return render(c, "login", fiber.Map{"Err": "", "Next": safeNext(c.Query("next"))})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ident := c.FormValue("username")
	pass := c.FormValue("password")
	next := safeNext(c.FormValue("next"))
	fail := func(reason string) error {
		log.Security(c, "auth.login.fail", map[string]any{"login": ident, "reason": reason})
		return renderStatus(c, fiber.StatusUnauthorized, "login", fiber.Map{"Err": "Invalid username or password", "Next": next})
	}
	if _, ok := validate.Login(ident); !ok {
		return fail("bad_format")
	}
	if !validate.Password(pass) {
		return fail("bad_password_format")
	}

	// Fresh session id on every login.
	sid := newSID(c, h.Secure)
	u, err := h.Auth.Login(sid, ident, pass)
	if err != nil {
		expireSID(c, h.Secure)
		if errors.Is(err, services.ErrBadCreds) {
			return fail("bad_credentials")
		}
		return err
	}
	if old := c.Cookies(sidCookie); old != "" {
		_ = h.Auth.Logout(old)
	}
	c.Locals("user", u)

	log.Audit(c, "auth.login.success", map[string]any{"login": ident})
	return c.Redirect(next)
}

// Logout ends the session only; saved addresses stay with the account.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies(sidCookie); sid != "" {
		_ = h.Auth.Logout(sid)
	}
	expireSID(c, h.Secure)
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "registration", fiber.Map{"Form": validate.RegistrationForm{}})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var form validate.RegistrationForm
	if err := c.BodyParser(&form); err != nil {
		return renderStatus(c, fiber.StatusBadRequest, "registration", fiber.Map{"Form": form, "Errors": map[string]string{"_": "Could not read the form."}})
	}
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	if err := validate.Struct(form); err != nil {
		log.Security(c, "validation.fail", map[string]any{"form": "registration"})
		return renderStatus(c, fiber.StatusBadRequest, "registration", fiber.Map{"Form": form, "Errors": validate.FieldErrors(err)})
	}
	u, err := h.Auth.Register(form.Username, form.Email, form.Password1)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateAccount) {
			return renderStatus(c, fiber.StatusBadRequest, "registration", fiber.Map{
				"Form":   form,
				"Errors": map[string]string{"Username": "That username or email is already registered."},
			})
		}
		return err
	}
	log.Audit(c, "auth.register", map[string]any{"user": u.ID})
	return redirectWith(c, "/login", levelSuccess, "Congratulations! Registered successfully. Please log in.")
}

func (h *AuthHandler) ForgotForm(c *fiber.Ctx) error {
	return render(c, "forgot_password", fiber.Map{})
}

// Forgot replaces the account's password with a random one and shows it.
func (h *AuthHandler) Forgot(c *fiber.Ctx) error {
	ident, ok := validate.Login(c.FormValue("username"))
	if !ok {
		return renderStatus(c, fiber.StatusBadRequest, "forgot_password", fiber.Map{"Err": "Enter your username or email."})
	}
	u, pw, err := h.Auth.ResetPassword(ident)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Security(c, "auth.reset.unknown", map[string]any{"login": ident})
			return renderStatus(c, fiber.StatusNotFound, "forgot_password", fiber.Map{"Err": "No account matches that username or email."})
		}
		return err
	}
	log.Audit(c, "auth.reset", map[string]any{"user": u.ID})
	return render(c, "forgot_password", fiber.Map{"Username": u.Username, "NewPassword": pw})
}

func (h *AuthHandler) ChangePasswordForm(c *fiber.Ctx) error {
	return render(c, "changepassword", fiber.Map{})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	u := currentUser(c)
	oldPw := c.FormValue("old_password")
	newPw := c.FormValue("new_password1")
	if !validate.Password(newPw) {
		return renderStatus(c, fiber.StatusBadRequest, "changepassword", fiber.Map{"Err": "8-20 characters with upper, lower, digit and symbol."})
	}
	if newPw != c.FormValue("new_password2") {
		return renderStatus(c, fiber.StatusBadRequest, "changepassword", fiber.Map{"Err": "The two password fields didn't match."})
	}
	if err := h.Auth.ChangePassword(u.ID, oldPw, newPw); err != nil {
		if errors.Is(err, services.ErrBadCreds) {
			log.Security(c, "auth.password.change.fail", nil)
			return renderStatus(c, fiber.StatusBadRequest, "changepassword", fiber.Map{"Err": "Your old password was entered incorrectly."})
		}
		return err
	}
	log.Audit(c, "auth.password.change", nil)
	return redirectWith(c, "/changepassword", levelSuccess, "Your password has been changed.")
}
