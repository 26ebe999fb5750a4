package services

import (
	"crypto/rand"
	"math/big"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/repos"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Register(username, email, password string) (*domain.User, error) {
	taken, err := s.Users.Exists(username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		metrics.AuthEvents.WithLabelValues("register", "duplicate").Inc()
		return nil, ErrDuplicateAccount
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	id, err := s.Users.Create(username, email, string(h))
	if err != nil {
		return nil, err
	}
	metrics.AuthEvents.WithLabelValues("register", "ok").Inc()
	return &domain.User{ID: id, Username: username, Email: email, Hash: string(h), Role: domain.RoleUser}, nil
}

// Login checks the credential for a username or email and binds the session.
func (s *AuthService) Login(sid, ident, password string) (*domain.User, error) {
	u, err := s.Users.ByLogin(ident)
	if err != nil {
		metrics.AuthEvents.WithLabelValues("login", "fail").Inc()
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		metrics.AuthEvents.WithLabelValues("login", "fail").Inc()
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	metrics.AuthEvents.WithLabelValues("login", "ok").Inc()
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// ResetPassword overwrites the credential of the account named by username
// or email with a fresh random password and returns it in clear text.
func (s *AuthService) ResetPassword(ident string) (*domain.User, string, error) {
	u, err := s.Users.ByLogin(ident)
	if err != nil {
		metrics.AuthEvents.WithLabelValues("reset", "unknown").Inc()
		if repos.IsNotFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	pw, err := RandomPassword()
	if err != nil {
		return nil, "", err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	if err := s.Users.SetPasswordHash(u.ID, string(h)); err != nil {
		return nil, "", err
	}
	metrics.AuthEvents.WithLabelValues("reset", "ok").Inc()
	return u, pw, nil
}

// ChangePassword replaces the credential after checking the current one.
func (s *AuthService) ChangePassword(userID int64, oldPassword, newPassword string) error {
	u, err := s.Users.ByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(oldPassword)) != nil {
		return ErrBadCreds
	}
	h, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Users.SetPasswordHash(userID, string(h))
}

const (
	pwLower  = "abcdefghijkmnopqrstuvwxyz"
	pwUpper  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	pwDigit  = "23456789"
	pwSymbol = "!@#$%*?"
	pwLength = 8
)

// RandomPassword returns an 8-character password with at least one lower,
// upper, digit and symbol so it passes the login format check.
func RandomPassword() (string, error) {
	classes := []string{pwLower, pwUpper, pwDigit, pwSymbol}
	all := pwLower + pwUpper + pwDigit + pwSymbol

	out := make([]byte, 0, pwLength)
	for _, set := range classes {
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < pwLength {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	// Fisher-Yates so the class order is not predictable.
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		k := j.Int64()
		out[i], out[k] = out[k], out[i]
	}
	return string(out), nil
}

func pick(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
