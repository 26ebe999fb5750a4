package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/services"
	"storefront/internal/validate"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	u, err := f.auth.Register("carol", "carol@storefront.test", "Secr3t!pw")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = f.auth.Register("CAROL", "other@storefront.test", "Secr3t!pw")
	assert.ErrorIs(t, err, services.ErrDuplicateAccount)
	_, err = f.auth.Register("dave", "Carol@Storefront.test", "Secr3t!pw")
	assert.ErrorIs(t, err, services.ErrDuplicateAccount)

	got, err := f.auth.Login("sid-1", "carol@storefront.test", "Secr3t!pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	cur, err := f.auth.CurrentUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, "carol", cur.Username)

	_, err = f.auth.Login("sid-2", "carol", "wrong!Pass1")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	require.NoError(t, f.auth.Logout("sid-1"))
	_, err = f.auth.CurrentUser("sid-1")
	assert.Error(t, err)
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)

	u, pw, err := f.auth.ResetPassword("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, validate.Password(pw), "generated password %q must pass the login check", pw)

	_, err = f.auth.Login("s", "alice", "Passw0rd!")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	_, err = f.auth.Login("s", "alice", pw)
	assert.NoError(t, err)

	_, _, err = f.auth.ResetPassword("nobody")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.auth.ChangePassword(alice, "nope", "N3w!pass"), services.ErrBadCreds)
	require.NoError(t, f.auth.ChangePassword(alice, "Passw0rd!", "N3w!pass"))
	_, err := f.auth.Login("s", "alice", "N3w!pass")
	assert.NoError(t, err)
}

func TestRandomPassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pw, err := services.RandomPassword()
		require.NoError(t, err)
		assert.Len(t, pw, 8)
		assert.True(t, validate.Password(pw), pw)
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 45)
}
