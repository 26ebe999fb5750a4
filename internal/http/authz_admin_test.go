package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// /admin requires the ADMIN role.
func TestAdminGuardRequiresAdmin(t *testing.T) {
	app, db := newApp(t)

	resp := anon(t, app).get("/admin")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp = as(t, app, db, aliceID).get("/admin")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = as(t, app, db, adminID).get("/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminStatusUpdate(t *testing.T) {
	app, db := newApp(t)
	o := placeBuyNow(t, app, db, aliceID, 4)
	admin := as(t, app, db, adminID)

	resp := admin.post("/admin/orders/"+o+"/status", url.Values{"status": {"Delivered"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, flashOf(resp), "cannot move")

	resp = admin.post("/admin/orders/"+o+"/status", url.Values{"status": {"Packed"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, flashOf(resp), "is now Packed")

	var status string
	require.NoError(t, db.Get(&status, `SELECT status FROM orders WHERE id = ?`, o))
	assert.Equal(t, "Packed", status)

	// non-admins cannot drive fulfilment
	resp = as(t, app, db, aliceID).post("/admin/orders/"+o+"/status", url.Values{"status": {"On The Way"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminExportIsSpreadsheet(t *testing.T) {
	app, db := newApp(t)
	placeBuyNow(t, app, db, aliceID, 4)

	resp := as(t, app, db, adminID).get("/admin/orders/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	body := readBody(t, resp)
	assert.True(t, len(body) > 4 && body[:2] == "PK", "xlsx is a zip archive")
}

func TestAdminClearProfilesIsAudited(t *testing.T) {
	app, db := newApp(t)
	o := placeBuyNow(t, app, db, aliceID, 4)
	admin := as(t, app, db, adminID)

	entries := captureLogs(t, func() {
		resp := admin.post("/admin/profiles/clear", nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
	})
	e, ok := findLog(entries, "admin.profiles.clear")
	require.True(t, ok, "admin.profiles.clear not logged")
	assert.Equal(t, "audit", e.Level)
	assert.Equal(t, adminID, e.UserID)
	assert.EqualValues(t, 1, e.Fields["deleted"])

	// the order survives without its address
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM orders WHERE id = ? AND customer_id IS NULL`, o))
	assert.Equal(t, 1, n)
}
