package handlers_test

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reTracking = regexp.MustCompile(`<code>([0-9a-f-]{36})</code>`)

var aliceAddress = url.Values{
	"name": {"Alice"}, "locality": {"Gulberg III"}, "city": {"Lahore"},
	"zipcode": {"54000"}, "state": {"Punjab"},
}

// placeBuyNow buys one unit of productID to a new address and returns the order id.
func placeBuyNow(t *testing.T, app *fiber.App, db *sqlx.DB, userID, productID int64) string {
	t.Helper()
	c := as(t, app, db, userID)
	form := url.Values{"prod_id": {strconv.FormatInt(productID, 10)}, "payment_method": {"EASYPAISA"}}
	for k, v := range aliceAddress {
		form[k] = v
	}
	resp := c.post("/buy", form)
	require.Equal(t, http.StatusOK, resp.StatusCode, readBody(t, resp))
	var id int64
	require.NoError(t, db.Get(&id, `SELECT MAX(id) FROM orders WHERE user_id = ?`, userID))
	return strconv.FormatInt(id, 10)
}

func TestBuyNowPlacesOneOrder(t *testing.T) {
	app, db := newApp(t)
	c := as(t, app, db, aliceID)

	resp := c.get("/buy?prod_id=6")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "HP 250 G9")

	form := url.Values{"prod_id": {"6"}, "quantity": {"2"}, "payment_method": {"SADAPAY"}}
	for k, v := range aliceAddress {
		form[k] = v
	}
	resp = c.post("/buy", form)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	m := reTracking.FindStringSubmatch(body)
	require.Len(t, m, 2, body)

	var row struct {
		Quantity int    `db:"quantity"`
		Status   string `db:"status"`
		Payment  string `db:"payment_method"`
	}
	require.NoError(t, db.Get(&row, `SELECT quantity, status, payment_method FROM orders WHERE tracking_id = ?`, m[1]))
	assert.Equal(t, 2, row.Quantity)
	assert.Equal(t, "Accepted", row.Status)
	assert.Equal(t, "SADAPAY", row.Payment)

	// the address was saved for reuse
	assert.Contains(t, readBody(t, c.get("/address")), "Gulberg III")
}

func TestBuyNowValidation(t *testing.T) {
	app, db := newApp(t)
	c := as(t, app, db, aliceID)

	resp := c.post("/buy", url.Values{"prod_id": {"6"}, "name": {"Alice"}, "locality": {"x"}, "city": {"Lahore"}, "zipcode": {"abc"}, "state": {"Texas"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Enter a whole number.")
	assert.Contains(t, body, "Select a valid state.")

	// neither a saved nor a new address
	resp = c.post("/buy", url.Values{"prod_id": {"6"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/buy?prod_id=6", resp.Header.Get("Location"))

	resp = c.get("/buy?prod_id=9999")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM orders`))
	assert.Zero(t, n)
}

func TestCheckoutFlow(t *testing.T) {
	app, db := newApp(t)
	c := as(t, app, db, aliceID)

	// empty cart bounces back to the cart page
	resp := c.get("/checkout")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/cart", resp.Header.Get("Location"))

	c.post("/cart", url.Values{"prod_id": {"8"}})
	c.post("/cart", url.Values{"prod_id": {"14"}})
	require.Equal(t, http.StatusFound, c.post("/address", aliceAddress).StatusCode)
	var cust int64
	require.NoError(t, db.Get(&cust, `SELECT id FROM customers WHERE user_id = ?`, aliceID))

	resp = c.get("/checkout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Outfitters Polo")
	assert.Contains(t, body, "6798.00") // 1799 + 4999, ships free

	// no address chosen
	resp = c.post("/checkout", url.Values{"payment_method": {"COD"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/checkout", resp.Header.Get("Location"))

	resp = c.post("/checkout", url.Values{"custid": {strconv.FormatInt(cust, 10)}, "payment_method": {"DEBIT"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ids := reTracking.FindAllStringSubmatch(readBody(t, resp), -1)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0][1], ids[1][1])

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM cart WHERE user_id = ?`, aliceID))
	assert.Zero(t, n)
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM orders WHERE user_id = ? AND status = 'Accepted' AND customer_id = ?`, aliceID, cust))
	assert.Equal(t, 2, n)
}

func TestCheckoutRefusesForeignAddress(t *testing.T) {
	app, db := newApp(t)
	bob := as(t, app, db, bobID)
	require.Equal(t, http.StatusFound, bob.post("/address", aliceAddress).StatusCode)
	var bobCust int64
	require.NoError(t, db.Get(&bobCust, `SELECT id FROM customers WHERE user_id = ?`, bobID))

	alice := as(t, app, db, aliceID)
	alice.post("/cart", url.Values{"prod_id": {"8"}})
	resp := alice.post("/checkout", url.Values{"custid": {strconv.FormatInt(bobCust, 10)}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/checkout", resp.Header.Get("Location"))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM orders`))
	assert.Zero(t, n)
}

func TestCancelAndReturnOwnOrder(t *testing.T) {
	app, db := newApp(t)
	o := placeBuyNow(t, app, db, aliceID, 4)
	c := as(t, app, db, aliceID)

	resp := c.post("/order/cancel/"+o, nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, flashOf(resp), "is now Cancelled")

	resp = c.post("/order/cancel/"+o, nil)
	assert.Contains(t, flashOf(resp), "already Cancelled")

	resp = c.post("/order/return/"+o, nil)
	assert.Contains(t, flashOf(resp), "is now Returned")

	body := readBody(t, c.get("/orders"))
	assert.Contains(t, body, "Returned")
	assert.NotContains(t, body, "/order/cancel/"+o)
}

func TestCancelOthersOrderIsRefusedAndLogged(t *testing.T) {
	app, db := newApp(t)
	o := placeBuyNow(t, app, db, aliceID, 4)
	bob := as(t, app, db, bobID)

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = bob.post("/order/cancel/"+o, nil)
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, flashOf(resp), "can't change that order")
	e, ok := findLog(entries, "order.cancel.denied")
	require.True(t, ok, "order.cancel.denied not logged")
	assert.Equal(t, "warn", e.Level)
	assert.Equal(t, bobID, e.UserID)

	var status string
	require.NoError(t, db.Get(&status, `SELECT status FROM orders WHERE id = ?`, o))
	assert.Equal(t, "Accepted", status)
}

func TestTrackOrderIsPublic(t *testing.T) {
	app, db := newApp(t)
	o := placeBuyNow(t, app, db, aliceID, 4)
	var tracking string
	require.NoError(t, db.Get(&tracking, `SELECT tracking_id FROM orders WHERE id = ?`, o))

	c := anon(t, app)
	resp := c.get("/trackorder?tracking_id=" + tracking)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Nokia 105")
	assert.Contains(t, body, "Accepted")

	resp = c.post("/trackorder", url.Values{"tracking_id": {"ffffffff-ffff-ffff-ffff-ffffffffffff"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "No orders found")

	resp = c.post("/trackorder", url.Values{"tracking_id": {"<script>"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "No orders found")
}
