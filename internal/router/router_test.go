package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/theocluzel/esclavedigital/internal/appstore"
	"github.com/theocluzel/esclavedigital/internal/config"
	"github.com/theocluzel/esclavedigital/internal/database"
	"github.com/theocluzel/esclavedigital/internal/models"
	"github.com/theocluzel/esclavedigital/internal/payment"
	"github.com/theocluzel/esclavedigital/internal/store"
	"github.com/theocluzel/esclavedigital/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	id      string
	err     error
	lastReq payment.CheckoutRequest
}

func (f *fakeCreator) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (string, error) {
	f.lastReq = req
	return f.id, f.err
}

type fakeExternal struct {
	status payment.Status
	err    error
	calls  int
}

func (f *fakeExternal) VerifySession(ctx context.Context, id string) (payment.Status, error) {
	f.calls++
	return f.status, f.err
}

type fakeReceipts struct {
	err error
}

func (f *fakeReceipts) ValidateReceipt(ctx context.Context, receipt string) error {
	return f.err
}

type testApp struct {
	r        *gin.Engine
	stores   *store.Stores
	creator  *fakeCreator
	external *fakeExternal
	receipts *fakeReceipts
}

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *testApp {
	t.Helper()

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		Session:  config.SessionConfig{CookieName: "ed_session", TTLHours: 24},
		Security: config.SecurityConfig{BcryptCost: 4, EncryptionKey: "test-key", JWTSecret: "test-secret"},
		Stripe:   config.StripeConfig{EnableTestRoutes: true},
	}
	for _, m := range mutate {
		m(cfg)
	}

	app := &testApp{
		stores:   store.NewMemoryStores(database.Chapters()),
		creator:  &fakeCreator{id: "cs_live_123"},
		external: &fakeExternal{},
		receipts: &fakeReceipts{},
	}
	app.r = SetupRouter(cfg, app.stores, app.creator, app.external, app.receipts)
	return app
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "ed_session" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func (a *testApp) signup(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/create-account", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/login", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return sessionCookie(t, w)
}

func TestCreateAccountAndLogin(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/create-account", gin.H{"email": "a@x.com", "password": "pw1pw1pw1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Compte créé avec succès", decode(t, w)["message"])

	w = app.do(t, http.MethodPost, "/api/login", gin.H{"email": "a@x.com", "password": "pw1pw1pw1"})
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)

	w = app.do(t, http.MethodGet, "/api/check-auth", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["authenticated"])
	assert.Equal(t, false, out["hasBookAccess"])
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "a@x.com", "pw1pw1pw1")

	w := app.do(t, http.MethodPost, "/api/login", gin.H{"email": "a@x.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email ou mot de passe incorrect", decode(t, w)["message"])

	// unknown email reads the same as a wrong password
	w = app.do(t, http.MethodPost, "/api/login", gin.H{"email": "nobody@x.com", "password": "pw1pw1pw1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Email ou mot de passe incorrect", decode(t, w)["message"])
}

func TestCreateAccount_Duplicate(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/create-account", gin.H{"email": "a@x.com", "password": "pw1pw1pw1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/create-account", gin.H{"email": "a@x.com", "password": "other-pass"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckAuth_NeverFails(t *testing.T) {
	app := newTestApp(t)

	// no session at all
	w := app.do(t, http.MethodGet, "/api/check-auth", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["authenticated"])
	assert.Equal(t, false, out["hasBookAccess"])

	// garbage token
	w = app.do(t, http.MethodGet, "/api/check-auth", nil, &http.Cookie{Name: "ed_session", Value: "garbage"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["authenticated"])
}

func TestGrantOnCreatePolicy(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.Access.GrantOnCreate = true
	})
	cookie := app.signup(t, "a@x.com", "pw1pw1pw1")

	w := app.do(t, http.MethodGet, "/api/check-auth", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["authenticated"])
	assert.Equal(t, true, out["hasBookAccess"])
}

func TestLogout_InvalidatesSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signup(t, "a@x.com", "pw1pw1pw1")

	w := app.do(t, http.MethodPost, "/api/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Déconnexion réussie", decode(t, w)["message"])

	// the old token is dead for every protected call
	w = app.do(t, http.MethodGet, "/api/chapters/1", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// logging out again is not an error
	w = app.do(t, http.MethodPost, "/api/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func (a *testApp) putPaidCheckout(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, a.stores.Checkouts.Put(&models.CheckoutRecord{
		SessionID:     id,
		PaymentStatus: models.PaymentStatusPaid,
		Simulated:     true,
	}))
}

func TestChapterGate(t *testing.T) {
	app := newTestApp(t)

	// no session
	w := app.do(t, http.MethodGet, "/api/chapters/1", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// session without book access
	cookie := app.signup(t, "a@x.com", "pw1pw1pw1")
	w = app.do(t, http.MethodGet, "/api/chapters/1", nil, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// grant after a paid checkout
	app.putPaidCheckout(t, "cs_test_ok")
	w = app.do(t, http.MethodPost, "/api/grant-access",
		gin.H{"email": "a@x.com", "session_id": "cs_test_ok"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/chapters/1", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	first := w.Body.String()
	assert.Contains(t, first, "Introduction")

	// content is immutable: byte-identical on every call
	w = app.do(t, http.MethodGet, "/api/chapters/1", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, w.Body.String())

	// unknown chapter is a 404 even with access
	w = app.do(t, http.MethodGet, "/api/chapters/99", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Chapitre non trouvé", decode(t, w)["message"])
}

func TestGrantAccess(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signup(t, "a@x.com", "pw1pw1pw1")

	// unpaid proof refuses the grant
	require.NoError(t, app.stores.Checkouts.Put(&models.CheckoutRecord{
		SessionID:     "cs_test_unpaid",
		PaymentStatus: models.PaymentStatusUnpaid,
		Simulated:     true,
	}))
	w := app.do(t, http.MethodPost, "/api/grant-access",
		gin.H{"email": "a@x.com", "session_id": "cs_test_unpaid"}, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// unknown account
	app.putPaidCheckout(t, "cs_test_paid")
	w = app.do(t, http.MethodPost, "/api/grant-access",
		gin.H{"email": "nobody@x.com", "session_id": "cs_test_paid"}, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// paid proof grants, twice in a row
	for i := 0; i < 2; i++ {
		w = app.do(t, http.MethodPost, "/api/grant-access",
			gin.H{"email": "a@x.com", "session_id": "cs_test_paid"}, cookie)
		require.Equal(t, http.StatusOK, w.Code, "grant call %d", i+1)
	}

	w = app.do(t, http.MethodGet, "/api/check-auth", nil, cookie)
	assert.Equal(t, true, decode(t, w)["hasBookAccess"])
}

func TestVerifyPayment_LocalFirst(t *testing.T) {
	app := newTestApp(t)
	app.putPaidCheckout(t, "cs_test_sim")

	w := app.do(t, http.MethodGet, "/verify-payment/cs_test_sim", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", decode(t, w)["status"])
	assert.Zero(t, app.external.calls, "simulated sessions must not reach the processor")
}

func TestVerifyPayment_UpstreamFailure(t *testing.T) {
	app := newTestApp(t)
	app.external.err = payment.ErrUpstream

	w := app.do(t, http.MethodGet, "/verify-payment/cs_live_unknown", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, app.external.calls)
	assert.Equal(t, "Erreur lors de la vérification du paiement", decode(t, w)["message"])
}

func TestVerifyPayment_ExternalStatus(t *testing.T) {
	app := newTestApp(t)
	app.external.status = payment.StatusPaid

	w := app.do(t, http.MethodGet, "/verify-payment/cs_live_42", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", decode(t, w)["status"])
}

func TestCreateCheckoutSession(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "a@x.com", "pw1pw1pw1")

	w := app.do(t, http.MethodPost, "/create-checkout-session", gin.H{
		"format":    "web",
		"email":     "A@x.com",
		"firstname": "Théo",
		"lastname":  "Cluzel",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cs_live_123", decode(t, w)["id"])

	assert.Contains(t, app.creator.lastReq.SuccessURL, "/success.html?format=web&session_id={CHECKOUT_SESSION_ID}")
	assert.Contains(t, app.creator.lastReq.CancelURL, "/payment.html?format=web")

	// the local mirror stores purchaser names encrypted
	rec, err := app.stores.Checkouts.Get("cs_live_123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, rec.PaymentStatus)
	assert.Equal(t, "a@x.com", rec.Email)
	assert.NotEqual(t, "Théo", rec.FirstNameEnc)
	assert.Equal(t, "Théo", util.DecryptField("test-key", rec.FirstNameEnc))

	// the waiting account moved to payment_pending
	a, err := app.stores.Accounts.GetByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.AccessPaymentPending, a.AccessState)
}

func TestTestPaymentRoute(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/test-payment", nil)
	require.Equal(t, http.StatusFound, w.Code)

	loc := w.Header().Get("Location")
	require.Contains(t, loc, "/success.html?format=web&session_id=cs_test_")

	id := loc[strings.Index(loc, "session_id=")+len("session_id="):]
	rec, err := app.stores.Checkouts.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, rec.PaymentStatus)
	assert.True(t, rec.Simulated)
}

func TestIOSPurchase(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/ios/purchase", gin.H{
		"email":          "ios@x.com",
		"transaction_id": "tx_1",
		"receipt":        "base64-receipt",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	require.NotEmpty(t, out["access_token"])

	claims, err := util.ParseAccessToken("test-secret", out["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "ios@x.com", claims.Email)

	a, err := app.stores.Accounts.GetByEmail("ios@x.com")
	require.NoError(t, err)
	assert.True(t, a.HasBookAccess())
	assert.Equal(t, "ios", a.Platform)
}

func TestIOSPurchase_InvalidReceipt(t *testing.T) {
	app := newTestApp(t)
	app.receipts.err = appstore.ErrInvalidReceipt

	w := app.do(t, http.MethodPost, "/api/ios/purchase", gin.H{
		"email":          "ios@x.com",
		"transaction_id": "tx_1",
		"receipt":        "garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, err := app.stores.Accounts.GetByEmail("ios@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExportAccounts(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signup(t, "a@x.com", "pw1pw1pw1")

	w := app.do(t, http.MethodGet, "/api/admin/export/accounts.csv", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@x.com")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	w = app.do(t, http.MethodGet, "/api/admin/export/accounts.xlsx", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	// exports are gated like everything else
	w = app.do(t, http.MethodGet, "/api/admin/export/accounts.csv", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLivenessRoute(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Le serveur fonctionne correctement !", decode(t, w)["message"])
}
