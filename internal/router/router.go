package router

import (
	"net/http"
	"time"

	"github.com/theocluzel/esclavedigital/internal/access"
	"github.com/theocluzel/esclavedigital/internal/appstore"
	"github.com/theocluzel/esclavedigital/internal/config"
	"github.com/theocluzel/esclavedigital/internal/handler"
	"github.com/theocluzel/esclavedigital/internal/middleware"
	"github.com/theocluzel/esclavedigital/internal/payment"
	"github.com/theocluzel/esclavedigital/internal/session"
	"github.com/theocluzel/esclavedigital/internal/store"
	"github.com/theocluzel/esclavedigital/internal/util"

	"github.com/gin-gonic/gin"
)

// staticPages maps routes to the fixed documents of the storefront.
var staticPages = map[string]string{
	"/":                               "index.html",
	"/login.html":                     "login.html",
	"/payment.html":                   "payment.html",
	"/success.html":                   "success.html",
	"/information.html":               "information.html",
	"/mentions-legales.html":          "mentions-legales.html",
	"/politique-confidentialite.html": "politique-confidentialite.html",
	"/cgv.html":                       "cgv.html",
	"/config.html":                    "config.html",
	"/reader.html":                    "reader.html",
}

// SetupRouter configures the Gin engine, static pages and the API surface.
// The payment creator, external verifier and receipt validator are passed in
// so tests can stub the processor boundaries.
func SetupRouter(cfg *config.Config, stores *store.Stores, creator handler.CheckoutCreator, external payment.Verifier, receipts appstore.Validator) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// fixed marketing/legal documents
	for route, file := range staticPages {
		r.StaticFile(route, "./web/public/"+file)
	}
	r.Static("/assets", "./web/public/assets")

	r.GET("/test", func(c *gin.Context) {
		util.Success(c, util.Response{"message": "Le serveur fonctionne correctement !"})
	})

	// core wiring
	sessions := session.NewManager(stores.Sessions, time.Duration(cfg.Session.TTLHours)*time.Hour)
	verifier := &payment.FallbackVerifier{
		Local:    &payment.LocalVerifier{Checkouts: stores.Checkouts},
		External: external,
	}
	svc := access.NewService(stores.Accounts, stores.Events, verifier,
		cfg.Security.BcryptCost, cfg.Access.GrantOnCreate)

	authHandler := handler.NewAuthHandler(svc, sessions, stores.Accounts, cfg.Session)
	paymentHandler := handler.NewPaymentHandler(creator, verifier, stores.Checkouts, svc, cfg.Security.EncryptionKey)
	iosHandler := handler.NewIOSHandler(receipts, svc, cfg.Security.JWTSecret)

	// checkout boundary
	r.POST("/create-checkout-session", paymentHandler.CreateCheckoutSession)
	r.GET("/verify-payment/:sessionId", paymentHandler.VerifyPayment)
	if cfg.Stripe.EnableTestRoutes {
		r.GET("/test-payment", paymentHandler.TestPayment)
	}

	// ====== API ======
	api := r.Group("/api")

	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/check-auth", authHandler.CheckAuth)
	api.POST("/create-account", authHandler.CreateAccount)
	api.POST("/ios/purchase", iosHandler.Purchase)

	// session-gated routes
	protected := api.Group("")
	protected.Use(
		middleware.RequireSession(cfg.Session.CookieName, sessions, stores.Accounts),
		middleware.Audit(stores.Audit),
	)

	chapterHandler := handler.NewChapterHandler(stores.Chapters)
	protected.GET("/chapters/:id", chapterHandler.GetChapter)

	grantHandler := handler.NewGrantHandler(svc)
	protected.POST("/grant-access", grantHandler.GrantAccess)

	exportHandler := handler.NewExportHandler(stores.Accounts)
	protected.GET("/admin/export/accounts.csv", exportHandler.ExportCSV)
	protected.GET("/admin/export/accounts.xlsx", exportHandler.ExportXLSX)

	r.NoRoute(func(c *gin.Context) {
		util.Error(c, http.StatusNotFound, "Page non trouvée")
	})

	return r
}
