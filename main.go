package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/theocluzel/esclavedigital/internal/appstore"
	"github.com/theocluzel/esclavedigital/internal/config"
	"github.com/theocluzel/esclavedigital/internal/database"
	"github.com/theocluzel/esclavedigital/internal/payment"
	"github.com/theocluzel/esclavedigital/internal/router"
	"github.com/theocluzel/esclavedigital/internal/store"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations and load the book
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	if err := database.SeedChapters(db); err != nil {
		log.Fatalf("seed chapters: %v", err)
	}

	stores := store.NewGormStores(db)
	stripeClient := payment.NewStripeClient(cfg.Stripe)
	receipts := appstore.NewHTTPValidator(cfg.AppStore)

	r := router.SetupRouter(cfg, stores, stripeClient, stripeClient, receipts)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
