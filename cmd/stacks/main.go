package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"git.sr.ht/~jakintosh/stacks/internal/api"
	"git.sr.ht/~jakintosh/stacks/internal/database"
	"git.sr.ht/~jakintosh/stacks/internal/seed"
	"git.sr.ht/~jakintosh/stacks/internal/service"
	"git.sr.ht/~jakintosh/stacks/internal/tokens"
)

// the original backend shipped with a 30 second access window; the
// constant is overridable through ACCESS_TTL because the refresh flow
// only accepts tokens that have already expired
const defaultAccessTTL = 30 * time.Second

const issuerDomain = "stacks"

func main() {
	secret := readEnvVar("JWT_SECRET")
	port := fmt.Sprintf(":%s", readEnvVar("PORT"))
	accessTTL := readEnvDuration("ACCESS_TTL", defaultAccessTTL)
	refreshTTL := readEnvDuration("REFRESH_TTL", service.DefaultRefreshTTL)

	signer, err := tokens.NewSigner([]byte(secret), issuerDomain, accessTTL)
	if err != nil {
		log.Fatalf("invalid signing configuration: %v\n", err)
	}

	var (
		identity     service.IdentityProvider
		refreshStore service.RefreshTokenStore
		books        service.BookStore
	)
	if databaseURL, ok := os.LookupEnv("DATABASE_URL"); ok {
		pg, err := database.NewPostgresStore(
			context.Background(),
			databaseURL,
			database.PasswordModeProduction,
		)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v\n", err)
		}
		identity = pg.IdentityProvider()
		refreshStore = pg.RefreshTokenStore()
		books = pg.BookStore()
	} else {
		db := database.NewSQLiteStore(readEnvVar("DB_PATH"), database.PasswordModeProduction)
		identity = db.IdentityProvider()
		refreshStore = db.RefreshTokenStore()
		books = db.BookStore()
	}

	svc := service.New(identity, refreshStore, books, signer, refreshTTL)

	if seedDir, ok := os.LookupEnv("SEED_DIR"); ok {
		loader := seed.NewLoader(seedDir, books)
		if err := loader.Start(); err != nil {
			log.Fatalf("failed to start catalog seed loader: %v\n", err)
		}
	}

	a := api.New(svc)

	log.Printf("stacks listening on %s\n", port)
	log.Fatal(http.ListenAndServe(port, a.Router()))
}

func readEnvVar(name string) string {
	str, present := os.LookupEnv(name)
	if !present {
		log.Fatalf("missing required env var '%s'\n", name)
	}
	return str
}

func readEnvDuration(name string, fallback time.Duration) time.Duration {
	str, present := os.LookupEnv(name)
	if !present {
		return fallback
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		log.Fatalf("env var '%s' could not be parsed as duration (\"%v\")\n", name, str)
	}
	return d
}
