// stacks-testserver runs a self-contained instance for integration
// testing: temp SQLite database, generated signing secret, pre-registered
// accounts, and a machine-readable contract on stdout.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"git.sr.ht/~jakintosh/stacks/internal/api"
	"git.sr.ht/~jakintosh/stacks/internal/database"
	"git.sr.ht/~jakintosh/stacks/internal/service"
	"git.sr.ht/~jakintosh/stacks/internal/tokens"
)

// Config holds all command-line configuration
type Config struct {
	ListenAddr string
	Secret     string
	AccessTTL  time.Duration
	Users      []UserCredentials
	DataDir    string
	Keep       bool
}

// UserCredentials holds a seeded account's email and password
type UserCredentials struct {
	Email    string
	Password string
}

// OutputContract is the JSON structure emitted on stdout
type OutputContract struct {
	BaseURL   string       `json:"base_url"`
	DBPath    string       `json:"db_path"`
	JWTSecret string       `json:"jwt_secret"`
	Users     []OutputUser `json:"users"`
}

type OutputUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func main() {
	cfg := parseFlags()

	dataDir := cfg.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = os.MkdirTemp("", "stacks-testserver-*")
		if err != nil {
			log.Fatalf("failed to create data dir: %v\n", err)
		}
	}
	if !cfg.Keep {
		defer os.RemoveAll(dataDir)
	}

	secret := cfg.Secret
	if secret == "" {
		secret = randomSecret()
	}

	signer, err := tokens.NewSigner([]byte(secret), "test.stacks.local", cfg.AccessTTL)
	if err != nil {
		log.Fatalf("invalid signing configuration: %v\n", err)
	}

	dbPath := filepath.Join(dataDir, "stacks.db")
	db := database.NewSQLiteStore(dbPath, database.PasswordModeProduction)
	defer db.Close()

	svc := service.New(
		db.IdentityProvider(),
		db.RefreshTokenStore(),
		db.BookStore(),
		signer,
		service.DefaultRefreshTTL,
	)

	users := make([]OutputUser, 0, len(cfg.Users))
	for _, user := range cfg.Users {
		_, err := svc.Register(context.Background(), service.Registration{
			Email:    user.Email,
			Password: user.Password,
			Name:     user.Email,
			Mobile:   "555-0100",
		})
		if err != nil {
			log.Fatalf("failed to seed user '%s': %v\n", user.Email, err)
		}
		users = append(users, OutputUser{Email: user.Email, Password: user.Password})
	}

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v\n", cfg.ListenAddr, err)
	}

	contract := OutputContract{
		BaseURL:   fmt.Sprintf("http://%s", listener.Addr().String()),
		DBPath:    dbPath,
		JWTSecret: secret,
		Users:     users,
	}
	if err := json.NewEncoder(os.Stdout).Encode(&contract); err != nil {
		log.Fatalf("failed to emit contract: %v\n", err)
	}

	a := api.New(svc)
	server := &http.Server{Handler: a.Router()}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v\n", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func parseFlags() Config {
	cfg := Config{}
	var users string

	flag.StringVar(&cfg.ListenAddr, "listen", "127.0.0.1:0", "listen address")
	flag.StringVar(&cfg.Secret, "secret", "", "signing secret (generated if empty)")
	flag.DurationVar(&cfg.AccessTTL, "access-ttl", 30*time.Second, "access token lifetime")
	flag.StringVar(&users, "users", "", "comma-separated email:password pairs to seed")
	flag.StringVar(&cfg.DataDir, "data-dir", "", "data directory (temp dir if empty)")
	flag.BoolVar(&cfg.Keep, "keep", false, "keep the data directory on exit")
	flag.Parse()

	for _, pair := range strings.Split(users, ",") {
		if pair == "" {
			continue
		}
		email, password, found := strings.Cut(pair, ":")
		if !found {
			log.Fatalf("malformed user '%s': want email:password\n", pair)
		}
		cfg.Users = append(cfg.Users, UserCredentials{Email: email, Password: password})
	}

	return cfg
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("failed to generate signing secret: %v\n", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
