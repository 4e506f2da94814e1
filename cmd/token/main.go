package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/voidfusion/internal/authservice"
	"github.com/sushihentaime/voidfusion/internal/config"
)

var errNotAllowed = errors.New("email is not on the allow-list")

func main() {
	configPath := flag.String("config", ".env", "path to the configuration file")
	email := flag.String("email", "", "email to put in the token (defaults to the first allowed email)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	token, err := mintToken(cfg, *email, *ttl)
	if err != nil {
		logger.Error("failed to mint token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println(token)
}

// mintToken signs an admin token for email. Tokens for emails the server would reject are refused.
func mintToken(cfg *config.Config, email string, ttl time.Duration) (string, error) {
	if email == "" && len(cfg.AllowedEmails) > 0 {
		email = cfg.AllowedEmails[0]
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	if !authservice.NewAllowList(cfg.AllowedEmails).Allowed(email) {
		return "", fmt.Errorf("%w: %q", errNotAllowed, email)
	}

	issuer := authservice.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	return issuer.Issue(email, ttl)
}
