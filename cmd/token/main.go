// Command token issues bearer tokens for sanitize service clients.
// It signs with the same JWT_SECRET the server validates against.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/auth"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/config"
	"github.com/MatrixManAtYrService/rhizome-sub001/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	client := flag.String("client", "", "name of the client the token is issued to")
	duration := flag.Duration("duration", cfg.TokenDuration, "token lifetime")
	flag.Parse()

	logging.Setup(cfg.LogLevel)

	if err := run(os.Stdout, cfg.JWTSecret, *duration, *client); err != nil {
		slog.Error("Failed to issue token", "error", err)
		os.Exit(1)
	}
}

var errNoSecret = errors.New("JWT_SECRET is not set")

func run(w io.Writer, secret string, duration time.Duration, client string) error {
	if secret == "" {
		return errNoSecret
	}
	if client == "" {
		return errors.New("client is required")
	}
	if duration <= 0 {
		return fmt.Errorf("token duration must be positive, got %s", duration)
	}

	token, err := auth.NewJWTManager(secret, duration).Generate(client)
	if err != nil {
		return err
	}

	slog.Debug("Token issued", "client", client, "expires_in", duration)
	_, err = fmt.Fprintln(w, token)
	return err
}
