package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/auth"
)

func TestRun(t *testing.T) {
	t.Run("issues a token the server accepts", func(t *testing.T) {
		var out bytes.Buffer
		if err := run(&out, "test-secret", time.Hour, "billing-export"); err != nil {
			t.Fatalf("run failed: %v", err)
		}

		claims, err := auth.NewJWTManager("test-secret", time.Hour).Validate(strings.TrimSpace(out.String()))
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.Client != "billing-export" {
			t.Errorf("Client = %q, want billing-export", claims.Client)
		}
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		var out bytes.Buffer
		if err := run(&out, "test-secret", time.Hour, "billing-export"); err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if _, err := auth.NewJWTManager("other-secret", time.Hour).Validate(strings.TrimSpace(out.String())); err == nil {
			t.Error("Expected validation error")
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		var out bytes.Buffer
		if err := run(&out, "", time.Hour, "billing-export"); !errors.Is(err, errNoSecret) {
			t.Errorf("Expected errNoSecret, got %v", err)
		}
		if out.Len() != 0 {
			t.Errorf("Expected no output, got %q", out.String())
		}
	})

	t.Run("missing client", func(t *testing.T) {
		if err := run(&bytes.Buffer{}, "test-secret", time.Hour, ""); err == nil {
			t.Error("Expected error for missing client")
		}
	})

	t.Run("non-positive duration", func(t *testing.T) {
		if err := run(&bytes.Buffer{}, "test-secret", 0, "billing-export"); err == nil {
			t.Error("Expected error for zero duration")
		}
	})
}
