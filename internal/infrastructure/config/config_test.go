package config

import (
	"context"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.Env)
	}
	if cfg.Mongo.Database != "user_api" {
		t.Errorf("expected default database user_api, got %s", cfg.Mongo.Database)
	}
	if cfg.IsProduction() {
		t.Error("development must not report as production")
	}
}

func TestLoad_SecretRequiredWhenVerifying(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty and verification is on")
	}
}

func TestLoad_SkipVerifyAllowedInDevelopment(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("AUTH_INSECURE_SKIP_VERIFY", "true")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Auth.InsecureSkipVerify {
		t.Fatal("expected skip-verify profile to be active")
	}
}

func TestLoad_SkipVerifyRefusedInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AUTH_INSECURE_SKIP_VERIFY", "true")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected error for skip-verify in production")
	}
}
