package config

import (
	"testing"
	"time"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{"JWT_SECRET", "SESSION_SECRET", "SUPABASE_URL", "SUPABASE_KEY", "VAPID_PUBLIC_KEY", "VAPID_PRIVATE_KEY", "GOOGLE_CLIENT_ID", "DRIVE_CREDENTIALS_FILE"} {
		t.Setenv(k, "")
	}
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("CATALOG_SOURCE", "database")
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{"APP_ENV": "development"})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3000" {
		t.Fatalf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.JWTSecret != devJWTSecret || cfg.SessionSecret != devJWTSecret {
		t.Fatalf("secrets = %q/%q, want dev fallback", cfg.JWTSecret, cfg.SessionSecret)
	}
	if cfg.AccessTokenTTL != 24*time.Hour || cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("ttls = %v/%v", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.CatalogSource != "database" {
		t.Fatalf("CatalogSource = %q", cfg.CatalogSource)
	}
	if cfg.PushEnabled() || cfg.GoogleOAuthEnabled() || cfg.DriveEnabled() {
		t.Fatalf("optional integrations should be off by default")
	}
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	setEnv(t, map[string]string{"APP_ENV": "production"})
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without JWT_SECRET in production")
	}
}

func TestLoadParsesOrigins(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":           "s3cret",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"ACCESS_TOKEN_TTL":     "1h",
	})
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("AccessTokenTTL = %v", cfg.AccessTokenTTL)
	}
	if cfg.SessionSecret != "s3cret" {
		t.Fatalf("SessionSecret = %q", cfg.SessionSecret)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"sqlite", Config{JWTSecret: "x", DBDriver: "sqlite", CatalogSource: "database", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, true},
		{"unknown driver", Config{JWTSecret: "x", DBDriver: "mysql", CatalogSource: "database", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, false},
		{"supabase without key", Config{JWTSecret: "x", DBDriver: "postgres", CatalogSource: "supabase", SupabaseURL: "https://x.supabase.co", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, false},
		{"unknown catalog", Config{JWTSecret: "x", DBDriver: "postgres", CatalogSource: "firestore", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, false},
		{"zero ttl", Config{JWTSecret: "x", DBDriver: "postgres", CatalogSource: "database", RefreshTokenTTL: time.Hour}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if (err == nil) != tt.ok {
				t.Fatalf("validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
