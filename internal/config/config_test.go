package config

import (
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLitePath != "laberaer.db" {
		t.Fatalf("unexpected storage defaults %+v", cfg.Storage)
	}
	if cfg.Blob.Driver != "fs" || cfg.Blob.FSRoot != "exports" || cfg.Blob.S3.Region != "us-east-1" {
		t.Fatalf("unexpected blob defaults %+v", cfg.Blob)
	}
	if cfg.Blob.URLExpiry != 15*time.Minute {
		t.Fatalf("unexpected url expiry %s", cfg.Blob.URLExpiry)
	}
	if cfg.Log.Level != "info" || cfg.Actor != "admin-001" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"LABERAER_STORAGE_DRIVER":     "postgres",
		"LABERAER_POSTGRES_DSN":       "postgres://db/lab",
		"LABERAER_BLOB_DRIVER":        "s3",
		"LABERAER_BLOB_S3_BUCKET":     "sheets",
		"LABERAER_BLOB_S3_PATH_STYLE": "true",
		"LABERAER_LOG_FORMAT":         "json",

		"LABERAER_BLOB_S3_ACCESS_KEY_ID":     "AKID",
		"LABERAER_BLOB_S3_SECRET_ACCESS_KEY": "secret",
		"LABERAER_BLOB_URL_EXPIRY":           "1h",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.PostgresDSN != "postgres://db/lab" {
		t.Fatalf("storage override lost: %+v", cfg.Storage)
	}
	if cfg.Blob.Driver != "s3" || cfg.Blob.S3.Bucket != "sheets" || !cfg.Blob.S3.PathStyle {
		t.Fatalf("blob override lost: %+v", cfg.Blob)
	}
	if cfg.Blob.S3.AccessKeyID != "AKID" || cfg.Blob.S3.SecretAccessKey != "secret" || cfg.Blob.URLExpiry != time.Hour {
		t.Fatalf("credentials override lost: %+v", cfg.Blob)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("log override lost: %+v", cfg.Log)
	}
}

func TestLoadFromRejectsMalformedBool(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"LABERAER_BLOB_S3_PATH_STYLE": "maybe"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
