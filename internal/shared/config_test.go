package shared_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"campus_rentals/internal/shared"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env here
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("CONFIG_FILE", "")

	c, err := shared.Load()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if c.HTTPAddr != ":8080" || c.StoreBackend != "mysql" || c.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.NotifierConfig().DigestWindow != 10 {
		t.Fatalf("digest window default: %d", c.DigestWindow)
	}
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "campus.yaml")
	yml := "STORE_BACKEND: mongo\nnotify_workers: 9\nSMTP_HOST: mail.local\nCORS_ORIGINS:\n  - https://a.example\n  - https://b.example\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("SMTP_HOST", "smtp.env")

	c, err := shared.Load()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if c.StoreBackend != "mongo" || c.NotifyWorkers != 9 {
		t.Fatalf("yaml not applied: %+v", c)
	}
	if c.MailConfig().SMTP.Host != "smtp.env" {
		t.Fatalf("env should win over yaml, got %q", c.SMTPHost)
	}
	if !reflect.DeepEqual(c.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("cors: %v", c.CORSOrigins)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CRON_SECRET=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("CRON_SECRET", "")
	// godotenv does not override variables that are already set, even empty ones
	os.Unsetenv("CRON_SECRET")

	c, err := shared.Load()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if c.CronSecret != "from-dotenv" {
		t.Fatalf("expected .env value, got %q", c.CronSecret)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_BACKEND", "postgres")
	if _, err := shared.Load(); err == nil {
		t.Fatalf("expected error")
	}
}
