package trigger_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_rentals/internal/adapters/httpx"
	"campus_rentals/internal/adapters/trigger"
	"campus_rentals/internal/app"
)

func TestClient_RunSendsSecretAndDecodesReport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"report":  app.RunReport{Considered: 3, Notified: 2, NoMatch: 1},
		})
	}))
	defer ts.Close()

	cl, err := trigger.New(ts.URL, "s3cret", 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	rep, err := cl.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Considered != 3 || rep.Notified != 2 || rep.NoMatch != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestClient_WrongSecret(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	cl, _ := trigger.New(ts.URL, "nope", time.Second)
	if _, err := cl.Run(context.Background()); !errors.Is(err, httpx.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNew_RequiresURLAndSecret(t *testing.T) {
	if _, err := trigger.New("", "s", time.Second); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := trigger.New("http://x", "", time.Second); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
