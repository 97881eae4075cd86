//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"campus_rentals/internal/domain"
	mysqlrepo "campus_rentals/internal/storage/mysql"
)

// ---------- small helpers ----------
func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=campus",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "campus")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// ---------- the test ----------
func TestRepo_MySQL_CatalogAndSavedSearches(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	props := []domain.Property{
		{ID: "00000000-0000-0000-0000-000000000001", Title: "Old flat", PropertyType: "apartment",
			Price: 40000, Bedrooms: 2, Bathrooms: 1, Amenities: map[string]bool{"wifi": true},
			Deposit: pfloat(500), LandlordID: "l1", CreatedAt: base, UpdatedAt: base},
		{ID: "00000000-0000-0000-0000-000000000002", Title: "New flat", PropertyType: "apartment",
			Price: 42000, Bedrooms: 2, Bathrooms: 1, LeaseTerm: pstr("12 months"),
			LandlordID: "l1", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
		{ID: "00000000-0000-0000-0000-000000000003", Title: "House", PropertyType: "house",
			Price: 90000, Bedrooms: 4, Bathrooms: 2, LandlordID: "l2",
			CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
	}
	for _, p := range props {
		if err := repo.CreateProperty(ctx, p); err != nil {
			t.Fatalf("CreateProperty: %v", err)
		}
	}

	got, err := repo.GetProperty(ctx, props[0].ID)
	if err != nil || !got.Amenities["wifi"] || got.Deposit == nil || *got.Deposit != 500 {
		t.Fatalf("unexpected property: %+v %v", got, err)
	}

	recent, err := repo.ListRecentProperties(ctx, domain.PropertyQuery{Types: []string{"apartment"}, Bedrooms: []int{2}, Limit: 1})
	if err != nil || len(recent) != 1 || recent[0].Title != "New flat" {
		t.Fatalf("unexpected recent: %+v %v", recent, err)
	}

	if err := repo.SoftDeleteProperty(ctx, props[2].ID, base.Add(3*time.Hour)); err != nil {
		t.Fatalf("SoftDeleteProperty: %v", err)
	}
	if _, err := repo.GetProperty(ctx, props[2].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted listing still visible: %v", err)
	}

	ss := domain.SavedSearch{
		ID: "10000000-0000-0000-0000-000000000001", UserID: "u1", Name: "flats",
		Filters:            domain.SearchFilters{PropertyTypes: []string{"apartment"}, PriceRange: &domain.PriceRange{Min: pfloat(30000), Max: pfloat(50000)}},
		EmailNotifications: true, NotificationFrequency: domain.FrequencyDaily,
		CreatedAt: base, UpdatedAt: base,
	}
	if err := repo.CreateSavedSearch(ctx, ss); err != nil {
		t.Fatalf("CreateSavedSearch: %v", err)
	}
	// a document written by another client, with aliased keys and string numbers
	if _, err := db.Exec(`INSERT INTO saved_searches (id, user_id, name, filters, email_notifications, notification_frequency, created_at, updated_at)
		VALUES ('legacy', 'u2', 'legacy', '{"type":"house","beds":"4"}', TRUE, 'weekly', ?, ?)`, base, base); err != nil {
		t.Fatalf("insert legacy: %v", err)
	}
	// and one whose filters are not an object
	if _, err := db.Exec(`INSERT INTO saved_searches (id, user_id, name, filters, email_notifications, notification_frequency, created_at, updated_at)
		VALUES ('broken', 'u3', 'broken', '"apartment"', TRUE, 'daily', ?, ?)`, base, base); err != nil {
		t.Fatalf("insert broken: %v", err)
	}

	active, err := repo.ListActiveSavedSearches(ctx)
	if err != nil {
		t.Fatalf("ListActiveSavedSearches: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected the malformed search to be skipped, got %d", len(active))
	}
	for _, a := range active {
		if a.ID == "legacy" && (len(a.Filters.Bedrooms) != 1 || a.Filters.Bedrooms[0] != 4) {
			t.Fatalf("legacy filters not decoded: %+v", a.Filters)
		}
	}

	at := base.Add(24 * time.Hour)
	if err := repo.SetLastNotified(ctx, ss.ID, at); err != nil {
		t.Fatalf("SetLastNotified: %v", err)
	}
	ss.Name = "renamed"
	ss.LastNotified = nil
	if err := repo.UpdateSavedSearch(ctx, ss); err != nil {
		t.Fatalf("UpdateSavedSearch: %v", err)
	}
	back, err := repo.GetSavedSearch(ctx, ss.ID)
	if err != nil || back.Name != "renamed" || back.LastNotified == nil || !back.LastNotified.Equal(at) {
		t.Fatalf("update must keep lastNotified: %+v %v", back, err)
	}
}

func TestRepo_MySQL_UsersFavoritesViewings(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := repo.UpsertUser(ctx, domain.UserContact{ID: "u1", Email: "a@example.edu"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if err := repo.UpsertUser(ctx, domain.UserContact{ID: "u1", Email: "b@example.edu", DisplayName: "B"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	u, err := repo.GetUserContact(ctx, "u1")
	if err != nil || u.Email != "b@example.edu" {
		t.Fatalf("unexpected user: %+v %v", u, err)
	}
	if _, err := repo.GetUserContact(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_ = repo.AddFavorite(ctx, domain.Favorite{UserID: "u1", PropertyID: "p1", CreatedAt: now})
	_ = repo.AddFavorite(ctx, domain.Favorite{UserID: "u1", PropertyID: "p1", CreatedAt: now})
	if ok, _ := repo.IsFavorite(ctx, "u1", "p1"); !ok {
		t.Fatalf("expected favorite")
	}
	if favs, _ := repo.ListFavorites(ctx, "u1"); len(favs) != 1 {
		t.Fatalf("duplicate favorite stored: %+v", favs)
	}

	v := domain.Viewing{ID: "v1", PropertyID: "p1", PropertyTitle: "Flat", LandlordID: "l1", UserID: "u1",
		UserEmail: "b@example.edu", UserName: "B", Date: "2025-03-10", Time: "14:00", Notes: pstr("ring twice"),
		Status: domain.ViewingPending, CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateViewing(ctx, v); err != nil {
		t.Fatalf("CreateViewing: %v", err)
	}
	if err := repo.SetViewingStatus(ctx, "v1", domain.ViewingConfirmed, now.Add(time.Hour)); err != nil {
		t.Fatalf("SetViewingStatus: %v", err)
	}
	list, err := repo.ListViewingsByLandlord(ctx, "l1")
	if err != nil || len(list) != 1 || list[0].Status != domain.ViewingConfirmed || *list[0].Notes != "ring twice" {
		t.Fatalf("unexpected viewings: %+v %v", list, err)
	}
}

func TestRepo_MySQL_ReviewsInquiriesMessages(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pid := "00000000-0000-0000-0000-000000000001"

	_ = repo.CreateReview(ctx, domain.Review{ID: "r1", PropertyID: pid, UserID: "u1", UserName: "Ana", Rating: 4, Comment: "ok", CreatedAt: base, UpdatedAt: base})
	_ = repo.CreateReview(ctx, domain.Review{ID: "r2", PropertyID: pid, UserID: "u2", UserName: "Bo", Rating: 5, Comment: "great", CreatedAt: base.Add(time.Minute), UpdatedAt: base})
	if err := repo.UpdateReview(ctx, domain.Review{ID: "r1", Rating: 2, Comment: "noisy", UpdatedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}
	if err := repo.DeleteReview(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	rs, err := repo.ListReviews(ctx, pid)
	if err != nil || len(rs) != 2 || rs[0].ID != "r2" || rs[1].Comment != "noisy" || rs[1].UserName != "Ana" {
		t.Fatalf("unexpected reviews: %+v %v", rs, err)
	}

	q := domain.Inquiry{ID: "q1", PropertyID: pid, PropertyTitle: "Old flat", LandlordID: "l1", TenantID: "u1",
		TenantName: "Ana", TenantEmail: "ana@uni.edu", Message: "still free?", Status: domain.InquiryPending,
		CreatedAt: base, UpdatedAt: base}
	if err := repo.CreateInquiry(ctx, q); err != nil {
		t.Fatalf("CreateInquiry: %v", err)
	}
	resp, at := "yes", base.Add(30*time.Minute)
	q.Status, q.Response, q.ResponseAt, q.UpdatedAt = domain.InquiryResponded, &resp, &at, at
	_ = repo.UpdateInquiry(ctx, q)

	// a later status change without a response keeps the earlier answer
	q.Status, q.Response, q.ResponseAt, q.UpdatedAt = domain.InquiryAccepted, nil, nil, at.Add(time.Hour)
	_ = repo.UpdateInquiry(ctx, q)
	got, err := repo.GetInquiry(ctx, "q1")
	if err != nil || got.Status != domain.InquiryAccepted || got.Response == nil || *got.Response != "yes" || got.ResponseAt == nil {
		t.Fatalf("unexpected inquiry: %+v %v", got, err)
	}
	if list, _ := repo.ListInquiriesByLandlord(ctx, "l1", domain.InquiryPending); len(list) != 0 {
		t.Fatalf("status filter ignored: %+v", list)
	}
	if list, _ := repo.ListInquiriesByTenant(ctx, "u1"); len(list) != 1 {
		t.Fatalf("unexpected tenant inquiries: %+v", list)
	}

	for i, m := range []domain.Message{
		{ID: "m1", PropertyID: pid, SenderID: "u1", ReceiverID: "l1", Content: "hi"},
		{ID: "m2", PropertyID: pid, SenderID: "l1", ReceiverID: "u1", Content: "hello"},
		{ID: "m3", PropertyID: pid, SenderID: "u9", ReceiverID: "l1", Content: "me too"},
	} {
		m.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.CreateMessage(ctx, m); err != nil {
			t.Fatalf("CreateMessage: %v", err)
		}
	}
	conv, _ := repo.ListConversation(ctx, pid, "l1", "u1")
	if len(conv) != 2 || conv[0].ID != "m1" || conv[1].ID != "m2" {
		t.Fatalf("unexpected conversation: %+v", conv)
	}
	if err := repo.MarkMessageRead(ctx, "m1"); err != nil {
		t.Fatalf("MarkMessageRead: %v", err)
	}
	if err := repo.MarkMessageRead(ctx, "m1"); err != nil {
		t.Fatalf("MarkMessageRead must be idempotent: %v", err)
	}
	if inbox, _ := repo.ListMessagesForUser(ctx, "l1"); len(inbox) != 3 || inbox[0].ID != "m3" || !inbox[2].Read {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}
}
