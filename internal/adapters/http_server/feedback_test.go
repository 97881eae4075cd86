package httpserver_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	server "campus_rentals/internal/adapters/http_server"
	"campus_rentals/internal/app"
	"campus_rentals/internal/domain"
)

func TestReviews(t *testing.T) {
	ts, store := newTestServer(t, server.CronConfig{})
	ctx := context.Background()
	_ = store.CreateProperty(ctx, domain.Property{ID: "p1", Title: "Studio", PropertyType: "studio", LandlordID: "l1", CreatedAt: time.Now()})
	ana := token(t, "t1", server.RoleTenant)
	bo := token(t, "t2", server.RoleTenant)
	url := ts.URL + "/v1/properties/p1/reviews"

	if resp := do(t, http.MethodPost, url, "", map[string]any{"rating": 5, "comment": "x"}); resp.StatusCode != 401 {
		t.Fatalf("anonymous post: want 401, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, url, ana, map[string]any{"rating": 9, "comment": "x"}); resp.StatusCode != 400 {
		t.Fatalf("bad rating: want 400, got %d", resp.StatusCode)
	}
	resp := do(t, http.MethodPost, url, ana, map[string]any{"rating": 4, "comment": "Quiet street"})
	if resp.StatusCode != 201 {
		t.Fatalf("post: want 201, got %d", resp.StatusCode)
	}
	rv := decode[domain.Review](t, resp)

	if resp := do(t, http.MethodPut, url+"/"+rv.ID, bo, map[string]any{"rating": 1, "comment": "nope"}); resp.StatusCode != 403 {
		t.Fatalf("other user edit: want 403, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, url+"/"+rv.ID, bo, nil); resp.StatusCode != 403 {
		t.Fatalf("other user delete: want 403, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodPut, url+"/"+rv.ID, ana, map[string]any{"rating": 5, "comment": "Quiet street, great light"})
	if resp.StatusCode != 200 {
		t.Fatalf("edit: want 200, got %d", resp.StatusCode)
	}

	// public read
	resp = do(t, http.MethodGet, url, "", nil)
	list := decode[app.PropertyReviews](t, resp)
	if len(list.Items) != 1 || list.Items[0].Rating != 5 || list.Summary.Average != 5 {
		t.Fatalf("unexpected reviews: %+v", list)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/v1/properties/missing/reviews", "", nil); resp.StatusCode != 404 {
		t.Fatalf("unknown listing: want 404, got %d", resp.StatusCode)
	}

	if resp := do(t, http.MethodDelete, url+"/"+rv.ID, ana, nil); resp.StatusCode != 204 {
		t.Fatalf("delete: want 204, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, url+"/"+rv.ID, ana, nil); resp.StatusCode != 404 {
		t.Fatalf("second delete: want 404, got %d", resp.StatusCode)
	}
}

func TestInquiries(t *testing.T) {
	ts, store := newTestServer(t, server.CronConfig{})
	ctx := context.Background()
	_ = store.CreateProperty(ctx, domain.Property{ID: "p1", Title: "Studio", PropertyType: "studio", LandlordID: "l1", CreatedAt: time.Now()})
	tenant := token(t, "t1", server.RoleTenant)
	landlord := token(t, "l1", server.RoleLandlord)
	other := token(t, "l2", server.RoleLandlord)

	resp := do(t, http.MethodPost, ts.URL+"/v1/inquiries", tenant, map[string]any{"propertyId": "p1", "message": "Pets allowed?"})
	if resp.StatusCode != 201 {
		t.Fatalf("send: want 201, got %d", resp.StatusCode)
	}
	q := decode[domain.Inquiry](t, resp)
	if q.TenantEmail != "t1@uni.edu" || q.LandlordID != "l1" {
		t.Fatalf("unexpected inquiry: %+v", q)
	}

	if resp := do(t, http.MethodGet, ts.URL+"/v1/landlord/inquiries", tenant, nil); resp.StatusCode != 403 {
		t.Fatalf("tenant on landlord inbox: want 403, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/v1/inquiries/"+q.ID, other, nil); resp.StatusCode != 403 {
		t.Fatalf("outsider read: want 403, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/v1/landlord/inquiries/"+q.ID+"/response", other, map[string]string{"response": "hi"}); resp.StatusCode != 403 {
		t.Fatalf("other landlord respond: want 403, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/landlord/inquiries?status=pending", landlord, nil)
	inbox := decode[struct {
		Items []domain.Inquiry `json:"items"`
	}](t, resp)
	if len(inbox.Items) != 1 {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/v1/landlord/inquiries?status=weird", landlord, nil); resp.StatusCode != 400 {
		t.Fatalf("bad status filter: want 400, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/v1/landlord/inquiries/"+q.ID+"/response", landlord, map[string]string{"response": "Cats only"})
	if resp.StatusCode != 200 {
		t.Fatalf("respond: want 200, got %d", resp.StatusCode)
	}
	if got := decode[domain.Inquiry](t, resp); got.Status != domain.InquiryResponded || got.Response == nil {
		t.Fatalf("unexpected response: %+v", got)
	}
	if resp := do(t, http.MethodPut, ts.URL+"/v1/landlord/inquiries/"+q.ID+"/status", landlord, map[string]string{"status": "accepted"}); resp.StatusCode != 204 {
		t.Fatalf("accept: want 204, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/v1/inquiries/"+q.ID+"/cancel", tenant, nil); resp.StatusCode != 400 {
		t.Fatalf("cancel accepted: want 400, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/landlord/inquiries/stats", landlord, nil)
	stats := decode[domain.InquiryStats](t, resp)
	if stats.Total != 1 || stats.ByStatus[domain.InquiryAccepted] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/inquiries/"+q.ID, tenant, nil)
	if got := decode[domain.Inquiry](t, resp); got.Status != domain.InquiryAccepted || *got.Response != "Cats only" {
		t.Fatalf("tenant view: %+v", got)
	}
}

func TestMessages(t *testing.T) {
	ts, store := newTestServer(t, server.CronConfig{})
	ctx := context.Background()
	_ = store.CreateProperty(ctx, domain.Property{ID: "p1", Title: "Studio", PropertyType: "studio", LandlordID: "l1", CreatedAt: time.Now()})
	tenant := token(t, "t1", server.RoleTenant)
	landlord := token(t, "l1", server.RoleLandlord)

	resp := do(t, http.MethodPost, ts.URL+"/v1/messages", tenant, map[string]string{"propertyId": "p1", "receiverId": "l1", "content": "Hi!"})
	if resp.StatusCode != 201 {
		t.Fatalf("send: want 201, got %d", resp.StatusCode)
	}
	m := decode[domain.Message](t, resp)
	if resp := do(t, http.MethodPost, ts.URL+"/v1/messages", tenant, map[string]string{"propertyId": "p1", "receiverId": "t9", "content": "psst"}); resp.StatusCode != 403 {
		t.Fatalf("tenant to tenant: want 403, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/v1/messages", tenant, map[string]string{"propertyId": "p1", "receiverId": "l1", "content": " "}); resp.StatusCode != 400 {
		t.Fatalf("empty content: want 400, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/messages", landlord, nil)
	convs := decode[struct {
		Items []domain.Conversation `json:"items"`
	}](t, resp)
	if len(convs.Items) != 1 || convs.Items[0].OtherUserID != "t1" || convs.Items[0].Unread != 1 {
		t.Fatalf("unexpected conversations: %+v", convs)
	}

	if resp := do(t, http.MethodPost, ts.URL+"/v1/messages/"+m.ID+"/read", tenant, nil); resp.StatusCode != 403 {
		t.Fatalf("sender marks read: want 403, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/v1/messages/"+m.ID+"/read", landlord, nil); resp.StatusCode != 204 {
		t.Fatalf("mark read: want 204, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/v1/messages/thread?propertyId=p1&with=l1", tenant, nil)
	thread := decode[struct {
		Items []domain.Message `json:"items"`
	}](t, resp)
	if len(thread.Items) != 1 || !thread.Items[0].Read {
		t.Fatalf("unexpected thread: %+v", thread)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/v1/messages/thread?propertyId=p1", tenant, nil); resp.StatusCode != 400 {
		t.Fatalf("missing with: want 400, got %d", resp.StatusCode)
	}
}
