package request_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	mid "github.com/anandbobba/Innovex-Service/middleware"
	midsec "github.com/anandbobba/Innovex-Service/middleware/security"
	"github.com/anandbobba/Innovex-Service/module/request"
	"github.com/anandbobba/Innovex-Service/module/request/model"
	"github.com/anandbobba/Innovex-Service/service/session"
	"github.com/anandbobba/Innovex-Service/service/ws"
	"github.com/anandbobba/Innovex-Service/tools/errs"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore mimics the mongo repo on a slice, including its newest-first
// listing and its not-found mapping for bad ids.
type fakeStore struct {
	mu   sync.Mutex
	docs []model.Request
}

func (s *fakeStore) List(ctx context.Context) ([]model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Request, len(s.docs))
	copy(out, s.docs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) Insert(ctx context.Context, req *model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = primitive.NewObjectID()
	s.docs = append(s.docs, *req)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, id string, set bson.M) (*model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID.Hex() != id {
			continue
		}
		d := &s.docs[i]
		for k, v := range set {
			sv, _ := v.(string)
			switch k {
			case "requester":
				d.Requester = sv
			case "category":
				d.Category = sv
			case "details":
				d.Details = sv
			case "location":
				d.Location = sv
			case "quantity":
				d.Quantity = sv
			case "team_id":
				d.TeamID = sv
			case "spoc_id":
				d.SpocID = sv
			case "status":
				d.Status = sv
			}
		}
		out := *d
		return &out, nil
	}
	return nil, errs.ErrNotFound.WithDetail("request " + id)
}

func (s *fakeStore) Delete(ctx context.Context, id string) (*model.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID.Hex() == id {
			out := s.docs[i]
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return &out, nil
		}
	}
	return nil, errs.ErrNotFound.WithDetail("request " + id)
}

type broadcast struct {
	Room  string // "" for global
	Event string
}

type fakeHub struct {
	mu   sync.Mutex
	sent []broadcast
}

func (h *fakeHub) BroadcastAll(event string, payload interface{}) {
	h.mu.Lock()
	h.sent = append(h.sent, broadcast{Event: event})
	h.mu.Unlock()
}

func (h *fakeHub) BroadcastRoom(room, event string, payload interface{}) {
	h.mu.Lock()
	h.sent = append(h.sent, broadcast{Room: room, Event: event})
	h.mu.Unlock()
}

func (h *fakeHub) has(room, event string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range h.sent {
		if b.Room == room && b.Event == event {
			return true
		}
	}
	return false
}

const testSecret = "dev-secret"

// newTestServer wires the handler behind the same route table and auth
// middleware as main and returns an httptest server plus the fakes.
func newTestServer(t *testing.T) (*httptest.Server, *fakeStore, *fakeHub, session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &fakeStore{}
	hub := &fakeHub{}
	sessions := session.NewMemoryStore()
	sec := &midsec.Options{Store: sessions, TestToken: testSecret}
	h := request.NewHandler(store, hub)

	r := gin.New()
	mid.GET(r, "/api/requests", h.HandleList, sec, mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/api/requests", h.HandleCreate, sec, mid.RouteOpt{IsAuth: false})
	mid.PATCH(r, "/api/requests/:id", h.HandleUpdate, sec, mid.RouteOpt{IsAuth: true})
	mid.DELETE(r, "/api/requests/:id", h.HandleDelete, sec, mid.RouteOpt{IsAuth: true})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, store, hub, sessions
}

func doJSON(t *testing.T, method, url string, body interface{}, headers map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestCreateMissingLocation400(t *testing.T) {
	ts, store, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/requests",
		map[string]string{"requester": "Al", "category": "Tea"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if len(store.docs) != 0 {
		t.Fatal("nothing should have been stored")
	}
}

func TestCreateReturnsPendingDocument(t *testing.T) {
	ts, _, hub, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/requests", map[string]string{
		"requester": "Al", "category": "Tea", "location": "3F-212",
		"teamId": "team-1", "spocId": "spoc-1",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var doc model.Request
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Status != model.StatusPending {
		t.Fatalf("expected status pending, got %q", doc.Status)
	}
	if doc.ID.IsZero() {
		t.Fatal("expected a server-assigned id")
	}
	if doc.CreatedAt.IsZero() {
		t.Fatal("expected a server-assigned createdAt")
	}
	if doc.TeamID != "team-1" {
		t.Fatalf("expected teamId team-1, got %q", doc.TeamID)
	}

	if !hub.has("", ws.EventRequestCreated) {
		t.Error("missing global created broadcast")
	}
	if !hub.has(ws.RoomSpoc("spoc-1"), ws.EventRequestCreatedForSpoc) {
		t.Error("missing spoc-scoped created broadcast")
	}
	if !hub.has(ws.RoomTeam("team-1"), ws.EventRequestCreatedForTeam) {
		t.Error("missing team-scoped created broadcast")
	}
}

func TestCreateWithoutTeamSkipsScopedBroadcasts(t *testing.T) {
	ts, _, hub, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/requests",
		map[string]string{"location": "2F-lobby"}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for _, b := range hub.sent {
		if b.Room != "" {
			t.Fatalf("unexpected scoped broadcast to %s", b.Room)
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	ts, store, _, _ := newTestServer(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, loc := range []string{"old", "mid", "new"} {
		doc := &model.Request{
			Location:  loc,
			Status:    model.StatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Insert(context.Background(), doc); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/requests", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var docs []model.Request
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 docs, got %d", len(docs))
	}
	want := []string{"new", "mid", "old"}
	for i, doc := range docs {
		if doc.Location != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], doc.Location)
		}
	}
}

func seedOne(t *testing.T, store *fakeStore) model.Request {
	t.Helper()
	doc := &model.Request{
		Requester: "Al", Category: "Tea", Location: "3F-212",
		TeamID: "team-1", SpocID: "spoc-1",
		Status: model.StatusPending, CreatedAt: time.Now().UTC(),
	}
	if err := store.Insert(context.Background(), doc); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return *doc
}

func TestUpdateWithoutTokenForbidden(t *testing.T) {
	ts, store, _, _ := newTestServer(t)
	doc := seedOne(t, store)

	resp := doJSON(t, http.MethodPatch, ts.URL+"/api/requests/"+doc.ID.Hex(),
		map[string]string{"status": model.StatusDone}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if store.docs[0].Status != model.StatusPending {
		t.Fatal("document must not change without auth")
	}
}

func TestUpdateWithSessionToken(t *testing.T) {
	ts, store, hub, sessions := newTestServer(t)
	doc := seedOne(t, store)

	sess, err := sessions.Issue(context.Background(), "spoc-1", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	resp := doJSON(t, http.MethodPatch, ts.URL+"/api/requests/"+doc.ID.Hex(),
		map[string]string{"status": model.StatusDone},
		map[string]string{midsec.HeaderSessionToken: sess.Token})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got model.Request
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != model.StatusDone {
		t.Fatalf("expected status done, got %q", got.Status)
	}
	if got.Location != doc.Location || got.Requester != doc.Requester || got.TeamID != doc.TeamID {
		t.Fatal("untouched fields must be unchanged")
	}

	if !hub.has("", ws.EventRequestUpdated) ||
		!hub.has(ws.RoomSpoc("spoc-1"), ws.EventRequestUpdated) ||
		!hub.has(ws.RoomTeam("team-1"), ws.EventRequestUpdated) {
		t.Error("updated event missing on global or scoped channels")
	}
}

func TestUpdateWithExpiredTokenForbidden(t *testing.T) {
	ts, store, _, sessions := newTestServer(t)
	doc := seedOne(t, store)

	mem := sessions.(*session.MemoryStore)
	now := time.Now()
	mem.Clock = func() time.Time { return now }
	sess, _ := mem.Issue(context.Background(), "spoc-1", time.Minute)
	now = now.Add(2 * time.Minute)

	resp := doJSON(t, http.MethodPatch, ts.URL+"/api/requests/"+doc.ID.Hex(),
		map[string]string{"status": model.StatusDone},
		map[string]string{midsec.HeaderSessionToken: sess.Token})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for expired token, got %d", resp.StatusCode)
	}
}

func TestUpdateWithSharedSecretHeader(t *testing.T) {
	ts, store, _, _ := newTestServer(t)
	doc := seedOne(t, store)

	resp := doJSON(t, http.MethodPatch, ts.URL+"/api/requests/"+doc.ID.Hex(),
		map[string]string{"status": model.StatusDone},
		map[string]string{midsec.HeaderTestToken: testSecret})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 via shared secret, got %d", resp.StatusCode)
	}
}

func TestUpdateUnknownID404(t *testing.T) {
	ts, _, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPatch, ts.URL+"/api/requests/"+primitive.NewObjectID().Hex(),
		map[string]string{"status": model.StatusDone},
		map[string]string{midsec.HeaderTestToken: testSecret})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateWithNoKnownFields400(t *testing.T) {
	ts, store, _, _ := newTestServer(t)
	doc := seedOne(t, store)

	resp := doJSON(t, http.MethodPatch, ts.URL+"/api/requests/"+doc.ID.Hex(),
		map[string]string{"bogus": "field"},
		map[string]string{midsec.HeaderTestToken: testSecret})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteUnknownID404(t *testing.T) {
	ts, _, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/requests/"+primitive.NewObjectID().Hex(),
		nil, map[string]string{midsec.HeaderTestToken: testSecret})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteRemovesFromListing(t *testing.T) {
	ts, store, hub, _ := newTestServer(t)
	doc := seedOne(t, store)

	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/requests/"+doc.ID.Hex(),
		nil, map[string]string{midsec.HeaderTestToken: testSecret})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	list := doJSON(t, http.MethodGet, ts.URL+"/api/requests", nil, nil)
	var docs []model.Request
	if err := json.NewDecoder(list.Body).Decode(&docs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty listing, got %d docs", len(docs))
	}

	if !hub.has("", ws.EventRequestDeleted) ||
		!hub.has(ws.RoomTeam("team-1"), ws.EventRequestDeleted) ||
		!hub.has(ws.RoomSpoc("spoc-1"), ws.EventRequestDeleted) {
		t.Error("deleted event missing on global or scoped channels")
	}
}
