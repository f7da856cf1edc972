package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	mid "rent-admin/internal/middleware"
	"rent-admin/internal/workspace"
	"rent-admin/pkg/config"
	"rent-admin/pkg/gateway"
	"rent-admin/pkg/session"

	"github.com/labstack/echo/v4"
)

// fakeAPI is an in-memory rental API
type fakeAPI struct {
	mu           sync.Mutex
	rejectTokens bool
	created      []string
	lastQuery    string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&creds)
		switch creds.Email {
		case "admin@shop.test":
			w.Write([]byte(`{"success":true,"data":{"token":"tok-admin","user":{"_id":"u1","name":"Admin","role":"admin"}}}`))
		case "user@shop.test":
			w.Write([]byte(`{"success":true,"data":{"token":"tok-user","user":{"_id":"u2","name":"User","role":"user"}}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
		}
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		reject := f.rejectTokens
		f.mu.Unlock()
		if reject {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Token expired"}`))
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-admin" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Method == http.MethodPost {
			var in struct{ Name string }
			json.NewDecoder(r.Body).Decode(&in)
			f.mu.Lock()
			f.created = append(f.created, in.Name)
			f.mu.Unlock()
			w.Write([]byte(`{"success":true,"data":{"product":{"_id":"p9","name":"` + in.Name + `"}}}`))
			return
		}
		f.mu.Lock()
		f.lastQuery = r.URL.RawQuery
		f.mu.Unlock()
		w.Write([]byte(`{"success":true,"data":{"products":[{"_id":"p1","name":"Red Gown"}],"totalPages":2,"total":13}}`))
	})
	mux.HandleFunc("/products/highlighted", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"products":[]}}`))
	})
	mux.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"bookings":[
			{"_id":"b1","dressId":{"_id":"p1","name":"Red Gown"},"sendDate":"2024-03-01","receiveDate":"2024-03-05","customer":{"name":"Asha"}},
			{"_id":"b2","dressId":"p2","sendDate":"2024-05-01","customer":{"name":"Meera"}}
		]}}`))
	})
	return mux
}

type testServer struct {
	e          *echo.Echo
	api        *fakeAPI
	workspaces *workspace.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	api := &fakeAPI{}
	upstream := httptest.NewServer(api.handler(t))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		Upload:   config.UploadConfig{MaxImages: 10},
		Picker:   config.PickerConfig{Debounce: time.Millisecond, Limit: 100},
		Calendar: config.CalendarConfig{Timezone: "UTC"},
	}
	gw := gateway.NewClient(upstream.URL, 5*time.Second)
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour)
	workspaces := workspace.NewRegistry(cfg, gw)
	t.Cleanup(workspaces.Close)

	e := echo.New()
	e.Use(mid.RequestIDMiddleware)
	New(gw, sessions, workspaces).Register(e)
	return &testServer{e: e, api: api, workspaces: workspaces}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/auth/login", "", `{"email":"admin@shop.test","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.Token == "" || resp.Token == "tok-admin" {
		t.Fatalf("session token = %q, must be a fresh session id", resp.Token)
	}
	return resp.Token
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"admin", `{"email":"admin@shop.test","password":"x"}`, http.StatusOK},
		{"not an admin", `{"email":"user@shop.test","password":"x"}`, http.StatusForbidden},
		{"bad credentials", `{"email":"who@shop.test","password":"x"}`, http.StatusUnauthorized},
		{"missing password", `{"email":"admin@shop.test"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/auth/login", "", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestListProducts(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec := s.do(http.MethodGet, "/admin/products?page=1&search=gown", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var st struct {
		Items      []map[string]interface{} `json:"items"`
		TotalPages int                      `json:"totalPages"`
		PageSize   int                      `json:"pageSize"`
		Filters    map[string]string        `json:"filters"`
	}
	json.Unmarshal(rec.Body.Bytes(), &st)
	if len(st.Items) != 1 || st.TotalPages != 2 || st.PageSize != 12 || st.Filters["search"] != "gown" {
		t.Errorf("state = %+v", st)
	}
}

func TestPagingKeepsActiveFilters(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	lastQuery := func() url.Values {
		s.api.mu.Lock()
		defer s.api.mu.Unlock()
		q, _ := url.ParseQuery(s.api.lastQuery)
		return q
	}

	if rec := s.do(http.MethodGet, "/admin/products?page=1&search=gown", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("search = %d: %s", rec.Code, rec.Body.String())
	}
	rec := s.do(http.MethodGet, "/admin/products?page=2", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("page 2 = %d: %s", rec.Code, rec.Body.String())
	}
	if q := lastQuery(); q.Get("page") != "2" || q.Get("search") != "gown" {
		t.Errorf("gateway query after paging = %v, want page 2 with search kept", q)
	}
	var st struct {
		Page    int               `json:"page"`
		Filters map[string]string `json:"filters"`
	}
	json.Unmarshal(rec.Body.Bytes(), &st)
	if st.Page != 2 || st.Filters["search"] != "gown" {
		t.Errorf("state = %+v", st)
	}

	if rec := s.do(http.MethodGet, "/admin/products?category=c1", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("category = %d", rec.Code)
	}
	if q := lastQuery(); q.Get("category") != "c1" || q.Has("search") {
		t.Errorf("gateway query after new filter = %v, want category only", q)
	}
}

func TestProductFormFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	if rec := s.do(http.MethodPost, "/admin/products/form", token, `{}`); rec.Code != http.StatusOK {
		t.Fatalf("open = %d: %s", rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodPost, "/admin/products/form/submit", token, "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"field":"name"`) {
		t.Errorf("empty name submit = %d: %s", rec.Code, rec.Body.String())
	}

	if rec := s.do(http.MethodPatch, "/admin/products/form", token, `{"name":"Blue Saree","price":"1200"}`); rec.Code != http.StatusOK {
		t.Fatalf("patch = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodPost, "/admin/products/form/tags", token, ""); rec.Code != http.StatusOK {
		t.Errorf("add tag = %d", rec.Code)
	}
	if rec := s.do(http.MethodDelete, "/admin/products/form/tags/7", token, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("remove missing tag = %d", rec.Code)
	}

	rec = s.do(http.MethodPost, "/admin/products/form/submit", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit = %d: %s", rec.Code, rec.Body.String())
	}
	s.api.mu.Lock()
	created := append([]string{}, s.api.created...)
	s.api.mu.Unlock()
	if len(created) != 1 || created[0] != "Blue Saree" {
		t.Errorf("created = %v", created)
	}

	rec = s.do(http.MethodGet, "/admin/notifications", token, "")
	if !strings.Contains(rec.Body.String(), "Product created successfully") {
		t.Errorf("notifications = %s", rec.Body.String())
	}
	rec = s.do(http.MethodGet, "/admin/notifications", token, "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("notifications not drained: %s", rec.Body.String())
	}
}

func TestRejectedTokenEndsSession(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	if s.do(http.MethodGet, "/admin/notifications", token, "").Code != http.StatusOK {
		t.Fatal("session not usable")
	}

	s.api.mu.Lock()
	s.api.rejectTokens = true
	s.api.mu.Unlock()

	if rec := s.do(http.MethodGet, "/admin/products?page=1", token, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("rejected token = %d: %s", rec.Code, rec.Body.String())
	}
	if s.workspaces.Len() != 0 {
		t.Errorf("workspaces = %d, want dropped", s.workspaces.Len())
	}
	if rec := s.do(http.MethodGet, "/admin/notifications", token, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("session reuse = %d", rec.Code)
	}
}

func TestExportBookingsCSV(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec := s.do(http.MethodGet, "/admin/bookings/export?format=csv&from=2024-03-01&to=2024-03-31", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, ".csv") {
		t.Errorf("content disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "b1,Asha") || strings.Contains(body, "b2") {
		t.Errorf("csv = %s", body)
	}

	if rec := s.do(http.MethodGet, "/admin/bookings/export?format=pdf", token, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format = %d", rec.Code)
	}
}

func TestCalendarSelectAndEdit(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	rec := s.do(http.MethodGet, "/admin/bookings/calendar", token, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Asha - Red Gown") {
		t.Fatalf("calendar = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(http.MethodPost, "/admin/bookings/calendar/nope/select", token, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown booking = %d", rec.Code)
	}
	rec = s.do(http.MethodPost, "/admin/bookings/calendar/b1/edit", token, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"editing":true`) {
		t.Errorf("edit = %d: %s", rec.Code, rec.Body.String())
	}
	rec = s.do(http.MethodDelete, "/admin/bookings/calendar/selection", token, "")
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), `"selected"`) {
		t.Errorf("close = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMoveRequiresIndexes(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	if rec := s.do(http.MethodPost, "/admin/highlighted/move", token, `{"from":0}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	if rec := s.do(http.MethodPost, "/admin/highlighted/move", token, `{"from":0,"to":3}`); rec.Code != http.StatusBadRequest {
		t.Errorf("out of range = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	if rec := s.do(http.MethodPost, "/auth/logout", token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout = %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/admin/notifications", token, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("after logout = %d", rec.Code)
	}
}
