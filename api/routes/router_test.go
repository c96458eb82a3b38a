package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/balonis/storefront/api/middleware"
	"github.com/balonis/storefront/api/views"
	"github.com/balonis/storefront/internal/catalog"
	"github.com/balonis/storefront/internal/home"
	"github.com/balonis/storefront/pkg/backend"
	"github.com/balonis/storefront/pkg/config"
	pkgerrors "github.com/balonis/storefront/pkg/errors"
	"github.com/balonis/storefront/pkg/logger"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubBackend struct {
	mu       sync.Mutex
	queries  []url.Values
	pingErr  error
	products map[string]backend.Product

	categoryFailures int
	categoryCalls    int
}

func newStubBackend() *stubBackend {
	return &stubBackend{products: map[string]backend.Product{
		"luk": {ID: 1, Name: "Łuk", Slug: "luk", BasePrice: decimal.NewFromInt(100),
			DiscountPrice: decimal.NewNullDecimal(decimal.NewFromInt(80)), HasDiscount: true},
	}}
}

func (s *stubBackend) Ping(context.Context) error { return s.pingErr }

func (s *stubBackend) Product(_ context.Context, slug string) (*backend.Product, error) {
	p, ok := s.products[slug]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &p, nil
}

func (s *stubBackend) Products(_ context.Context, query url.Values) ([]backend.Product, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if query.Get("search") == "none" {
		return []backend.Product{}, nil
	}
	return []backend.Product{s.products["luk"]}, nil
}

func (s *stubBackend) Categories(context.Context) ([]backend.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryCalls++
	if s.categoryFailures > 0 {
		s.categoryFailures--
		return nil, errors.New("categories unavailable")
	}
	return []backend.Category{{ID: 1, Name: "Urodziny", Slug: "urodziny"}}, nil
}

func (s *stubBackend) Colors(context.Context) ([]backend.Color, error) {
	return []backend.Color{{ID: 1, Name: "Red"}}, nil
}

func (s *stubBackend) Sources(context.Context) ([]backend.Source, error) {
	return []backend.Source{{ID: 1, Name: "Allegro"}}, nil
}

func (s *stubBackend) lastQuery() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

type stubHome struct{}

func (stubHome) Load(context.Context) home.Page {
	return home.Page{Products: []backend.Product{{ID: 1, Name: "Polecany"}}}
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "dev"},
		Catalog: config.CatalogConfig{SettleTimeout: 2 * time.Second},
		Session: config.SessionConfig{TTL: time.Minute},
		CORS:    config.CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T, api *stubBackend, redisPinger interface{ Ping(context.Context) error }) http.Handler {
	t.Helper()
	renderer, err := views.New()
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	reg := catalog.NewRegistry(api, catalog.RegistryConfig{MaxSessions: 10, TTL: time.Minute}, catalog.RegistryOptions{})
	t.Cleanup(reg.Close)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("metrics")) })
	return NewRouter(testConfig(), logger.Nop(), api, redisPinger, reg, stubHome{}, renderer, metrics)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

type catalogEnvelope struct {
	Data struct {
		View     string          `json:"view"`
		Filters  catalog.Filters `json:"filters"`
		Products []struct {
			Name  string        `json:"name"`
			Price catalog.Price `json:"price"`
		} `json:"products"`
		Categories []backend.Category `json:"categories"`
	} `json:"data"`
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, newStubBackend(), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if w.Code != http.StatusOK || w.Header().Get("X-Balonis-Env") != "dev" {
		t.Fatalf("unexpected live response %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"redis":"disabled"`) {
		t.Fatalf("unexpected ready response %d %s", w.Code, w.Body.String())
	}
}

func TestReadyFailsWhenRedisDown(t *testing.T) {
	router := newTestRouter(t, newStubBackend(), stubPinger{err: errors.New("refused")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusBadGateway || !strings.Contains(w.Body.String(), `"redis":"down"`) {
		t.Fatalf("expected dependency failure, got %d %s", w.Code, w.Body.String())
	}
}

func TestCatalogPageAppliesURLFilters(t *testing.T) {
	api := newStubBackend()
	router := newTestRouter(t, api, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog?category=urodziny&color=", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "80 zł") || !strings.Contains(body, "100 zł") {
		t.Fatalf("expected discounted price in page")
	}
	q := api.lastQuery()
	if q.Get("category") != "urodziny" || q.Has("color") || len(q) != 1 {
		t.Fatalf("unexpected backend query %v", q)
	}
	sessionCookie(t, w.Result())
}

func TestCatalogReloadRecoversFromBootstrapError(t *testing.T) {
	api := newStubBackend()
	api.categoryFailures = 1
	router := newTestRouter(t, api, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `class="error-panel"`) {
		t.Fatalf("expected error panel on first load, got %d", w.Code)
	}
	cookie := sessionCookie(t, w.Result())

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	if strings.Contains(body, `class="error-panel"`) || !strings.Contains(body, "80 zł") {
		t.Fatalf("reload should load the catalog again, got %s", body)
	}
	api.mu.Lock()
	calls := api.categoryCalls
	api.mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected lookups to be fetched again, got %d calls", calls)
	}
}

func TestCatalogAPIFlow(t *testing.T) {
	api := newStubBackend()
	router := newTestRouter(t, api, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	cookie := sessionCookie(t, w.Result())

	post := func(path, body string) catalogEnvelope {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d %s", path, w.Code, w.Body.String())
		}
		var env catalogEnvelope
		if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return env
	}

	env := post("/api/catalog/filters", `{"field":"search","value":"none"}`)
	if env.Data.View != string(catalog.ViewEmpty) || env.Data.Filters.Search != "none" {
		t.Fatalf("unexpected state %+v", env.Data)
	}

	env = post("/api/catalog/filters", `{"field":"color","value":"Red"}`)
	if q := api.lastQuery(); q.Get("color") != "Red" || q.Get("search") != "none" {
		t.Fatalf("filters should accumulate, got %v", q)
	}

	env = post("/api/catalog/filters/clear", "")
	if env.Data.View != string(catalog.ViewGrid) || len(env.Data.Products) != 1 {
		t.Fatalf("unexpected state after clear %+v", env.Data)
	}
	if env.Data.Products[0].Price.Current != "80 zł" {
		t.Fatalf("expected price in JSON, got %+v", env.Data.Products[0].Price)
	}
	if q := api.lastQuery(); len(q) != 0 {
		t.Fatalf("clear should query without parameters, got %v", q)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var snap catalogEnvelope
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.Data.Categories) != 1 || !snap.Data.Filters.IsEmpty() {
		t.Fatalf("unexpected snapshot %+v", snap.Data)
	}
}

func TestCatalogAPIRejectsUnknownField(t *testing.T) {
	router := newTestRouter(t, newStubBackend(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/catalog/filters", strings.NewReader(`{"field":"price","value":"1"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRetryPageRedirectsWithFilters(t *testing.T) {
	router := newTestRouter(t, newStubBackend(), nil)

	form := url.Values{"color": {"Red"}, "search": {""}}
	req := httptest.NewRequest(http.MethodPost, "/catalog/retry", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/catalog?color=Red" {
		t.Fatalf("unexpected redirect %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestRetryPageRejectsOverlongFilter(t *testing.T) {
	router := newTestRouter(t, newStubBackend(), nil)

	form := url.Values{"color": {strings.Repeat("c", 101)}}
	req := httptest.NewRequest(http.MethodPost, "/catalog/retry", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an overlong color, got %d", w.Code)
	}
}

func TestProductPage(t *testing.T) {
	router := newTestRouter(t, newStubBackend(), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog/luk", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Łuk") {
		t.Fatalf("unexpected product page %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog/missing", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Nie znaleziono strony") {
		t.Fatalf("expected 404 page, got %d", w.Code)
	}
}

func TestHomeAndMetrics(t *testing.T) {
	router := newTestRouter(t, newStubBackend(), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Polecany") {
		t.Fatalf("unexpected home page %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/home", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"products"`) {
		t.Fatalf("unexpected home data %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Body.String() != "metrics" {
		t.Fatalf("metrics handler not mounted")
	}
}
