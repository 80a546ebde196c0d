package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/matzehuels/srcsetlab/pkg/errors"
	"github.com/matzehuels/srcsetlab/pkg/imgparams"
	"github.com/matzehuels/srcsetlab/pkg/integrations/unsplash"
	"github.com/matzehuels/srcsetlab/pkg/srcset"
)

const (
	defaultImage = "https://images.unsplash.com/photo-default?ixid=abc"
	otherPage    = "https://unsplash.com/photos/other"
	otherImage   = "https://images.unsplash.com/photo-other"
)

type fakeResolver struct {
	calls atomic.Int32
}

func (f *fakeResolver) ResolveImageURL(_ context.Context, page string) (string, error) {
	f.calls.Add(1)
	switch page {
	case imgparams.DefaultSourceURL:
		return defaultImage, nil
	case otherPage:
		return otherImage, nil
	}
	return "", apperrors.New(apperrors.ErrCodeNotFound, "photo %s", page)
}

func newTestServer(t *testing.T) (*Server, *fakeResolver) {
	t.Helper()
	res := &fakeResolver{}
	return New(Options{Resolver: res}), res
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatal("no sandbox cookie set")
	return nil
}

func TestPageResolvesDefaultSource(t *testing.T) {
	s, res := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("viewing the page should not create a sandbox")
	}

	body := rec.Body.String()
	// Default widths run 300..600 with retina twins up to 1200.
	for _, want := range []string{
		"&lt;img",
		"photo-default",
		"300w", "600w", "1200w",
		`value="` + imgparams.DefaultSourceURL + `"`,
		"object-fit",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	for i := 0; i < 3; i++ {
		do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if n := res.calls.Load(); n != 1 {
		t.Errorf("resolver called %d times, want 1 for the shared default", n)
	}
	if n := s.store.Len(); n != 0 {
		t.Errorf("store holds %d sandboxes, want 0", n)
	}
}

func TestPageDefaultRetry(t *testing.T) {
	var calls atomic.Int32
	s := New(Options{Resolver: unsplash.ResolverFunc(func(context.Context, string) (string, error) {
		calls.Add(1)
		return "", apperrors.New(apperrors.ErrCodeNetwork, "down")
	})})
	now := time.Unix(0, 0)
	s.now = func() time.Time { return now }

	do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if n := calls.Load(); n != 1 {
		t.Fatalf("resolver called %d times before the retry interval, want 1", n)
	}

	now = now.Add(defaultRetry)
	do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if n := calls.Load(); n != 2 {
		t.Errorf("resolver called %d times after the retry interval, want 2", n)
	}
}

func TestPageWithoutImage(t *testing.T) {
	s := New(Options{Resolver: unsplash.ResolverFunc(func(context.Context, string) (string, error) {
		return "", apperrors.New(apperrors.ErrCodeNetwork, "down")
	})})

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "No image yet") || strings.Contains(body, "&lt;img") {
		t.Errorf("page should not list markup before a source resolves:\n%s", body)
	}
}

func TestPageParams(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/?form=1&breakpoints=1&min_width=100&max_width=200&debug=true", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "100w") || !strings.Contains(body, "200w") {
		t.Errorf("page missing requested widths")
	}
	if strings.Contains(body, "400w") {
		t.Errorf("retina candidates present after unchecking retina")
	}
	if !strings.Contains(body, "src original") && !strings.Contains(body, "src%20original") {
		t.Errorf("debug text missing from src")
	}
}

func postSource(t *testing.T, s *Server, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/source", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return do(t, s, req)
}

func TestSourceRedirects(t *testing.T) {
	s, _ := newTestServer(t)

	rec := postSource(t, s, url.Values{"url": {otherPage}, "breakpoints": {"3"}}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	cookie := sessionCookie(t, rec)
	if n := s.store.Len(); n != 1 {
		t.Errorf("store holds %d sandboxes, want 1", n)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil || loc.Path != "/" || loc.Query().Get("breakpoints") != "3" {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodGet, loc.String(), nil)
	req.AddCookie(cookie)
	body := do(t, s, req).Body.String()
	if !strings.Contains(body, "photo-other") || strings.Contains(body, "photo-default") {
		t.Error("page should show the newly resolved image")
	}
}

func TestSourceFailureKeepsImage(t *testing.T) {
	s, _ := newTestServer(t)
	cookie := sessionCookie(t, postSource(t, s, url.Values{"url": {"https://unsplash.com/photos/missing"}}, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	body := do(t, s, req).Body.String()
	if !strings.Contains(body, "photo-default") {
		t.Error("failed lookup replaced the previous image")
	}
}

func TestReset(t *testing.T) {
	s, _ := newTestServer(t)
	cookie := sessionCookie(t, postSource(t, s, url.Values{"url": {otherPage}}, nil))

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.AddCookie(cookie)
	rec := do(t, s, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if c := sessionCookie(t, rec); c.MaxAge >= 0 {
		t.Errorf("cookie MaxAge = %d, want expired", c.MaxAge)
	}
	if n := s.store.Len(); n != 0 {
		t.Errorf("store holds %d sandboxes after reset, want 0", n)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	body := do(t, s, req).Body.String()
	if !strings.Contains(body, "photo-default") || strings.Contains(body, "photo-other") {
		t.Error("page after reset should fall back to the default image")
	}
}

func TestPageBreakpointBounds(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/?breakpoints=9223372036854775807&retina=false", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="breakpoints" value="15"`) {
		t.Error("breakpoints not clamped to the control maximum")
	}
	// 15 steps over 300..600 are 20px apart.
	if !strings.Contains(body, "320w") {
		t.Error("page missing the clamped widths")
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/?min_width=500&max_width=100", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body = rec.Body.String()
	if !strings.Contains(body, "max width 100 is below min width 500") || strings.Contains(body, "&lt;img") {
		t.Errorf("page should explain rejected parameters instead of listing markup")
	}
}

func TestAPISrcset(t *testing.T) {
	s, res := newTestServer(t)

	q := url.Values{
		"url":         {"https://images.unsplash.com/photo-1"},
		"breakpoints": {"2"},
		"min_width":   {"100"},
		"max_width":   {"200"},
		"retina":      {"false"},
		"debug":       {"false"},
	}
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/srcset?"+q.Encode(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got srcset.Result
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Widths) != 3 || got.Widths[0] != 100 || got.Widths[1] != 150 || got.Widths[2] != 200 {
		t.Errorf("Widths = %v", got.Widths)
	}
	if got.Src != "https://images.unsplash.com/photo-1" {
		t.Errorf("Src = %q", got.Src)
	}
	if want := "https://images.unsplash.com/photo-1?w=100 100w"; !strings.HasPrefix(got.SrcSet, want) {
		t.Errorf("SrcSet = %q, want prefix %q", got.SrcSet, want)
	}
	if res.calls.Load() != 0 {
		t.Error("API request without a cookie should not create a sandbox")
	}
}

func TestAPISrcsetErrors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		query string
		code  apperrors.Code
	}{
		{"", apperrors.ErrCodeInvalidInput},
		{"url=ftp://example.com/x", apperrors.ErrCodeInvalidURL},
		{"url=https://images.unsplash.com/x&breakpoints=0", apperrors.ErrCodeInvalidParams},
		{"url=https://images.unsplash.com/x&breakpoints=16", apperrors.ErrCodeInvalidParams},
		{"url=https://images.unsplash.com/x&breakpoints=3000000&retina=true&debug=true", apperrors.ErrCodeInvalidParams},
		{"url=https://images.unsplash.com/x&breakpoints=9223372036854775807", apperrors.ErrCodeInvalidParams},
		{"url=https://images.unsplash.com/x&min_width=500&max_width=100", apperrors.ErrCodeInvalidParams},
	}
	for _, tt := range tests {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/srcset?"+tt.query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", tt.query, rec.Code)
		}
		var body errorBody
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%q: decode: %v", tt.query, err)
		}
		if body.Error.Code != tt.code {
			t.Errorf("%q: code = %q, want %q", tt.query, body.Error.Code, tt.code)
		}
	}
}

func TestAPIResolve(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/resolve?url="+url.QueryEscape(otherPage), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got map[string]string
	json.NewDecoder(rec.Body).Decode(&got)
	if got["image_url"] != otherImage {
		t.Errorf("image_url = %q", got["image_url"])
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/resolve?url=https://unsplash.com/photos/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/resolve", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ListenAndServe(ctx, "127.0.0.1:0", func(a net.Addr) { addrCh <- a.String() })
	}()

	addr := <-addrCh
	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("ListenAndServe() = %v, want nil after shutdown", err)
	}
}
