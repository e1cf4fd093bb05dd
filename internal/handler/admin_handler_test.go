package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/kalagasite/internal/auth"
	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/db"
	"github.com/kalagasite/internal/metrics"
	"github.com/kalagasite/internal/middleware"
	"github.com/kalagasite/internal/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

type stubHTMLRender struct {
	mu       sync.Mutex
	rendered []*stubHTMLInstance
}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	instance := &stubHTMLInstance{name: name, data: data}
	r.mu.Lock()
	r.rendered = append(r.rendered, instance)
	r.mu.Unlock()
	return instance
}

func (r *stubHTMLRender) last(t *testing.T) (string, gin.H) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rendered) == 0 {
		t.Fatal("expected a template to be rendered")
	}
	instance := r.rendered[len(r.rendered)-1]
	data, _ := instance.data.(gin.H)
	return instance.name, data
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type stubCredentials struct {
	username string
	password string
}

func (s stubCredentials) Verify(username, password string) (*db.User, error) {
	if username == s.username && password == s.password {
		return &db.User{Model: gorm.Model{ID: 1}, Username: username}, nil
	}
	return nil, auth.ErrInvalidCredentials
}

type testServer struct {
	api     *API
	store   store.Store
	hub     *auth.Hub
	metrics *metrics.Metrics
	render  *stubHTMLRender
	router  *gin.Engine
}

func newTestServer(t *testing.T, st store.Store, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if st == nil {
		st = store.NewMemoryStore()
	}
	hub := auth.NewHub(0, nil)
	m := metrics.New()
	api := NewAPI(Options{
		Store:        st,
		Hub:          hub,
		Credentials:  stubCredentials{username: "admin", password: "secret"},
		Metrics:      m,
		Retry:        store.NoRetry,
		LoginLimiter: limiter,
	})

	stub := &stubHTMLRender{}
	r := gin.New()
	r.HTMLRender = stub
	r.Use(sessions.Sessions("kalaga_session", cookie.NewStore([]byte("test-secret"))))

	r.GET("/about", api.ShowSectionPage(content.SectionAbout))
	r.GET("/services", api.ShowSectionPage(content.SectionServices))
	r.GET("/products", api.ShowSectionPage(content.SectionProduct))
	r.GET("/contact", api.ShowContact)
	r.POST("/contact", api.SubmitContactForm)
	r.GET("/api/content/:section", api.GetContent)
	r.GET("/api/products", api.GetPublicProducts)
	r.POST("/api/contact", api.SubmitContact)

	r.GET("/admin/login", api.ShowLoginPage)
	r.POST("/admin/login", api.Login)
	r.GET("/admin/logout", api.Logout)

	admin := r.Group("/admin", api.AuthRequired())
	admin.GET("/dashboard", api.ShowDashboard)
	admin.GET("/about", api.ShowSectionEditor(content.SectionAbout))
	admin.GET("/products", api.ShowProductManager)
	admin.GET("/contact-submissions", api.ShowSubmissions)

	apiGroup := admin.Group("/api")
	apiGroup.GET("/sections/:section", api.GetSection)
	apiGroup.POST("/sections/:section/reload", api.ReloadSection)
	apiGroup.PUT("/sections/:section/field", api.UpdateSectionField)
	apiGroup.POST("/sections/:section/items", api.AddSectionItem)
	apiGroup.POST("/sections/:section/items/remove", api.RemoveSectionItem)
	apiGroup.POST("/sections/:section/save", api.SaveSection)
	apiGroup.GET("/products", api.ListProducts)
	apiGroup.POST("/products", api.CreateProduct)
	apiGroup.DELETE("/products/:id", api.DeleteProduct)
	apiGroup.GET("/contacts", api.ListSubmissions)
	apiGroup.DELETE("/contacts/:id", api.DeleteSubmission)
	apiGroup.POST("/contacts/bulk-delete", api.BulkDeleteSubmissions)
	apiGroup.POST("/uploads", api.UploadImage)

	return &testServer{api: api, store: st, hub: hub, metrics: m, render: stub, router: r}
}

func (s *testServer) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) login(t *testing.T) []*http.Cookie {
	t.Helper()
	form := url.Values{"username": {"admin"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := s.do(req)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/dashboard" {
		t.Fatalf("login failed: status %d location %q", rr.Code, rr.Header().Get("Location"))
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie after login")
	}
	return cookies
}

func TestAuthRequiredRedirectsPagesAndRejectsAPI(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = srv.do(httptest.NewRequest(http.MethodGet, "/admin/api/sections/about", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for API, got %d", rr.Code)
	}
}

func TestLoginThenLogoutEndsSession(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	cookies := srv.login(t)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), cookies...)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected dashboard, got %d", rr.Code)
	}
	name, data := srv.render.last(t)
	if name != "dashboard.html" {
		t.Fatalf("unexpected template %s", name)
	}
	if data["username"] != "admin" {
		t.Fatalf("expected username in page data, got %v", data["username"])
	}

	rr = srv.do(httptest.NewRequest(http.MethodGet, "/admin/logout", nil), cookies...)
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/login" {
		t.Fatalf("unexpected logout response %d %q", rr.Code, rr.Header().Get("Location"))
	}

	// 旧 cookie 仍携带 token，但服务端会话已结束
	rr = srv.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), cookies...)
	if rr.Code != http.StatusFound {
		t.Fatalf("expected redirect after logout, got %d", rr.Code)
	}
	if got := testutil.ToFloat64(srv.metrics.LoginAttempts.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected one successful login, got %v", got)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := srv.do(req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	name, data := srv.render.last(t)
	if name != "login.html" || data["error"] != "Invalid username or password" {
		t.Fatalf("unexpected render %s %v", name, data["error"])
	}
	if got := testutil.ToFloat64(srv.metrics.LoginAttempts.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("expected one rejected login, got %v", got)
	}
}

func TestLoginIsThrottled(t *testing.T) {
	limiter := middleware.NewRateLimiter("login", 0.001, 1, nil)
	srv := newTestServer(t, nil, limiter)

	post := func() int {
		form := url.Values{"username": {"admin"}, "password": {"wrong"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return srv.do(req).Code
	}

	if code := post(); code != http.StatusUnauthorized {
		t.Fatalf("expected first attempt to reach verification, got %d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("expected second attempt to be throttled, got %d", code)
	}
}

func TestLogoutDropsEditorWorkspaces(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	cookies := srv.login(t)

	rr := srv.do(httptest.NewRequest(http.MethodGet, "/admin/api/sections/about", nil), cookies...)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected section, got %d", rr.Code)
	}
	if srv.api.Workspaces().Len() != 1 {
		t.Fatalf("expected one workspace, got %d", srv.api.Workspaces().Len())
	}

	srv.do(httptest.NewRequest(http.MethodGet, "/admin/logout", nil), cookies...)
	if srv.api.Workspaces().Len() != 0 {
		t.Fatalf("expected workspaces to be dropped, got %d", srv.api.Workspaces().Len())
	}
}

func TestWatchSessionEndsOnSignOut(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	session := srv.hub.SignIn(1, "admin")
	srv.router.GET("/test/session", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(sessionTokenKey, session.Token)
		_ = s.Save()
	})
	srv.router.GET("/watch", srv.api.AuthRequired(), srv.api.WatchSession)
	cookies := srv.do(httptest.NewRequest(http.MethodGet, "/test/session", nil)).Result().Cookies()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/watch", nil).WithContext(ctx)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- srv.do(req, cookies...)
	}()

	// 守卫挂载期间有两个订阅：AuthRequired 一个，WatchSession 一个
	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ListenerCount(session.Token) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("watch stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	srv.hub.SignOut(session.Token)

	var rr *httptest.ResponseRecorder
	select {
	case rr = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch stream did not end after sign-out")
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"state":"authenticated"`) || !strings.Contains(body, `"state":"unauthenticated"`) {
		t.Fatalf("expected both auth events, got %q", body)
	}
}
