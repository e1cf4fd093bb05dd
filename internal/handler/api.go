package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/auth"
	"github.com/kalagasite/internal/db"
	"github.com/kalagasite/internal/editor"
	"github.com/kalagasite/internal/media"
	"github.com/kalagasite/internal/metrics"
	"github.com/kalagasite/internal/middleware"
	"github.com/kalagasite/internal/service"
	"github.com/kalagasite/internal/store"
	"go.uber.org/zap"
)

// CredentialVerifier 校验后台账号密码
type CredentialVerifier interface {
	Verify(username, password string) (*db.User, error)
}

// Options collects the dependencies of the HTTP handlers.
type Options struct {
	Store        store.Store
	Hub          *auth.Hub
	Credentials  CredentialVerifier
	Uploader     media.Uploader
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
	Retry        store.RetryPolicy
	LoginLimiter *middleware.RateLimiter
	SiteName     string
	SiteFooter   string
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	store       store.Store
	contents    *service.ContentService
	contacts    *service.ContactService
	products    *service.ProductService
	dashboard   *service.DashboardService
	workspaces  *editor.Workspaces
	hub         *auth.Hub
	credentials CredentialVerifier
	uploader    media.Uploader
	metrics     *metrics.Metrics
	log         *zap.Logger
	loginLimit  *middleware.RateLimiter
	site        siteViewModel
	now         func() time.Time
}

type siteViewModel struct {
	Name   string
	Footer string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	hub := opts.Hub
	if hub == nil {
		hub = auth.NewHub(0, log)
	}

	site := siteViewModel{
		Name:   strings.TrimSpace(opts.SiteName),
		Footer: strings.TrimSpace(opts.SiteFooter),
	}
	if site.Name == "" {
		site.Name = "Dr. KVGS Murthy"
	}
	if site.Footer == "" {
		site.Footer = "KALAGA Herbal Research Labs"
	}

	contents := service.NewContentService(opts.Store, log).WithRetry(opts.Retry)
	workspaces := editor.NewWorkspaces(opts.Store, editor.Options{
		Retry:  opts.Retry,
		Logger: log,
		OnSave: opts.Metrics.ObserveSave,
	})
	hub.OnSessionEnd(func(token string) {
		if n := workspaces.Drop(token); n > 0 {
			log.Debug("dropped editor workspaces", zap.Int("count", n))
		}
	})

	return &API{
		store:       opts.Store,
		contents:    contents,
		contacts:    service.NewContactService(opts.Store, log),
		products:    service.NewProductService(opts.Store),
		dashboard:   service.NewDashboardService(opts.Store, contents),
		workspaces:  workspaces,
		hub:         hub,
		credentials: opts.Credentials,
		uploader:    opts.Uploader,
		metrics:     opts.Metrics,
		log:         log,
		loginLimit:  opts.LoginLimiter,
		site:        site,
		now:         time.Now,
	}
}

// Workspaces exposes the editor registry for background eviction.
func (a *API) Workspaces() *editor.Workspaces {
	return a.workspaces
}

// Hub exposes the session hub.
func (a *API) Hub() *auth.Hub {
	return a.hub
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = gin.H{
			"name":   a.site.Name,
			"footer": a.site.Footer,
			"year":   a.now().Year(),
		}
	}
	if _, exists := payload["title"]; !exists {
		payload["title"] = a.site.Name
	}
	if _, exists := payload["active"]; !exists {
		payload["active"] = ""
	}

	c.HTML(status, template, payload)
}

// RenderHTML 在渲染模板时附加站点名称、页脚与导航信息。
func (a *API) RenderHTML(c *gin.Context, status int, template string, data gin.H) {
	a.renderHTML(c, status, template, data)
}
