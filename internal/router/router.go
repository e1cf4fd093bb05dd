package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/handler"
	"github.com/kalagasite/internal/metrics"
	"github.com/kalagasite/internal/middleware"
	"github.com/kalagasite/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SessionCookieName 后台会话 cookie 名称
const SessionCookieName = "kalaga_session"

// Options 配置路由所需的依赖
type Options struct {
	API           *handler.API
	SessionSecret string
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	UploadDir     string
	UploadURLPath string
	// ContactLimiter throttles contact submissions; nil disables throttling.
	ContactLimiter *middleware.RateLimiter
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) (*gin.Engine, error) {
	if opts.API == nil {
		return nil, fmt.Errorf("router: handler API is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log, opts.Metrics))

	// 配置会话中间件
	secret := opts.SessionSecret
	if secret == "" {
		secret = "kalaga-dev-secret"
	}
	sessionStore := cookie.NewStore([]byte(secret))
	sessionStore.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(SessionCookieName, sessionStore))

	tmpl, err := web.Templates(handler.TemplateFuncs())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	r.StaticFS("/static", http.FS(web.Static()))
	mountUploads(r, opts.UploadDir, opts.UploadURLPath)

	contactGuard := func(c *gin.Context) { c.Next() }
	if opts.ContactLimiter != nil {
		contactGuard = opts.ContactLimiter.Middleware()
	}

	api := opts.API

	// 前台页面
	r.GET("/", api.ShowSectionPage(content.SectionHome))
	r.GET("/home", api.ShowSectionPage(content.SectionHome))
	r.GET("/about", api.ShowSectionPage(content.SectionAbout))
	r.GET("/services", api.ShowSectionPage(content.SectionServices))
	r.GET("/products", api.ShowSectionPage(content.SectionProduct))
	r.GET("/companies", api.ShowSectionPage(content.SectionCompanies))
	r.GET("/social-services", api.ShowSectionPage(content.SectionSocialServices))
	r.GET("/contact", api.ShowContact)
	r.POST("/contact", contactGuard, api.SubmitContactForm)

	public := r.Group("/api")
	{
		public.GET("/content/:section", api.GetContent)
		public.GET("/products", api.GetPublicProducts)
		public.POST("/contact", contactGuard, api.SubmitContact)
	}

	r.GET("/healthz", api.HealthCheck)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)
		admin.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/admin/dashboard")
		})

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/dashboard", api.ShowDashboard)
			auth.GET("/home", api.ShowSectionEditor(content.SectionHome))
			auth.GET("/about", api.ShowSectionEditor(content.SectionAbout))
			auth.GET("/services", api.ShowSectionEditor(content.SectionServices))
			auth.GET("/companies", api.ShowSectionEditor(content.SectionCompanies))
			auth.GET("/social-services", api.ShowSectionEditor(content.SectionSocialServices))
			auth.GET("/contact", api.ShowSectionEditor(content.SectionContact))
			auth.GET("/products", api.ShowProductManager)
			auth.GET("/contact-submissions", api.ShowSubmissions)

			// API路由
			apiGroup := auth.Group("/api")
			{
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
				apiGroup.GET("/session/watch", api.WatchSession)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/admin/") {
			// 未登录时由 dashboard 的守卫继续跳转到登录页
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		c.Redirect(http.StatusFound, "/")
	})

	return r, nil
}

// mountUploads 暴露上传目录；配置路径之外始终保留 /uploads 别名
func mountUploads(r *gin.Engine, dir, urlPath string) {
	if dir == "" {
		return
	}
	urlPath = "/" + strings.Trim(urlPath, "/")
	if urlPath == "/" || urlPath == "/static" || strings.HasPrefix(urlPath, "/static/") {
		urlPath = "/uploads"
	}
	r.Static(urlPath, dir)
	if urlPath != "/uploads" {
		r.Static("/uploads", dir)
	}
}
