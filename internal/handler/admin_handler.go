package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/auth"
	"github.com/kalagasite/internal/content"
	"github.com/kalagasite/internal/view"
	"go.uber.org/zap"
)

func (a *API) adminPage(c *gin.Context, active, title string, data gin.H) gin.H {
	payload := gin.H{
		"title":  title,
		"nav":    view.AdminNav(),
		"active": active,
	}
	if session := currentSession(c); session != nil {
		payload["username"] = session.Username
	}
	for key, value := range data {
		payload[key] = value
	}
	return payload
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	if _, ok := a.hub.Lookup(sessionToken(c)); ok {
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{"title": "Admin Login"})
}

// Login 校验账号密码并建立后台会话
func (a *API) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if a.loginLimit != nil && !a.loginLimit.Allow("login:"+c.ClientIP()) {
		a.observeLogin("throttled")
		a.renderHTML(c, http.StatusTooManyRequests, "login.html", gin.H{
			"title":    "Admin Login",
			"username": username,
			"error":    "Too many login attempts. Please wait a moment and try again.",
		})
		return
	}

	if a.credentials == nil {
		a.observeLogin("error")
		a.renderHTML(c, http.StatusServiceUnavailable, "login.html", gin.H{
			"title": "Admin Login", "username": username, "error": "Login is not available",
		})
		return
	}

	user, err := a.credentials.Verify(username, password)
	if err != nil {
		status := http.StatusInternalServerError
		message := "Unable to sign in right now. Please try again."
		if errors.Is(err, auth.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
			message = "Invalid username or password"
			a.observeLogin("rejected")
		} else {
			a.log.Error("verify admin credentials failed", zap.Error(err))
			a.observeLogin("error")
		}
		a.renderHTML(c, status, "login.html", gin.H{"title": "Admin Login", "username": username, "error": message})
		return
	}

	signedIn := a.hub.SignIn(user.ID, user.Username)
	session := sessions.Default(c)
	session.Set(sessionTokenKey, signedIn.Token)
	session.Set(sessionUserKey, signedIn.Username)
	if err := session.Save(); err != nil {
		a.hub.SignOut(signedIn.Token)
		a.observeLogin("error")
		a.renderHTML(c, http.StatusInternalServerError, "login.html", gin.H{
			"title": "Admin Login", "username": username, "error": "Failed to save the session",
		})
		return
	}

	a.observeLogin("ok")
	c.Redirect(http.StatusFound, "/admin/dashboard")
}

func (a *API) observeLogin(result string) {
	if a.metrics != nil {
		a.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

// Logout 结束会话，所有订阅该会话的守卫都会收到未登录通知
func (a *API) Logout(c *gin.Context) {
	a.hub.SignOut(sessionToken(c))
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	stats, err := a.dashboard.Stats(c.Request.Context())
	data := gin.H{"stats": stats, "sections": content.Sections()}
	if err != nil {
		a.log.Warn("load dashboard stats failed", zap.Error(err))
		data["statsError"] = "Some counts could not be loaded."
	}
	a.renderHTML(c, http.StatusOK, "dashboard.html", a.adminPage(c, "dashboard", "Dashboard", data))
}

// AuthRequired mounts a guard over the request's session for the lifetime of
// the request. Pages redirect to the login view; API calls get 401.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		guard := auth.NewGuard(a.hub.Source(sessionToken(c)))
		guard.Mount(nil)
		defer guard.Unmount()

		if guard.State() != auth.StateAuthenticated {
			a.denyAccess(c)
			return
		}
		c.Set(sessionCtxKey, guard.Session())
		c.Next()
	}
}

func (a *API) denyAccess(c *gin.Context) {
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.Redirect(http.StatusFound, "/admin/login")
	c.Abort()
}

func currentSession(c *gin.Context) *auth.Session {
	if value, ok := c.Get(sessionCtxKey); ok {
		if session, ok := value.(*auth.Session); ok {
			return session
		}
	}
	return nil
}

// WatchSession streams auth state changes as server-sent events until the
// session ends or the client disconnects.
func (a *API) WatchSession(c *gin.Context) {
	states := make(chan auth.State, 4)
	guard := auth.NewGuard(a.hub.Source(sessionToken(c)))
	guard.Mount(func(state auth.State, _ *auth.Session) {
		select {
		case states <- state:
		default:
		}
	})
	defer guard.Unmount()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-states:
			c.SSEvent("auth", gin.H{"state": state.String()})
			c.Writer.Flush()
			if state != auth.StateAuthenticated {
				return
			}
		}
	}
}
