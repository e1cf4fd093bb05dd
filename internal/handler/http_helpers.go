package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionTokenKey = "token"
	sessionUserKey  = "username"
	sessionCtxKey   = "__admin_session"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func sessionToken(c *gin.Context) string {
	token, _ := sessions.Default(c).Get(sessionTokenKey).(string)
	return token
}

func isAPIRequest(c *gin.Context) bool {
	path := c.Request.URL.Path
	return strings.HasPrefix(path, "/admin/api/") || strings.HasPrefix(path, "/api/")
}
