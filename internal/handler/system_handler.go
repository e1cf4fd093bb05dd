package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalagasite/internal/store"
)

// HealthCheck 提供部署平台与监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	pinger, ok := a.store.(store.Pinger)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "unchecked"})
		return
	}

	if err := pinger.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}
