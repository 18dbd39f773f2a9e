package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/service"
)

const ownerKey = "owner_id"

// requireSession is the only way into owner-scoped routes. A request without
// a live session is answered here and never reaches a repository.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(h.cfg.CookieName)
		userID, err := h.sessions.Current(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				h.metrics.IncrementSessionsRejected()
				if token != "" {
					h.clearSessionCookie(c)
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				return
			}
			h.writeError(c, err)
			c.Abort()
			return
		}

		c.Set(ownerKey, userID)
		// slide the browser-side expiry along with the server-side one
		h.setSessionCookie(c, token)
		c.Next()
	}
}

func ownerID(c *gin.Context) int64 {
	return c.MustGet(ownerKey).(int64)
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, int(h.sessions.IdleTimeout().Seconds()), "/", "", h.cfg.CookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	// drop any refresh issued earlier in this request
	c.Writer.Header().Del("Set-Cookie")
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
}

// requestLogger emits one entry per request and records its latency.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.metrics.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)

		entry := h.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": elapsed.String(),
		})
		if id, ok := c.Get(ownerKey); ok {
			entry = entry.WithField("user_id", id)
		}
		if status >= http.StatusInternalServerError {
			entry.Error("request")
			return
		}
		entry.Info("request")
	}
}
