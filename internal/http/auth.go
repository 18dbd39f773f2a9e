package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncrementRegistrations("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		h.metrics.IncrementRegistrations(outcome(err))
		h.writeError(c, err)
		return
	}

	h.metrics.IncrementRegistrations("created")
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    userToResponse(*user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncrementLoginAttempts("invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing credentials"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.IncrementLoginAttempts(outcome(err))
		h.writeError(c, err)
		return
	}

	previous, _ := c.Cookie(h.cfg.CookieName)
	token, err := h.sessions.Start(c.Request.Context(), previous, user.ID)
	if err != nil {
		h.metrics.IncrementLoginAttempts("error")
		h.writeError(c, err)
		return
	}

	h.metrics.IncrementLoginAttempts("success")
	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully"})
}

func (h *Handler) logout(c *gin.Context) {
	token, _ := c.Cookie(h.cfg.CookieName)
	if err := h.sessions.End(c.Request.Context(), token); err != nil {
		h.writeError(c, err)
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
