package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	if _, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshotBody(h.sessions.Snapshot()))
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	_, warning, err := h.sessions.Register(
		c.Request.Context(),
		req.Name,
		req.Email,
		req.Password,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	body := snapshotBody(h.sessions.Snapshot())

	// The registration itself stands even when the profile write
	// failed; surface that as a warning, not an error.
	if warning != nil {
		body["warning"] = "Account created, but saving your profile failed."
	}

	c.JSON(http.StatusCreated, body)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, snapshotBody(h.sessions.Snapshot()))
}
