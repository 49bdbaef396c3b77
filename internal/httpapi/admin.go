package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mindweek/internal/identity/local"
)

// AdminHandler exposes account-lifecycle operations of the local
// identity backend. Registered only when that backend is active.
type AdminHandler struct {
	accounts *local.Service
}

func NewAdminHandler(accounts *local.Service) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

func (h *AdminHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/admin/accounts/disable", h.Disable)
}

type disableRequest struct {
	Email string `json:"email"`
}

// Disable turns the account off and pushes a signed-out notification
// to the session store, which clears any held session.
func (h *AdminHandler) Disable(c *gin.Context) {
	var req disableRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	if err := h.accounts.Disable(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
