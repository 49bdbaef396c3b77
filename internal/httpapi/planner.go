package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Tasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.plans.Tasks()})
}

func (h *Handler) Captures(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"captures": h.plans.Captures()})
}
