package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Theme(c *gin.Context) {
	c.JSON(http.StatusOK, h.themes.Current())
}

func (h *Handler) ToggleTheme(c *gin.Context) {
	c.JSON(http.StatusOK, h.themes.Toggle(c.Request.Context()))
}
