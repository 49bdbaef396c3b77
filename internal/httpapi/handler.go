// Package httpapi exposes the session, theme, and planner stores to
// the presentation layer over HTTP.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mindweek/internal/auth"
	"mindweek/internal/identity"
	"mindweek/internal/logger"
	"mindweek/internal/middleware"
	"mindweek/internal/planner"
	"mindweek/internal/theme"
)

type Handler struct {
	sessions *auth.Store
	themes   *theme.Store
	plans    *planner.Store
}

func NewHandler(
	sessions *auth.Store,
	themes *theme.Store,
	plans *planner.Store,
) *Handler {
	return &Handler{
		sessions: sessions,
		themes:   themes,
		plans:    plans,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/logout", h.Logout)

	r.GET("/theme", h.Theme)
	r.POST("/theme/toggle", h.ToggleTheme)

	protected := r.Group("/")
	protected.Use(middleware.RequireAuthenticated(h.sessions))

	protected.GET("/auth/me", h.Me)
	protected.GET("/planner/tasks", h.Tasks)
	protected.GET("/planner/captures", h.Captures)
}

// snapshotBody shapes the published session view for clients.
func snapshotBody(snap auth.Snapshot) gin.H {
	body := gin.H{
		"is_authenticated": snap.Authenticated,
		"loading":          snap.Loading,
	}
	if snap.User != nil {
		body["user"] = gin.H{
			"id":    snap.User.UserID,
			"email": snap.User.Email,
			"name":  snap.User.DisplayName,
		}
	} else {
		body["user"] = nil
	}
	return body
}

// respondError maps the closed error taxonomy onto HTTP statuses.
// Bodies carry one-line human-readable messages only.
func respondError(c *gin.Context, err error) {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.UserMessage()})
		return
	}

	var serr *auth.StateError
	if errors.As(err, &serr) {
		status := http.StatusConflict
		if serr.Kind == auth.StateErrInitializing {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": serr.Message()})
		return
	}

	var iderr *identity.Error
	if errors.As(err, &iderr) {
		c.JSON(statusForReason(iderr.Reason), gin.H{
			"error":  iderr.Message(),
			"reason": string(iderr.Reason),
		})
		return
	}

	logger.Error("unclassified error reached the http layer", map[string]any{
		"error": err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Something went wrong. Please try again.",
	})
}

func statusForReason(reason identity.Reason) int {
	switch reason {
	case identity.ReasonUserNotFound, identity.ReasonWrongPassword:
		return http.StatusUnauthorized
	case identity.ReasonInvalidEmail, identity.ReasonWeakPassword:
		return http.StatusBadRequest
	case identity.ReasonDisabled, identity.ReasonNotAllowed:
		return http.StatusForbidden
	case identity.ReasonEmailInUse:
		return http.StatusConflict
	case identity.ReasonTooManyRequests:
		return http.StatusTooManyRequests
	case identity.ReasonNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
