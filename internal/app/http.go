package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"mindweek/internal/auth"
	"mindweek/internal/config"
	"mindweek/internal/httpapi"
	"mindweek/internal/identity"
	"mindweek/internal/identity/local"
	"mindweek/internal/identity/oidc"
	"mindweek/internal/middleware"
	"mindweek/internal/planner"
	"mindweek/internal/profile"
	"mindweek/internal/theme"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Identity backends
	// ----------------------------

	registry := identity.NewRegistry()

	if infra.DB != nil {
		registry.Register("local", local.NewService(infra.DB))
	}

	if cfg.OIDCIssuer != "" {
		oidcBackend, err := oidc.New(
			ctx,
			cfg.OIDCIssuer,
			cfg.OIDCClientID,
			cfg.OIDCClientSecret,
		)
		if err != nil {
			return nil, nil, err
		}
		registry.Register("oidc", oidcBackend)
	}

	backend, err := registry.Get(cfg.IdentityBackend)
	if err != nil {
		return nil, nil, fmt.Errorf("identity backend not configured: %w", err)
	}

	// ----------------------------
	// Stores
	// ----------------------------

	var profiles profile.Writer = profile.Discard{}
	if infra.DB != nil {
		profiles = profile.NewDBWriter(infra.DB)
	}

	sessionStore := auth.NewStore(backend, infra.KV, profiles)
	if err := sessionStore.Initialize(ctx); err != nil {
		return nil, nil, err
	}

	themeStore := theme.NewStore(
		infra.KV,
		theme.StaticDevicePreference(cfg.SystemColorScheme),
	)
	if _, err := themeStore.Initialize(ctx); err != nil {
		return nil, nil, err
	}

	plannerStore := planner.NewStore()

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	apiHandler := httpapi.NewHandler(sessionStore, themeStore, plannerStore)
	apiHandler.RegisterRoutes(router)

	if localBackend, ok := backend.(*local.Service); ok {
		httpapi.NewAdminHandler(localBackend).RegisterRoutes(router)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		sessionStore.Close()
		return infra.Close()
	}, nil
}
