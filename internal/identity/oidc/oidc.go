// Package oidc implements the identity contract against an OIDC
// issuer using the resource-owner password grant. The returned
// id_token is verified before any identity facts are trusted.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"mindweek/internal/identity"
	"mindweek/internal/logger"
)

type Service struct {
	identity.Broadcaster

	oauthConfig *oauth2.Config
	verifier    *gooidc.IDTokenVerifier

	mu    sync.Mutex
	watch context.CancelFunc
}

// New initializes the backend using issuer discovery. issuer must be
// the realm issuer URL.
func New(
	ctx context.Context,
	issuer string,
	clientID string,
	clientSecret string,
) (*Service, error) {

	if issuer == "" || clientID == "" {
		return nil, errors.New("oidc config missing required fields")
	}

	provider, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init oidc provider: %w", err)
	}

	verifier := provider.Verifier(&gooidc.Config{
		ClientID: clientID,
	})

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes: []string{
			gooidc.ScopeOpenID,
			"email",
			"profile",
		},
	}

	return &Service{
		oauthConfig: oauthCfg,
		verifier:    verifier,
	}, nil
}

func (s *Service) SignIn(
	ctx context.Context,
	email string,
	password string,
) (*identity.Identity, error) {

	if !identity.ValidEmail(email) {
		return nil, identity.NewError(identity.ReasonInvalidEmail, nil)
	}

	token, err := s.oauthConfig.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return nil, mapTokenError(err)
	}

	ident, err := s.identityFromToken(ctx, token)
	if err != nil {
		return nil, err
	}

	s.watchExpiry(token)

	return ident, nil
}

// SignUp is not available over the password grant; account creation
// belongs to the issuer's own registration flow.
func (s *Service) SignUp(
	ctx context.Context,
	email string,
	password string,
) (*identity.Identity, error) {
	return nil, identity.NewError(identity.ReasonNotAllowed, nil)
}

func (s *Service) SignOut(ctx context.Context) error {
	s.stopWatch()
	return nil
}

func (s *Service) identityFromToken(
	ctx context.Context,
	token *oauth2.Token,
) (*identity.Identity, error) {

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, identity.NewError(
			identity.ReasonUnknown,
			errors.New("issuer did not return id_token"),
		)
	}

	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, identity.NewError(identity.ReasonUnknown, err)
	}

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}

	if err := idToken.Claims(&claims); err != nil {
		return nil, identity.NewError(identity.ReasonUnknown, err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, identity.NewError(
			identity.ReasonUnknown,
			errors.New("id_token missing required claims"),
		)
	}

	return &identity.Identity{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}

// watchExpiry refreshes the token when it expires. A failed refresh
// means the issuer no longer honors the session, which is published
// as a signed-out notification.
func (s *Service) watchExpiry(token *oauth2.Token) {
	s.stopWatch()

	if token.Expiry.IsZero() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.watch = cancel
	s.mu.Unlock()

	source := s.oauthConfig.TokenSource(ctx, token)
	wait := time.Until(token.Expiry)

	go func() {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			refreshed, err := source.Token()
			if err != nil {
				logger.Warn("oidc token refresh failed, session invalid", map[string]any{
					"error": err.Error(),
				})
				s.Publish(nil)
				return
			}

			ident, err := s.identityFromToken(ctx, refreshed)
			if err != nil {
				s.Publish(nil)
				return
			}

			s.Publish(ident)
			timer.Reset(time.Until(refreshed.Expiry))
		}
	}()
}

func (s *Service) stopWatch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watch != nil {
		s.watch()
		s.watch = nil
	}
}

// mapTokenError folds oauth2 failures into the closed reason set.
func mapTokenError(err error) *identity.Error {
	var retrieve *oauth2.RetrieveError
	if errors.As(err, &retrieve) {
		switch retrieve.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return identity.NewError(identity.ReasonWrongPassword, err)
		case http.StatusForbidden:
			return identity.NewError(identity.ReasonDisabled, err)
		case http.StatusTooManyRequests:
			return identity.NewError(identity.ReasonTooManyRequests, err)
		default:
			return identity.NewError(identity.ReasonUnknown, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return identity.NewError(identity.ReasonNetwork, err)
	}

	return identity.NewError(identity.ReasonUnknown, err)
}
