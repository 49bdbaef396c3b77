package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"mindweek/internal/identity"
)

// Session is the authenticated-identity record held while a user is
// signed in. It is mirrored verbatim into the key-value store.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Storage keys mirrored on every transition. The pair is written
// sequentially; there is no cross-key transaction.
const (
	keySession       = "session:user"
	keyAuthenticated = "session:authenticated"
)

func encodeSession(s *Session) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("session: failed to marshal: %w", err)
	}
	return string(data), nil
}

func decodeSession(payload string) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &s, nil
}

// sessionFromIdentity builds a Session, defaulting the display name
// to the local part of the email when the backend supplies none.
func sessionFromIdentity(ident *identity.Identity, explicitName string) *Session {
	name := explicitName
	if name == "" {
		name = ident.DisplayName
	}
	if name == "" {
		name, _, _ = strings.Cut(ident.Email, "@")
	}

	return &Session{
		UserID:      ident.UserID,
		Email:       ident.Email,
		DisplayName: name,
	}
}
