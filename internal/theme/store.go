// Package theme resolves, persists, and publishes the visual theme
// preference.
package theme

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"mindweek/internal/kvstore"
	"mindweek/internal/logger"
)

const keyDarkMode = "theme:darkMode"

// Preference is the resolved theme published to callers. Colors is
// always consistent with IsDarkMode.
type Preference struct {
	IsDarkMode bool    `json:"is_dark_mode"`
	Colors     Palette `json:"colors"`
}

// DevicePreference reports the host-reported color scheme: "light",
// "dark", or empty when the host has no opinion. It is read once, at
// initialization, and only when nothing has been persisted.
type DevicePreference interface {
	SystemColorScheme() string
}

// StaticDevicePreference is a fixed host preference, typically fed
// from configuration.
type StaticDevicePreference string

func (p StaticDevicePreference) SystemColorScheme() string {
	return string(p)
}

// Store owns the dark/light preference. Persistence failures are
// logged and absorbed: the in-memory value always wins.
type Store struct {
	kv     kvstore.Store
	device DevicePreference

	mu          sync.Mutex
	dark        bool
	initialized bool
}

func NewStore(kv kvstore.Store, device DevicePreference) *Store {
	return &Store{kv: kv, device: device}
}

// Initialize resolves the starting preference: persisted value first,
// then the device-reported scheme, then light. It runs exactly once.
func (s *Store) Initialize(ctx context.Context) (Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return s.preferenceLocked(), errors.New("theme: already initialized")
	}

	dark := false

	saved, err := s.kv.Get(ctx, keyDarkMode)
	switch {
	case err == nil:
		parsed, perr := strconv.ParseBool(saved)
		if perr != nil {
			logger.Warn("ignoring malformed theme preference", map[string]any{
				"value": saved,
			})
			dark = s.device.SystemColorScheme() == "dark"
		} else {
			dark = parsed
		}
	case errors.Is(err, kvstore.ErrNotFound):
		dark = s.device.SystemColorScheme() == "dark"
	default:
		logger.Warn("failed to load theme preference", map[string]any{
			"error": err.Error(),
		})
		dark = s.device.SystemColorScheme() == "dark"
	}

	s.dark = dark
	s.initialized = true

	return s.preferenceLocked(), nil
}

// Toggle flips the preference and persists the new value. The flip
// applies even when the write fails; currency beats durability here.
func (s *Store) Toggle(ctx context.Context) Preference {
	// The lock is held across the write so rapid toggles persist in
	// calling order.
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dark = !s.dark
	pref := s.preferenceLocked()

	if err := s.kv.Set(ctx, keyDarkMode, strconv.FormatBool(pref.IsDarkMode)); err != nil {
		logger.Warn("failed to persist theme preference", map[string]any{
			"error": err.Error(),
		})
	}

	return pref
}

// Current returns the resolved preference.
func (s *Store) Current() Preference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preferenceLocked()
}

func (s *Store) preferenceLocked() Preference {
	return Preference{
		IsDarkMode: s.dark,
		Colors:     PaletteFor(s.dark),
	}
}
