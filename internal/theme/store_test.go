package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindweek/internal/kvstore"
)

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("persisted preference wins over device scheme", func(t *testing.T) {
		kv := kvstore.NewMemory()
		require.NoError(t, kv.Set(ctx, keyDarkMode, "true"))

		s := NewStore(kv, StaticDevicePreference("light"))
		pref, err := s.Initialize(ctx)
		require.NoError(t, err)

		assert.True(t, pref.IsDarkMode)
		assert.Equal(t, PaletteFor(true), pref.Colors)
	})

	t.Run("falls back to device scheme when nothing persisted", func(t *testing.T) {
		s := NewStore(kvstore.NewMemory(), StaticDevicePreference("dark"))
		pref, err := s.Initialize(ctx)
		require.NoError(t, err)

		assert.True(t, pref.IsDarkMode)
	})

	t.Run("defaults to light when device has no opinion", func(t *testing.T) {
		s := NewStore(kvstore.NewMemory(), StaticDevicePreference(""))
		pref, err := s.Initialize(ctx)
		require.NoError(t, err)

		assert.False(t, pref.IsDarkMode)
		assert.Equal(t, PaletteFor(false), pref.Colors)
	})

	t.Run("malformed persisted value falls back to device scheme", func(t *testing.T) {
		kv := kvstore.NewMemory()
		require.NoError(t, kv.Set(ctx, keyDarkMode, "maybe"))

		s := NewStore(kv, StaticDevicePreference("dark"))
		pref, err := s.Initialize(ctx)
		require.NoError(t, err)

		assert.True(t, pref.IsDarkMode)
	})

	t.Run("second initialize is rejected", func(t *testing.T) {
		s := NewStore(kvstore.NewMemory(), StaticDevicePreference(""))
		_, err := s.Initialize(ctx)
		require.NoError(t, err)

		_, err = s.Initialize(ctx)
		assert.Error(t, err)
	})
}

func TestToggle(t *testing.T) {
	ctx := context.Background()

	t.Run("two toggles return to the original value", func(t *testing.T) {
		kv := kvstore.NewMemory()
		s := NewStore(kv, StaticDevicePreference(""))
		_, err := s.Initialize(ctx)
		require.NoError(t, err)

		first := s.Toggle(ctx)
		assert.True(t, first.IsDarkMode)
		assert.Equal(t, PaletteFor(true), first.Colors)

		second := s.Toggle(ctx)
		assert.False(t, second.IsDarkMode)
		assert.Equal(t, PaletteFor(false), second.Colors)
	})

	t.Run("toggle persists the new value", func(t *testing.T) {
		kv := kvstore.NewMemory()
		s := NewStore(kv, StaticDevicePreference(""))
		_, err := s.Initialize(ctx)
		require.NoError(t, err)

		s.Toggle(ctx)

		saved, err := kv.Get(ctx, keyDarkMode)
		require.NoError(t, err)
		assert.Equal(t, "true", saved)
	})

	t.Run("persistence failure still flips the in-memory value", func(t *testing.T) {
		kv := kvstore.NewMemory()
		kv.FailWrites = errors.New("disk full")

		s := NewStore(kv, StaticDevicePreference(""))
		_, err := s.Initialize(ctx)
		require.NoError(t, err)

		pref := s.Toggle(ctx)
		assert.True(t, pref.IsDarkMode)
		assert.True(t, s.Current().IsDarkMode)
	})
}

func TestPaletteConsistency(t *testing.T) {
	// Colors must always match the mode they were resolved for.
	assert.Equal(t, "#020617", PaletteFor(true).Background.Base)
	assert.Equal(t, "#f8fafc", PaletteFor(false).Background.Base)
	assert.NotEqual(t, PaletteFor(true), PaletteFor(false))
}
