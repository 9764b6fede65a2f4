package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

func TestAdapterRegistry(t *testing.T) {
	uk := newFakeAdapter("uk")
	de := newFakeAdapter("de")
	r := NewAdapterRegistry(uk, de)

	got, err := r.Get("de")
	require.NoError(t, err)
	assert.Same(t, de, got)

	_, err = r.Get("fr")
	assert.ErrorIs(t, err, domain.ErrUnknownJurisdiction)

	assert.Equal(t, []string{"uk", "de"}, r.IDs())
	infos := r.Jurisdictions()
	require.Len(t, infos, 2)
	assert.Equal(t, "uk", infos[0].ID)
}

func TestAdapterRegistry_ReplaceKeepsOrder(t *testing.T) {
	r := NewAdapterRegistry(newFakeAdapter("uk"), newFakeAdapter("de"))

	replacement := newFakeAdapter("uk")
	replacement.info.Name = "United Kingdom"
	r.Register(replacement)

	assert.Equal(t, []string{"uk", "de"}, r.IDs())
	assert.Equal(t, "United Kingdom", r.Jurisdictions()[0].Name)
}
