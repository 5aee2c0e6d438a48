package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearrail/rtr-clearing/internal/models"
)

func TestRegisterAndLookup(t *testing.T) {
	d := New()
	p := models.Participant{BIC: "RBIACATTXXX", Name: "Alice Robertson", AccountNumber: "100123456789"}
	require.NoError(t, d.Register(p))

	got, ok := d.Lookup("RBIACATTXXX")
	require.True(t, ok)
	assert.Equal(t, p, got)
	assert.True(t, d.Known("RBIACATTXXX"))

	_, ok = d.Lookup("GHOST")
	assert.False(t, ok)
	assert.False(t, d.Known("GHOST"))
}

func TestRegisterDuplicate(t *testing.T) {
	d := New()
	require.NoError(t, d.Register(models.Participant{BIC: "RBIACATTXXX"}))

	err := d.Register(models.Participant{BIC: "RBIACATTXXX", Name: "Impostor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestAll(t *testing.T) {
	d := New()
	require.NoError(t, d.Register(models.Participant{BIC: "RBIACATTXXX"}))
	require.NoError(t, d.Register(models.Participant{BIC: "NPCUCATTXXX"}))

	assert.Len(t, d.All(), 2)
}
