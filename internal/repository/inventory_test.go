package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventario.yaml")
	content := `
habitaciones:
  - tipo: suite
    precio: 250000
    estado: disponible
  - tipo: doble
    precio: 120000.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	inv, err := LoadInventory(path)
	require.NoError(t, err)
	assert.Equal(t, []InventoryRoom{
		{Type: "suite", Price: 250000, State: "disponible"},
		{Type: "doble", Price: 120000.5},
	}, inv.Rooms)
}

func TestLoadInventory_Errors(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "roto.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("habitaciones: [\n"), 0o644))

	_, err := LoadInventory(broken)
	assert.Error(t, err)

	_, err = LoadInventory(filepath.Join(dir, "no-existe.yaml"))
	assert.Error(t, err)
}
