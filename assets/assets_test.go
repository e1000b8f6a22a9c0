package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimal PNG signature plus IHDR chunk header
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}

func write(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
}

func TestDescribe_MissingAndEmpty(t *testing.T) {
	assert.Equal(t, NoFolder, Describe(filepath.Join(t.TempDir(), "nope")))
	assert.Equal(t, EmptyFolder, Describe(t.TempDir()))
}

func TestDescribe_TextAndOther(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "notes.txt", []byte("Organic cotton, limited run"))
	write(t, dir, "data.bin", []byte{0x00, 0x01, 0x02, 0x03})

	got := Describe(dir)
	assert.Contains(t, got, "Found 2 file(s)")
	assert.Contains(t, got, "Text file notes.txt: Organic cotton, limited run")
	assert.Contains(t, got, "File: data.bin")
}

func TestDescribe_ImageByCategory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "TShirt")
	require.NoError(t, os.Mkdir(dir, 0o755))
	write(t, dir, "graphic_black.png", pngHeader)

	got := Describe(dir)
	assert.Contains(t, got, "Image file: graphic_black.png")
	assert.Contains(t, got, "Image format: PNG")
	assert.Contains(t, got, "Product type: T-shirt")
	assert.Contains(t, got, "Style: Graphic print")
	assert.Contains(t, got, "Primary color: Black")
	assert.Contains(t, got, "Season: All-season versatile wear")

	assert.Equal(t, got, Describe(dir), "analysis must be deterministic")
}

func TestDescribe_ImageByName(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "slim_jeans.png", pngHeader)

	got := Describe(dir)
	assert.Contains(t, got, "Product type: Jeans/Pants")
	assert.NotContains(t, got, "Product type: T-shirt")
}

func TestDimensions(t *testing.T) {
	w, h := dimensions("a.png")
	assert.GreaterOrEqual(t, w, 1200)
	assert.Less(t, w, 2400)
	assert.GreaterOrEqual(t, h, 1200)
	assert.Less(t, h, 2400)
}

func TestCategories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "Jeans"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "TShirt"), 0o755))
	write(t, root, "readme.txt", []byte("x"))

	got, err := Categories(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jeans", "TShirt"}, got)

	got, err = Categories(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
