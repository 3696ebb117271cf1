package tile

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	tables := []struct {
		source string
		spec   Spec
		size   int
		name   string
	}{
		{"scan", Spec{0, 0, 40, 40}, 40, "scan_0_0_40x40.png"},
		{"scan", Spec{80, 40, 20, 40}, 40, "scan_1_2_20x40.png"},
		{"n38w077_GEXD_resized", Spec{512, 1024, 256, 256}, 256, "n38w077_GEXD_resized_4_2_256x256.png"},
	}

	for _, table := range tables {
		assert.Equal(t, table.name, Name(table.source, table.spec, table.size))
	}
}

func TestPersist(t *testing.T) {
	dir := t.TempDir()
	m := opaqueImage(40, 40)

	path, err := Persist(m, "scan", Spec{0, 0, 40, 40}, Config{Size: 40}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "scan_0_0_40x40.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 40), decoded.Bounds())
}

func TestPersistCollision(t *testing.T) {
	dir := t.TempDir()
	m := opaqueImage(8, 8)

	_, err := Persist(m, "scan", Spec{0, 0, 8, 8}, Config{Size: 8}, dir)
	require.NoError(t, err)

	_, err = Persist(m, "scan", Spec{0, 0, 8, 8}, Config{Size: 8}, dir)
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, filepath.Join(dir, "scan_0_0_8x8.png"), werr.Path)
}

func TestPersistUnwritableDir(t *testing.T) {
	m := opaqueImage(8, 8)

	_, err := Persist(m, "scan", Spec{0, 0, 8, 8}, Config{Size: 8}, filepath.Join(t.TempDir(), "missing"))
	var werr *WriteError
	require.ErrorAs(t, err, &werr)
}

func TestPersistQuantize(t *testing.T) {
	dir := t.TempDir()

	m := opaqueImage(16, 16)
	// Some color variety so quantization has work to do.
	for i := 0; i < len(m.Pix); i += 4 {
		m.Pix[i] = byte(i)
	}

	path, err := Persist(m, "scan", Spec{0, 0, 16, 16}, Config{Size: 16, Quantize: true}, dir)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	_, ok := decoded.(*image.Paletted)
	assert.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 16, 16), decoded.Bounds())
}
