package imagefile

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return buf.Bytes()
}

func TestFromPath_DetectsBySignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaf.jpg") // расширение врёт
	want := writePNG(t, path)

	f, err := FromPath(path)
	require.NoError(t, err)
	require.Equal(t, "leaf.jpg", f.Name())
	require.Equal(t, "image/png", f.ContentType())

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFromPath_MissingFile(t *testing.T) {
	_, err := FromPath(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
}

func TestFromBytes(t *testing.T) {
	m := FromBytes("photo.jpg", "", []byte("abc"))
	require.Equal(t, "photo.jpg", m.Name())
	require.Empty(t, m.ContentType())
	require.Equal(t, 3, m.Size())
}
