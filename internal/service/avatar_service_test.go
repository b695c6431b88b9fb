package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"murmur/internal/config"
	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// withDeclaredSize rewrites the IHDR dimensions of an encoded PNG without
// touching the pixel data, producing a small file that claims a huge image.
func withDeclaredSize(data []byte, w, h uint32) []byte {
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func newAvatarService(t *testing.T) *AvatarService {
	t.Helper()
	return NewAvatarService(&config.Config{
		UploadDir:          t.TempDir(),
		AvatarMaxUploadMB:  1,
		AvatarMaxDimension: 64,
	})
}

func TestAllowedAvatarFile(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.gif"} {
		assert.True(t, AllowedAvatarFile(name), name)
	}
	for _, name := range []string{"a.webp", "notes.txt", "noext", "png"} {
		assert.False(t, AllowedAvatarFile(name), name)
	}
}

func TestAvatarService_StoreRejects(t *testing.T) {
	svc := newAvatarService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"webp extension", "me.webp", pngBytes(t, 4, 4)},
		{"txt extension", "me.txt", []byte("hello")},
		{"empty body", "me.png", nil},
		{"not an image", "me.png", []byte("definitely not a png")},
		{"extension mismatch", "me.gif", pngBytes(t, 4, 4)},
		{"too large", "me.png", bytes.Repeat([]byte{0}, 2*1024*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Store(ctx, tt.filename, tt.content)
			assertCode(t, err, models.CodeValidation)
		})
	}

	entries, err := os.ReadDir(svc.UploadDir())
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestAvatarService_StoreRejectsHugeDimensions(t *testing.T) {
	svc := NewAvatarService(&config.Config{UploadDir: t.TempDir()})
	ctx := context.Background()

	huge := withDeclaredSize(pngBytes(t, 4, 4), 12000, 12000)
	require.Less(t, len(huge), 1024)

	_, err := svc.Store(ctx, "me.png", huge)
	assertCode(t, err, models.CodeValidation)
	assert.Contains(t, err.Error(), "Image dimensions too large")

	entries, err := os.ReadDir(svc.UploadDir())
	if err == nil {
		assert.Empty(t, entries)
	}
}

func TestAvatarService_StorePixelCapFromConfig(t *testing.T) {
	svc := NewAvatarService(&config.Config{
		UploadDir:          t.TempDir(),
		AvatarMaxDimension: 64,
		AvatarMaxPixels:    100 * 100,
	})
	ctx := context.Background()

	_, err := svc.Store(ctx, "me.png", pngBytes(t, 101, 100))
	assertCode(t, err, models.CodeValidation)

	path, err := svc.Store(ctx, "me.png", pngBytes(t, 100, 100))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, AvatarPublicPrefix))
}

func TestAvatarService_StoreDownscales(t *testing.T) {
	svc := newAvatarService(t)

	publicPath, err := svc.Store(context.Background(), "Wide.PNG", pngBytes(t, 256, 128))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(publicPath, AvatarPublicPrefix))
	assert.True(t, strings.HasSuffix(publicPath, ".png"))

	stored, err := os.ReadFile(filepath.Join(svc.UploadDir(), filepath.Base(publicPath)))
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
}

func TestAvatarService_StoreKeepsSmallImages(t *testing.T) {
	svc := newAvatarService(t)

	publicPath, err := svc.Store(context.Background(), "tiny.png", pngBytes(t, 10, 20))
	require.NoError(t, err)

	stored, err := os.ReadFile(filepath.Join(svc.UploadDir(), filepath.Base(publicPath)))
	require.NoError(t, err)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
}

func TestAvatarService_Remove(t *testing.T) {
	svc := newAvatarService(t)
	ctx := context.Background()

	publicPath, err := svc.Store(ctx, "me.png", pngBytes(t, 8, 8))
	require.NoError(t, err)
	onDisk := filepath.Join(svc.UploadDir(), filepath.Base(publicPath))
	require.FileExists(t, onDisk)

	svc.Remove(ctx, publicPath)
	assert.NoFileExists(t, onDisk)

	// missing files and foreign paths are ignored
	svc.Remove(ctx, publicPath)
	svc.Remove(ctx, "https://cdn.example.com/x.png")
}
