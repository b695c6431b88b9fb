package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"murmur/internal/config"
	"murmur/internal/middleware"
	"murmur/internal/models"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

const (
	DefaultAvatarUploadDir    = "static/uploads"
	DefaultAvatarMaxUploadMB  = 5
	DefaultAvatarMaxDimension = 512
	// DefaultAvatarMaxPixels bounds decode memory; compressed size says nothing about it.
	DefaultAvatarMaxPixels = 16_000_000
	AvatarPublicPrefix        = "/uploads/"
	avatarJPEGQuality         = 85
)

var allowedAvatarExtensions = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
}

// AvatarService validates, downsizes and stores profile images on local disk.
type AvatarService struct {
	uploadDir          string
	maxUploadSizeBytes int64
	maxDimension       int
	maxPixels          int64
}

func NewAvatarService(cfg *config.Config) *AvatarService {
	s := &AvatarService{
		uploadDir:          DefaultAvatarUploadDir,
		maxUploadSizeBytes: DefaultAvatarMaxUploadMB * 1024 * 1024,
		maxDimension:       DefaultAvatarMaxDimension,
		maxPixels:          DefaultAvatarMaxPixels,
	}
	if cfg != nil {
		if cfg.UploadDir != "" {
			s.uploadDir = cfg.UploadDir
		}
		if cfg.AvatarMaxUploadMB > 0 {
			s.maxUploadSizeBytes = int64(cfg.AvatarMaxUploadMB) * 1024 * 1024
		}
		if cfg.AvatarMaxDimension > 0 {
			s.maxDimension = cfg.AvatarMaxDimension
		}
		if cfg.AvatarMaxPixels > 0 {
			s.maxPixels = int64(cfg.AvatarMaxPixels)
		}
	}
	return s
}

// UploadDir is the directory served under AvatarPublicPrefix.
func (s *AvatarService) UploadDir() string {
	return s.uploadDir
}

// AllowedAvatarFile reports whether filename has an accepted image extension.
func AllowedAvatarFile(filename string) bool {
	_, ok := allowedAvatarExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Store checks the extension allow-list and the declared pixel count, decodes the image, scales it down to the
// configured bound, and writes it under a random name. It returns the public path.
func (s *AvatarService) Store(ctx context.Context, filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	wantFormat, ok := allowedAvatarExtensions[ext]
	if !ok {
		return "", models.NewValidationError("Avatar must be a png, jpg, jpeg or gif file")
	}
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	header, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if format != wantFormat {
		return "", models.NewValidationError("Image content does not match its extension")
	}
	if int64(header.Width)*int64(header.Height) > s.maxPixels {
		return "", models.NewValidationError(fmt.Sprintf("Image dimensions too large (max %d pixels)", s.maxPixels))
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	encoded, err := encodeAvatar(resizeToFit(decoded, s.maxDimension), format)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	if ext == ".jpeg" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), encoded, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	middleware.Logger.InfoContext(ctx, "avatar stored", "file", name, "bytes", len(encoded))
	return AvatarPublicPrefix + name, nil
}

// Remove deletes a previously stored avatar. Paths outside the upload prefix are ignored.
func (s *AvatarService) Remove(ctx context.Context, publicPath string) {
	if !strings.HasPrefix(publicPath, AvatarPublicPrefix) {
		return
	}
	name := path.Base(publicPath)
	if name == "." || name == "/" {
		return
	}
	if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil && !os.IsNotExist(err) {
		middleware.Logger.WarnContext(ctx, "failed to remove old avatar", "file", name, "error", err)
	}
}

func resizeToFit(src image.Image, maxSide int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxSide && h <= maxSide {
		return src
	}

	newW, newH := maxSide, maxSide
	if w > h {
		newH = h * maxSide / w
	} else {
		newW = w * maxSide / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

// encodeAvatar re-encodes in the source format. Animated GIFs keep only their first frame.
func encodeAvatar(img image.Image, format string) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: avatarJPEGQuality})
	case "gif":
		err = gif.Encode(buf, img, nil)
	default:
		err = fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
