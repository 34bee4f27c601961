// Package service contains the application's business logic layer.
package service

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// AvatarMaxDimension bounds both sides of a stored avatar.
	AvatarMaxDimension = 125

	// avatarTokenBytes is the entropy of the random filename (128 bits).
	avatarTokenBytes = 16

	avatarJPEGQuality = 82
	avatarWebPQuality = 70
)

// AvatarService stores uploaded profile images under random filenames.
type AvatarService struct {
	dir string
}

// NewAvatarService creates an avatar service writing into the configured
// avatar directory.
func NewAvatarService(cfg *config.Config) *AvatarService {
	return &AvatarService{dir: cfg.AvatarDir}
}

// Dir returns the directory avatars are written to.
func (s *AvatarService) Dir() string {
	return s.dir
}

// Store decodes an uploaded image, downscales it so neither dimension
// exceeds AvatarMaxDimension (aspect ratio preserved), and writes it
// under a fresh random filename with the original extension. It returns
// the stored filename for the caller to persist on the user record.
// The previous avatar file is left in place.
func (s *AvatarService) Store(content []byte, originalFilename string) (string, error) {
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}

	ext := normalizeExt(filepath.Ext(originalFilename))
	if !isAllowedAvatarExt(ext) {
		return "", models.NewValidationError("Unsupported image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	token := make([]byte, avatarTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", models.NewStorageError(err)
	}
	filename := hex.EncodeToString(token) + ext

	resized := resizeToFit(decoded, AvatarMaxDimension, AvatarMaxDimension)

	encoded, err := encodeForExt(resized, ext)
	if err != nil {
		return "", models.NewStorageError(err)
	}

	if err := writeBytesToFile(filepath.Join(s.dir, filename), encoded); err != nil {
		return "", models.NewStorageError(err)
	}

	return filename, nil
}

// Resolve returns filename if the avatar file exists on disk, otherwise
// the sentinel default avatar.
func (s *AvatarService) Resolve(filename string) string {
	if filename == "" {
		return models.DefaultAvatar
	}
	if _, err := os.Stat(filepath.Join(s.dir, filename)); err != nil {
		return models.DefaultAvatar
	}
	return filename
}

// EnsureDefault writes the sentinel default avatar if it is missing, so
// the fallback always resolves to a real file.
func (s *AvatarService) EnsureDefault() error {
	path := filepath.Join(s.dir, models.DefaultAvatar)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, AvatarMaxDimension, AvatarMaxDimension))
	grey := color.RGBA{R: 0xb8, G: 0xbe, B: 0xc4, A: 0xff}
	for y := 0; y < AvatarMaxDimension; y++ {
		for x := 0; x < AvatarMaxDimension; x++ {
			img.Set(x, y, grey)
		}
	}

	encoded, err := encodeForExt(img, ".jpg")
	if err != nil {
		return models.NewStorageError(err)
	}
	if err := writeBytesToFile(path, encoded); err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

// resizeToFit downscales src so it fits within maxWidth x maxHeight,
// preserving aspect ratio. The dominant side lands exactly on its
// bound; the other side is rounded from the same scale factor. Images
// already within bounds are returned unchanged; avatars are never
// upscaled.
func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)

	var newW, newH int
	if scaleW <= scaleH {
		newW = maxWidth
		newH = int(math.Round(float64(h) * scaleW))
	} else {
		newH = maxHeight
		newW = int(math.Round(float64(w) * scaleH))
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

func encodeForExt(img image.Image, ext string) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	switch ext {
	case ".jpg":
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: avatarJPEGQuality}); err != nil {
			return nil, err
		}
	case ".png":
		if err := png.Encode(buf, img); err != nil {
			return nil, err
		}
	case ".gif":
		if err := gif.Encode(buf, img, nil); err != nil {
			return nil, err
		}
	case ".webp":
		if err := webp.Encode(buf, img, &webp.Options{Quality: avatarWebPQuality}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
	return buf.Bytes(), nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return ext
}

func isAllowedAvatarExt(ext string) bool {
	switch ext {
	case ".jpg", ".png", ".gif", ".webp":
		return true
	default:
		return false
	}
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
