package imagestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tour-booking/pkg/utils"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxWidth   = 1280
	thumbWidth = 320
)

// Store persists uploaded tour images on local disk. Full-size images
// are downscaled to maxWidth and a thumbnail is generated alongside.
type Store struct {
	dir     string
	baseURL string
	log     *zap.Logger
}

func New(config utils.UploadConfig, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Store{
		dir:     config.Dir,
		baseURL: config.BaseURL,
		log:     logger.With(zap.String("component", "imagestore")),
	}, nil
}

// Dir returns the on-disk upload directory, for mounting a file server.
func (s *Store) Dir() string {
	return s.dir
}

// Save decodes, resizes and writes the image. Returns the public URL
// of the full-size image; the thumbnail lives next to it with a
// "_thumb" suffix.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	thumb := imaging.Thumbnail(img, thumbWidth, thumbWidth, imaging.Lanczos)

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != ".png" {
		ext = ".jpg"
	}

	name := uuid.New().String()
	fullPath := filepath.Join(s.dir, name+ext)
	thumbPath := filepath.Join(s.dir, name+"_thumb"+ext)

	if err := imaging.Save(img, fullPath, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(80)); err != nil {
		// Full image is already on disk, thumbnail failure is not fatal
		s.log.Warn("Failed to save thumbnail", zap.String("path", thumbPath), zap.Error(err))
	}

	s.log.Info("Image stored", zap.String("file", name+ext))

	return s.baseURL + name + ext, nil
}

// Delete removes an image (and its thumbnail) given its public URL.
func (s *Store) Delete(url string) error {
	name := strings.TrimPrefix(url, s.baseURL)
	if name == "" || strings.Contains(name, "..") || strings.Contains(name, "/") {
		return fmt.Errorf("invalid image url: %s", url)
	}

	fullPath := filepath.Join(s.dir, name)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image: %w", err)
	}

	ext := filepath.Ext(name)
	thumbPath := filepath.Join(s.dir, strings.TrimSuffix(name, ext)+"_thumb"+ext)
	if err := os.Remove(thumbPath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("Failed to delete thumbnail", zap.String("path", thumbPath), zap.Error(err))
	}

	return nil
}
