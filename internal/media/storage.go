// Package media stores uploaded bubble attachments on disk and classifies
// them into the coarse image/video/audio buckets the map UI renders.
package media

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"thewherewhat/internal/models"

	"github.com/google/uuid"
)

// MaxUploadSize caps a single attachment at 50MB.
const MaxUploadSize = 50 << 20

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".mp4": true, ".webm": true, ".mov": true,
	".mp3": true, ".wav": true, ".ogg": true,
}

// Storage saves attachments under a local directory and serves them back by
// stable URL.
type Storage struct {
	dir       string
	urlPrefix string
}

// NewStorage ensures the upload directory exists.
func NewStorage(dir, urlPrefix string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %v", dir, err)
	}
	return &Storage{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Save writes an uploaded file under a fresh UUID name and returns its URL
// and media type. Unknown extensions are rejected.
func (s *Storage) Save(file multipart.File, header *multipart.FileHeader) (url, mediaType string, err error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", "", fmt.Errorf("unsupported media extension %q", ext)
	}
	if header.Size > MaxUploadSize {
		return "", "", fmt.Errorf("file too large: %d bytes", header.Size)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, MaxUploadSize)); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("failed to write %s: %v", path, err)
	}

	return s.urlPrefix + "/" + name, ClassifyExtension(ext), nil
}

// Dir returns the directory uploads are stored in, for static serving.
func (s *Storage) Dir() string {
	return s.dir
}

// ClassifyExtension maps a file extension to a coarse media type. Empty
// string means unclassified.
func ClassifyExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return models.MediaImage
	case ".mp4", ".webm", ".mov":
		return models.MediaVideo
	case ".mp3", ".wav", ".ogg":
		return models.MediaAudio
	default:
		return ""
	}
}
