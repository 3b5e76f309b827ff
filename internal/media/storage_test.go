package media

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"thewherewhat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxUploadSize))

	file, header, err := req.FormFile("media")
	require.NoError(t, err)
	return file, header
}

func TestSaveUpload(t *testing.T) {
	storage, err := NewStorage(t.TempDir(), "/uploads/")
	require.NoError(t, err)

	file, header := multipartFile(t, "photo.JPG", []byte("fake image bytes"))
	defer file.Close()

	url, mediaType, err := storage.Save(file, header)
	require.NoError(t, err)
	assert.Equal(t, models.MediaImage, mediaType)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	// The file landed on disk under its generated name.
	saved, err := os.ReadFile(filepath.Join(storage.Dir(), strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), saved)
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	storage, err := NewStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	file, header := multipartFile(t, "malware.exe", []byte("nope"))
	defer file.Close()

	_, _, err = storage.Save(file, header)
	assert.Error(t, err)
}

func TestClassifyExtension(t *testing.T) {
	assert.Equal(t, models.MediaImage, ClassifyExtension(".png"))
	assert.Equal(t, models.MediaVideo, ClassifyExtension(".MP4"))
	assert.Equal(t, models.MediaAudio, ClassifyExtension(".ogg"))
	assert.Equal(t, "", ClassifyExtension(".pdf"))
}
