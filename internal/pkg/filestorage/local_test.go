package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadedFile builds a real multipart.FileHeader by round-tripping a
// multipart request.
func uploadedFile(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("document", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	files := req.MultipartForm.File["document"]
	require.Len(t, files, 1)
	return files[0]
}

func TestSaveAndDeleteFile(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	fh := uploadedFile(t, "transcript.pdf", "pdf bytes")
	storedPath, err := storage.SaveFile(fh, "applicant_documents")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(storedPath, "applicant_documents/"))
	assert.Equal(t, ".pdf", filepath.Ext(storedPath), "the original extension is kept")

	content, err := os.ReadFile(storage.GetFullPath(storedPath))
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(content))

	require.NoError(t, storage.DeleteFile(storedPath))
	_, err = os.Stat(storage.GetFullPath(storedPath))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveFileUniqueNames(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	fh := uploadedFile(t, "transcript.pdf", "pdf bytes")
	first, err := storage.SaveFile(fh, "applicant_documents")
	require.NoError(t, err)
	second, err := storage.SaveFile(fh, "applicant_documents")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSaveFileNilHeader(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	storedPath, err := storage.SaveFile(nil, "applicant_documents")
	require.NoError(t, err)
	assert.Empty(t, storedPath)
}

func TestDeleteFileIdempotent(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, storage.DeleteFile("applicant_documents/never-existed.pdf"))
	assert.NoError(t, storage.DeleteFile(""))
}

func TestGetFullPathRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	storage, err := NewLocalStorage(base)
	require.NoError(t, err)

	assert.Empty(t, storage.GetFullPath("../outside.pdf"))
	assert.Empty(t, storage.GetFullPath(".."))
	assert.Empty(t, storage.GetFullPath(""))
	assert.Equal(t, filepath.Join(base, "a/b.pdf"), storage.GetFullPath("/a/b.pdf"))
}
