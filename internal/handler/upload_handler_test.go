package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) EnsureBucket(string, int64) error { return nil }

func (m *memStore) Upload(bucket, key string, data []byte) error {
	m.objects[bucket+"/"+key] = data
	return nil
}

func (m *memStore) PublicURL(bucket, key string) string {
	return "http://localhost:8080/storage/" + bucket + "/" + key
}

func uploadRouter(store *memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/upload-image", NewUploadHandler(store).UploadImage)
	return r
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doUpload(t *testing.T, r *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUploadImageRejectsUnsupportedType(t *testing.T) {
	r := uploadRouter(newMemStore())
	body, ct := multipartBody(t, "doc.pdf", "application/pdf", []byte("%PDF-1.4"))

	rec := doUpload(t, r, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unsupported file type")
}

func TestUploadImageRejectsOversized(t *testing.T) {
	r := uploadRouter(newMemStore())
	big := bytes.Repeat([]byte("x"), maxUploadSize+1)
	body, ct := multipartBody(t, "big.jpg", "image/jpeg", big)

	rec := doUpload(t, r, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "File too large (max 10MB)")
}

func TestUploadImageRejectsMissingFile(t *testing.T) {
	r := uploadRouter(newMemStore())
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())

	rec := doUpload(t, r, &buf, w.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file provided")
}

func TestUploadImageStoresAndReturnsURL(t *testing.T) {
	store := newMemStore()
	r := uploadRouter(store)
	body, ct := multipartBody(t, "My Photo.JPG", "image/jpeg", []byte("fake-jpeg-bytes"))

	rec := doUpload(t, r, body, ct)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		URL  string `json:"url"`
		Path string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// 对象键：posts/YYYY/MM/<uuid>-<清洗后的文件名>
	assert.True(t, strings.HasPrefix(resp.Path, "posts/"))
	assert.True(t, strings.HasSuffix(resp.Path, "-my-photo.jpg"))
	assert.True(t, strings.HasPrefix(resp.URL, "http://localhost:8080/storage/post-images/"))
	assert.Len(t, store.objects, 1)
}
