package handler_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelrecords/backend/internal/domain"
	"github.com/travelrecords/backend/internal/handler"
)

// fakePhotoOpener serves in-memory file contents keyed by relative path.
type fakePhotoOpener struct {
	files map[string][]byte
}

// nopReadSeekCloser adds a no-op Close to a bytes.Reader.
type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

func (f *fakePhotoOpener) Open(rel string) (io.ReadSeekCloser, time.Time, error) {
	b, ok := f.files[rel]
	if !ok {
		return nil, time.Time{}, domain.ErrNotFound
	}
	return nopReadSeekCloser{bytes.NewReader(b)}, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), nil
}

var _ handler.PhotoOpener = (*fakePhotoOpener)(nil)

// multipartBody builds a multipart body with a single "file" part carrying
// the given filename, content type, and payload.
func multipartBody(t *testing.T, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

// ---- POST /upload-photo ----------------------------------------------------

func TestUploadPhoto_OK(t *testing.T) {
	svc := &mockRecordServicer{
		attachPhoto: func(r io.Reader, contentType, filename, baseURL string) (domain.PhotoUpload, error) {
			b, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, "png bytes", string(b))
			assert.Equal(t, "image/png", contentType)
			assert.Equal(t, "taipei.png", filename)
			return domain.PhotoUpload{
				PhotoPath: "photos/generated.png",
				PhotoURL:  baseURL + "/uploads/photos/generated.png",
			}, nil
		},
	}
	h := newHTTPHandler(svc)

	body, contentType := multipartBody(t, "taipei.png", "image/png", []byte("png bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload-photo", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "photos/generated.png", resp["photo_path"])
	assert.Equal(t, "http://"+req.Host+"/uploads/photos/generated.png", resp["photo_url"])
}

func TestUploadPhoto_NonImage(t *testing.T) {
	svc := &mockRecordServicer{
		attachPhoto: func(_ io.Reader, _, _, _ string) (domain.PhotoUpload, error) {
			return domain.PhotoUpload{}, domain.ErrValidation
		},
	}
	h := newHTTPHandler(svc)

	body, contentType := multipartBody(t, "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/upload-photo", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))
}

func TestUploadPhoto_MissingFilePart(t *testing.T) {
	h := newHTTPHandler(&mockRecordServicer{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "no file here"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-photo", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))
}

// ---- GET /uploads/photos/{filename} ----------------------------------------

func newPhotoHandler(files map[string][]byte) http.Handler {
	srv := handler.NewServer(&mockRecordServicer{}, &fakePhotoOpener{files: files}, "")
	return srv.Routes()
}

func TestGetPhoto_OK(t *testing.T) {
	h := newPhotoHandler(map[string][]byte{
		"photos/abc.png": []byte("raw image bytes"),
	})

	req := httptest.NewRequest(http.MethodGet, "/uploads/photos/abc.png", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "raw image bytes", rec.Body.String())
}

func TestGetPhoto_NotFound(t *testing.T) {
	h := newPhotoHandler(map[string][]byte{})

	req := httptest.NewRequest(http.MethodGet, "/uploads/photos/missing.png", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestGetPhoto_TraversalRejected(t *testing.T) {
	h := newPhotoHandler(map[string][]byte{
		"photos/..%2fsecret": []byte("never served"),
	})

	// chi decodes %2f back to a slash; the handler must refuse anything
	// that is not a bare filename.
	req := httptest.NewRequest(http.MethodGet, "/uploads/photos/..%2fsecret", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
