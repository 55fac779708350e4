package uploads

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UploadsAndReturnsPublicURL(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := &SupabaseStorage{BaseURL: srv.URL, SecretKey: "service-role-key", Bucket: "project-media"}
	url, err := s.Store(context.Background(), "My Photo (1).jpg", []byte("jpegdata"), "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/storage/v1/object/project-media/"))
	assert.Equal(t, "Bearer service-role-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, []byte("jpegdata"), gotBody)

	assert.Contains(t, url, srv.URL+"/storage/v1/object/public/project-media/")
	// Sanitized: spaces become hyphens, parens stripped, name kept readable.
	assert.True(t, strings.HasSuffix(url, "My-Photo-1.jpg"))
}

func TestStore_RequiresConfig(t *testing.T) {
	s := &SupabaseStorage{}
	_, err := s.Store(context.Background(), "a.png", nil, "")
	require.Error(t, err)

	s = &SupabaseStorage{BaseURL: "https://example.supabase.co"}
	_, err = s.Store(context.Background(), "a.png", nil, "")
	require.Error(t, err)
}

func TestStore_SurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"invalid key"}`))
	}))
	defer srv.Close()

	s := &SupabaseStorage{BaseURL: srv.URL, SecretKey: "anon-key", Bucket: "project-media"}
	_, err := s.Store(context.Background(), "a.png", []byte("x"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestDelete_ByPublicURL(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := &SupabaseStorage{BaseURL: srv.URL, SecretKey: "k", Bucket: "project-media"}
	err := s.Delete(context.Background(), srv.URL+"/storage/v1/object/public/project-media/abc-photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/storage/v1/object/project-media/abc-photo.jpg", gotPath)
}

func TestDelete_RejectsForeignURL(t *testing.T) {
	s := &SupabaseStorage{BaseURL: "https://example.supabase.co", SecretKey: "k", Bucket: "project-media"}
	err := s.Delete(context.Background(), "https://elsewhere.example/evil.jpg")
	require.Error(t, err)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "report_final-v2.pdf", sanitize("report_final-v2.pdf"))
	assert.Equal(t, "my-photo.jpg", sanitize("my photo.jpg"))
	assert.Equal(t, "file", sanitize("???"))
}
