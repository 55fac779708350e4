package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage is the file-storage collaborator: store content, get back a public
// URL; delete by that URL. Project media (featured image, gallery) goes
// through this interface so the composer never talks to Supabase directly.
type Storage interface {
	Store(ctx context.Context, filename string, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// SupabaseStorage implements Storage against the Supabase storage HTTP API.
type SupabaseStorage struct {
	BaseURL   string
	SecretKey string
	Bucket    string
	Client    *http.Client
}

func (s *SupabaseStorage) httpClient() *http.Client {
	if s.Client == nil {
		s.Client = &http.Client{Timeout: 15 * time.Second}
	}
	return s.Client
}

func (s *SupabaseStorage) Store(ctx context.Context, filename string, content []byte, contentType string) (string, error) {
	if s.BaseURL == "" {
		return "", fmt.Errorf("storage: SUPABASE_URL is not set")
	}
	if s.SecretKey == "" {
		return "", fmt.Errorf("storage: SUPABASE_SECRET_KEY is not set")
	}
	base := strings.TrimRight(s.BaseURL, "/")
	// Unique object path; keep the original name for readability.
	path := fmt.Sprintf("%s-%s", uuid.New().String(), sanitize(filename))
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", base, s.Bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", s.SecretKey)
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("storage error: status %d body: %s", resp.StatusCode, string(body))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", base, s.Bucket, path), nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, publicURL string) error {
	base := strings.TrimRight(s.BaseURL, "/")
	prefix := fmt.Sprintf("%s/storage/v1/object/public/%s/", base, s.Bucket)
	if !strings.HasPrefix(publicURL, prefix) {
		return fmt.Errorf("storage: URL %q is not in bucket %s", publicURL, s.Bucket)
	}
	path := strings.TrimPrefix(publicURL, prefix)
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", base, s.Bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", s.SecretKey)
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("storage request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage error: status %d body: %s", resp.StatusCode, string(body))
	}
	return nil
}

func sanitize(name string) string {
	name = strings.ReplaceAll(name, " ", "-")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

// File is an in-memory upload passed from the multipart handlers.
type File struct {
	Name        string
	Content     []byte
	ContentType string
}
