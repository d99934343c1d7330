package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

var ErrStoreNotConfigured = errors.New("evidence store credentials not configured")

// Store uploads evidence blobs to the pinning service and hands back their
// content identifier. Upload failure aborts report submission.
type Store struct {
	apiURL     string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

type UploadResult struct {
	CID       string
	PinSize   int64
	Timestamp time.Time
}

func NewStore(apiURL, apiKey, apiSecret string, timeout time.Duration) *Store {
	return &Store{
		apiURL:     apiURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TestAuthentication probes the pinning service credentials at startup.
func (s *Store) TestAuthentication(ctx context.Context) error {
	if s.apiKey == "" || s.apiSecret == "" {
		return ErrStoreNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/data/testAuthentication", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.setAuthHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinning service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinning service auth failed (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// Upload pins a single file and returns its content identifier.
func (s *Store) Upload(ctx context.Context, filename, contentType string, data []byte) (*UploadResult, error) {
	if s.apiKey == "" || s.apiSecret == "" {
		return nil, ErrStoreNotConfigured
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}

	metadata := map[string]interface{}{
		"pinataMetadata": map[string]interface{}{
			"name": filename,
			"keyvalues": map[string]interface{}{
				"uploadDate": time.Now().UTC().Format(time.RFC3339),
				"fileSize":   len(data),
				"mimeType":   contentType,
			},
		},
	}
	if meta, err := json.Marshal(metadata); err == nil {
		_ = writer.WriteField("pinataOptions", string(meta))
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/pinning/pinFileToIPFS", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	s.setAuthHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evidence upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("evidence upload failed (status %d): %s", resp.StatusCode, string(body))
	}

	var pinResp struct {
		IpfsHash  string `json:"IpfsHash"`
		PinSize   int64  `json:"PinSize"`
		Timestamp string `json:"Timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pinResp); err != nil {
		return nil, fmt.Errorf("failed to decode pin response: %w", err)
	}
	if pinResp.IpfsHash == "" {
		return nil, errors.New("pinning service returned no content identifier")
	}

	ts, err := time.Parse(time.RFC3339, pinResp.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	slog.Info("evidence pinned", "cid", pinResp.IpfsHash, "size", pinResp.PinSize)
	return &UploadResult{CID: pinResp.IpfsHash, PinSize: pinResp.PinSize, Timestamp: ts}, nil
}

func (s *Store) setAuthHeaders(req *http.Request) {
	req.Header.Set("pinata_api_key", s.apiKey)
	req.Header.Set("pinata_secret_api_key", s.apiSecret)
}
