package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

// Prediction is the classifier's verdict for one evidence location. Missing
// response fields degrade to undetected / zero rather than erroring.
type Prediction struct {
	PredictedLabel   string  `json:"predicted_label"`
	PlasticProb      float64 `json:"plastic_prob"`
	OilProb          float64 `json:"oil_prob"`
	IsWaterDetection bool    `json:"is_water_detection"`
	Confidence       float64 `json:"confidence"`
	Reason           string  `json:"reason"`
}

// Client talks to the external prediction service. Successful predictions are
// cached per URL so repeated sweeps over unchanged mirrors stay cheap.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
}

func NewClient(baseURL string, timeout, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.New(cacheTTL, cacheTTL*2),
	}
}

// Health probes the prediction service. Any non-2xx or transport error means
// the whole sweep is skipped.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("classifier unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("classifier unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

// Classify submits one candidate URL for prediction, forwarding the caller's
// bearer token unchanged. One attempt per candidate; the orchestrator falls
// through to the next mirror on failure.
func (c *Client) Classify(ctx context.Context, imageURL, token string) (*Prediction, error) {
	if imageURL == "" {
		return nil, errors.New("image URL is required")
	}

	if cached, ok := c.cache.Get(imageURL); ok {
		p := cached.(Prediction)
		return &p, nil
	}

	body, err := json.Marshal(map[string]string{"image_url": imageURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict_url", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classification call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("classifier error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var raw struct {
		PredictedLabel   *string  `json:"predicted_label"`
		PlasticProb      *float64 `json:"plastic_prob"`
		OilProb          *float64 `json:"oil_prob"`
		IsWaterDetection *bool    `json:"is_water_detection"`
		Confidence       float64  `json:"confidence"`
		Reason           string   `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}

	p := Prediction{
		PredictedLabel: "undetected",
		Confidence:     raw.Confidence,
		Reason:         raw.Reason,
	}
	if raw.PredictedLabel != nil && *raw.PredictedLabel != "" {
		p.PredictedLabel = *raw.PredictedLabel
	}
	if raw.PlasticProb != nil {
		p.PlasticProb = clampProb(*raw.PlasticProb)
	}
	if raw.OilProb != nil {
		p.OilProb = clampProb(*raw.OilProb)
	}
	if raw.IsWaterDetection != nil {
		p.IsWaterDetection = *raw.IsWaterDetection
	}

	// Only confirmed verdicts are cached: an undetected result must stay
	// eligible for a fresh look on the next sweep.
	if !retryableLabel(p.PredictedLabel) {
		c.cache.Set(imageURL, p, cache.DefaultExpiration)
	}
	return &p, nil
}

func clampProb(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
