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

	"github.com/Skufu/GoMaternal/internal/observation"
)

// ErrEmptyPrediction is returned when the model server answers without a class.
var ErrEmptyPrediction = errors.New("model server returned no prediction")

type predictRequest struct {
	Columns   []string    `json:"columns"`
	Instances [][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions []int `json:"predictions"`
}

// HTTPClient calls a model server hosting the trained artifact.
type HTTPClient struct {
	url        string
	httpClient *http.Client
}

func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict sends a single instance and returns its class index.
func (c *HTTPClient) Predict(ctx context.Context, features []float64) (int, error) {
	if len(features) != observation.NumFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", observation.NumFeatures, len(features))
	}

	body, err := json.Marshal(predictRequest{
		Columns:   observation.FeatureOrder(),
		Instances: [][]float64{features},
	})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("model server returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Predictions) == 0 {
		return 0, ErrEmptyPrediction
	}
	return out.Predictions[0], nil
}
