package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jsphweid/statecomposer/flat"
	"github.com/jsphweid/statecomposer/model"
	"github.com/pkg/errors"
)

// HTTPPredictor calls a predictor served by `statecomposer serve` or any
// service speaking the same JSON.
type HTTPPredictor struct {
	baseURL string
	width   flat.Width
	client  *http.Client
}

// NewHTTPPredictor falls back to $COMPOSER_PREDICTOR_URL, then localhost.
func NewHTTPPredictor(baseURL string, w flat.Width) *HTTPPredictor {
	if baseURL == "" {
		baseURL = os.Getenv("COMPOSER_PREDICTOR_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &HTTPPredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		width:   w,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HTTPPredictor) Width() flat.Width {
	return p.width
}

func (p *HTTPPredictor) Predict(ctx context.Context, window []flat.Vector) (flat.Vector, error) {
	body, err := json.Marshal(model.PredictRequest{Window: window})
	if err != nil {
		return nil, errors.Wrap(err, "encoding predict request")
	}
	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building predict request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "predictor request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		var e model.ErrorResponse
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return nil, errors.Errorf("predictor error %d: %s", resp.StatusCode, e.Error)
		}
		return nil, errors.Errorf("predictor error %d: %s", resp.StatusCode, string(b))
	}

	var result model.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decoding predict response")
	}
	return result.Prediction, nil
}
