package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultVisionURL = "https://vision.googleapis.com/v1"

// Client calls the Google Cloud Vision REST API for text detection on event
// flyers.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: defaultVisionURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type imageSource struct {
	ImageURI string `json:"imageUri"`
}

type annotateImage struct {
	Source imageSource `json:"source"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type textAnnotation struct {
	Description string `json:"description"`
}

type annotateResult struct {
	TextAnnotations []textAnnotation `json:"textAnnotations"`
	Error           *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type annotateResponse struct {
	Responses []annotateResult `json:"responses"`
}

// ExtractText runs TEXT_DETECTION on an image URL and returns the full text
// blob. An image with no text yields an empty string, not an error.
func (c *Client) ExtractText(ctx context.Context, imageURL string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("vision api key not set")
	}

	payload, err := json.Marshal(annotateRequest{
		Requests: []annotateEntry{{
			Image:    annotateImage{Source: imageSource{ImageURI: imageURL}},
			Features: []annotateFeature{{Type: "TEXT_DETECTION"}},
		}},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/images:annotate?key=%s", c.BaseURL, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("vision api status %d: %s", resp.StatusCode, body)
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Responses) == 0 {
		return "", nil
	}
	if apiErr := out.Responses[0].Error; apiErr != nil {
		return "", fmt.Errorf("vision api: %s", apiErr.Message)
	}
	if len(out.Responses[0].TextAnnotations) == 0 {
		return "", nil
	}
	// The first annotation carries the whole detected block.
	return out.Responses[0].TextAnnotations[0].Description, nil
}
