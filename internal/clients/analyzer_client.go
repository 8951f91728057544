// internal/clients/analyzer_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrAmbiguousDeliveryMatch is returned when the analyzer cannot associate a
// scanned delivery note with an open order. Callers fall back to manual
// reconciliation; the request is not retried.
var ErrAmbiguousDeliveryMatch = errors.New("delivery note could not be matched to an open order")

// ExpectedItem is one open order line sent to the analyzer for context.
type ExpectedItem struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// AnalyzedLine is one recognized line of a delivery note.
type AnalyzedLine struct {
	ItemID            string `json:"item_id"`
	ItemName          string `json:"item_name"`
	DeliveredQuantity int    `json:"delivered_quantity"`
	OrderedQuantity   int    `json:"ordered_quantity"`
	MatchStatus       string `json:"match_status"`
}

// AnalyzerClient talks to the external delivery-note analyzer. Recognition
// happens entirely on the other side; this client only ships the expected
// lines plus an image reference and decodes the structured result. Calls are
// rate limited since the analyzer bills per request.
type AnalyzerClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewAnalyzerClient(baseURL string) *AnalyzerClient {
	return &AnalyzerClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// AnalyzeDeliveryNote submits one delivery-note image for recognition
// against an order's open lines.
func (c *AnalyzerClient) AnalyzeDeliveryNote(ctx context.Context, orderNumber string, expected []ExpectedItem, imageRef string) ([]AnalyzedLine, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload := struct {
		OrderNumber string         `json:"order_number"`
		Expected    []ExpectedItem `json:"expected"`
		ImageRef    string         `json:"image_ref"`
	}{orderNumber, expected, imageRef}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/analyze", c.baseURL), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusUnprocessableEntity:
		return nil, ErrAmbiguousDeliveryMatch
	default:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var lines []AnalyzedLine
	if err := json.NewDecoder(resp.Body).Decode(&lines); err != nil {
		return nil, err
	}
	return lines, nil
}
