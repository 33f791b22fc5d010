// Package ocr proxies ticket photo extraction to the OCR service. The
// extraction result is only ever a suggestion: users confirm every field
// before it becomes a case fact.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"pcnappeal/internal/rules"
	dErrors "pcnappeal/pkg/domain-errors"
)

// Extraction is the OCR service's reading of one ticket photo. Candidate
// contravention codes come with plain-English explanations so the user can
// pick the right one.
type Extraction struct {
	PCNNumber     string          `json:"pcn_number,omitempty"`
	VRM           string          `json:"vrm,omitempty"`
	Authority     string          `json:"authority,omitempty"`
	Location      string          `json:"location,omitempty"`
	IssueAt       string          `json:"issue_at,omitempty"`
	Contravention []CodeCandidate `json:"contravention_candidates,omitempty"`
	Confidence    float64         `json:"confidence"`
}

// CodeCandidate is one possible contravention code reading.
type CodeCandidate struct {
	Code        string  `json:"code"`
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence"`
}

// Client calls the OCR service over JSON HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds an OCR client. The timeout caps the whole extraction
// round trip.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type extractRequest struct {
	ImageBase64 string `json:"image_base64"`
	ContentType string `json:"content_type"`
}

// Extract sends one encoded ticket photo for extraction. Failures come back
// as unavailable so callers know retrying is safe; the case itself is
// untouched either way.
func (c *Client) Extract(ctx context.Context, imageBase64, contentType string) (Extraction, error) {
	payload, err := json.Marshal(extractRequest{ImageBase64: imageBase64, ContentType: contentType})
	if err != nil {
		return Extraction{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode extraction request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(payload))
	if err != nil {
		return Extraction{}, dErrors.Wrap(err, dErrors.CodeInternal, "build extraction request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "ocr service unreachable", "error", err)
		return Extraction{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "ocr service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "ocr service returned error", "status", resp.StatusCode)
		return Extraction{}, dErrors.Newf(dErrors.CodeUnavailable, "ocr service returned status %d", resp.StatusCode)
	}

	var extraction Extraction
	if err := json.NewDecoder(resp.Body).Decode(&extraction); err != nil {
		return Extraction{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "decode extraction response")
	}

	annotateCandidates(extraction.Contravention)
	return extraction, nil
}

// annotateCandidates fills in explanations the OCR service left blank using
// the local contravention registry.
func annotateCandidates(candidates []CodeCandidate) {
	for i := range candidates {
		if candidates[i].Explanation == "" {
			candidates[i].Explanation = rules.ContraventionExplanation(candidates[i].Code)
		}
	}
}
