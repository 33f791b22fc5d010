// Package letter calls the letter generation service. Generation is slow
// and priced, so the client is deliberately strict: an empty letter is a
// failure, never a success with empty text.
package letter

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"pcnappeal/internal/appeal"
	"pcnappeal/internal/rules"
	dErrors "pcnappeal/pkg/domain-errors"
)

// Client calls the letter service over JSON HTTP. It satisfies
// appeal.LetterGenerator.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a letter client. The timeout caps the whole generation
// round trip; the appeal service rolls the case back when it fires.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// generateRequest is the letter service's input: the ticket details plus
// the ranked defence outcome.
type generateRequest struct {
	PCNNumber          string          `json:"pcn_number"`
	Authority          string          `json:"authority"`
	VRM                string          `json:"vrm"`
	Location           string          `json:"location"`
	ContraventionCode  string          `json:"contravention_code"`
	ContraventionText  string          `json:"contravention_text"`
	IssueAt            time.Time       `json:"issue_at"`
	PrimaryDefence     *rules.Defence  `json:"primary_defence,omitempty"`
	SupportingDefences []rules.Defence `json:"supporting_defences,omitempty"`
	GeneralDefences    []string        `json:"general_defences,omitempty"`
}

type generateResponse struct {
	Letter string `json:"letter"`
}

// Generate produces the appeal letter text for a case. Any failure comes
// back as unavailable: the caller keeps the case paid and retries.
func (c *Client) Generate(ctx context.Context, appealCase appeal.Case) (string, error) {
	payload, err := json.Marshal(generateRequest{
		PCNNumber:          appealCase.Ticket.PCNNumber,
		Authority:          appealCase.Ticket.Authority,
		VRM:                appealCase.Ticket.VRM,
		Location:           appealCase.Ticket.Location,
		ContraventionCode:  appealCase.Facts.ContraventionCode,
		ContraventionText:  appealCase.Ticket.ContraventionText,
		IssueAt:            appealCase.Facts.IssueAt,
		PrimaryDefence:     appealCase.PrimaryDefence,
		SupportingDefences: appealCase.SupportingDefences,
		GeneralDefences:    appealCase.GeneralDefences,
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "encode letter request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "build letter request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "letter service unreachable", "error", err)
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "letter service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorContext(ctx, "letter service returned error", "status", resp.StatusCode)
		return "", dErrors.Newf(dErrors.CodeUnavailable, "letter service returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "decode letter response")
	}
	if out.Letter == "" {
		return "", dErrors.New(dErrors.CodeUnavailable, "letter service returned empty letter")
	}
	return out.Letter, nil
}
