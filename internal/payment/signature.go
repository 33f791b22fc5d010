package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the HTTP header carrying the webhook signature.
const SignatureHeader = "Payment-Signature"

// DefaultSignatureTolerance bounds how old a signed timestamp may be.
// Replays of captured requests outside this window are rejected outright;
// replays inside it are absorbed by the idempotency store.
const DefaultSignatureTolerance = 5 * time.Minute

// VerifySignature checks a webhook signature of the form
// "t=<unix>,v1=<hex>" where the hex value is HMAC-SHA256 over
// "<t>.<body>". Comparison is constant time.
func VerifySignature(header string, body []byte, secret string, now time.Time, tolerance time.Duration) error {
	ts, sig, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	signedAt := time.Unix(ts, 0)
	age := now.Sub(signedAt)
	if age > tolerance || age < -tolerance {
		return fmt.Errorf("signature timestamp outside tolerance: signed at %s", signedAt.UTC().Format(time.RFC3339))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("signature is not valid hex")
	}
	if !hmac.Equal(expected, provided) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// SignPayload produces a valid signature header for body at the given time.
// Used by tests and by the local payment simulator.
func SignPayload(body []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func parseSignatureHeader(header string) (int64, string, error) {
	if header == "" {
		return 0, "", fmt.Errorf("missing %s header", SignatureHeader)
	}

	var (
		ts  int64
		sig string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("malformed signature timestamp")
			}
			ts = parsed
		case "v1":
			sig = value
		}
	}
	if ts == 0 || sig == "" {
		return 0, "", fmt.Errorf("signature header missing t or v1 component")
	}
	return ts, sig, nil
}
