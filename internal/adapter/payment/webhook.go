// Package payment verifies and decodes payment provider webhooks.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Signature"

var ErrInvalidSignature = errors.New("invalid webhook signature")

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign returns the hex signature of body.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Parse checks signature against body and decodes the event. A "sha256="
// prefix on the signature is accepted.
func (v *Verifier) Parse(body []byte, signature string) (*domain.PaymentEvent, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil || len(got) == 0 {
		return nil, ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return nil, ErrInvalidSignature
	}

	var event domain.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode payment event: %w", err)
	}
	if event.Type == "" || event.Data.PaymentSubscriptionID == "" {
		return nil, errors.New("payment event is missing type or subscription id")
	}
	return &event, nil
}
