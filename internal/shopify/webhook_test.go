package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookVerifierAcceptsValidSignature(t *testing.T) {
	verifier := NewWebhookVerifier("whsec")
	body := []byte(`{"id":1001,"line_items":[]}`)

	assert.True(t, verifier.Verify(body, sign("whsec", body)))
}

func TestWebhookVerifierRejectsBadSignature(t *testing.T) {
	verifier := NewWebhookVerifier("whsec")
	body := []byte(`{"id":1001}`)

	assert.False(t, verifier.Verify(body, sign("other-secret", body)))
	assert.False(t, verifier.Verify(body, "not-base64-at-all"))
	assert.False(t, verifier.Verify(body, ""))
}

func TestWebhookVerifierRejectsModifiedBody(t *testing.T) {
	verifier := NewWebhookVerifier("whsec")
	signature := sign("whsec", []byte(`{"id":1001}`))

	assert.False(t, verifier.Verify([]byte(`{"id":1002}`), signature))
}

func TestWebhookVerifierEmptySecretDeniesAll(t *testing.T) {
	verifier := NewWebhookVerifier("")
	body := []byte(`{"id":1001}`)

	assert.False(t, verifier.Verify(body, sign("", body)))
}
