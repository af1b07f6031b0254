package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// VerifyWebhookSignature checks that an inbound payment notification was
// signed by the gateway. The expected signature is HMAC-SHA256 over the
// canonical manifest "id:{resourceID};request-id:{requestID};" with the
// shared webhook secret.
//
// Missing signature or request-id values are rejected outright; there is
// no accept-and-warn path.
func VerifyWebhookSignature(resourceID, requestID, signatureHeader, secret string) bool {
	sig := extractSignature(signatureHeader)
	if sig == "" || strings.TrimSpace(secret) == "" {
		return false
	}
	if strings.TrimSpace(resourceID) == "" || strings.TrimSpace(requestID) == "" {
		return false
	}

	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;", strings.TrimSpace(resourceID), strings.TrimSpace(requestID))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hmac.Equal(mac.Sum(nil), decoded)
}

// extractSignature accepts either a bare hex digest or the provider's
// comma-separated "k=v" header form (e.g. "ts=1704908010,v1=<hex>") and
// returns the digest part.
func extractSignature(header string) string {
	h := strings.TrimSpace(header)
	if h == "" {
		return ""
	}
	if !strings.Contains(h, "=") {
		return h
	}
	for _, part := range strings.Split(h, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if found && strings.TrimSpace(k) == "v1" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
