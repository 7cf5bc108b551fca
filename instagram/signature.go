package instagram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// ValidateSignature checks an x-hub-signature-256 header value against the raw
// webhook body. The header carries "sha256=" plus the hex HMAC-SHA256 of the
// body keyed with the app secret.
func ValidateSignature(signature string, body []byte, secret string) bool {
	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(signature, signaturePrefix)))
}
