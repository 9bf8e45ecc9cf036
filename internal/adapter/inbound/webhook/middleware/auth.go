package middleware

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"net/http"
)

const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

var (
	ErrMissingSignature = errors.New("missing signature headers")
	ErrInvalidSignature = errors.New("invalid request signature")
)

// VerifySignature checks sig (hex) as an ed25519 signature of timestamp+body.
func VerifySignature(key ed25519.PublicKey, timestamp string, body []byte, sig string) error {
	if sig == "" || timestamp == "" {
		return ErrMissingSignature
	}
	decoded, err := hex.DecodeString(sig)
	if err != nil || len(decoded) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	if !ed25519.Verify(key, msg, decoded) {
		return ErrInvalidSignature
	}
	return nil
}

// SignatureAuth returns middleware that rejects requests whose ed25519
// signature does not verify against key. It must run inside BodyReader.
func SignatureAuth(key ed25519.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, ok := RawBody(r.Context())
			if !ok {
				http.Error(w, "request body not available for signature verification", http.StatusInternalServerError)
				return
			}
			err := VerifySignature(key, r.Header.Get(HeaderTimestamp), body, r.Header.Get(HeaderSignature))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
