// internal/form/csrf.go
//
// Cadastro – Forms subsystem: stateless CSRF token utilities.
//
// Context
//   Every rendered form embeds a hidden `csrf_token` input, and the event
//   endpoints require the same token in a header or form field.  Tokens are
//   stateless and bound to the form session they were issued for:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce|ts|sessionID) )
//
//   A token copied from another session fails verification even when it is
//   fresh, and nothing needs to be stored server-side.
//
// Workflow
//   •  NewTokenSigner(key)             → signer with a configured secret.
//   •  signer.Generate(sessionID)      → token string for the renderer.
//   •  signer.Verify(tok, sessionID)   → constant-time check; false on failure.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"time"

	"go.uber.org/zap"
)

const (
	nonceBytes   = 16
	tokenBytes   = nonceBytes + 8 + sha256.Size // nonce + ts + sig
	tokenMaxAge  = 2 * time.Hour
	tokenMaxSkew = time.Minute
	minKeyBytes  = 32
)

// TokenSigner issues and verifies session-bound CSRF tokens.  It is safe for
// concurrent use.
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTokenSigner builds a signer from a base64url key of at least 32 bytes.
// An empty or short key falls back to a random ephemeral secret, which
// invalidates outstanding tokens on every restart.
func NewTokenSigner(key string) *TokenSigner {
	ts := &TokenSigner{now: time.Now}
	if key != "" {
		if b, err := base64.RawURLEncoding.DecodeString(key); err == nil && len(b) >= minKeyBytes {
			ts.secret = b
			return ts
		}
		zap.S().Warnw("csrf key rejected, need base64url with 32+ bytes")
	} else {
		zap.S().Warnw("csrf key not set")
	}
	ts.secret = make([]byte, minKeyBytes)
	_, _ = rand.Read(ts.secret)
	zap.S().Infow("using random csrf key")
	return ts
}

// Generate creates a token for sessionID.  Call once per form render.
func (ts *TokenSigner) Generate(sessionID string) (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	stamp := make([]byte, 8)
	binary.BigEndian.PutUint64(stamp, uint64(ts.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, stamp...)
	buf = append(buf, ts.sign(nonce, stamp, sessionID)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify reports whether tok was issued for sessionID and is within its
// validity window.
func (ts *TokenSigner) Verify(tok, sessionID string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:nonceBytes]
	stamp := raw[nonceBytes : nonceBytes+8]
	sig := raw[nonceBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(stamp)))
	now := ts.now()
	if now.Sub(issued) > tokenMaxAge || issued.Sub(now) > tokenMaxSkew {
		return false
	}

	return hmac.Equal(sig, ts.sign(nonce, stamp, sessionID))
}

func (ts *TokenSigner) sign(nonce, stamp []byte, sessionID string) []byte {
	mac := hmac.New(sha256.New, ts.secret)
	mac.Write(nonce)
	mac.Write(stamp)
	mac.Write([]byte(sessionID))
	return mac.Sum(nil)
}
