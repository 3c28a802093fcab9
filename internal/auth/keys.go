package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// SessionKeyEnv overrides the key file when set.
const SessionKeyEnv = "AUTHFLOW_SESSION_KEY_HEX"

// Key purposes passed to DeriveKey.
const (
	PurposeCookieAuth = "authflow cookie auth"
	PurposeCookieEnc  = "authflow cookie enc"
	PurposeResetToken = "authflow reset token"
)

// ReadSessionKey returns the 32-byte master key, from hexKey when non-empty
// or else from the hex file at path.
func ReadSessionKey(hexKey, path string) ([]byte, error) {
	h := strings.TrimSpace(hexKey)
	if h == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s not set and %s not readable: %w", SessionKeyEnv, path, err)
		}
		h = strings.TrimSpace(string(data))
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("session key hex decode error: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("session key length must be 32 bytes (hex 64 chars), got %d", len(b))
	}
	return b, nil
}

// DeriveKey expands master into a 32-byte key bound to purpose.
func DeriveKey(master []byte, purpose string) []byte {
	out := make([]byte, 32)
	r := hkdf.New(sha256.New, master, nil, []byte(purpose))
	if _, err := io.ReadFull(r, out); err != nil {
		// hkdf only fails past 255*HashLen bytes of output.
		panic(err)
	}
	return out
}
