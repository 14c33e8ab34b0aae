package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	cookieCodecVersion = "v1"
	cookiePurposeLabel = "vitaminpack.cookie."
)

var ErrInvalidCookieValue = errors.New("invalid sealed cookie value")

// CookieCodec seals cookie values with AES-GCM. The purpose is bound as
// additional data, so a value sealed for one cookie cannot be replayed in another.
type CookieCodec struct {
	aead cipher.AEAD
}

func NewCookieCodec(secretKey []byte) (*CookieCodec, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("cookie codec secret key is required")
	}

	derivedKey := deriveCookieKey(secretKey)
	block, err := aes.NewCipher(derivedKey[:])
	if err != nil {
		return nil, fmt.Errorf("init cookie cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init cookie aead: %w", err)
	}
	return &CookieCodec{aead: aead}, nil
}

func deriveCookieKey(secretKey []byte) [32]byte {
	label := []byte("vitaminpack.cookie-key.v1")
	material := make([]byte, 0, len(label)+len(secretKey))
	material = append(material, label...)
	material = append(material, secretKey...)
	return sha256.Sum256(material)
}

func (codec *CookieCodec) Seal(purpose string, plaintext []byte) (string, error) {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return "", errors.New("cookie purpose is required")
	}

	nonce := make([]byte, codec.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate cookie nonce: %w", err)
	}

	sealed := codec.aead.Seal(nonce, nonce, plaintext, []byte(cookiePurposeLabel+purpose))
	return cookieCodecVersion + "." + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (codec *CookieCodec) Open(purpose string, rawValue string) ([]byte, error) {
	purpose = strings.TrimSpace(purpose)
	if purpose == "" {
		return nil, errors.New("cookie purpose is required")
	}

	version, encoded, found := strings.Cut(strings.TrimSpace(rawValue), ".")
	if !found || version != cookieCodecVersion || encoded == "" {
		return nil, ErrInvalidCookieValue
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCookieValue
	}

	nonceSize := codec.aead.NonceSize()
	if len(payload) <= nonceSize {
		return nil, ErrInvalidCookieValue
	}

	plaintext, err := codec.aead.Open(nil, payload[:nonceSize], payload[nonceSize:], []byte(cookiePurposeLabel+purpose))
	if err != nil {
		return nil, ErrInvalidCookieValue
	}
	return plaintext, nil
}
