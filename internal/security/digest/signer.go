package digest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

const (
	// FreshnessWindow es la antigüedad máxima aceptada para una firma.
	FreshnessWindow = time.Hour
	// MaxClockSkew tolera timestamps levemente en el futuro.
	MaxClockSkew = time.Minute

	// DefaultKeyLabel se informa cuando quien firma no manda etiqueta.
	DefaultKeyLabel = "default"

	minSigningKeyLen = 32
)

var (
	ErrInvalidSigningKey = errors.New("digest: invalid signing key")
	ErrInvalidTimestamp  = errors.New("digest: invalid timestamp")
)

// Signature es el resultado de Sign.
type Signature struct {
	Value     string // hex(HMAC-SHA256)
	KeyID     string // etiqueta informativa, no selecciona clave
	Timestamp time.Time
}

// SignerOption configura un Signer.
type SignerOption func(*Signer)

// WithSignerClock reemplaza time.Now (tests).
func WithSignerClock(now func() time.Time) SignerOption {
	return func(s *Signer) { s.now = now }
}

// Signer firma con una única clave de larga vida. No rota.
type Signer struct {
	key []byte
	now func() time.Time
}

// NewSigner copia la clave; quien llama puede ponerla en cero después.
func NewSigner(key []byte, opts ...SignerOption) (*Signer, error) {
	if len(key) < minSigningKeyLen {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrInvalidSigningKey, minSigningKeyLen, len(key))
	}
	s := &Signer{key: append([]byte(nil), key...), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// FormatTimestamp es la codificación canónica que entra al MAC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp acepta RFC 3339 (con o sin fracción) y normaliza a UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}
	return t.UTC(), nil
}

func (s *Signer) mac(data string, ts time.Time) []byte {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(data))
	m.Write([]byte(FormatTimestamp(ts)))
	return m.Sum(nil)
}

// Sign firma data || timestamp. El timestamp devuelto es exactamente el que
// entró al MAC.
func (s *Signer) Sign(data, keyLabel string) Signature {
	if keyLabel == "" {
		keyLabel = DefaultKeyLabel
	}
	ts := s.now().UTC()
	return Signature{
		Value:     hex.EncodeToString(s.mac(data, ts)),
		KeyID:     keyLabel,
		Timestamp: ts,
	}
}

// Verify devuelve false para firmas vencidas (más de FreshnessWindow), para
// timestamps futuros más allá de MaxClockSkew y para MACs que no coinciden.
// Vencida no es error: es un resultado negativo normal.
func (s *Signer) Verify(data, signature string, ts time.Time) bool {
	age := s.now().Sub(ts)
	if age > FreshnessWindow || age < -MaxClockSkew {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.mac(data, ts))
}
