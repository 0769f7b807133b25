// Package digest agrupa los hashes de contenido y las firmas HMAC.
//
// Hay dos familias de hash que conviven en la misma superficie:
//   - rápido: SHA-256 en hex, sin configuración. Se usa para el binding de
//     contexto del envelope y como modo por defecto.
//   - memory-hard: Argon2id en formato PHC, sólo cuando quien llama trae salt.
//
// VerifyHash decide cuál aplicar por el prefijo "$argon2" del hash guardado.
package digest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/sealjohn/internal/security/password"
	"github.com/dropDatabas3/sealjohn/internal/security/random"
)

const (
	AlgorithmSHA256   = "sha256"
	AlgorithmArgon2id = "argon2id"

	// NoSalt es lo que se reporta como salt cuando se usó el hash rápido.
	NoSalt = "none"

	minSaltLen     = 8
	maxSaltLen     = 64
	defaultSaltLen = 16
)

var ErrInvalidSalt = errors.New("digest: invalid salt")

// Hash devuelve SHA-256(data) en hex minúscula.
func Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// HashResult es la salida de HashData.
type HashResult struct {
	Hash      string
	Salt      string
	Algorithm string
}

// Hasher aplica la familia de hash que corresponda.
type Hasher struct {
	params password.Params
}

// NewHasher valida los parámetros Argon2id.
func NewHasher(p password.Params) (*Hasher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{params: p}, nil
}

// PasswordHash calcula Argon2id con el salt de quien llama.
// El salt se acepta en base64 (con o sin padding); si no decodifica a un
// largo válido se usan sus bytes tal cual.
func (h *Hasher) PasswordHash(data, salt string) (string, error) {
	raw, err := decodeSalt(salt)
	if err != nil {
		return "", err
	}
	return password.HashWithSalt(h.params, data, raw), nil
}

// HashData es el punto de entrada unificado: sin salt usa SHA-256, con salt
// Argon2id.
func (h *Hasher) HashData(data string, salt *string) (HashResult, error) {
	if salt == nil {
		return HashResult{Hash: Hash(data), Salt: NoSalt, Algorithm: AlgorithmSHA256}, nil
	}
	phc, err := h.PasswordHash(data, *salt)
	if err != nil {
		return HashResult{}, err
	}
	return HashResult{Hash: phc, Salt: *salt, Algorithm: AlgorithmArgon2id}, nil
}

// VerifyHash despacha por prefijo y compara en tiempo constante.
func (h *Hasher) VerifyHash(data, hash string) bool {
	if strings.HasPrefix(hash, password.Prefix) {
		// el costo lo trae el hash: se acota a los parámetros configurados
		return password.VerifyWithin(data, hash, h.params.Ceiling())
	}
	want := Hash(data)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(hash))) == 1
}

// NewSalt genera un salt aleatorio en base64 sin padding.
func NewSalt(src random.Source) (string, error) {
	b, err := random.Bytes(src, defaultSaltLen)
	if err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

func decodeSalt(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.StdEncoding} {
		if b, err := enc.DecodeString(s); err == nil && validSaltLen(len(b)) {
			return b, nil
		}
	}
	if !validSaltLen(len(s)) {
		return nil, fmt.Errorf("%w: must be %d-%d bytes, got %d", ErrInvalidSalt, minSaltLen, maxSaltLen, len(s))
	}
	return []byte(s), nil
}

func validSaltLen(n int) bool { return n >= minSaltLen && n <= maxSaltLen }
