// Package envelope implementa el cifrado autenticado (AES-256-GCM) con claves
// del keyring y binding opcional de un contexto como AAD.
//
// La falla de descifrado es deliberadamente indiferenciada: ErrDecryptionFailed
// no dice si fue la clave, el nonce, el tag o el AAD.
package envelope

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dropDatabas3/sealjohn/internal/security/digest"
	"github.com/dropDatabas3/sealjohn/internal/security/keyring"
	"github.com/dropDatabas3/sealjohn/internal/security/random"
)

// NonceSize es el nonce de GCM (96 bits).
const NonceSize = 12

var (
	ErrInvalidNonce     = errors.New("envelope: invalid nonce")
	ErrInvalidEncoding  = errors.New("envelope: plaintext is not valid UTF-8")
	ErrDecryptionFailed = errors.New("envelope: decryption failed")
	ErrContextEncoding  = errors.New("envelope: context serialization failed")
	ErrCrypto           = errors.New("envelope: crypto error")
)

// Envelope es el resultado de Encrypt y la entrada de Decrypt.
// Ciphertext y Nonce van en base64 estándar.
type Envelope struct {
	Ciphertext  string
	KeyID       string
	Nonce       string
	ContextHash *string
}

// Keys es lo que el codec necesita del keyring.
type Keys interface {
	CurrentKeyID() (string, error)
	Get(id string) (*keyring.Key, error)
}

// Codec no tiene estado mutable propio.
type Codec struct {
	keys Keys
	rnd  random.Source
}

func New(keys Keys, src random.Source) *Codec {
	return &Codec{keys: keys, rnd: src}
}

// Encrypt sella plaintext. keyID vacío usa la clave current. Un context no nil
// (aunque esté vacío) se canonicaliza, se hashea y ese hash es el AAD.
func (c *Codec) Encrypt(plaintext, keyID string, context map[string]string) (*Envelope, error) {
	if keyID == "" {
		id, err := c.keys.CurrentKeyID()
		if err != nil {
			return nil, err
		}
		keyID = id
	}
	key, err := c.keys.Get(keyID)
	if err != nil {
		return nil, err
	}

	// Nonce nuevo en cada llamada; nunca derivado.
	nonce, err := random.Bytes(c.rnd, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("envelope: nonce: %w", err)
	}

	var (
		aad         []byte
		contextHash *string
	)
	if context != nil {
		h, err := ContextHash(context)
		if err != nil {
			return nil, err
		}
		aad = []byte(h)
		contextHash = &h
	}

	aead := key.AEAD()
	if aead.NonceSize() != NonceSize {
		return nil, ErrCrypto
	}
	ct := aead.Seal(nil, nonce, []byte(plaintext), aad)

	return &Envelope{
		Ciphertext:  base64.StdEncoding.EncodeToString(ct),
		KeyID:       keyID,
		Nonce:       base64.StdEncoding.EncodeToString(nonce),
		ContextHash: contextHash,
	}, nil
}

// Decrypt abre el envelope. Nunca modifica el keyring. Quien llama debe
// presentar el mismo context_hash recibido al cifrar; no se recalcula.
func (c *Codec) Decrypt(env Envelope) (string, error) {
	key, err := c.keys.Get(env.KeyID)
	if err != nil {
		return "", err
	}

	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil || len(nonce) != NonceSize {
		return "", ErrInvalidNonce
	}

	var aad []byte
	if env.ContextHash != nil {
		aad = []byte(*env.ContextHash)
	}

	ct, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	pt, err := key.AEAD().Open(nil, nonce, ct, aad)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if !utf8.Valid(pt) {
		return "", ErrInvalidEncoding
	}
	return string(pt), nil
}

// ContextHash canonicaliza context (JSON con claves ordenadas) y devuelve su
// SHA-256 en hex.
func ContextHash(context map[string]string) (string, error) {
	// encoding/json ordena las claves de los maps, así que la salida es estable.
	b, err := json.Marshal(context)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContextEncoding, err)
	}
	return digest.Hash(string(b)), nil
}
