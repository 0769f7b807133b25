package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// KeySize es el tamaño del material de clave (AES-256).
const KeySize = 32

// Key es una clave simétrica del ring. El material nunca sale del paquete:
// sólo se expone el AEAD ya construido.
type Key struct {
	id        string
	createdAt time.Time
	seq       uint64

	material []byte
	aead     cipher.AEAD
}

func newKey(id string, material []byte, createdAt time.Time, seq uint64) (*Key, error) {
	if len(material) != KeySize {
		return nil, fmt.Errorf("keyring: key material must be %d bytes, got %d", KeySize, len(material))
	}
	block, err := aes.NewCipher(material)
	if err != nil {
		return nil, fmt.Errorf("keyring: aes.NewCipher: %w", err)
	}
	// nonce 96 bits, tag 128 bits (defaults de GCM)
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keyring: cipher.NewGCM: %w", err)
	}
	return &Key{
		id:        id,
		createdAt: createdAt,
		seq:       seq,
		material:  material,
		aead:      aead,
	}, nil
}

// ID devuelve el identificador de la clave.
func (k *Key) ID() string { return k.id }

// CreatedAt devuelve el instante de creación (UTC).
func (k *Key) CreatedAt() time.Time { return k.createdAt }

// AEAD devuelve el cifrador AES-256-GCM de la clave.
// Sigue siendo válido aunque la clave sea desalojada mientras se usa.
func (k *Key) AEAD() cipher.AEAD { return k.aead }

// Destroy pone en cero la copia cruda del material. El key schedule de AES
// dentro de AEAD no se puede limpiar y vive hasta que el GC lo recolecte.
func (k *Key) Destroy() {
	for i := range k.material {
		k.material[i] = 0
	}
}

// newerThan aplica la regla de desempate: created_at y luego seq de inserción.
func (k *Key) newerThan(o *Key) bool {
	if !k.createdAt.Equal(o.createdAt) {
		return k.createdAt.After(o.createdAt)
	}
	return k.seq > o.seq
}

// String no incluye material.
func (k *Key) String() string { return "Key(" + k.id + ")" }

// GoString evita que %#v vuelque el material.
func (k *Key) GoString() string { return k.String() }

// MarshalLogObject permite loguear la clave con zap.Object sin material.
func (k *Key) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("key_id", k.id)
	enc.AddTime("created_at", k.createdAt)
	return nil
}
