// Package masterkey decodifica y genera la clave maestra de la que sale la
// SigningKey de larga vida.
package masterkey

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/sealjohn/internal/security/random"
)

// Size es el largo exigido (32 bytes).
const Size = 32

var ErrInvalid = errors.New("masterkey: invalid master key")

// Parse acepta la clave en base64 (std, con o sin padding), hex de 64
// caracteres o 32 bytes crudos, en ese orden.
func Parse(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty (genere una con: sealctl gen-master-key)", ErrInvalid)
	}

	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == Size {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(b) == Size {
		return b, nil
	}
	if len(s) == 2*Size {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	if len(s) == Size {
		return []byte(s), nil
	}
	return nil, fmt.Errorf("%w: must decode to %d bytes", ErrInvalid, Size)
}

// Generate devuelve una clave nueva en base64 estándar.
func Generate(src random.Source) (string, error) {
	b, err := random.Bytes(src, Size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
