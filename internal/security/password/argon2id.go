package password

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Prefix es el marcador estable con el que empieza todo hash de este paquete.
const Prefix = "$argon2"

const (
	algID   = "argon2id"
	version = argon2.Version // 19
)

var ErrMalformed = errors.New("password: malformed argon2 hash")

// MaxKeyLen es el largo máximo de clave derivada que se acepta al verificar.
const MaxKeyLen = 64

// costFactor: cuánto puede exceder un hash almacenado a los parámetros
// configurados antes de rechazarlo sin calcular nada.
const costFactor = 4

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

// Default replica los parámetros por defecto de Argon2id (RFC 9106, perfil
// de segunda opción): 19 MiB, 2 pasadas, 1 lane.
var Default = Params{Memory: 19 * 1024, Time: 2, Parallelism: 1, KeyLen: 32}

// Validate rechaza parámetros que argon2 no acepta o que son triviales.
func (p Params) Validate() error {
	switch {
	case p.Memory < 8*uint32(p.Parallelism) || p.Memory == 0:
		return fmt.Errorf("password: memory must be >= 8*parallelism KiB")
	case p.Time == 0:
		return fmt.Errorf("password: time must be >= 1")
	case p.Parallelism == 0:
		return fmt.Errorf("password: parallelism must be >= 1")
	case p.KeyLen < 16:
		return fmt.Errorf("password: key length must be >= 16")
	}
	return nil
}

// HashWithSalt devuelve un PHC string:
// $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
// El salt lo provee quien llama; este paquete no genera aleatoriedad.
func HashWithSalt(p Params, plain string, salt []byte) string {
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algID, version,
		p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	)
}

// Ceiling devuelve el costo máximo que se acepta verificar para hashes
// generados con p: costFactor veces cada parámetro y KeyLen hasta MaxKeyLen.
func (p Params) Ceiling() Params {
	mul := func(v uint32) uint32 {
		if v > math.MaxUint32/costFactor {
			return math.MaxUint32
		}
		return v * costFactor
	}
	par := uint32(p.Parallelism) * costFactor
	if par > math.MaxUint8 {
		par = math.MaxUint8
	}
	return Params{Memory: mul(p.Memory), Time: mul(p.Time), Parallelism: uint8(par), KeyLen: MaxKeyLen}
}

// Within indica si p no excede limit en ningún parámetro.
func (p Params) Within(limit Params) bool {
	return p.Memory <= limit.Memory &&
		p.Time <= limit.Time &&
		p.Parallelism <= limit.Parallelism &&
		p.KeyLen <= limit.KeyLen
}

// Verify es VerifyWithin con el techo de Default.
func Verify(plain, phc string) bool {
	return VerifyWithin(plain, phc, Default.Ceiling())
}

// VerifyWithin recalcula con los parámetros embebidos en phc y compara en
// tiempo constante. Un formato inválido o un costo por encima de limit
// devuelve false sin ejecutar argon2: los parámetros vienen de quien llama.
func VerifyWithin(plain, phc string, limit Params) bool {
	p, salt, dkStored, err := Parse(phc)
	if err != nil || !p.Within(limit) {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, uint32(len(dkStored)))
	return subtle.ConstantTimeCompare(key, dkStored) == 1
}

// Parse descompone un PHC argon2id.
func Parse(phc string) (Params, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, dk
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algID {
		return Params{}, nil, nil, ErrMalformed
	}
	if parts[2] != "v="+strconv.Itoa(version) {
		return Params{}, nil, nil, ErrMalformed
	}

	var p Params
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return Params{}, nil, nil, ErrMalformed
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return Params{}, nil, nil, ErrMalformed
		}
		switch k {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return Params{}, nil, nil, ErrMalformed
			}
			p.Parallelism = uint8(n)
		default:
			return Params{}, nil, nil, ErrMalformed
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, ErrMalformed
	}
	dk, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(dk) == 0 {
		return Params{}, nil, nil, ErrMalformed
	}
	if len(dk) > MaxKeyLen {
		return Params{}, nil, nil, ErrMalformed
	}
	p.KeyLen = uint32(len(dk))
	if err := p.Validate(); err != nil {
		return Params{}, nil, nil, ErrMalformed
	}
	return p, salt, dk, nil
}
