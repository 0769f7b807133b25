// Package keyring mantiene el conjunto acotado de claves simétricas activas.
//
// Reglas:
//   - Una clave sólo nace en GenerateAndActivate y sólo muere cuando la
//     rotación la desaloja por exceder RetentionLimit.
//   - La clave "current" es la de mayor created_at; empates se resuelven por
//     número de secuencia de inserción.
//   - Todo vive en memoria. Reiniciar el proceso pierde las claves.
//
// El ring no tiene timer propio: la rotación periódica la dispara un scheduler
// externo.
package keyring

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/sealjohn/internal/security/random"
)

// RetentionLimit es la cantidad máxima de claves retenidas.
const RetentionLimit = 3

var (
	ErrKeyNotFound  = errors.New("keyring: key not found")
	ErrKeyRingEmpty = errors.New("keyring: no keys available")
)

// Option configura un KeyRing.
type Option func(*KeyRing)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(r *KeyRing) { r.now = now }
}

// KeyRing es seguro para uso concurrente.
type KeyRing struct {
	rnd random.Source
	now func() time.Time

	mu      sync.RWMutex
	keys    map[string]*Key
	current *Key
	seq     uint64
}

// New crea un ring vacío. Llamar GenerateAndActivate antes de servir requests.
func New(src random.Source, opts ...Option) *KeyRing {
	r := &KeyRing{
		rnd:  src,
		now:  time.Now,
		keys: make(map[string]*Key, RetentionLimit+1),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// GenerateAndActivate crea una clave nueva, la vuelve current y desaloja las
// más viejas hasta dejar RetentionLimit. Devuelve el id nuevo.
func (r *KeyRing) GenerateAndActivate() (string, error) {
	// Todo lo que toca entropía o arma el cipher se hace fuera del lock.
	material, err := random.Bytes(r.rnd, KeySize)
	if err != nil {
		return "", fmt.Errorf("keyring: generate key material: %w", err)
	}
	u, err := uuid.NewRandomFromReader(random.ReaderOf(r.rnd))
	if err != nil {
		zero(material)
		return "", fmt.Errorf("keyring: generate key id: %w", err)
	}
	id := u.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Si el reloj retrocede la clave nueva igual debe quedar como current.
	createdAt := r.now().UTC()
	if r.current != nil && createdAt.Before(r.current.createdAt) {
		createdAt = r.current.createdAt
	}

	if _, dup := r.keys[id]; dup {
		zero(material)
		return "", fmt.Errorf("keyring: duplicate key id %s", id)
	}
	r.seq++
	k, err := newKey(id, material, createdAt, r.seq)
	if err != nil {
		zero(material)
		return "", err
	}
	r.keys[id] = k
	if r.current == nil || k.newerThan(r.current) {
		r.current = k
	}
	r.evictLocked()
	return id, nil
}

// evictLocked desaloja por antigüedad hasta respetar RetentionLimit.
func (r *KeyRing) evictLocked() {
	if len(r.keys) <= RetentionLimit {
		return
	}
	ordered := r.sortedLocked()
	for _, k := range ordered[RetentionLimit:] {
		delete(r.keys, k.id)
		k.Destroy()
	}
}

// sortedLocked devuelve las claves de la más nueva a la más vieja.
func (r *KeyRing) sortedLocked() []*Key {
	out := make([]*Key, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].newerThan(out[j]) })
	return out
}

// CurrentKeyID devuelve el id de la clave más reciente.
func (r *KeyRing) CurrentKeyID() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return "", ErrKeyRingEmpty
	}
	return r.current.id, nil
}

// Get devuelve la clave para id. Una clave desalojada es ErrKeyNotFound, sin
// período de gracia.
func (r *KeyRing) Get(id string) (*Key, error) {
	r.mu.RLock()
	k, ok := r.keys[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrKeyNotFound
	}
	return k, nil
}

// IsReady indica si hay al menos una clave.
func (r *KeyRing) IsReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys) > 0
}

// Len devuelve la cantidad de claves retenidas.
func (r *KeyRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

// KeyInfo es la vista pública de una clave (sin material).
type KeyInfo struct {
	ID        string
	CreatedAt time.Time
	Current   bool
}

// Keys lista las claves retenidas, la más nueva primero.
func (r *KeyRing) Keys() []KeyInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ordered := r.sortedLocked()
	out := make([]KeyInfo, 0, len(ordered))
	for _, k := range ordered {
		out = append(out, KeyInfo{ID: k.id, CreatedAt: k.createdAt, Current: k == r.current})
	}
	return out
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
