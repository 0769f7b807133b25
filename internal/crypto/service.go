// Package crypto es la fachada del núcleo: arma keyring, envelope codec,
// hasher y signer, y expone las operaciones que consume la capa HTTP y el
// scheduler de rotación.
package crypto

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dropDatabas3/sealjohn/internal/metrics"
	"github.com/dropDatabas3/sealjohn/internal/observability/logger"
	"github.com/dropDatabas3/sealjohn/internal/security/digest"
	"github.com/dropDatabas3/sealjohn/internal/security/envelope"
	"github.com/dropDatabas3/sealjohn/internal/security/keyring"
	"github.com/dropDatabas3/sealjohn/internal/security/masterkey"
	"github.com/dropDatabas3/sealjohn/internal/security/password"
	"github.com/dropDatabas3/sealjohn/internal/security/random"
)

var (
	// ErrCryptoInit: material de arranque inválido. El servicio no debe iniciar.
	ErrCryptoInit = errors.New("crypto: initialization failed")
	// ErrUnavailable: hubo una falla fatal (entropía) y el servicio quedó fuera.
	ErrUnavailable = errors.New("crypto: service unavailable")
)

const componentCrypto = "crypto"

// Config agrupa lo necesario para construir el Service.
type Config struct {
	// MasterKey en base64, hex o 32 bytes crudos. De acá sale la SigningKey.
	MasterKey string
	// SigningKeyLabel se informa en las firmas cuando el request no trae una.
	SigningKeyLabel string
	Argon2          password.Params

	// Random y Now son opcionales (tests).
	Random random.Source
	Now    func() time.Time
}

// Service es seguro para uso concurrente.
type Service struct {
	ring   *keyring.KeyRing
	codec  *envelope.Codec
	hasher *digest.Hasher
	signer *digest.Signer
	label  string

	broken atomic.Bool
}

// New valida la configuración, arma los componentes y genera la primera clave.
func New(ctx context.Context, cfg Config) (*Service, error) {
	src := cfg.Random
	if src == nil {
		src = random.System()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if cfg.Argon2 == (password.Params{}) {
		cfg.Argon2 = password.Default
	}

	key, err := masterkey.Parse(cfg.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoInit, err)
	}
	signer, err := digest.NewSigner(key, digest.WithSignerClock(now))
	for i := range key {
		key[i] = 0
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoInit, err)
	}
	hasher, err := digest.NewHasher(cfg.Argon2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoInit, err)
	}

	ring := keyring.New(src, keyring.WithClock(now))
	s := &Service{
		ring:   ring,
		codec:  envelope.New(ring, src),
		hasher: hasher,
		signer: signer,
		label:  cfg.SigningKeyLabel,
	}

	if _, err := s.RotateKeys(ctx); err != nil {
		return nil, fmt.Errorf("%w: initial key: %v", ErrCryptoInit, err)
	}
	logger.From(ctx).Info("crypto service initialized",
		logger.Component(componentCrypto),
		logger.Count(ring.Len()),
	)
	return s, nil
}

// IsReady: hay claves y no hubo falla fatal.
func (s *Service) IsReady() bool {
	return !s.broken.Load() && s.ring.IsReady()
}

// fatal deja el servicio permanentemente fuera de servicio.
func (s *Service) fatal(ctx context.Context, op string, err error) {
	if s.broken.CompareAndSwap(false, true) {
		metrics.Ready.Set(0)
		logger.From(ctx).Error("entropy failure, refusing further requests",
			logger.Component(componentCrypto),
			logger.Op(op),
			logger.Err(err),
		)
	}
}

// guard corta si el servicio quedó inutilizable.
func (s *Service) guard() error {
	if s.broken.Load() {
		return ErrUnavailable
	}
	return nil
}

// observe registra métricas y dispara el latch fatal si corresponde.
func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	metrics.CryptoOperations.WithLabelValues(op, metrics.Result(err)).Inc()
	metrics.CryptoOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if errors.Is(err, random.ErrEntropy) {
		s.fatal(ctx, op, err)
	}
}

// RotateKeys genera y activa una clave nueva. Lo invoca el scheduler, nunca
// un request handler.
func (s *Service) RotateKeys(ctx context.Context) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	start := time.Now()
	id, err := s.ring.GenerateAndActivate()
	metrics.KeyRotations.WithLabelValues(metrics.Result(err)).Inc()
	s.observe(ctx, "rotate", start, err)
	if err != nil {
		logger.From(ctx).Error("key rotation failed",
			logger.Component(componentCrypto), logger.Op("RotateKeys"), logger.Err(err))
		return "", err
	}

	size := s.ring.Len()
	metrics.KeyRingSize.Set(float64(size))
	metrics.Ready.Set(1)
	logger.From(ctx).Info("key rotation completed",
		logger.Component(componentCrypto),
		logger.Op("RotateKeys"),
		logger.KeyID(id),
		logger.Count(size),
	)
	return id, nil
}

// Keys lista las claves retenidas (sin material), la más nueva primero.
func (s *Service) Keys(ctx context.Context) []keyring.KeyInfo {
	return s.ring.Keys()
}
