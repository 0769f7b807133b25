package crypto

import (
	"context"
	"time"

	"github.com/dropDatabas3/sealjohn/internal/observability/logger"
	"github.com/dropDatabas3/sealjohn/internal/security/digest"
	"github.com/dropDatabas3/sealjohn/internal/security/envelope"
)

type EncryptRequest struct {
	Data    string
	KeyID   string            // opcional: vacío usa la clave current
	Context map[string]string // opcional
}

type EncryptResponse struct {
	EncryptedData string
	KeyID         string
	Nonce         string
	ContextHash   *string
}

type DecryptRequest struct {
	EncryptedData string
	KeyID         string
	Nonce         string
	ContextHash   *string
}

type HashRequest struct {
	Data string
	Salt *string
}

type HashResponse struct {
	Hash      string
	Salt      string
	Algorithm string
}

type SignRequest struct {
	Data  string
	KeyID string // etiqueta informativa
}

type SignResponse struct {
	Signature string
	KeyID     string
	Timestamp string // RFC 3339
}

func (s *Service) Encrypt(ctx context.Context, req EncryptRequest) (*EncryptResponse, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	start := time.Now()
	env, err := s.codec.Encrypt(req.Data, req.KeyID, req.Context)
	s.observe(ctx, "encrypt", start, err)
	if err != nil {
		logger.From(ctx).Warn("encrypt failed", logger.Op("Encrypt"), logger.KeyID(req.KeyID), logger.Err(err))
		return nil, err
	}
	logger.From(ctx).Debug("encrypted",
		logger.Op("Encrypt"), logger.KeyID(env.KeyID), logger.HasContext(env.ContextHash != nil))
	return &EncryptResponse{
		EncryptedData: env.Ciphertext,
		KeyID:         env.KeyID,
		Nonce:         env.Nonce,
		ContextHash:   env.ContextHash,
	}, nil
}

func (s *Service) Decrypt(ctx context.Context, req DecryptRequest) (string, error) {
	if err := s.guard(); err != nil {
		return "", err
	}
	start := time.Now()
	pt, err := s.codec.Decrypt(envelope.Envelope{
		Ciphertext:  req.EncryptedData,
		KeyID:       req.KeyID,
		Nonce:       req.Nonce,
		ContextHash: req.ContextHash,
	})
	s.observe(ctx, "decrypt", start, err)
	if err != nil {
		// sin detalle a propósito: el error ya es indiferenciado
		logger.From(ctx).Info("decrypt rejected", logger.Op("Decrypt"), logger.KeyID(req.KeyID), logger.Err(err))
		return "", err
	}
	return pt, nil
}

func (s *Service) Hash(ctx context.Context, req HashRequest) (*HashResponse, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := s.hasher.HashData(req.Data, req.Salt)
	s.observe(ctx, "hash", start, err)
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Debug("hashed", logger.Op("Hash"), logger.Algorithm(res.Algorithm))
	return &HashResponse{Hash: res.Hash, Salt: res.Salt, Algorithm: res.Algorithm}, nil
}

// VerifyHash decide el algoritmo por el prefijo del hash.
func (s *Service) VerifyHash(ctx context.Context, data, hash string) bool {
	if s.guard() != nil {
		return false
	}
	start := time.Now()
	ok := s.hasher.VerifyHash(data, hash)
	s.observe(ctx, "verify_hash", start, nil)
	return ok
}

func (s *Service) Sign(ctx context.Context, req SignRequest) (*SignResponse, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	label := req.KeyID
	if label == "" {
		label = s.label
	}
	start := time.Now()
	sig := s.signer.Sign(req.Data, label)
	s.observe(ctx, "sign", start, nil)
	return &SignResponse{
		Signature: sig.Value,
		KeyID:     sig.KeyID,
		Timestamp: digest.FormatTimestamp(sig.Timestamp),
	}, nil
}

// VerifySignature devuelve (false, nil) para firmas vencidas o inválidas; sólo
// un timestamp ilegible es error.
func (s *Service) VerifySignature(ctx context.Context, data, signature, timestamp string) (bool, error) {
	if err := s.guard(); err != nil {
		return false, err
	}
	start := time.Now()
	ts, err := digest.ParseTimestamp(timestamp)
	if err != nil {
		s.observe(ctx, "verify_signature", start, err)
		return false, err
	}
	ok := s.signer.Verify(data, signature, ts)
	s.observe(ctx, "verify_signature", start, nil)
	return ok, nil
}
