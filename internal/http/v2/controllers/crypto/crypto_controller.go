// Package crypto contiene el controller de /api/v1/crypto.
package crypto

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/sealjohn/internal/crypto"
	dto "github.com/dropDatabas3/sealjohn/internal/http/v2/dto/crypto"
	httperrors "github.com/dropDatabas3/sealjohn/internal/http/v2/errors"
	"github.com/dropDatabas3/sealjohn/internal/http/v2/helpers"
	"github.com/dropDatabas3/sealjohn/internal/observability/logger"
	"github.com/dropDatabas3/sealjohn/internal/security/keyring"
)

// Service es lo que el controller necesita de crypto.Service.
type Service interface {
	Encrypt(ctx context.Context, req crypto.EncryptRequest) (*crypto.EncryptResponse, error)
	Decrypt(ctx context.Context, req crypto.DecryptRequest) (string, error)
	Hash(ctx context.Context, req crypto.HashRequest) (*crypto.HashResponse, error)
	VerifyHash(ctx context.Context, data, hash string) bool
	Sign(ctx context.Context, req crypto.SignRequest) (*crypto.SignResponse, error)
	VerifySignature(ctx context.Context, data, signature, timestamp string) (bool, error)
	Keys(ctx context.Context) []keyring.KeyInfo
}

type CryptoController struct {
	service Service
}

func NewCryptoController(service Service) *CryptoController {
	return &CryptoController{service: service}
}

// Encrypt maneja POST /api/v1/crypto/encrypt
func (c *CryptoController) Encrypt(w http.ResponseWriter, r *http.Request) {
	var req dto.EncryptRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Data == nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("data"))
		return
	}

	res, err := c.service.Encrypt(r.Context(), crypto.EncryptRequest{
		Data:    *req.Data,
		KeyID:   req.KeyID,
		Context: req.Context,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.EncryptResponse{
		EncryptedData: res.EncryptedData,
		KeyID:         res.KeyID,
		Nonce:         res.Nonce,
		ContextHash:   res.ContextHash,
	})
}

// Decrypt maneja POST /api/v1/crypto/decrypt
func (c *CryptoController) Decrypt(w http.ResponseWriter, r *http.Request) {
	var req dto.DecryptRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.EncryptedData == "" || req.KeyID == "" || req.Nonce == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("encrypted_data, key_id, nonce"))
		return
	}

	pt, err := c.service.Decrypt(r.Context(), crypto.DecryptRequest{
		EncryptedData: req.EncryptedData,
		KeyID:         req.KeyID,
		Nonce:         req.Nonce,
		ContextHash:   req.ContextHash,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.DecryptResponse{Data: pt})
}

// Hash maneja POST /api/v1/crypto/hash
func (c *CryptoController) Hash(w http.ResponseWriter, r *http.Request) {
	var req dto.HashRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Data == nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("data"))
		return
	}

	res, err := c.service.Hash(r.Context(), crypto.HashRequest{Data: *req.Data, Salt: req.Salt})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.HashResponse{
		Hash:      res.Hash,
		Salt:      res.Salt,
		Algorithm: res.Algorithm,
	})
}

// VerifyHash maneja POST /api/v1/crypto/verify-hash
func (c *CryptoController) VerifyHash(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyHashRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Data == nil || req.Hash == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("data, hash"))
		return
	}
	ok := c.service.VerifyHash(r.Context(), *req.Data, req.Hash)
	helpers.WriteJSON(w, http.StatusOK, dto.ValidResponse{Valid: ok})
}

// Sign maneja POST /api/v1/crypto/sign
func (c *CryptoController) Sign(w http.ResponseWriter, r *http.Request) {
	var req dto.SignRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Data == nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("data"))
		return
	}

	res, err := c.service.Sign(r.Context(), crypto.SignRequest{Data: *req.Data, KeyID: req.KeyID})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.SignResponse{
		Signature: res.Signature,
		KeyID:     res.KeyID,
		Timestamp: res.Timestamp,
	})
}

// Verify maneja POST /api/v1/crypto/verify
func (c *CryptoController) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Data == nil || req.Signature == "" || req.Timestamp == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("data, signature, timestamp"))
		return
	}

	ok, err := c.service.VerifySignature(r.Context(), *req.Data, req.Signature, req.Timestamp)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if !ok {
		logger.From(r.Context()).Debug("signature rejected", logger.Layer("controller"), logger.Op("CryptoController.Verify"))
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ValidResponse{Valid: ok})
}

// Keys maneja GET /api/v1/crypto/keys. Sólo metadatos, nunca material.
func (c *CryptoController) Keys(w http.ResponseWriter, r *http.Request) {
	infos := c.service.Keys(r.Context())
	resp := dto.KeysResponse{Keys: make([]dto.KeyItem, 0, len(infos))}
	for _, k := range infos {
		if k.Current {
			resp.Current = k.ID
		}
		resp.Keys = append(resp.Keys, dto.KeyItem{
			KeyID:     k.ID,
			CreatedAt: k.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
