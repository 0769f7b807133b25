// Package crypto contiene los DTOs de /api/v1/crypto.
package crypto

// Los campos que admiten string vacío como valor legítimo son punteros para
// distinguir "ausente" de "vacío".

type EncryptRequest struct {
	Data    *string           `json:"data"`
	KeyID   string            `json:"key_id,omitempty"`
	Context map[string]string `json:"context,omitempty"`
}

type EncryptResponse struct {
	EncryptedData string  `json:"encrypted_data"`
	KeyID         string  `json:"key_id"`
	Nonce         string  `json:"nonce"`
	ContextHash   *string `json:"context_hash,omitempty"`
}

type DecryptRequest struct {
	EncryptedData string  `json:"encrypted_data"`
	KeyID         string  `json:"key_id"`
	Nonce         string  `json:"nonce"`
	ContextHash   *string `json:"context_hash,omitempty"`
}

type DecryptResponse struct {
	Data string `json:"data"`
}

type HashRequest struct {
	Data *string `json:"data"`
	Salt *string `json:"salt,omitempty"`
}

type HashResponse struct {
	Hash      string `json:"hash"`
	Salt      string `json:"salt"`
	Algorithm string `json:"algorithm"`
}

type VerifyHashRequest struct {
	Data *string `json:"data"`
	Hash string  `json:"hash"`
}

type SignRequest struct {
	Data  *string `json:"data"`
	KeyID string  `json:"key_id,omitempty"`
}

type SignResponse struct {
	Signature string `json:"signature"`
	KeyID     string `json:"key_id"`
	Timestamp string `json:"timestamp"`
}

type VerifyRequest struct {
	Data      *string `json:"data"`
	Signature string  `json:"signature"`
	Timestamp string  `json:"timestamp"`
}

// ValidResponse es la respuesta de verify-hash y verify.
type ValidResponse struct {
	Valid bool `json:"valid"`
}

type KeyItem struct {
	KeyID     string `json:"key_id"`
	CreatedAt string `json:"created_at"`
}

type KeysResponse struct {
	Current string    `json:"current"`
	Keys    []KeyItem `json:"keys"`
}
