package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/sealjohn/internal/crypto"
	"github.com/dropDatabas3/sealjohn/internal/security/digest"
	"github.com/dropDatabas3/sealjohn/internal/security/envelope"
	"github.com/dropDatabas3/sealjohn/internal/security/keyring"
	"github.com/dropDatabas3/sealjohn/internal/security/random"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// domainErrors traduce los errores de las capas inferiores. El orden importa:
// se toma el primer match de errors.Is.
var domainErrors = []struct {
	target error
	app    *AppError
}{
	{crypto.ErrUnavailable, ErrServiceUnavailable},
	{random.ErrEntropy, ErrServiceUnavailable},
	{keyring.ErrKeyRingEmpty, ErrNoKeys},
	{keyring.ErrKeyNotFound, ErrKeyNotFound},
	{envelope.ErrDecryptionFailed, ErrDecryptionFailed},
	{envelope.ErrInvalidNonce, ErrInvalidNonce},
	{envelope.ErrInvalidEncoding, ErrInvalidEncoding},
	{envelope.ErrContextEncoding, ErrInvalidContext},
	{digest.ErrInvalidSalt, ErrInvalidSalt},
	{digest.ErrInvalidTimestamp, ErrInvalidTimestamp},
}

// FromError convierte cualquier error en un AppError. Lo desconocido termina
// en 500 conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	for _, m := range domainErrors {
		if stderrors.Is(err, m.target) {
			return m.app.WithCause(err)
		}
	}
	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe la respuesta JSON de error. La causa nunca sale al cliente.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}
