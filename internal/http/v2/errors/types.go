package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la API
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa, sólo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// WithDetail devuelve una COPIA para no mutar las variables base
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa original
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// 400 Bad Request
// =================================================================================

var (
	ErrBadRequest = New(http.StatusBadRequest, "BAD_REQUEST",
		"La solicitud contiene sintaxis inválida o parámetros faltantes.")

	ErrInvalidJSON = New(http.StatusBadRequest, "INVALID_JSON",
		"El cuerpo de la solicitud no es un JSON válido.")

	ErrMissingFields = New(http.StatusBadRequest, "MISSING_FIELDS",
		"Faltan campos requeridos en la solicitud.")

	// Mensaje único para cualquier falla de descifrado: no se distingue
	// clave, nonce, contexto ni ciphertext alterado.
	ErrDecryptionFailed = New(http.StatusBadRequest, "DECRYPTION_FAILED",
		"decryption failed")

	ErrInvalidNonce = New(http.StatusBadRequest, "INVALID_NONCE",
		"El nonce debe ser base64 de 12 bytes.")

	ErrInvalidEncoding = New(http.StatusBadRequest, "INVALID_ENCODING",
		"El texto descifrado no es UTF-8 válido.")

	ErrInvalidSalt = New(http.StatusBadRequest, "INVALID_SALT",
		"El salt debe tener entre 8 y 64 bytes.")

	ErrInvalidTimestamp = New(http.StatusBadRequest, "INVALID_TIMESTAMP",
		"El timestamp debe ser RFC 3339.")

	ErrInvalidContext = New(http.StatusBadRequest, "INVALID_CONTEXT",
		"El contexto de cifrado no pudo canonicalizarse.")
)

// =================================================================================
// 404 / 405 / 415 / 429
// =================================================================================

var (
	ErrNotFound = New(http.StatusNotFound, "NOT_FOUND",
		"El recurso solicitado no existe.")

	ErrKeyNotFound = New(http.StatusNotFound, "KEY_NOT_FOUND",
		"La clave indicada no existe o fue retirada.")

	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
		"El método HTTP no está permitido para este recurso.")

	ErrUnsupportedMediaType = New(http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE",
		"Content-Type debe ser application/json.")

	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
		"El cuerpo de la solicitud excede el máximo permitido.")

	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
		"Demasiadas solicitudes. Intente más tarde.")
)

// =================================================================================
// 5xx
// =================================================================================

var (
	ErrInternalServerError = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR",
		"Ocurrió un error interno en el servidor.")

	ErrNoKeys = New(http.StatusServiceUnavailable, "NO_KEYS",
		"No hay claves de cifrado disponibles.")

	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
		"El servicio no está disponible temporalmente.")
)
