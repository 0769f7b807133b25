package logger

import (
	"time"

	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// HTTP
// ---------------------------------------------------------------------------

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// ---------------------------------------------------------------------------
// Sistema
// ---------------------------------------------------------------------------

// Component identifica el módulo (keyring, envelope, digest...).
func Component(v string) zap.Field { return zap.String("component", v) }

// Op es la operación en curso.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer es la capa (controller, service, scheduler).
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

// ---------------------------------------------------------------------------
// Cripto. Sólo identificadores y metadatos, nunca material.
// ---------------------------------------------------------------------------

// KeyID es el identificador de una clave del ring o la etiqueta de firma.
func KeyID(v string) zap.Field { return zap.String("key_id", v) }

// Algorithm es el algoritmo de hash usado.
func Algorithm(v string) zap.Field { return zap.String("algorithm", v) }

// HasContext indica si el cifrado llevó contexto ligado.
func HasContext(v bool) zap.Field { return zap.Bool("has_context", v) }

// KeyAge es la antigüedad de una clave.
func KeyAge(v time.Duration) zap.Field { return zap.Duration("key_age", v) }

func Count(v int) zap.Field { return zap.Int("count", v) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func Any(key string, v any) zap.Field { return zap.Any(key, v) }
