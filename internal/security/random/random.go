// Package random es la única fuente de aleatoriedad del servicio: nonces,
// material de clave, ids y salts salen de acá.
//
// Una falla de entropía se considera fatal. Quien la reciba no debe seguir
// operando (ver ErrEntropy).
package random

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrEntropy indica que el sistema no pudo entregar bytes aleatorios.
// No es recuperable: el proceso no puede garantizar nonces únicos sin entropía.
var ErrEntropy = errors.New("random: entropy source failure")

// Source llena buffers con bytes criptográficamente seguros.
type Source interface {
	Fill(buf []byte) error
}

type readerSource struct {
	r io.Reader
}

// System devuelve la fuente respaldada por crypto/rand (CSPRNG del SO).
func System() Source {
	return readerSource{r: rand.Reader}
}

// Reader envuelve un io.Reader arbitrario. Pensado para tests que necesitan
// simular fallas del SO; en producción usar System().
func Reader(r io.Reader) Source {
	return readerSource{r: r}
}

func (s readerSource) Fill(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return nil
}

// Bytes devuelve n bytes frescos de src.
func Bytes(src Source, n int) ([]byte, error) {
	b := make([]byte, n)
	if err := src.Fill(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ReaderOf adapta un Source a io.Reader, para librerías que piden uno
// (uuid.NewRandomFromReader, etc.).
func ReaderOf(src Source) io.Reader {
	return sourceReader{src: src}
}

type sourceReader struct {
	src Source
}

func (r sourceReader) Read(p []byte) (int, error) {
	if err := r.src.Fill(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
