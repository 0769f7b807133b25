package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Métricas del núcleo cripto. Viven en un paquete propio para que crypto y
// http puedan importarlas sin ciclos. Nunca llevan ids de clave como label
// (cardinalidad y fuga de metadatos).

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	CryptoOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crypto_operations_total",
		Help: "Operaciones criptográficas por tipo y resultado",
	}, []string{"op", "result"})

	CryptoOperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crypto_operation_duration_seconds",
		Help:    "Latencia de las operaciones criptográficas",
		Buckets: prometheus.ExponentialBuckets(0.00005, 4, 10),
	}, []string{"op"})

	KeyRotations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crypto_key_rotations_total",
		Help: "Rotaciones de claves por resultado",
	}, []string{"result"})

	KeyRingSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crypto_keyring_size",
		Help: "Cantidad de claves retenidas en el keyring",
	})

	Ready = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crypto_ready",
		Help: "1 si el núcleo cripto puede atender requests",
	})
)

// RegisterCrypto registra las métricas en reg (o el default si es nil).
// Registrar dos veces no es error.
func RegisterCrypto(reg prometheus.Registerer) error {
	return register(reg, CryptoOperations, CryptoOperationDuration, KeyRotations, KeyRingSize, Ready)
}

func register(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// Result traduce un error a label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
