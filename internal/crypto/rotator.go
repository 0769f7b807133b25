package crypto

import (
	"context"
	"time"

	"github.com/dropDatabas3/sealjohn/internal/observability/logger"
)

// DefaultRotationInterval es la política de rotación (24h).
const DefaultRotationInterval = 24 * time.Hour

// KeyRotator es lo que el scheduler necesita del Service.
type KeyRotator interface {
	RotateKeys(ctx context.Context) (string, error)
}

// Rotator dispara RotateKeys cada Interval. El keyring no tiene timer propio;
// este es el scheduler externo.
type Rotator struct {
	Target   KeyRotator
	Interval time.Duration

	// tick permite a los tests controlar el reloj.
	tick func(d time.Duration) (<-chan time.Time, func())
}

func NewRotator(target KeyRotator, interval time.Duration) *Rotator {
	if interval <= 0 {
		interval = DefaultRotationInterval
	}
	return &Rotator{Target: target, Interval: interval}
}

// Run bloquea hasta que ctx se cancela. Un error de rotación se loguea y se
// reintenta en el próximo tick; las claves vigentes siguen sirviendo.
func (r *Rotator) Run(ctx context.Context) error {
	log := logger.From(ctx).With(logger.Layer("scheduler"), logger.Op("Rotator.Run"))

	tick := r.tick
	if tick == nil {
		tick = func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		}
	}
	c, stop := tick(r.Interval)
	defer stop()

	log.Info("key rotation scheduler started", logger.String("interval", r.Interval.String()))
	for {
		select {
		case <-ctx.Done():
			log.Info("key rotation scheduler stopped")
			return nil
		case <-c:
			if _, err := r.Target.RotateKeys(ctx); err != nil {
				log.Error("scheduled rotation failed", logger.Err(err))
			}
		}
	}
}
