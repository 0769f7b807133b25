// Package logger expone un zap.Logger singleton con scoping por contexto.
//
// Inicialización (una vez, en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "sealjohn"})
//	defer logger.Sync()
//
// En services/controllers:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Encrypt"))
//	log.Info("encrypted", logger.KeyID(id))
//
// Nunca pasar material de clave, plaintext ni salts como campo.
package logger
