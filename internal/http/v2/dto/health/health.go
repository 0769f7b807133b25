// Package health contiene los DTOs de /health y /ready.
package health

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ReadyResponse: Status es "ready" o "not_ready"; Checks lleva el estado por componente.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
