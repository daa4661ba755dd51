package model

import "time"

// RegistryStats is a point-in-time snapshot of the Hub's occupancy, exposed
// on the httpapi /stats endpoint alongside the Prometheus gauges.
type RegistryStats struct {
	TotalSubjects  int           `json:"total_subjects"`
	TotalSessions  int           `json:"total_sessions"`
	Uptime         time.Duration `json:"uptime"`
}
