package model

import "encoding/json"

// StatusSnapshot is the response body for POST /status, per spec.md
// §4.6. System is only populated when the request carries
// "systemstat": true, and its fields are flattened into the top-level
// object to match the original response shape.
type StatusSnapshot struct {
	ActiveUsers    int         `json:"active_users"`
	ActiveVehicles int         `json:"active_vehicles"`
	ActiveSessions int         `json:"active_sessions"`
	System         *SystemStat `json:"-"`
}

func (s StatusSnapshot) MarshalJSON() ([]byte, error) {
	flat := map[string]interface{}{
		"active_users":    s.ActiveUsers,
		"active_vehicles": s.ActiveVehicles,
		"active_sessions": s.ActiveSessions,
	}
	if s.System != nil {
		flat["memory_available"] = s.System.MemoryAvailable
		flat["memory_used"] = s.System.MemoryUsed
		flat["total_swap"] = s.System.TotalSwap
		flat["swap_used"] = s.System.SwapUsed
	}
	return json.Marshal(flat)
}

// SystemStat carries the optional memory/swap probe, formatted as
// "%.2f GB" strings to match the original sysinfo-crate output shape.
type SystemStat struct {
	MemoryAvailable string `json:"memory_available"`
	MemoryUsed      string `json:"memory_used"`
	TotalSwap       string `json:"total_swap"`
	SwapUsed        string `json:"swap_used"`
}

// StatusRequest is the POST /status payload.
type StatusRequest struct {
	SystemStat bool `json:"systemstat"`
}
