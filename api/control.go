// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control exposes the effective configuration and run counters.
type Control interface {
	GetConfig() map[string]any
	SetConfig(cfg map[string]any) error
	SetMetric(key string, value any)
	Stats() map[string]any
	RegisterDebugProbe(name string, fn func() any)
}
