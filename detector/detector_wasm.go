//go:build js && wasm

package detector

import (
	"encoding/json"
	"errors"
)

// ErrUnavailable is returned where the browser owns adapter selection.
var ErrUnavailable = errors.New("detector: adapter probing not available in WASM")

// Report stub for WASM (types defined but not populated)
type Report struct {
	WhenISO     string            `json:"when_iso"`
	Runtime     string            `json:"runtime"`
	Backend     string            `json:"backend"`
	AdapterType string            `json:"adapter_type"`
	VendorID    string            `json:"vendor_id_hex"`
	DeviceID    string            `json:"device_id_hex"`
	Name        string            `json:"name"`
	Driver      string            `json:"driver"`
	Limits      Limits            `json:"limits"`
	Features    []string          `json:"features"`
	Grid        Grid              `json:"grid"`
	Env         map[string]string `json:"env,omitempty"`
}

// Detect is unavailable in WASM builds.
func Detect(string) (*Report, error) {
	return nil, ErrUnavailable
}

// DetectJSON returns an error object for WASM builds.
func DetectJSON(string) (string, error) {
	data, _ := json.Marshal(map[string]any{
		"error": ErrUnavailable.Error(),
		"grid":  RequiredGrid(),
	})
	return string(data), nil
}
