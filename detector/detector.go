//go:build !(js && wasm)

package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/openfluke/webgpu/wgpu"
)

/* ---------- public API ---------- */

// Report is a portable summary of the adapter the search would run on.
type Report struct {
	WhenISO     string            `json:"when_iso"`
	Runtime     string            `json:"runtime"` // "native" or "wasm" (best-effort)
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

// DetectJSON runs a probe and returns the indented JSON report.
func DetectJSON(powerPreference string) (string, error) {
	rep, err := Detect(powerPreference)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Detect probes the adapter chosen for powerPreference ("", "low", "high")
// and checks it against the search grid.
func Detect(powerPreference string) (*Report, error) {
	inst := wgpu.CreateInstance(nil)
	if inst == nil {
		return nil, fmt.Errorf("wgpu.CreateInstance returned nil")
	}
	defer inst.Release()

	var opts *wgpu.RequestAdapterOptions
	switch strings.ToLower(powerPreference) {
	case "high":
		opts = &wgpu.RequestAdapterOptions{PowerPreference: wgpu.PowerPreferenceHighPerformance}
	case "low":
		opts = &wgpu.RequestAdapterOptions{PowerPreference: wgpu.PowerPreferenceLowPower}
	}
	adapter, err := inst.RequestAdapter(opts)
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	if adapter == nil {
		return nil, fmt.Errorf("no adapter")
	}
	defer adapter.Release()

	info := adapter.GetInfo()
	limits := LimitsFrom(adapter.GetLimits())

	var feats []string
	for _, f := range adapter.EnumerateFeatures() {
		feats = append(feats, f.String())
	}

	return &Report{
		WhenISO:     time.Now().UTC().Format(time.RFC3339),
		Runtime:     detectRuntime(),
		Backend:     info.BackendType.String(),
		AdapterType: info.AdapterType.String(),
		VendorID:    fmt.Sprintf("0x%04x", info.VendorId),
		DeviceID:    fmt.Sprintf("0x%04x", info.DeviceId),
		Name:        strings.TrimSpace(info.Name),
		Driver:      strings.TrimSpace(info.DriverDescription),
		Limits:      limits,
		Features:    feats,
		Grid:        Evaluate(limits),
		Env:         pickEnv([]string{"GEN4IDS_BACKEND", "GEN4IDS_KERNEL", "GEN4IDS_POWER_PREFERENCE"}),
	}, nil
}

/* ---------- helpers ---------- */

func detectRuntime() string {
	if runtime.GOOS == "js" {
		return "wasm"
	}
	return "native"
}

func pickEnv(keys []string) map[string]string {
	out := map[string]string{}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
