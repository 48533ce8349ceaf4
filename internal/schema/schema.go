// Package schema defines the wire format every simulation strategy must
// produce. The native binary, the embedded generator, and the fallback
// process all emit this exact shape; only the numeric noise differs.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TrackPoint is a single 2-D coordinate on a track.
type TrackPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SimulationResult is the artifact exchanged with clients. DetectorLayers is
// echoed by producers, never recomputed downstream.
type SimulationResult struct {
	DetectorLayers []float64    `json:"detector_layers"`
	TrueTrack      []TrackPoint `json:"true_track"`
	Hits           []TrackPoint `json:"hits"`
	KFTrack        []TrackPoint `json:"kf_track"`
}

// DefaultLayers returns the fixed sensor plane positions: ten evenly spaced
// x-values across the tracking domain.
func DefaultLayers() []float64 {
	return []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
}

// Validate enforces the cross-strategy compatibility contract: non-empty
// strictly-increasing layers, hits and kf_track aligned one-to-one with the
// layers, and a monotonically increasing true track.
func (r *SimulationResult) Validate() error {
	if len(r.DetectorLayers) == 0 {
		return fmt.Errorf("detector_layers is empty")
	}
	for i := 1; i < len(r.DetectorLayers); i++ {
		if r.DetectorLayers[i] <= r.DetectorLayers[i-1] {
			return fmt.Errorf("detector_layers not strictly increasing at index %d", i)
		}
	}
	if len(r.Hits) != len(r.DetectorLayers) {
		return fmt.Errorf("hits has %d points, want %d (one per layer)", len(r.Hits), len(r.DetectorLayers))
	}
	if len(r.KFTrack) != len(r.DetectorLayers) {
		return fmt.Errorf("kf_track has %d points, want %d (one per layer)", len(r.KFTrack), len(r.DetectorLayers))
	}
	for i, layer := range r.DetectorLayers {
		if r.Hits[i].X != layer {
			return fmt.Errorf("hits[%d].x = %v, want layer position %v", i, r.Hits[i].X, layer)
		}
		if r.KFTrack[i].X != layer {
			return fmt.Errorf("kf_track[%d].x = %v, want layer position %v", i, r.KFTrack[i].X, layer)
		}
	}
	if len(r.TrueTrack) == 0 {
		return fmt.Errorf("true_track is empty")
	}
	for i := 1; i < len(r.TrueTrack); i++ {
		if r.TrueTrack[i].X <= r.TrueTrack[i-1].X {
			return fmt.Errorf("true_track x not monotonically increasing at index %d", i)
		}
	}
	return nil
}

// Decode parses and validates a producer's stdout as a SimulationResult.
// Empty or malformed output is an error; a producer that prints nothing on
// success has failed.
func Decode(data []byte) (SimulationResult, error) {
	var r SimulationResult
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return r, fmt.Errorf("empty output")
	}
	if err := json.Unmarshal([]byte(trimmed), &r); err != nil {
		return SimulationResult{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := r.Validate(); err != nil {
		return SimulationResult{}, fmt.Errorf("schema violation: %w", err)
	}
	return r, nil
}
