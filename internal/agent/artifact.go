package agent

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Artifact file layout: a zip archive holding a manifest and a weights blob.
// The simulation core treats the archive as opaque; only this package reads
// or writes its internals.
const (
	manifestName = "manifest.json"
	weightsName  = "weights.json"

	artifactFormatVersion = 1
	policyTypeLinear      = "linear"
)

// Manifest describes a persisted policy artifact.
type Manifest struct {
	FormatVersion int       `json:"format_version"`
	PolicyType    string    `json:"policy_type"`
	ObsDim        int       `json:"obs_dim"`
	ActionDim     int       `json:"action_dim"`
	RunID         string    `json:"run_id,omitempty"`
	Score         float64   `json:"score,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type weightsBlob struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// SaveArtifact writes the policy to path as a zip archive with the given
// manifest metadata. RunID and Score are optional annotations.
func SaveArtifact(path string, a *LinearAgent, runID string, score float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	manifest := Manifest{
		FormatVersion: artifactFormatVersion,
		PolicyType:    policyTypeLinear,
		ObsDim:        len(a.Weights[0]),
		ActionDim:     len(a.Weights),
		RunID:         runID,
		Score:         score,
		CreatedAt:     time.Now().UTC(),
	}
	if err := writeZipJSON(zw, manifestName, manifest); err != nil {
		return err
	}
	if err := writeZipJSON(zw, weightsName, weightsBlob{Weights: a.Weights, Bias: a.Bias}); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize artifact: %w", err)
	}
	return nil
}

func writeZipJSON(zw *zip.Writer, name string, v interface{}) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return nil
}

// LoadArtifact reads a policy artifact written by SaveArtifact.
func LoadArtifact(path string) (*LinearAgent, Manifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, Manifest{}, fmt.Errorf("open artifact: %w", err)
	}
	defer zr.Close()

	var manifest Manifest
	if err := readZipJSON(&zr.Reader, manifestName, &manifest); err != nil {
		return nil, Manifest{}, err
	}
	if manifest.FormatVersion != artifactFormatVersion {
		return nil, Manifest{}, fmt.Errorf("unsupported artifact format version %d", manifest.FormatVersion)
	}
	if manifest.PolicyType != policyTypeLinear {
		return nil, Manifest{}, fmt.Errorf("unsupported policy type %q", manifest.PolicyType)
	}

	var blob weightsBlob
	if err := readZipJSON(&zr.Reader, weightsName, &blob); err != nil {
		return nil, Manifest{}, err
	}

	a, err := NewLinearAgent(blob.Weights, blob.Bias)
	if err != nil {
		return nil, Manifest{}, fmt.Errorf("invalid weights in artifact: %w", err)
	}
	return a, manifest, nil
}

func readZipJSON(zr *zip.Reader, name string, v interface{}) error {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		if err := json.NewDecoder(io.LimitReader(rc, 1<<20)).Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("artifact missing %s", name)
}
