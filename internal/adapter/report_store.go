package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "gooze.dev/pkg/schemata/internal/model"
)

// ErrManifestVersion is returned when a manifest was written by an
// incompatible version of the tool.
var ErrManifestVersion = errors.New("unsupported manifest version")

// ReportStore persists the artefacts of an injection session.
type ReportStore interface {
	SaveManifest(path m.Path, manifest m.Manifest) error
	LoadManifest(path m.Path) (m.Manifest, error)
	SaveOverlay(path m.Path, overlay m.Overlay) error
}

// LocalReportStore stores manifests as YAML and overlays as JSON on disk.
type LocalReportStore struct{}

// NewReportStore constructs a LocalReportStore.
func NewReportStore() *LocalReportStore {
	return &LocalReportStore{}
}

// SaveManifest writes manifest to path.
func (s *LocalReportStore) SaveManifest(path m.Path, manifest m.Manifest) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	f, err := os.Create(string(path))
	if err != nil {
		slog.Error("failed to create manifest", "path", path, "error", err)
		return fmt.Errorf("failed to create manifest: %w", err)
	}

	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close manifest", "path", path, "error", err)
		}
	}()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)

	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush manifest: %w", err)
	}

	slog.Debug("saved manifest", "path", path, "mutants", len(manifest.Mutants))

	return nil
}

// LoadManifest reads the manifest stored at path.
func (s *LocalReportStore) LoadManifest(path m.Path) (m.Manifest, error) {
	// #nosec G304 - manifest path is chosen by the user
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest m.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return m.Manifest{}, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}

	if manifest.Version != m.ManifestVersion {
		return m.Manifest{}, fmt.Errorf("%w: %d", ErrManifestVersion, manifest.Version)
	}

	return manifest, nil
}

// SaveOverlay writes overlay in the JSON layout read by the go command.
func (s *LocalReportStore) SaveOverlay(path m.Path, overlay m.Overlay) error {
	data, err := json.MarshalIndent(overlay, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}

	if err := os.WriteFile(string(path), append(data, '\n'), 0o600); err != nil {
		slog.Error("failed to write overlay", "path", path, "error", err)
		return fmt.Errorf("failed to write overlay: %w", err)
	}

	return nil
}
