package io

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/williampepple1/swimtimes/internal/config"
	"github.com/williampepple1/swimtimes/pkg/models"
)

// ResultWriter persists the records and metadata of a run
type ResultWriter struct {
	Config *config.IOConfig
}

// NewResultWriter creates a new result writer
func NewResultWriter(config *config.IOConfig) *ResultWriter {
	return &ResultWriter{
		Config: config,
	}
}

// Save writes times.json and then times_metadata.json, replacing any previous run
func (w *ResultWriter) Save(records []models.ResultRecord, meta models.Metadata) error {
	if records == nil {
		records = []models.ResultRecord{}
	}
	if err := writeJSON(w.Config.OutputFile, records); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	if err := writeJSON(w.Config.MetadataFile, meta); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// writeJSON pretty-prints v into a temp file beside filename and renames it into place
func writeJSON(filename string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}
