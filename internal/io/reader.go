package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/williampepple1/swimtimes/internal/analysis"
	"github.com/williampepple1/swimtimes/internal/config"
	"github.com/williampepple1/swimtimes/pkg/models"
	"gopkg.in/yaml.v3"
)

// RosterReader resolves the athletes for a run
type RosterReader struct {
	Config *config.AppConfig
}

// NewRosterReader creates a new roster reader
func NewRosterReader(config *config.AppConfig) *RosterReader {
	return &RosterReader{
		Config: config,
	}
}

// GetRoster returns athletes from the roster file, the inline config roster,
// or the built-in roster, in that order of preference
func (r *RosterReader) GetRoster() ([]models.Athlete, error) {
	if r.Config.IO.RosterFile != "" {
		return ReadRosterFile(r.Config.IO.RosterFile)
	}
	if len(r.Config.Roster) > 0 {
		return normalizeRoster(r.Config.Roster)
	}
	return config.DefaultRoster, nil
}

// ReadRosterFile reads a YAML list of athletes, or plain "First Last" lines
func ReadRosterFile(filename string) ([]models.Athlete, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}

	var athletes []models.Athlete
	if err := yaml.Unmarshal(data, &athletes); err == nil && len(athletes) > 0 {
		return normalizeRoster(athletes)
	}

	athletes = athletes[:0]
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("roster line %q: need first and last name", line)
		}
		athletes = append(athletes, models.Athlete{
			Name:  strings.Join(fields, " "),
			First: strings.Join(fields[:len(fields)-1], " "),
			Last:  fields[len(fields)-1],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning roster: %w", err)
	}

	return athletes, nil
}

func normalizeRoster(in []models.Athlete) ([]models.Athlete, error) {
	out := make([]models.Athlete, 0, len(in))
	for i, a := range in {
		a.First = strings.TrimSpace(a.First)
		a.Last = strings.TrimSpace(a.Last)
		if a.First == "" || a.Last == "" {
			return nil, fmt.Errorf("roster entry %d: first and last name are required", i)
		}
		a.Name = a.DisplayName()
		out = append(out, a)
	}
	return out, nil
}

// DecodeRecords parses a times.json document
func DecodeRecords(data []byte) ([]models.ResultRecord, error) {
	var records []models.ResultRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	return records, nil
}

// ReadRecordsFile reads a times.json document from disk
func ReadRecordsFile(filename string) ([]models.ResultRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return DecodeRecords(data)
}

// UnofficialRecord is a result without age, LSC or team
type UnofficialRecord struct {
	Name         string `json:"name"`
	Event        string `json:"event"`
	Time         string `json:"time"`
	Date         string `json:"date"`
	Meet         string `json:"meet"`
	TimeStandard string `json:"time_standard"`
}

// ToOfficial fills the missing fields with placeholders
func (u UnofficialRecord) ToOfficial() models.ResultRecord {
	return models.ResultRecord{
		Name:         u.Name,
		Event:        u.Event,
		Time:         u.Time,
		Age:          "N/A",
		Date:         u.Date,
		Meet:         u.Meet,
		TimeStandard: u.TimeStandard,
		LSC:          "N/A",
		Team:         "Unattached",
	}
}

// ReadUnofficialFile reads an unofficial_times.json document as ResultRecords
func ReadUnofficialFile(filename string) ([]models.ResultRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading unofficial records: %w", err)
	}
	var unofficial []UnofficialRecord
	if err := json.Unmarshal(data, &unofficial); err != nil {
		return nil, fmt.Errorf("decoding unofficial records: %w", err)
	}
	records := make([]models.ResultRecord, 0, len(unofficial))
	for _, u := range unofficial {
		records = append(records, u.ToOfficial())
	}
	return records, nil
}

// ReadStandardsFile loads a motivational time standards document
func ReadStandardsFile(filename string) (analysis.Standards, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading standards: %w", err)
	}
	var standards analysis.Standards
	if err := json.Unmarshal(data, &standards); err != nil {
		return nil, fmt.Errorf("decoding standards: %w", err)
	}
	return standards, nil
}
