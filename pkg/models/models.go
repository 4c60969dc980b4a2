package models

import (
	"strings"
)

// Athlete identifies a swimmer to look up on the results portal
type Athlete struct {
	Name  string `yaml:"name" json:"name"`
	First string `yaml:"first" json:"first"`
	Last  string `yaml:"last" json:"last"`
}

// DisplayName returns the configured name, or "First Last" when none is set
func (a Athlete) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return strings.TrimSpace(a.First + " " + a.Last)
}

// ResultRecord is one meet performance for one athlete.
// Field order matches the key order of times.json.
type ResultRecord struct {
	Name         string `json:"name"`
	Event        string `json:"event"`
	Time         string `json:"time"`
	Age          string `json:"age"`
	Date         string `json:"date"`
	Meet         string `json:"meet"`
	TimeStandard string `json:"time_standard"`
	LSC          string `json:"lsc"`
	Team         string `json:"team"`
}

// Surname returns the last word of the record's athlete name
func (r ResultRecord) Surname() string {
	fields := strings.Fields(r.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// Metadata describes a completed run and is written next to times.json
type Metadata struct {
	ScrapedAt         string   `json:"scraped_at"`
	ScrapedAtReadable string   `json:"scraped_at_readable"`
	TotalResults      int      `json:"total_results"`
	Swimmers          []string `json:"swimmers"`
}

// Row is the raw cell text of one table row, in column order
type Row []string

// Table is the result history table exposed by the portal
type Table struct {
	Rows []Row
}

// Status classifies how a lookup on the portal ended
type Status string

const (
	StatusFound     Status = "found"
	StatusNoResults Status = "no_results"
	StatusTimeout   Status = "timeout"
	StatusFailed    Status = "failed"
)

// TableResult is the outcome of looking up one athlete
type TableResult struct {
	Athlete Athlete
	Status  Status
	Table   Table
	Reason  string
}

// Found reports whether a results table was located
func (t TableResult) Found() bool {
	return t.Status == StatusFound
}
