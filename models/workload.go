package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GenerateSpec describes a fixture to generate. Unset fields fall back to the
// standard benchmark parameters; the counts are pointers so an explicit 0
// stays reachable.
type GenerateSpec struct {
	Days           *int   `json:"days" yaml:"days"`
	ChatsPerDay    *int   `json:"chats_per_day" yaml:"chats_per_day"`
	MultilineLines *int   `json:"multiline_lines" yaml:"multiline_lines"`
	Start          string `json:"start" yaml:"start"` // YYYY-MM-DD
	GroupName      string `json:"group" yaml:"group"`
	Sender         string `json:"sender" yaml:"sender"`
	Message        string `json:"message" yaml:"message"`
	CRLF           bool   `json:"crlf" yaml:"crlf"`
	Japanese       bool   `json:"japanese_weekdays" yaml:"japanese_weekdays"`
}

// Workload represents the configuration loaded from workload.json or
// workload.yaml
type Workload struct {
	Workers    int      `json:"workers" yaml:"workers"`
	Targets    []string `json:"targets" yaml:"targets"`
	Input      string   `json:"input" yaml:"input"`           // history file to load or export
	Output     string   `json:"output" yaml:"output"`         // fixture path written by generate
	Query      string   `json:"query" yaml:"query"`           // SQL query to execute
	OutputDir  string   `json:"outdir" yaml:"outdir"`         // Optional output directory
	OutputFile string   `json:"outfile" yaml:"outfile"`       // Optional output file name
	BatchSize  int      `json:"batch_size" yaml:"batch_size"` // rows per INSERT when loading

	Generate GenerateSpec `json:"generate" yaml:"generate"`
}

// LoadWorkloadConfig reads and parses the workload configuration file. Files
// ending in .yaml or .yml are read as YAML, anything else as JSON.
func LoadWorkloadConfig(filePath string) (*Workload, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var workload Workload
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &workload)
	default:
		err = json.Unmarshal(data, &workload)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing workload %s: %w", filePath, err)
	}

	workload.applyDefaults()
	return &workload, nil
}

func (w *Workload) applyDefaults() {
	if w.Workers <= 0 {
		w.Workers = 4
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 1000
	}
}
