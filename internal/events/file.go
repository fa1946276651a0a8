package events

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/liveboard"
)

// File reads events from a YAML document of the form:
//
//	matches:
//	  - match_id: 1
//	    away_team_name: KIA
//	    away_team_code: HT
//	    home_team_name: LG
//	    home_team_code: LG
//	    match_time: 2024-05-01T18:30:00+09:00
type File struct {
	path string
}

// NewFile returns a source reading path on every call to Events.
func NewFile(path string) *File {
	return &File{path: path}
}

type fileDocument struct {
	Matches []liveboard.EventDescriptor `yaml:"matches"`
}

// Events reads and decodes the file.
func (f *File) Events(_ context.Context) ([]liveboard.EventDescriptor, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes a YAML events document.
func ParseFile(data []byte) ([]liveboard.EventDescriptor, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse events YAML: %w", err)
	}
	return doc.Matches, nil
}
