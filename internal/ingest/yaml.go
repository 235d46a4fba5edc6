package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/contact-graph-router/model"
)

// planDocument is the YAML plan schema: a top-level contacts list using
// the same nine field names as the CSV columns.
type planDocument struct {
	Contacts []contactSpec `yaml:"contacts"`
}

type contactSpec struct {
	ID            *int     `yaml:"id"`
	From          *int     `yaml:"from"`
	To            *int     `yaml:"to"`
	TStart        *float64 `yaml:"t_start"`
	TEnd          *float64 `yaml:"t_end"`
	OWLT          float64  `yaml:"owlt"`
	RateBps       float64  `yaml:"rate_bps"`
	SetupS        float64  `yaml:"setup_s"`
	ResidualBytes float64  `yaml:"residual_bytes"`
}

// LoadYAMLFile reads a contact plan from a YAML file. Entries missing a
// required field (id, from, to, t_start, t_end) are skipped, mirroring
// the lenient CSV ingestion.
func LoadYAMLFile(path string) ([]model.Contact, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open contact plan: %w", err)
	}
	defer f.Close()

	contacts, skipped, err := ParseYAML(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("parse %s: %w", path, err)
	}
	return contacts, skipped, nil
}

// ParseYAML decodes a YAML plan document from r.
func ParseYAML(r io.Reader) ([]model.Contact, int, error) {
	var doc planDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, 0, fmt.Errorf("decode yaml plan: %w", err)
	}

	var contacts []model.Contact
	skipped := 0
	for _, entry := range doc.Contacts {
		if entry.ID == nil || entry.From == nil || entry.To == nil || entry.TStart == nil || entry.TEnd == nil {
			skipped++
			continue
		}
		contacts = append(contacts, model.Contact{
			ID:            *entry.ID,
			From:          *entry.From,
			To:            *entry.To,
			TStart:        *entry.TStart,
			TEnd:          *entry.TEnd,
			OWLT:          entry.OWLT,
			RateBps:       entry.RateBps,
			SetupS:        entry.SetupS,
			ResidualBytes: entry.ResidualBytes,
		})
	}
	return contacts, skipped, nil
}

// LoadPlanFile loads a contact plan from a local file, selecting the
// parser by extension: .yaml/.yml for YAML, anything else CSV.
func LoadPlanFile(path string) ([]model.Contact, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAMLFile(path)
	default:
		return LoadCSVFile(path)
	}
}
