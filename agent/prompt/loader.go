package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed template/scheduler.yaml
	schedulerRaw []byte

	//go:embed template/newscurator.yaml
	newsCuratorRaw []byte
)

// Scheduler returns the embedded appointment-scheduling pipeline.
func Scheduler() (contractx.Pipeline, error) {
	return Parse(schedulerRaw)
}

// NewsCurator returns the embedded news-curation pipeline.
func NewsCurator() (contractx.Pipeline, error) {
	return Parse(newsCuratorRaw)
}

// LoadFile reads a pipeline definition from path, or returns fallback when
// path is empty.
func LoadFile(path string, fallback func() (contractx.Pipeline, error)) (contractx.Pipeline, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallback()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return contractx.Pipeline{}, fmt.Errorf("%w: read %s: %v", contractx.ErrConfig, path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (contractx.Pipeline, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var p contractx.Pipeline
	if err := dec.Decode(&p); err != nil {
		return contractx.Pipeline{}, fmt.Errorf("%w: decode yaml: %v", contractx.ErrConfig, err)
	}

	for id, r := range p.Roles {
		r.ID = id
		r.Title = strings.TrimSpace(r.Title)
		r.Goal = strings.TrimSpace(r.Goal)
		r.Backstory = strings.TrimSpace(r.Backstory)
		p.Roles[id] = r
	}
	for i := range p.Tasks {
		t := &p.Tasks[i]
		t.ID = strings.TrimSpace(t.ID)
		t.Description = strings.TrimSpace(t.Description)
		t.ExpectedOutput = strings.TrimSpace(t.ExpectedOutput)
		if t.OutputFormat == "" {
			t.OutputFormat = contractx.OutputText
		}
	}

	if err := p.Validate(); err != nil {
		return contractx.Pipeline{}, err
	}
	return p, nil
}
