// Package config parses declarative cleaning configurations (YAML or TOML)
// into the rule/contract model of pkg/scrub, and writes them back out.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/wdm0006/scrub/pkg/scrub"
)

// File is the on-disk configuration shape.
type File struct {
	Version        string         `yaml:"version" toml:"version"`
	Name           string         `yaml:"name" toml:"name"`
	Description    string         `yaml:"description,omitempty" toml:"description,omitempty"`
	Observability  *Obs           `yaml:"observability,omitempty" toml:"observability,omitempty"`
	InputContract  *ContractBlock `yaml:"input_contract,omitempty" toml:"input_contract,omitempty"`
	OutputContract *ContractBlock `yaml:"output_contract,omitempty" toml:"output_contract,omitempty"`
	Rules          []RuleBlock    `yaml:"rules" toml:"rules"`
}

type RuleBlock struct {
	Name       string         `yaml:"name" toml:"name"`
	Operation  string         `yaml:"operation" toml:"operation"`
	Columns    SelectorBlock  `yaml:"columns,omitempty" toml:"columns,omitempty"`
	Parameters map[string]any `yaml:"parameters,omitempty" toml:"parameters,omitempty"`
	Order      int            `yaml:"order" toml:"order"`
	Enabled    *bool          `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
}

type SelectorBlock struct {
	Columns []string `yaml:"columns,omitempty" toml:"columns,omitempty"`
	Pattern string   `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	All     bool     `yaml:"all,omitempty" toml:"all,omitempty"`
}

type ContractBlock struct {
	Strict  *bool                  `yaml:"strict,omitempty" toml:"strict,omitempty"`
	Coerce  bool                   `yaml:"coerce,omitempty" toml:"coerce,omitempty"`
	Columns map[string]ColumnBlock `yaml:"columns" toml:"columns"`
}

type ColumnBlock struct {
	Dtype    string   `yaml:"dtype" toml:"dtype"`
	Nullable *bool    `yaml:"nullable,omitempty" toml:"nullable,omitempty"`
	Min      *float64 `yaml:"min,omitempty" toml:"min,omitempty"`
	Max      *float64 `yaml:"max,omitempty" toml:"max,omitempty"`
	Regex    string   `yaml:"regex,omitempty" toml:"regex,omitempty"`
	In       []string `yaml:"isin,omitempty" toml:"isin,omitempty"`
}

type Obs struct {
	Enabled       *bool  `yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	ServiceName   string `yaml:"service_name,omitempty" toml:"service_name,omitempty"`
	ConsoleExport *bool  `yaml:"console_export,omitempty" toml:"console_export,omitempty"`
}

// Pipeline is the parsed, validated model ready to back an engine.
type Pipeline struct {
	Name          string
	Description   string
	Rules         *scrub.RuleSet
	Input         *scrub.Contract
	Output        *scrub.Contract
	Observability scrub.Observability
}

// Load reads and parses path, dispatching on the file extension
// (.yaml/.yml/.toml).
func Load(path string) (*Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(b)
	case ".toml":
		return ParseTOML(b)
	default:
		return nil, errors.Newf("unsupported config extension %q", filepath.Ext(path))
	}
}

func ParseYAML(b []byte) (*Pipeline, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrap(err, "parse yaml config")
	}
	return build(&f)
}

func ParseTOML(b []byte) (*Pipeline, error) {
	var f File
	if err := toml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrap(err, "parse toml config")
	}
	return build(&f)
}

func build(f *File) (*Pipeline, error) {
	if f.Name == "" {
		return nil, errors.New("config: name is required")
	}
	if len(f.Rules) == 0 {
		return nil, errors.New("config: at least one rule is required")
	}
	rules := make([]scrub.Rule, len(f.Rules))
	for i, rb := range f.Rules {
		rules[i] = scrub.Rule{
			Name:      rb.Name,
			Operation: rb.Operation,
			Columns: scrub.ColumnSelector{
				Columns: rb.Columns.Columns,
				Pattern: rb.Columns.Pattern,
				All:     rb.Columns.All,
			},
			Parameters: scrub.Params(rb.Parameters),
			Order:      rb.Order,
			Disabled:   rb.Enabled != nil && !*rb.Enabled,
		}
	}
	rs, err := scrub.NewRuleSet(rules)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		Name:        f.Name,
		Description: f.Description,
		Rules:       rs,
		Input:       contract(f.InputContract),
		Output:      contract(f.OutputContract),
	}
	if f.Observability != nil {
		p.Observability = scrub.Observability{
			Enabled:       f.Observability.Enabled == nil || *f.Observability.Enabled,
			ServiceName:   f.Observability.ServiceName,
			ConsoleExport: f.Observability.ConsoleExport == nil || *f.Observability.ConsoleExport,
		}
	}
	return p, nil
}

func contract(cb *ContractBlock) *scrub.Contract {
	if cb == nil {
		return nil
	}
	c := &scrub.Contract{
		Strict:  cb.Strict == nil || *cb.Strict,
		Coerce:  cb.Coerce,
		Columns: make(map[string]scrub.ColumnContract, len(cb.Columns)),
	}
	for name, col := range cb.Columns {
		c.Columns[name] = scrub.ColumnContract{
			Dtype:    col.Dtype,
			Nullable: col.Nullable == nil || *col.Nullable,
			Min:      col.Min,
			Max:      col.Max,
			Regex:    col.Regex,
			In:       col.In,
		}
	}
	return c
}

// Engine builds a scrub.Engine from the pipeline, wiring contracts and the
// observability sink. Additional options (store, logger, registry) are
// appended, so they may override the defaults.
func (p *Pipeline) Engine(opts ...scrub.Option) (*scrub.Engine, error) {
	base := []scrub.Option{
		scrub.WithInputContract(p.Input),
		scrub.WithOutputContract(p.Output),
		scrub.WithSink(p.Observability.Sink()),
	}
	return scrub.New(p.Rules, append(base, opts...)...)
}

// SaveYAML writes f back out as YAML, preserving the on-disk shape.
func SaveYAML(path string, f *File) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return os.WriteFile(path, b, 0o644)
}
