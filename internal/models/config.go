package models

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Email   EmailConfig    `yaml:"email"`
	Archive ArchiveConfig  `yaml:"archive"`
	Output  OutputConfig   `yaml:"output"`
	Run     RunConfig      `yaml:"run"`
	Brokers []SourceConfig `yaml:"brokers"`
}

// EmailConfig represents IMAP email configuration
type EmailConfig struct {
	Imap     string        `yaml:"imap"`
	Login    string        `yaml:"login"`
	Password string        `yaml:"password"`
	MailBox  string        `yaml:"mailbox"`
	Since    time.Duration `yaml:"since"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ArchiveConfig locates the downloaded .eml tree and its index
type ArchiveConfig struct {
	Root  string `yaml:"root"`
	Index string `yaml:"index"`
}

// OutputConfig controls where position tables are written
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	FileName string `yaml:"fileName"`
}

// RunConfig tunes a batch run
type RunConfig struct {
	Workers        int           `yaml:"workers"`
	DocumentBudget time.Duration `yaml:"documentBudget"`
	Location       string        `yaml:"location"`
	LogLevel       string        `yaml:"logLevel"`
	MaxAge         time.Duration `yaml:"maxAge"`
}

// SourceConfig describes how one broker lays out its position list
type SourceConfig struct {
	Name       string           `yaml:"name"`
	Folder     string           `yaml:"folder"`
	Anchors    []AnchorConfig   `yaml:"anchors"`
	Window     int              `yaml:"window"`
	Reference  string           `yaml:"reference"`
	Strategies []StrategyConfig `yaml:"strategies"`
	Columns    []string         `yaml:"columns"`
	Derive     []DeriveConfig   `yaml:"derive"`
}

// AnchorConfig is either a literal phrase or explicit strict/loose patterns.
// With Reference set, only matches holding a valid date for the source's
// reference pattern count.
type AnchorConfig struct {
	Phrase     string `yaml:"phrase"`
	StrictOnly bool   `yaml:"strictOnly"`
	Strict     string `yaml:"strict"`
	Loose      string `yaml:"loose"`
	Reference  bool   `yaml:"reference"`
}

// StrategyConfig is one entry of a source's ranked parse strategies
type StrategyConfig struct {
	Kind         string        `yaml:"kind"`
	Fields       []FieldConfig `yaml:"fields"`
	Header       []string      `yaml:"header"`
	Stop         string        `yaml:"stop"`
	StopUnless   string        `yaml:"stopUnless"`
	Cutoff       string        `yaml:"cutoff"`
	Pattern      string        `yaml:"pattern"`
	Start        string        `yaml:"start"`
	Continuation bool          `yaml:"continuation"`
	MaxBlankRun  int           `yaml:"maxBlankRun"`
	MissLimit    int           `yaml:"missLimit"`
	MinParts     int           `yaml:"minParts"`
	RawField     string        `yaml:"rawField"`
	Tuning       TuningConfig  `yaml:"tuning"`
}

// TuningConfig mirrors the assembler repair knobs
type TuningConfig struct {
	Advance     int    `yaml:"advance"`
	MaxFailures int    `yaml:"maxFailures"`
	MiddleCap   int    `yaml:"middleCap"`
	Joiner      string `yaml:"joiner"`
}

// FieldConfig describes one column. A bare string in YAML is a field name.
type FieldConfig struct {
	Name  string   `yaml:"name"`
	Kind  string   `yaml:"kind"`
	Match string   `yaml:"match"`
	Group string   `yaml:"group"`
	Clean []string `yaml:"clean"`
}

// UnmarshalYAML accepts either a mapping or a plain field name
func (f *FieldConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		*f = FieldConfig{Name: name}
		return nil
	}

	type plain FieldConfig
	var p plain
	if err := unmarshal(&p); err != nil {
		return fmt.Errorf("field: %w", err)
	}
	*f = FieldConfig(p)
	return nil
}

// DeriveConfig is a post-processing step applied to every record of a source
type DeriveConfig struct {
	Kind       string  `yaml:"kind"`
	Field      string  `yaml:"field"`
	As         string  `yaml:"as"`
	ScaleBelow float64 `yaml:"scaleBelow"`
	Scale      float64 `yaml:"scale"`
}
