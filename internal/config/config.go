package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"position-report-extractor/internal/brokers"
	"position-report-extractor/internal/extract"
	"position-report-extractor/internal/models"

	"gopkg.in/yaml.v2"
)

// ErrMalformed is returned when a source configuration cannot be compiled
var ErrMalformed = extract.ErrMalformed

// Load reads the configuration from the specified YAML file and returns a Config struct
func Load(filepath string) (*models.Config, error) {
	configFile, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := yaml.Unmarshal(configFile, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	return &config, nil
}

// Default returns the configuration used when no file is given
func Default() *models.Config {
	var config models.Config
	applyDefaults(&config)
	return &config
}

func applyDefaults(cfg *models.Config) {
	if cfg.Email.MailBox == "" {
		cfg.Email.MailBox = "Ship Reports"
	}
	if cfg.Email.Timeout == 0 {
		cfg.Email.Timeout = 30 * time.Second
	}
	if cfg.Archive.Root == "" {
		cfg.Archive.Root = "reports"
	}
	if cfg.Archive.Index == "" {
		cfg.Archive.Index = "download_index.sqlite"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Output.FileName == "" {
		cfg.Output.FileName = "%s_Positions_All_Emails.xlsx"
	}
	if cfg.Run.Workers <= 0 {
		cfg.Run.Workers = runtime.NumCPU()
	}
	if cfg.Run.DocumentBudget == 0 {
		cfg.Run.DocumentBudget = 30 * time.Second
	}
	if cfg.Run.Location == "" {
		cfg.Run.Location = "Asia/Singapore"
	}
	if cfg.Run.LogLevel == "" {
		cfg.Run.LogLevel = "info"
	}
}

// Location resolves the display time zone of sent dates
func Location(cfg *models.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(cfg.Run.Location)
	if err != nil {
		return nil, fmt.Errorf("run.location %q: %w", cfg.Run.Location, err)
	}
	return loc, nil
}

// Sources merges the configured brokers over the built-ins and compiles them.
// Any malformed source fails the whole run before a document is read.
func Sources(cfg *models.Config) ([]*extract.Source, error) {
	base, err := brokers.Builtin()
	if err != nil {
		return nil, err
	}

	merged := brokers.Merge(base, cfg.Brokers)
	sources := make([]*extract.Source, 0, len(merged))
	seen := make(map[string]bool, len(merged))
	for _, sc := range merged {
		src, err := extract.Compile(sc)
		if err != nil {
			return nil, err
		}
		if seen[src.Folder] {
			return nil, fmt.Errorf("%w: folder %q used by more than one source", ErrMalformed, src.Folder)
		}
		seen[src.Folder] = true
		sources = append(sources, src)
	}
	return sources, nil
}

// Select keeps the sources whose name is listed. An empty list keeps all.
func Select(sources []*extract.Source, names []string) ([]*extract.Source, error) {
	if len(names) == 0 {
		return sources, nil
	}

	byName := make(map[string]*extract.Source, len(sources))
	for _, s := range sources {
		byName[s.Name] = s
	}

	out := make([]*extract.Source, 0, len(names))
	for _, n := range names {
		s, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown broker %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}
