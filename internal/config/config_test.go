package config

import (
	"errors"
	"os"
	"testing"
	"time"

	"position-report-extractor/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Remove(tmpFile.Name())
	})

	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	yamlContent := `email:
  imap: "imap.test.com:993"
  login: "test@example.com"
  password: "testpass"
  mailbox: "Ship Reports"
  since: 720h
archive:
  root: "/data/reports"
run:
  workers: 4
  documentBudget: 5s
  logLevel: debug
brokers:
  - name: Affinity
    folder: Affinity
    anchors:
      - phrase: USG
        strictOnly: true
    strategies:
      - kind: vertical
        fields: [Vessel, Built]
`

	cfg, err := Load(writeConfig(t, yamlContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Email.Imap != "imap.test.com:993" {
		t.Errorf("Expected imap 'imap.test.com:993', got '%s'", cfg.Email.Imap)
	}

	if cfg.Email.Since != 720*time.Hour {
		t.Errorf("Expected since 720h, got %v", cfg.Email.Since)
	}

	if cfg.Run.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.Run.Workers)
	}

	if cfg.Run.DocumentBudget != 5*time.Second {
		t.Errorf("Expected documentBudget 5s, got %v", cfg.Run.DocumentBudget)
	}

	if cfg.Archive.Root != "/data/reports" {
		t.Errorf("Expected archive root '/data/reports', got '%s'", cfg.Archive.Root)
	}

	if cfg.Archive.Index != "download_index.sqlite" {
		t.Errorf("Expected default index, got '%s'", cfg.Archive.Index)
	}

	if cfg.Email.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", cfg.Email.Timeout)
	}

	if len(cfg.Brokers) != 1 || len(cfg.Brokers[0].Strategies[0].Fields) != 2 {
		t.Fatalf("Expected one broker with two fields, got %+v", cfg.Brokers)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestSources(t *testing.T) {
	cfg := Default()

	sources, err := Sources(cfg)
	if err != nil {
		t.Fatalf("Sources() error: %v", err)
	}
	if len(sources) != 4 {
		t.Fatalf("Expected 4 built-in sources, got %d", len(sources))
	}

	cfg.Brokers = []models.SourceConfig{{
		Name:       "Affinity",
		Folder:     "Affinity",
		Anchors:    []models.AnchorConfig{{Phrase: "USG"}},
		Strategies: []models.StrategyConfig{{Kind: "vertical", Fields: []models.FieldConfig{{Name: "Vessel"}}}},
	}}
	sources, err = Sources(cfg)
	if err != nil {
		t.Fatalf("Sources() with override error: %v", err)
	}
	if len(sources) != 4 || len(sources[0].Locator.Anchors) != 1 {
		t.Errorf("Expected Affinity override with one anchor")
	}
}

func TestSources_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		broker models.SourceConfig
	}{
		{
			name: "Variable field without terminator",
			broker: models.SourceConfig{
				Name:    "Broken",
				Anchors: []models.AnchorConfig{{Phrase: "USG"}},
				Strategies: []models.StrategyConfig{{
					Kind:   "vertical",
					Fields: []models.FieldConfig{{Name: "Vessel"}, {Name: "Position", Kind: "variable"}},
				}},
			},
		},
		{
			name: "Duplicate folder",
			broker: models.SourceConfig{
				Name:       "Other",
				Folder:     "Poten",
				Anchors:    []models.AnchorConfig{{Phrase: "USG"}},
				Strategies: []models.StrategyConfig{{Kind: "vertical", Fields: []models.FieldConfig{{Name: "Vessel"}}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Brokers = []models.SourceConfig{tt.broker}
			_, err := Sources(cfg)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Sources() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	sources, err := Sources(Default())
	if err != nil {
		t.Fatalf("Sources() error: %v", err)
	}

	got, err := Select(sources, []string{"Poten", "Gibson"})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Poten" || got[1].Name != "Gibson" {
		t.Errorf("Select() = %v", got)
	}

	if _, err := Select(sources, []string{"Nobody"}); err == nil {
		t.Error("Expected error for unknown broker")
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	cfg.Run.Location = "UTC"
	if _, err := Location(cfg); err != nil {
		t.Errorf("Location() error: %v", err)
	}

	cfg.Run.Location = "Nowhere/Special"
	if _, err := Location(cfg); err == nil {
		t.Error("Expected error for unknown location")
	}
}
