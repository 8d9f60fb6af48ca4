package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type PathsConfig struct {
	OutputDir string `toml:"output_dir"`
	CasePlan  string `toml:"case_plan"`
}

type ValidationConfig struct {
	AllowMarkdownBold    bool `toml:"allow_markdown_bold"`
	AllowTripleQuotes    bool `toml:"allow_triple_quotes"`
	RequireMetadataBlock bool `toml:"require_metadata_block"`
}

type GenerationConfig struct {
	MinDocuments int `toml:"min_documents"`
	ExclusionCap int `toml:"exclusion_cap"`
}

type RenderConfig struct {
	FontPath  string  `toml:"font_path"`
	FontSize  float64 `toml:"font_size"`
	PageWidth int     `toml:"page_width"`
}

type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Paths      PathsConfig      `toml:"paths"`
	Validation ValidationConfig `toml:"validation"`
	Generation GenerationConfig `toml:"generation"`
	Render     RenderConfig     `toml:"render"`
}

func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o",
			TimeoutSeconds: 300,
		},
		Paths: PathsConfig{
			OutputDir: "generated_output",
			CasePlan:  "core/case_plan.yaml",
		},
		Validation: ValidationConfig{
			AllowMarkdownBold:    true,
			AllowTripleQuotes:    false,
			RequireMetadataBlock: true,
		},
		Generation: GenerationConfig{
			MinDocuments: 5,
			ExclusionCap: 50,
		},
		Render: RenderConfig{
			FontSize:  13,
			PageWidth: 1240,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnvOverrides layers environment variables over the file config so
// deployments can tweak settings without editing the TOML.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.LLM.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Paths.OutputDir = v
	}
	if v := os.Getenv("CASE_PLAN"); v != "" {
		c.Paths.CasePlan = v
	}
	if v := os.Getenv("RENDER_FONT"); v != "" {
		c.Render.FontPath = v
	}
}

// Derived output locations. Everything generated lives under OutputDir.

func (c *Config) ReportsDir() string {
	return filepath.Join(c.Paths.OutputDir, "patient-reports")
}

func (c *Config) PatientReportsDir(patientID string) string {
	return filepath.Join(c.ReportsDir(), patientID)
}

func (c *Config) PersonasDir() string {
	return filepath.Join(c.Paths.OutputDir, "personas")
}

func (c *Config) LogsDir() string {
	return filepath.Join(c.Paths.OutputDir, "logs")
}

func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.OutputDir, "patients_db.json")
}
