package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Providers understood by the completion layer.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Environment variables that override file values.
const (
	EnvBaseURL         = "NVIDIA_API_BASE_URL"
	EnvAPIKey          = "NVIDIA_API_KEY"
	EnvModel           = "MODEL_NAME"
	EnvProvider        = "COVER_LETTER_PROVIDER"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvAddr            = "COVER_LETTER_ADDR"
)

// Config represents the application configuration.
type Config struct {
	Provider string        `json:"provider,omitempty"`
	BaseURL  string        `json:"base_url,omitempty"`
	APIKey   string        `json:"api_key"`
	Model    string        `json:"model,omitempty"`
	PDF      PDFConfig     `json:"pdf"`
	Server   ServerConfig  `json:"server"`
	Defaults DefaultConfig `json:"defaults"`
}

// PDFConfig holds page geometry and typography for rendered letters.
// Lengths are millimetres, font size is points.
type PDFConfig struct {
	PageWidth        float64  `json:"page_width,omitempty"`
	PageHeight       float64  `json:"page_height,omitempty"`
	Margin           *float64 `json:"margin,omitempty"`
	FontFamily       string   `json:"font_family,omitempty"`
	FontSize         float64  `json:"font_size,omitempty"`
	LineHeight       float64  `json:"line_height,omitempty"`
	BlankLineSpacing float64  `json:"blank_line_spacing,omitempty"`
}

// defaultMargin is used when the margin is left out. Zero is a valid margin.
const defaultMargin = 25.4

// Float returns a pointer to v, for optional settings such as Margin.
func Float(v float64) (p *float64) {
	p = &v
	return p
}

// GetMargin returns the configured margin, or the default when unset.
func (p PDFConfig) GetMargin() (margin float64) {
	margin = defaultMargin
	if p.Margin != nil {
		margin = *p.Margin
	}
	return margin
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr              string `json:"addr,omitempty"`
	MaxUploadBytes    int64  `json:"max_upload_bytes,omitempty"`
	RequestsPerMinute int    `json:"requests_per_minute,omitempty"`
	DraftTTLMinutes   int    `json:"draft_ttl_minutes,omitempty"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir"`
}

// GetProvider returns the normalized provider, defaulting to openai.
func (c *Config) GetProvider() (provider string) {
	provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	return provider
}

// DefaultPath returns ~/.cover-letter/config.json.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".cover-letter", "config.json")
	return path, err
}

// Load reads configuration from file with environment variable overrides.
// A .env file in the working directory is loaded first when present. An
// explicit configPath must exist; a missing default file is skipped so
// environment-only setups work.
func Load(configPath string) (cfg Config, err error) {
	cfg, err = read(configPath)
	if err != nil {
		return cfg, err
	}

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// LoadLayout reads configuration like Load but does not require
// credentials. It serves commands that only render PDFs.
func LoadLayout(configPath string) (cfg Config, err error) {
	cfg, err = read(configPath)
	if err != nil {
		return cfg, err
	}

	err = cfg.validateLimits()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	cfg.applyDefaults()
	return cfg, err
}

func read(configPath string) (cfg Config, err error) {
	// Missing .env is fine
	_ = godotenv.Load()

	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	var data []byte
	data, err = os.ReadFile(path)
	switch {
	case err == nil:
		err = json.Unmarshal(data, &cfg)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse config file: %s", path)
			return cfg, err
		}
	case os.IsNotExist(err) && configPath == "":
		err = nil
	case os.IsNotExist(err):
		err = errors.Errorf("config file not found: %s (run 'cover-letter init' to create)", path)
		return cfg, err
	default:
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	cfg.applyEnv()
	return cfg, err
}

// applyEnv overrides file values with any environment variables that are set.
func (c *Config) applyEnv() {
	if provider := os.Getenv(EnvProvider); provider != "" {
		c.Provider = provider
	}
	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		c.BaseURL = baseURL
	}
	if model := os.Getenv(EnvModel); model != "" {
		c.Model = model
	}
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}

	apiKeyVar := EnvAPIKey
	if c.GetProvider() == ProviderAnthropic {
		apiKeyVar = EnvAnthropicAPIKey
	}
	if apiKey := os.Getenv(apiKeyVar); apiKey != "" {
		c.APIKey = apiKey
	}
}

// Validate checks required fields and fills defaults for everything optional.
func (c *Config) Validate() (err error) {
	provider := c.GetProvider()
	if provider != ProviderOpenAI && provider != ProviderAnthropic {
		err = errors.Errorf("provider must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.Provider)
		return err
	}

	if c.APIKey == "" {
		err = errors.Errorf("api_key is required (set in config or %s / %s env var)", EnvAPIKey, EnvAnthropicAPIKey)
		return err
	}

	err = c.validateLimits()
	if err != nil {
		return err
	}

	c.applyDefaults()

	return err
}

func (c *Config) validateLimits() (err error) {
	if c.PDF.PageWidth < 0 || c.PDF.PageHeight < 0 || c.PDF.GetMargin() < 0 {
		err = errors.New("pdf page size and margin must not be negative")
		return err
	}

	if c.Server.MaxUploadBytes < 0 || c.Server.RequestsPerMinute < 0 || c.Server.DraftTTLMinutes < 0 {
		err = errors.New("server limits must not be negative")
		return err
	}

	return err
}

func (c *Config) applyDefaults() {
	defaults := defaultConfig("")

	if c.PDF.PageWidth == 0 {
		c.PDF.PageWidth = defaults.PDF.PageWidth
	}
	if c.PDF.PageHeight == 0 {
		c.PDF.PageHeight = defaults.PDF.PageHeight
	}
	if c.PDF.Margin == nil {
		c.PDF.Margin = Float(defaults.PDF.GetMargin())
	}
	if c.PDF.FontFamily == "" {
		c.PDF.FontFamily = defaults.PDF.FontFamily
	}
	if c.PDF.FontSize == 0 {
		c.PDF.FontSize = defaults.PDF.FontSize
	}
	if c.PDF.LineHeight == 0 {
		c.PDF.LineHeight = defaults.PDF.LineHeight
	}
	if c.PDF.BlankLineSpacing == 0 {
		c.PDF.BlankLineSpacing = defaults.PDF.BlankLineSpacing
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = defaults.Server.MaxUploadBytes
	}
	if c.Server.RequestsPerMinute == 0 {
		c.Server.RequestsPerMinute = defaults.Server.RequestsPerMinute
	}
	if c.Server.DraftTTLMinutes == 0 {
		c.Server.DraftTTLMinutes = defaults.Server.DraftTTLMinutes
	}

	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./cover-letters"
	}
}

// defaultConfig returns the stock settings: A4 at 25.4 mm margins,
// Helvetica 11 pt, 6 mm lines and 4 mm blank-line spacing.
func defaultConfig(outputDir string) (cfg Config) {
	cfg = Config{
		Provider: ProviderOpenAI,
		BaseURL:  "https://integrate.api.nvidia.com/v1",
		PDF: PDFConfig{
			PageWidth:        210,
			PageHeight:       297,
			Margin:           Float(defaultMargin),
			FontFamily:       "Helvetica",
			FontSize:         11,
			LineHeight:       6,
			BlankLineSpacing: 4,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			MaxUploadBytes:    10 << 20,
			RequestsPerMinute: 10,
			DraftTTLMinutes:   60,
		},
		Defaults: DefaultConfig{
			OutputDir: outputDir,
		},
	}
	return cfg
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	cfg := defaultConfig(filepath.Join(homeDir, "Documents", "CoverLetters"))
	cfg.APIKey = "nvapi-..."
	cfg.Model = "meta/llama-3.1-70b-instruct"

	var data []byte
	data, err = json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
