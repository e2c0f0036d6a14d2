package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Site is one research location in the conductivity trial. The set of sites
// is fixed in configuration for the process lifetime; enumeration order is
// the canonical order used for tie-breaking and display.
type Site struct {
	ID      string  `mapstructure:"id" yaml:"id" json:"id"`
	Name    string  `mapstructure:"name" yaml:"name" json:"name"`
	EC      float64 `mapstructure:"ec" yaml:"ec" json:"ec"`
	Color   string  `mapstructure:"color" yaml:"color" json:"color"`
	EnvFile string  `mapstructure:"env_file" yaml:"env_file" json:"env_file"`
}

// Global configuration structure.
type Global struct {
	DataDir    string `mapstructure:"data_dir" yaml:"data_dir"`
	GrowthFile string `mapstructure:"growth_file" yaml:"growth_file"`
	Sites      []Site `mapstructure:"sites" yaml:"sites"`

	// Server settings (serve command)
	ListenAddr     string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	LogLevel       string   `mapstructure:"log_level" yaml:"log_level"`
	LogFormat      string   `mapstructure:"log_format" yaml:"log_format"`
}

// DefaultSites returns the four-school trial layout the tool ships with:
// one site per target conductivity, colors matching the original dashboard
// palette. Filenames are the on-disk names the schools upload.
func DefaultSites() []Site {
	return []Site{
		{ID: "hanbit", Name: "한빛중학교", EC: 1.0, Color: "#1f77b4", EnvFile: "한빛중학교_환경데이터.csv"},
		{ID: "gaon", Name: "가온중학교", EC: 2.0, Color: "#ff7f0e", EnvFile: "가온중학교_환경데이터.csv"},
		{ID: "saebom", Name: "새봄중학교", EC: 4.0, Color: "#2ca02c", EnvFile: "새봄중학교_환경데이터.csv"},
		{ID: "dasol", Name: "다솔중학교", EC: 8.0, Color: "#d62728", EnvFile: "다솔중학교_환경데이터.csv"},
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.growlab/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".growlab")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("GROWLAB")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data_dir", "data")
	v.SetDefault("growth_file", "생육데이터.xlsx")
	v.SetDefault("listen_addr", ":8091")
	v.SetDefault("allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("sites", defaultSiteMaps())

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".growlab")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// defaultSiteMaps mirrors DefaultSites as the generic shape viper expects
// for slice defaults.
func defaultSiteMaps() []map[string]any {
	sites := DefaultSites()
	out := make([]map[string]any, 0, len(sites))
	for _, s := range sites {
		out = append(out, map[string]any{
			"id":       s.ID,
			"name":     s.Name,
			"ec":       s.EC,
			"color":    s.Color,
			"env_file": s.EnvFile,
		})
	}
	return out
}

// Validate checks the parts of the configuration the loaders depend on.
func (c *Global) Validate() error {
	if len(c.Sites) == 0 {
		return fmt.Errorf("config: no sites configured")
	}
	seen := make(map[string]bool, len(c.Sites))
	for i, s := range c.Sites {
		if s.ID == "" {
			return fmt.Errorf("config: site %d has no id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("config: duplicate site id %q", s.ID)
		}
		seen[s.ID] = true
		if s.Name == "" {
			return fmt.Errorf("config: site %q has no name", s.ID)
		}
		if s.EnvFile == "" {
			return fmt.Errorf("config: site %q has no env_file", s.ID)
		}
	}
	if c.GrowthFile == "" {
		return fmt.Errorf("config: growth_file is empty")
	}
	return nil
}

// Site returns the configured site with the given id.
func (c *Global) Site(id string) (Site, bool) {
	for _, s := range c.Sites {
		if s.ID == id {
			return s, true
		}
	}
	return Site{}, false
}

// SiteByRef matches a site by id or by display name. Names compare
// NFC-normalized, so the decomposed Hangul macOS produces still matches.
func (c *Global) SiteByRef(ref string) (Site, bool) {
	ref = norm.NFC.String(ref)
	for _, s := range c.Sites {
		if s.ID == ref || norm.NFC.String(s.Name) == ref {
			return s, true
		}
	}
	return Site{}, false
}

// SiteOrder returns site ids in canonical (configuration) order.
func (c *Global) SiteOrder() []string {
	ids := make([]string, len(c.Sites))
	for i, s := range c.Sites {
		ids[i] = s.ID
	}
	return ids
}
