package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceConfig carries per-source options. HumanOnly defaults to false:
// all organisms are processed unless a run opts in. An empty Version means
// the version is resolved per run; a non-empty one pins it.
type SourceConfig struct {
	HumanOnly bool   `yaml:"human_only"`
	Version   string `yaml:"version"`
	URL       string `yaml:"url"`
}

type Config struct {
	CacheRoot   string                  `yaml:"cache_root"`
	OutDir      string                  `yaml:"out_dir"`
	Exporter    string                  `yaml:"exporter"`
	VersionsURL string                  `yaml:"versions_url"`
	ZenodoBase  string                  `yaml:"zenodo_base"`
	ZenodoToken string                  `yaml:"-"`
	Sources     map[string]SourceConfig `yaml:"sources"`
}

func Load() Config {
	return Config{
		CacheRoot:   getenv("NSOCKG_CACHE_ROOT", "./data/cache"),
		OutDir:      getenv("NSOCKG_OUT", "./data/out"),
		Exporter:    getenv("NSOCKG_EXPORTER", os.Getenv("USER")),
		VersionsURL: os.Getenv("NSOCKG_VERSIONS_URL"),
		ZenodoBase:  getenv("NSOCKG_ZENODO_BASE", "https://zenodo.org"),
		ZenodoToken: os.Getenv("NSOCKG_ZENODO_TOKEN"),
		Sources: map[string]SourceConfig{
			// ExCAPE-DB is a static resource; its version never resolves.
			"excape": {Version: "v2"},
		},
	}
}

// ApplyFile overlays options from a YAML file. Non-empty scalar fields
// override; for each source entry, string fields merge into the built-in
// entry while the human_only flag is taken from the file as written.
func (c *Config) ApplyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(b, &file); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.CacheRoot != "" {
		c.CacheRoot = file.CacheRoot
	}
	if file.OutDir != "" {
		c.OutDir = file.OutDir
	}
	if file.Exporter != "" {
		c.Exporter = file.Exporter
	}
	if file.VersionsURL != "" {
		c.VersionsURL = file.VersionsURL
	}
	if file.ZenodoBase != "" {
		c.ZenodoBase = file.ZenodoBase
	}
	if c.Sources == nil {
		c.Sources = map[string]SourceConfig{}
	}
	for name, sc := range file.Sources {
		merged := c.Sources[name]
		merged.HumanOnly = sc.HumanOnly
		if sc.Version != "" {
			merged.Version = sc.Version
		}
		if sc.URL != "" {
			merged.URL = sc.URL
		}
		c.Sources[name] = merged
	}
	return nil
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}
