package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kvsship/kvsship/internal/build"
	"github.com/kvsship/kvsship/internal/paths"
	"github.com/kvsship/kvsship/internal/registry"
)

// Environment variable overriding the BuildKit daemon address.
const buildkitAddressEnv = "KVSSHIP_BUILDKIT_ADDR"

// Defaults mirroring the consumer application's published Dockerfile.
var (
	defaultBaseImage      = "python:3.10-slim"
	defaultSystemPackages = []string{"ffmpeg"}
	defaultDependencyFile = "requirements.txt"
	defaultEntrypoint     = []string{"python3", "kvs_consumer_library_example.py"}
	defaultPlatforms      = []string{"linux/amd64", "linux/arm64"}
	defaultTag            = "latest"
)

// The pipeline's fixed configuration, read from a YAML file.
//
// The push command takes no flags; everything the pipeline needs lives
// here so that repeated invocations target the same registry address.
type Config struct {
	Registry struct {
		Account    string `yaml:"account"`
		Region     string `yaml:"region"`
		Repository string `yaml:"repository"`
		Tag        string `yaml:"tag"`
	} `yaml:"registry"`

	Build struct {
		Context        string   `yaml:"context"`
		BaseImage      string   `yaml:"base_image"`
		SystemPackages []string `yaml:"system_packages"`
		DependencyFile string   `yaml:"dependency_file"`
		Entrypoint     []string `yaml:"entrypoint"`
		Platforms      []string `yaml:"platforms"`
	} `yaml:"build"`

	Buildkit struct {
		Address string `yaml:"address"`
	} `yaml:"buildkit"`
}

// Loads the configuration from the given path.
//
// An empty path falls back to the default config file location. A missing
// file is an error naming the expected path. Unset build fields take the
// consumer application's defaults; the registry target has no defaults
// beyond the tag and must be configured.
func Load(path string) (*Config, error) {
	if path == "" {
		path = paths.ConfigFile()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline config %q: %w", path, err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	return &cfg, nil
}

// Fills unset fields with defaults.
//
// A relative build context is resolved against the config file's directory,
// so the config keeps working regardless of the invocation directory.
func (c *Config) applyDefaults(configDir string) {
	if c.Registry.Tag == "" {
		c.Registry.Tag = defaultTag
	}
	if c.Build.Context == "" {
		c.Build.Context = "."
	}
	if !filepath.IsAbs(c.Build.Context) {
		c.Build.Context = filepath.Join(configDir, c.Build.Context)
	}
	if c.Build.BaseImage == "" {
		c.Build.BaseImage = defaultBaseImage
	}
	if len(c.Build.SystemPackages) == 0 {
		c.Build.SystemPackages = defaultSystemPackages
	}
	if c.Build.DependencyFile == "" {
		c.Build.DependencyFile = defaultDependencyFile
	}
	if len(c.Build.Entrypoint) == 0 {
		c.Build.Entrypoint = defaultEntrypoint
	}
	if len(c.Build.Platforms) == 0 {
		c.Build.Platforms = defaultPlatforms
	}
}

// Returns the registry target the pipeline publishes to.
func (c *Config) Target() registry.Target {
	return registry.Target{
		Account:    c.Registry.Account,
		Region:     c.Registry.Region,
		Repository: c.Registry.Repository,
		Tag:        c.Registry.Tag,
	}
}

// Returns the build description for the consumer image.
func (c *Config) Description() build.Description {
	return build.Description{
		BaseImage:      c.Build.BaseImage,
		SystemPackages: c.Build.SystemPackages,
		DependencyFile: c.Build.DependencyFile,
		ContextDir:     c.Build.Context,
		Entrypoint:     c.Build.Entrypoint,
		Platforms:      c.Build.Platforms,
	}
}

// Returns the BuildKit daemon address.
//
// The environment variable takes precedence over the config file; an unset
// address falls back to the builder's default socket.
func (c *Config) BuildkitAddress() string {
	if env := os.Getenv(buildkitAddressEnv); env != "" {
		return env
	}
	return c.Buildkit.Address
}
