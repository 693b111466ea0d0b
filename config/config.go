// Package config holds the deployment configuration: which bucket to deploy
// to, where the build output lives and how the storage backend is reached.
//
// The defaults are compile-time constants. An optional TOML file may overlay
// them so the CLI stays a no-argument invocation.
package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/input-output-hk/catalyst-forge-spa/errors"
)

const (
	DefaultBucket        = "ps5.jsarias.me"
	DefaultBuildDir      = "dist"
	DefaultRegion        = "us-east-1"
	DefaultProfile       = "personal"
	DefaultEntryDocument = "index.html"
	DefaultConcurrency   = 5
	DefaultMaxRetries    = 3

	// DefaultFile is looked up in the working directory when EnvFile is unset.
	DefaultFile = "spadeploy.toml"

	// EnvFile names an alternative config file.
	EnvFile = "SPADEPLOY_CONFIG"
)

// Backend selects the storage backend implementation.
type Backend string

const (
	// BackendSDK talks to S3 through the AWS SDK.
	BackendSDK Backend = "sdk"

	// BackendCLI shells out to the aws command line tool.
	BackendCLI Backend = "cli"
)

// Config is the immutable deployment configuration. It is built once at
// startup and passed by value.
type Config struct {
	Bucket        string
	BuildDir      string
	Region        string
	Profile       string
	EntryDocument string
	Backend       Backend

	// Endpoint overrides the S3 endpoint (S3-compatible services, LocalStack).
	Endpoint       string
	ForcePathStyle bool

	// Concurrency bounds parallel object uploads in the SDK backend.
	Concurrency int

	// MaxRetries is the SDK's per-request attempt limit. Deployment steps
	// themselves are never retried.
	MaxRetries int
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Bucket:        DefaultBucket,
		BuildDir:      DefaultBuildDir,
		Region:        DefaultRegion,
		Profile:       DefaultProfile,
		EntryDocument: DefaultEntryDocument,
		Backend:       BackendSDK,
		Concurrency:   DefaultConcurrency,
		MaxRetries:    DefaultMaxRetries,
	}
}

// SiteURL is the public address of the deployed site.
func (c Config) SiteURL() string {
	return "https://" + c.Bucket
}

// EntryPath is the local path of the entry document inside the build directory.
func (c Config) EntryPath() string {
	return path.Join(c.BuildDir, c.EntryDocument)
}

// Validate checks that every required field is set and well formed.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Bucket) == "" {
		problems = append(problems, "bucket is required")
	}
	if strings.TrimSpace(c.BuildDir) == "" {
		problems = append(problems, "build_dir is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		problems = append(problems, "region is required")
	}
	switch {
	case strings.TrimSpace(c.EntryDocument) == "":
		problems = append(problems, "entry_document is required")
	case strings.HasPrefix(c.EntryDocument, "/") || hasParentSegment(c.EntryDocument):
		problems = append(problems, "entry_document must be a relative key inside the build directory")
	}
	switch c.Backend {
	case BackendSDK, BackendCLI:
	default:
		problems = append(problems, fmt.Sprintf("unknown backend %q", c.Backend))
	}
	if c.Concurrency < 1 {
		problems = append(problems, "concurrency must be at least 1")
	}
	if c.MaxRetries < 1 {
		problems = append(problems, "max_retries must be at least 1")
	}

	if len(problems) > 0 {
		return errors.New(errors.CodeInvalidConfig, "invalid configuration: "+strings.Join(problems, "; "))
	}
	return nil
}

// fileConfig mirrors Config with pointer fields so absent keys keep defaults.
type fileConfig struct {
	Bucket         *string `toml:"bucket"`
	BuildDir       *string `toml:"build_dir"`
	Region         *string `toml:"region"`
	Profile        *string `toml:"profile"`
	EntryDocument  *string `toml:"entry_document"`
	Backend        *string `toml:"backend"`
	Endpoint       *string `toml:"endpoint"`
	ForcePathStyle *bool   `toml:"force_path_style"`
	Concurrency    *int    `toml:"concurrency"`
	MaxRetries     *int    `toml:"max_retries"`
}

// LoadFile overlays the TOML file at path onto the defaults.
func LoadFile(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read config file",
			map[string]interface{}{"path": path})
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, errors.Newf(errors.CodeInvalidConfig, "unknown config keys in %s: %s",
			path, strings.Join(keys, ", "))
	}

	cfg := raw.apply(Default())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load returns the effective configuration. It reads the file named by
// SPADEPLOY_CONFIG if set, otherwise DefaultFile when it exists in the
// working directory, otherwise the built-in defaults.
func Load() (Config, error) {
	if p := os.Getenv(EnvFile); p != "" {
		return LoadFile(p)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return LoadFile(DefaultFile)
	}

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (f fileConfig) apply(cfg Config) Config {
	setString(&cfg.Bucket, f.Bucket)
	setString(&cfg.BuildDir, f.BuildDir)
	setString(&cfg.Region, f.Region)
	setString(&cfg.EntryDocument, f.EntryDocument)
	setString(&cfg.Endpoint, f.Endpoint)
	if f.Profile != nil {
		// explicit empty profile selects the default credential chain
		cfg.Profile = strings.TrimSpace(*f.Profile)
	}
	if f.Backend != nil {
		cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(*f.Backend)))
	}
	if f.ForcePathStyle != nil {
		cfg.ForcePathStyle = *f.ForcePathStyle
	}
	if f.Concurrency != nil {
		cfg.Concurrency = *f.Concurrency
	}
	if f.MaxRetries != nil {
		cfg.MaxRetries = *f.MaxRetries
	}
	return cfg
}

func setString(dst *string, v *string) {
	if v == nil {
		return
	}
	if s := strings.TrimSpace(*v); s != "" {
		*dst = s
	}
}

// hasParentSegment reports whether key climbs out of its directory through
// a ".." path segment.
func hasParentSegment(key string) bool {
	for _, seg := range strings.Split(strings.ReplaceAll(key, "\\", "/"), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}
