package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/routekit/errors"
)

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem is the FileSystem backed by the process environment.
type OSFileSystem struct{}

// Exists reports whether path exists.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment. Variables already
// set are not overwritten.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Files are the config and env files chosen for a load.
type Files struct {
	ConfigFile string
	EnvFile    string
}

// Resolve picks the config and env files for service. Explicit paths in
// opts win; otherwise the standard locations are searched, nearest first.
func Resolve(service string, opts Options) Files {
	fs := opts.FileSystem
	if fs == nil {
		fs = OSFileSystem{}
	}
	files := Files{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = firstExisting(fs, configCandidates(service))
	}
	if files.EnvFile == "" {
		files.EnvFile = firstExisting(fs, envCandidates(service))
	}
	return files
}

func configCandidates(service string) []string {
	var out []string
	for _, dir := range []string{".", "..", "../.."} {
		out = append(out, filepath.Join(dir, "cmd", service, "config.yml"))
	}
	return append(out, filepath.Join("config", "config.yml"), "config.yml")
}

func envCandidates(service string) []string {
	var out []string
	for _, name := range []string{".env." + service, ".env"} {
		for _, dir := range []string{".", "..", "../.."} {
			out = append(out, filepath.Join(dir, "cmd", service, name))
		}
		out = append(out, name)
	}
	return out
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// Options configures LoadConfig.
type Options struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// EnvPrefix, when set, limits binding to variables named PREFIX_*.
	EnvPrefix string
}

// Option is a functional option for LoadConfig.
type Option func(*Options)

// WithFileSystem sets the filesystem used to find and load files.
func WithFileSystem(fs FileSystem) Option {
	return func(o *Options) { o.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) Option {
	return func(o *Options) { o.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// WithEnvPrefix restricts environment binding to prefixed variables.
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) { o.EnvPrefix = strings.TrimSuffix(strings.ToUpper(prefix), "_") }
}

// Defaulter is implemented by configs that fill in zero values.
type Defaulter interface{ ApplyDefaults() }

// Validatable is implemented by configs that check themselves.
type Validatable interface{ Validate() error }

// LoadConfig loads configuration for service into cfg, a pointer to a
// struct with mapstructure tags. A named config file that cannot be parsed
// is a CONFIGURATION_ERROR; a missing one is not. When cfg implements
// Defaulter and Validatable, they run after decoding.
func LoadConfig(service string, cfg any, opts ...Option) error {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.FileSystem == nil {
		o.FileSystem = OSFileSystem{}
	}
	files := Resolve(service, o)

	v := viper.New()
	if files.ConfigFile != "" && o.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Configuration("config: read %s", files.ConfigFile).WithCause(err)
		}
	}
	if files.EnvFile != "" && o.FileSystem.Exists(files.EnvFile) {
		if err := o.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return errors.Configuration("config: load %s", files.EnvFile).WithCause(err)
		}
	}
	bindEnv(v, os.Environ(), o.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return errors.Configuration("config: decode %s", service).WithCause(err)
	}
	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
	}
	if val, ok := cfg.(Validatable); ok {
		if err := val.Validate(); err != nil {
			return errors.Configuration("config: invalid %s", service).WithCause(err)
		}
	}
	return nil
}

// bindEnv sets every key variant of each environment variable. Viper only
// unmarshals keys it knows about, so AutomaticEnv alone does not reach
// nested struct fields.
func bindEnv(v *viper.Viper, environ []string, prefix string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if prefix != "" {
			rest, found := strings.CutPrefix(key, prefix+"_")
			if !found {
				continue
			}
			key = rest
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants lists the dotted keys an environment variable may stand
// for, splitting at each underscore in turn:
//
//	CRAFT_MAX_IN_FLIGHT -> craft_max_in_flight, craft.max.in.flight,
//	                       craft.max_in_flight, craft.max.in_flight, ...
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := map[string]bool{}
	var out []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	add(lower)
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
		add(strings.Join(parts[:i], "_") + "." + strings.Join(parts[i:], "_"))
	}
	return out
}

// MustLoad is LoadConfig for process entry points: it panics on error.
func MustLoad(service string, cfg any, opts ...Option) {
	if err := LoadConfig(service, cfg, opts...); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
