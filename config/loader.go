package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/crudify/logger"
)

// FileSystem abstracts the file operations used while resolving config files.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config.yml and .env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts when set and otherwise
// searches the standard locations. Empty fields mean nothing was found.
func (r *Resolver) ResolveFiles(service string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(candidates(service, "config.yml"))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(append(candidates(service, ".env."+service), candidates(service, ".env")...))
	}
	return files
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// candidates lists the search locations for file, nearest first:
// cmd/<service>/, config/, then the working directory, each also tried from
// one and two levels up.
func candidates(service, file string) []string {
	dirs := []string{filepath.Join("cmd", service)}
	if short := shortName(service); short != service {
		dirs = append(dirs, filepath.Join("cmd", short))
	}
	dirs = append(dirs, "config", "")

	var out []string
	for _, up := range []string{".", "..", filepath.Join("..", "..")} {
		for _, d := range dirs {
			out = append(out, filepath.Join(up, d, file))
		}
	}
	return out
}

// shortName strips a leading "<project>-" prefix from a service name.
func shortName(service string) string {
	if idx := strings.LastIndex(service, "-"); idx != -1 {
		return service[idx+1:]
	}
	return service
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into cfg. Values come from,
// in increasing priority: config.yml, the .env file, and the process
// environment. Missing files are not an error.
func LoadConfig(service string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(service, lc)
	log := logger.Get("config")

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("Failed to read config file", map[string]interface{}{
				"file":  files.ConfigFile,
				"error": err.Error(),
			})
		} else {
			log.Debug("Config file loaded", map[string]interface{}{"file": files.ConfigFile})
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("Failed to load env file", map[string]interface{}{
				"file":  files.EnvFile,
				"error": err.Error(),
			})
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", service, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair under each nested key it could address.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// maxNestedParts caps the exhaustive expansion in envKeyVariants.
const maxNestedParts = 5

// envKeyVariants maps an environment key to the viper keys it may stand for
// by treating each underscore as either a nesting dot or a literal:
//
//	TRUST_PROXY      -> [trust_proxy, trust.proxy]
//	SERVER_READ_TIMEOUT -> [server_read_timeout, server.read_timeout, server_read.timeout, server.read.timeout]
//
// Keys with more than maxNestedParts segments only get the flat, fully
// dotted and first-segment-nested forms.
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	if len(parts) > maxNestedParts {
		return dedupe([]string{
			lower,
			strings.Join(parts, "."),
			parts[0] + "." + strings.Join(parts[1:], "_"),
		})
	}

	gaps := len(parts) - 1
	variants := make([]string, 0, 1<<gaps)
	for mask := 0; mask < 1<<gaps; mask++ {
		var b strings.Builder
		b.WriteString(parts[0])
		for i := 1; i < len(parts); i++ {
			if mask&(1<<(i-1)) != 0 {
				b.WriteByte('.')
			} else {
				b.WriteByte('_')
			}
			b.WriteString(parts[i])
		}
		variants = append(variants, b.String())
	}
	return variants
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
