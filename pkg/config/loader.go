package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
)

// EnvPrefix is the prefix of environment variables that override config keys.
// DOTSYNC_BACKUP_MESSAGE sets backup.message.
const EnvPrefix = "DOTSYNC_"

// ConfigBaseName is the file name, without extension, dotsync looks for
const ConfigBaseName = "dotfiles_sync"

// ConfigExtensions lists the supported config file extensions in lookup order
var ConfigExtensions = []string{".yaml", ".yml", ".toml"}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// File is an explicit config file. When set it must exist.
	File string
	// Dirs are searched in order for dotfiles_sync.{yaml,yml,toml}
	Dirs []string
	// Overrides are applied last, keyed by dotted config keys
	Overrides map[string]interface{}
}

// DefaultSearchDirs returns the current directory followed by the dotsync
// config directory.
func DefaultSearchDirs(p paths.Paths) []string {
	dirs := []string{"."}
	if p != nil {
		dirs = append(dirs, p.ConfigDir())
	}
	return dirs
}

// FindConfigFile returns the first config file found in dirs
func FindConfigFile(dirs []string) (string, bool) {
	for _, dir := range dirs {
		for _, ext := range ConfigExtensions {
			candidate := filepath.Join(dir, ConfigBaseName+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, true
			}
		}
	}
	return "", false
}

// parserFor picks the koanf parser matching a file extension
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	}
	return nil, errors.Newf(errors.ErrConfigParse, "unsupported config format %q", filepath.Ext(path))
}

// Load reads the layered configuration and validates it
func Load(p paths.Paths, opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, yaml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Environment derived defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"worktree": p.DefaultWorktree(),
	}, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load derived defaults")
	}

	// 3. Config file
	source := opts.File
	if source != "" {
		if _, err := os.Stat(source); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "could not find config file: %s", source).
				WithDetail("path", source)
		}
	} else if found, ok := FindConfigFile(opts.Dirs); ok {
		source = found
	}

	if source != "" {
		parser, err := parserFor(source)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(source), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to read '%s'", source).
				WithDetail("path", source)
		}
		logger.Debug().Str("path", source).Msg("Loaded config file")
	} else {
		logger.Debug().Strs("dirs", opts.Dirs).Msg("No config file found, using defaults")
	}

	// 4. Environment variables
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		// only the backup section is nested
		if strings.HasPrefix(key, "backup_") {
			return "backup." + strings.TrimPrefix(key, "backup_")
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 5. Caller overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	cfg.Source = source
	cfg.Worktree = paths.SanitizePath(cfg.Worktree)

	if err := cfg.Validate(p); err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	return &cfg, nil
}
