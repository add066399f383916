package config

import (
	"bytes"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

// Supported gen-config output formats
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// StarterConfig returns the example configuration decoded into a Config
func StarterConfig() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(starterConfig, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "embedded starter config is invalid")
	}
	return &cfg, nil
}

// GenerateConfigContent returns a starter config file in the given format.
// The YAML form keeps its explanatory comments.
func GenerateConfigContent(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatYAML, "yml":
		if _, err := StarterConfig(); err != nil {
			return nil, err
		}
		return starterConfig, nil
	case FormatTOML:
		cfg, err := StarterConfig()
		if err != nil {
			return nil, err
		}
		body, err := Marshal(cfg, FormatTOML)
		if err != nil {
			return nil, err
		}
		return append([]byte(leadingComments(starterConfig)), body...), nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown format %q (use yaml or toml)", format)
}

// Marshal encodes a configuration as YAML or TOML
func Marshal(cfg *Config, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatYAML, "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode yaml")
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode toml")
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Newf(errors.ErrInvalidInput, "unknown format %q (use yaml or toml)", format)
}

// leadingComments returns the comment block at the top of a YAML document.
// YAML and TOML share the # comment syntax.
func leadingComments(content []byte) string {
	var out strings.Builder
	for _, line := range strings.Split(string(content), "\n") {
		if !strings.HasPrefix(line, "#") {
			break
		}
		out.WriteString(line)
		out.WriteString("\n")
	}
	if out.Len() > 0 {
		out.WriteString("\n")
	}
	return out.String()
}
