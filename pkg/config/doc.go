// Package config loads the dotsync configuration.
//
// Values are layered with koanf, later sources winning:
//
//  1. embedded defaults (embedded/defaults.yaml)
//  2. values derived from the environment, such as the working tree location
//  3. the config file (dotfiles_sync.yaml or .toml)
//  4. DOTSYNC_* environment variables
//  5. command-line overrides supplied by the caller
//
// The mapping table lives under the files key and decodes into
// []types.Entry.
package config
