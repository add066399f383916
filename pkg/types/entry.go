package types

import "io/fs"

// Source says where an entry's content comes from
type Source string

const (
	// SourceRepo entries live in the dotfiles repository
	SourceRepo Source = "repo"
	// SourceGit entries are separate git repositories cloned into place
	SourceGit Source = "git"
	// SourceExternal entries are downloaded from a URL
	SourceExternal Source = "external"
)

// PayloadType describes how an external download is unpacked
type PayloadType string

const (
	PayloadDirect PayloadType = "direct"
	PayloadTar    PayloadType = "tar"
	PayloadTarGz  PayloadType = "tar.gz"
	PayloadTarXz  PayloadType = "tar.xz"
	PayloadTarZst PayloadType = "tar.zst"
)

// IsArchive reports whether the payload must be extracted
func (p PayloadType) IsArchive() bool {
	switch p {
	case PayloadTar, PayloadTarGz, PayloadTarXz, PayloadTarZst:
		return true
	}
	return false
}

// DefaultBranch is used for git entries and the dotfiles repository when none is set
const DefaultBranch = "main"

// Entry is one row of the mapping table
type Entry struct {
	Path    string      `koanf:"path" yaml:"path" toml:"path" json:"path"`
	Source  Source      `koanf:"source" yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`
	URL     string      `koanf:"url" yaml:"url,omitempty" toml:"url,omitempty" json:"url,omitempty"`
	Branch  string      `koanf:"branch" yaml:"branch,omitempty" toml:"branch,omitempty" json:"branch,omitempty"`
	Type    PayloadType `koanf:"type" yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	DirName string      `koanf:"dir_name" yaml:"dir_name,omitempty" toml:"dir_name,omitempty" json:"dir_name,omitempty"`
	Exec    bool        `koanf:"exec" yaml:"exec,omitempty" toml:"exec,omitempty" json:"exec,omitempty"`
}

// EffectiveSource returns the entry's source, defaulting to repo
func (e Entry) EffectiveSource() Source {
	if e.Source == "" {
		return SourceRepo
	}
	return e.Source
}

// EffectiveBranch returns the entry's branch, defaulting to main
func (e Entry) EffectiveBranch() string {
	if e.Branch == "" {
		return DefaultBranch
	}
	return e.Branch
}

// EffectiveType returns the payload type, defaulting to direct
func (e Entry) EffectiveType() PayloadType {
	if e.Type == "" {
		return PayloadDirect
	}
	return e.Type
}

// ExecBits is the permission added to the top of the home copy after a
// sync, file or directory alike.
func (e Entry) ExecBits() fs.FileMode {
	if e.Exec {
		return 0111
	}
	return 0
}
