// Package pkgjson reads the parts of a project's package.json the build
// plugin cares about.
package pkgjson

import (
	"fmt"
	"path/filepath"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Manifest is a decoded package.json.
type Manifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// Read loads rootDir/package.json. A missing file yields an error that
// matches fs.ErrNotExist.
func Read(rootDir string) (*Manifest, error) {
	path := filepath.Join(rootDir, "package.json")

	// Package names contain dots and slashes, so use a delimiter that
	// cannot appear in one.
	k := koanf.New("|")
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var m Manifest
	if err := k.UnmarshalWithConf("", &m, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &m, nil
}

// VersionOf returns the version range declared for pkg, looking at
// dependencies, then devDependencies, then peerDependencies.
func (m *Manifest) VersionOf(pkg string) (string, bool) {
	for _, deps := range []map[string]string{m.Dependencies, m.DevDependencies, m.PeerDependencies} {
		if v, ok := deps[pkg]; ok {
			return v, true
		}
	}
	return "", false
}
