package host

import (
	"errors"
	"io/fs"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/tjfontaine/react-app-plugin/internal/pkgjson"
)

// jsxRuntimeSince is the first react release with the automatic runtime.
const jsxRuntimeSince = "v17.0.0"

// DetectJSXRuntime reports whether the react version declared in
// rootDir/package.json supports the automatic JSX runtime. A project
// without package.json or without react reports false.
func DetectJSXRuntime(rootDir string) (bool, error) {
	m, err := pkgjson.Read(rootDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	constraint, ok := m.VersionOf("react")
	if !ok {
		return false, nil
	}
	return supportsJSXRuntime(constraint), nil
}

// supportsJSXRuntime reads the lower bound of an npm range such as
// "^17.0.2" or ">=16.14 <19".
func supportsJSXRuntime(constraint string) bool {
	constraint = strings.TrimSpace(constraint)
	switch constraint {
	case "latest", "next", "*", "x":
		return true
	}
	constraint = strings.TrimLeft(constraint, "^~>=v ")
	if i := strings.IndexAny(constraint, " |<"); i >= 0 {
		constraint = constraint[:i]
	}
	constraint = strings.TrimSuffix(strings.TrimSuffix(constraint, ".x"), ".x")

	v := "v" + constraint
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, jsxRuntimeSince) >= 0
}
