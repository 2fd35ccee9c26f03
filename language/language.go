// Package language resolves language identifiers to runtime module sources.
package language

import "sort"

// Source identifies where a language's runtime module comes from: a named
// package in the wasmer registry, or a direct download URL. Exactly one of
// the two is set.
type Source struct {
	pkg string
	url string
}

// RegistrySource returns a Source naming a wasmer registry package.
func RegistrySource(pkg string) Source {
	return Source{pkg: pkg}
}

// URLSource returns a Source naming a direct download URL.
func URLSource(url string) Source {
	return Source{url: url}
}

// Registry returns the registry package reference, if this source is one.
func (s Source) Registry() (string, bool) {
	return s.pkg, s.pkg != ""
}

// Remote returns the download URL, if this source is one.
func (s Source) Remote() (string, bool) {
	return s.url, s.url != ""
}

// packages maps predefined language identifiers to wasmer registry
// packages. Identifiers are case-sensitive and matched exactly.
var packages = map[string]string{
	"python":     "wasmer/python",
	"javascript": "wasmer/quickjs",
	"ruby":       "wasmer/ruby",
}

// Resolve maps a language identifier to its registry source. The second
// return is false for identifiers outside the predefined set; runtimes for
// those must be installed from a URL supplied by the user.
func Resolve(identifier string) (Source, bool) {
	pkg, ok := packages[identifier]
	if !ok {
		return Source{}, false
	}
	return RegistrySource(pkg), true
}

// Supported returns the predefined language identifiers in sorted order.
func Supported() []string {
	langs := make([]string, 0, len(packages))
	for lang := range packages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
