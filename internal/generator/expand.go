package generator

import (
	"strings"

	"github.com/node4good/gypninja/internal/gyp"
	"github.com/node4good/gypninja/internal/paths"
	"github.com/node4good/gypninja/internal/platform"
)

// expander resolves special path tokens and source paths for one target in
// one configuration.
type expander struct {
	policy platform.Policy
	rel    *paths.Relativizer

	config     string
	configDir  string
	srcDir     string
	intPostfix string
}

// Expand resolves p with the product directory at ".".
func (e *expander) Expand(p string) string {
	return e.ExpandFrom(p, ".")
}

// ExpandFrom resolves the special tokens of p, placing the product directory
// at productDir. With productDir "." the token and one separator after it
// are dropped, keeping paths free of a leading "./".
func (e *expander) ExpandFrom(p, productDir string) string {
	if productDir == "" {
		productDir = "."
	}

	product := gyp.ProductDir.String()
	if productDir == "." {
		p = strings.ReplaceAll(p, product+"/", "")
		p = strings.ReplaceAll(p, product+`\`, "")
	}
	p = strings.ReplaceAll(p, product, productDir)

	if intermediate := gyp.IntermediateDir.String(); strings.Contains(p, intermediate) {
		p = strings.ReplaceAll(p, intermediate, paths.Join(productDir, e.intPostfix, "gen"))
	}

	p = strings.ReplaceAll(p, gyp.ConfigurationName.String(), e.config)

	return e.policy.NativePath(p)
}

// SrcPath resolves p, declared relative to the target's build file, into a
// path relative to the configuration directory. Token-anchored and absolute
// paths are only expanded.
func (e *expander) SrcPath(p string) string {
	if strings.HasPrefix(p, "$!") {
		return e.Expand(p)
	}

	p = e.Expand(p)
	if paths.IsAbs(p) {
		return p
	}

	return e.policy.NativePath(e.rel.Rel(e.configDir, paths.Join(e.srcDir, p)))
}

// Rel is the configuration-relative form of p, which is relative to the
// working directory.
func (e *expander) Rel(p string) string {
	return e.policy.NativePath(e.rel.Rel(e.configDir, p))
}

// join joins path elements and converts the result to native separators.
func (e *expander) join(elem ...string) string {
	return e.policy.NativePath(paths.Join(elem...))
}
