package gyp

// Token is a special path token. Tokens start with '$' so front-ends treat
// them as variables, but they are never valid ninja or shell variables; the
// generator resolves them before writing anything.
type Token int

const (
	// ProductDir is the configuration output directory. Start-anchored.
	ProductDir Token = iota
	// IntermediateDir is the per-target generated-files directory. Start-anchored.
	IntermediateDir
	// ConfigurationName is the active configuration. May appear anywhere.
	ConfigurationName
)

// Tokens lists every token in expansion order.
var Tokens = []Token{ProductDir, IntermediateDir, ConfigurationName}

func (t Token) String() string {
	switch t {
	case ProductDir:
		return "$!PRODUCT_DIR"
	case IntermediateDir:
		return "$!INTERMEDIATE_DIR"
	case ConfigurationName:
		return "$|CONFIGURATION_NAME"
	}
	return ""
}

// Anchored reports whether t may only appear at the start of a path.
func (t Token) Anchored() bool {
	return t != ConfigurationName
}

// GeneratorVariables returns the variables front-ends substitute into target
// dictionaries before handing them over. Platform naming variables are added
// by the platform policy.
func GeneratorVariables() map[string]string {
	return map[string]string{
		"EXECUTABLE_PREFIX":       "",
		"EXECUTABLE_SUFFIX":       "",
		"STATIC_LIB_PREFIX":       "lib",
		"STATIC_LIB_SUFFIX":       ".a",
		"SHARED_LIB_PREFIX":       "lib",
		"INTERMEDIATE_DIR":        IntermediateDir.String(),
		"SHARED_INTERMEDIATE_DIR": ProductDir.String() + "/gen",
		"PRODUCT_DIR":             ProductDir.String(),
		"CONFIGURATION_NAME":      ConfigurationName.String(),
		"RULE_INPUT_ROOT":         "${root}",
		"RULE_INPUT_DIRNAME":      "${dirname}",
		"RULE_INPUT_PATH":         "${source}",
		"RULE_INPUT_EXT":          "${ext}",
		"RULE_INPUT_NAME":         "${name}",
	}
}
