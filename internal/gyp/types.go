// Package gyp holds the resolved target graph handed to the generator: the
// abstract target dictionaries, their per-configuration settings, and the set
// of build files the user asked for.
package gyp

import (
	"github.com/node4good/gypninja/internal/errors"
)

// Type is a target type.
type Type string

const (
	StaticLibrary  Type = "static_library"
	SharedLibrary  Type = "shared_library"
	LoadableModule Type = "loadable_module"
	Executable     Type = "executable"
	None           Type = "none"
)

// Valid reports whether t is a known target type.
func (t Type) Valid() bool {
	switch t {
	case StaticLibrary, SharedLibrary, LoadableModule, Executable, None:
		return true
	}
	return false
}

// IsShared reports whether t links as a shared object.
func (t Type) IsShared() bool {
	return t == SharedLibrary || t == LoadableModule
}

// Action is a custom build step.
type Action struct {
	Name    string   `yaml:"action_name"`
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
	Command []string `yaml:"action"`
	Message string   `yaml:"message"`
}

// Copy stages Files into Destination, one output per file.
type Copy struct {
	Destination string   `yaml:"destination"`
	Files       []string `yaml:"files"`
}

// Setting is one make_global_settings entry.
type Setting struct {
	Key   string
	Value string
}

// GlobalSettings is the ordered make_global_settings list. It decodes from a
// list of two-element lists.
type GlobalSettings []Setting

// Lookup returns the last value recorded for key.
func (g GlobalSettings) Lookup(key string) (string, bool) {
	var (
		value string
		found bool
	)
	for _, s := range g {
		if s.Key == key {
			value, found = s.Value, true
		}
	}
	return value, found
}

// Settings are the attributes of a target, either at target level or as a
// configuration override.
type Settings struct {
	Type         Type     `yaml:"type"`
	Sources      []string `yaml:"sources"`
	Dependencies []string `yaml:"dependencies"`
	Actions      []Action `yaml:"actions"`
	Copies       []Copy   `yaml:"copies"`

	Cflags      []string `yaml:"cflags"`
	CflagsC     []string `yaml:"cflags_c"`
	CflagsCC    []string `yaml:"cflags_cc"`
	Ldflags     []string `yaml:"ldflags"`
	Defines     []string `yaml:"defines"`
	IncludeDirs []string `yaml:"include_dirs"`
	Libraries   []string `yaml:"libraries"`

	ProductName      *string `yaml:"product_name"`
	ProductPrefix    *string `yaml:"product_prefix"`
	ProductExtension string  `yaml:"product_extension"`

	MakeGlobalSettings GlobalSettings                    `yaml:"make_global_settings"`
	XcodeSettings      map[string]interface{}            `yaml:"xcode_settings"`
	MSVSSettings       map[string]map[string]interface{} `yaml:"msvs_settings"`
}

// Merge overlays o on s: scalars set in o replace, lists append, maps merge
// key by key. Neither input is modified.
func (s Settings) Merge(o Settings) Settings {
	res := s

	if o.Type != "" {
		res.Type = o.Type
	}
	if o.ProductName != nil {
		res.ProductName = o.ProductName
	}
	if o.ProductPrefix != nil {
		res.ProductPrefix = o.ProductPrefix
	}
	if o.ProductExtension != "" {
		res.ProductExtension = o.ProductExtension
	}

	res.Sources = concat(s.Sources, o.Sources)
	res.Dependencies = concat(s.Dependencies, o.Dependencies)
	res.Actions = append(append([]Action(nil), s.Actions...), o.Actions...)
	res.Copies = append(append([]Copy(nil), s.Copies...), o.Copies...)
	res.Cflags = concat(s.Cflags, o.Cflags)
	res.CflagsC = concat(s.CflagsC, o.CflagsC)
	res.CflagsCC = concat(s.CflagsCC, o.CflagsCC)
	res.Ldflags = concat(s.Ldflags, o.Ldflags)
	res.Defines = concat(s.Defines, o.Defines)
	res.IncludeDirs = concat(s.IncludeDirs, o.IncludeDirs)
	res.Libraries = concat(s.Libraries, o.Libraries)
	res.MakeGlobalSettings = append(append(GlobalSettings(nil), s.MakeGlobalSettings...), o.MakeGlobalSettings...)

	if len(o.XcodeSettings) > 0 {
		res.XcodeSettings = make(map[string]interface{}, len(s.XcodeSettings)+len(o.XcodeSettings))
		for k, v := range s.XcodeSettings {
			res.XcodeSettings[k] = v
		}
		for k, v := range o.XcodeSettings {
			res.XcodeSettings[k] = v
		}
	}

	if len(o.MSVSSettings) > 0 {
		res.MSVSSettings = make(map[string]map[string]interface{}, len(s.MSVSSettings)+len(o.MSVSSettings))
		for tool, opts := range s.MSVSSettings {
			res.MSVSSettings[tool] = opts
		}
		for tool, opts := range o.MSVSSettings {
			merged := make(map[string]interface{}, len(res.MSVSSettings[tool])+len(opts))
			for k, v := range res.MSVSSettings[tool] {
				merged[k] = v
			}
			for k, v := range opts {
				merged[k] = v
			}
			res.MSVSSettings[tool] = merged
		}
	}

	return res
}

func concat(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	res := make([]string, 0, len(a)+len(b))
	res = append(res, a...)
	return append(res, b...)
}

// TargetSpec is one target of the graph: target-level settings plus the
// ordered per-configuration overrides.
type TargetSpec struct {
	Target         string         `yaml:"target"`
	Settings       `yaml:",inline"`
	Configurations Configurations `yaml:"configurations"`
}

// DefaultConfiguration names the configuration of targets that declare none.
const DefaultConfiguration = "Default"

// Resolve returns the settings of t under configuration name. A target
// without configurations has the same settings in every configuration.
func (t *TargetSpec) Resolve(name string) (Settings, error) {
	if t.Configurations.Len() == 0 {
		return t.Settings.Merge(Settings{}), nil
	}

	override, ok := t.Configurations.Get(name)
	if !ok {
		return Settings{}, errors.Configurationf("target %s has no configuration %q", t.Target, name)
	}

	return t.Settings.Merge(override), nil
}

// Configurations is an ordered configuration-name to settings map.
type Configurations struct {
	names  []string
	byName map[string]Settings
}

// NewConfigurations builds an ordered map from parallel name and settings slices.
func NewConfigurations(names []string, settings []Settings) Configurations {
	c := Configurations{byName: make(map[string]Settings, len(names))}
	for i, name := range names {
		c.Set(name, settings[i])
	}
	return c
}

// Set adds or replaces a configuration, keeping first-insertion order.
func (c *Configurations) Set(name string, s Settings) {
	if c.byName == nil {
		c.byName = map[string]Settings{}
	}
	if _, ok := c.byName[name]; !ok {
		c.names = append(c.names, name)
	}
	c.byName[name] = s
}

// Get returns the settings of configuration name.
func (c Configurations) Get(name string) (Settings, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Names returns configuration names in declaration order.
func (c Configurations) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of configurations.
func (c Configurations) Len() int {
	return len(c.names)
}
