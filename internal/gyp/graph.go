package gyp

import (
	"gopkg.in/yaml.v3"

	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/sys"
	"github.com/node4good/gypninja/internal/utils"
)

// Graph is the full set of targets plus the build files originally
// requested, which select the default build set.
type Graph struct {
	BuildFiles  []string     `yaml:"build_files"`
	TopLevelDir string       `yaml:"toplevel_dir"`
	Targets     []TargetSpec `yaml:"targets"`

	index map[string]int
}

// Parse decodes a YAML or JSON graph document and validates its references.
func Parse(data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode target graph"), errors.ErrConfiguration)
	}

	if err := g.Index(); err != nil {
		return nil, err
	}

	return &g, nil
}

// Load reads and parses the graph document at path.
func Load(fsys sys.FS, path string) (*Graph, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.IO(err, path)
	}

	g, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}

	return g, nil
}

// Index normalizes target names to their qualified form, builds the name
// index and checks that every declared dependency exists.
func (g *Graph) Index() error {
	if len(g.Targets) == 0 {
		return errors.Configurationf("no targets to build")
	}

	g.index = make(map[string]int, len(g.Targets))
	for i := range g.Targets {
		t := &g.Targets[i]

		q := utils.ParseTarget(t.Target)
		if q.Name == "" {
			return errors.Configurationf("target #%d has no name", i)
		}
		if q.Toolset != utils.ToolsetTarget && q.Toolset != utils.ToolsetHost {
			return errors.Configurationf("target %s has unknown toolset %q", t.Target, q.Toolset)
		}

		t.Target = q.String()
		if _, dup := g.index[t.Target]; dup {
			return errors.Configurationf("target %s is declared twice", t.Target)
		}
		g.index[t.Target] = i
	}

	for i := range g.Targets {
		t := &g.Targets[i]
		for j, dep := range t.Dependencies {
			name := utils.ParseTarget(dep).String()
			if _, ok := g.index[name]; !ok {
				return errors.Configurationf("target %s depends on unknown target %s", t.Target, dep)
			}
			t.Dependencies[j] = name
		}
	}

	return nil
}

// Lookup finds a target by qualified name.
func (g *Graph) Lookup(name string) (*TargetSpec, bool) {
	if g.index == nil {
		if err := g.Index(); err != nil {
			return nil, false
		}
	}

	i, ok := g.index[utils.ParseTarget(name).String()]
	if !ok {
		return nil, false
	}
	return &g.Targets[i], true
}

// TargetList returns qualified target names in declaration order.
func (g *Graph) TargetList() []string {
	names := make([]string, len(g.Targets))
	for i, t := range g.Targets {
		names[i] = t.Target
	}
	return names
}

// ConfigurationNames returns the configurations of the first target, which
// define the configurations generated.
func (g *Graph) ConfigurationNames() []string {
	if len(g.Targets) == 0 {
		return nil
	}
	if g.Targets[0].Configurations.Len() == 0 {
		return []string{DefaultConfiguration}
	}
	return g.Targets[0].Configurations.Names()
}

// UnmarshalYAML keeps configuration declaration order.
func (c *Configurations) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Newf("line %d: configurations must be a mapping", node.Line)
	}

	*c = Configurations{byName: make(map[string]Settings, len(node.Content)/2)}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var s Settings
		if err := node.Content[i+1].Decode(&s); err != nil {
			return errors.Wrapf(err, "configuration %s", node.Content[i].Value)
		}
		c.Set(node.Content[i].Value, s)
	}

	return nil
}

// UnmarshalYAML decodes [[key, value], ...].
func (g *GlobalSettings) UnmarshalYAML(node *yaml.Node) error {
	var pairs [][]string
	if err := node.Decode(&pairs); err != nil {
		return errors.Wrap(err, "make_global_settings must be a list of [key, value] pairs")
	}

	res := make(GlobalSettings, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) != 2 {
			return errors.Newf("line %d: make_global_settings entry %v is not a [key, value] pair", node.Line, pair)
		}
		res = append(res, Setting{Key: pair[0], Value: pair[1]})
	}

	*g = res
	return nil
}
