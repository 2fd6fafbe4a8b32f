package generator

import (
	"github.com/node4good/gypninja/internal/errors"
	"github.com/node4good/gypninja/internal/gyp"
)

// resolver computes target outputs along dependency edges. Each result is
// memoized per target; the visiting set turns a cycle through pure
// aggregators into an error instead of unbounded recursion.
type resolver struct {
	targets map[string]*target

	outputs  map[string][]string
	libs     map[string][]string
	visiting map[string]bool
	stack    []string
}

func newResolver(targets []*target) *resolver {
	r := &resolver{
		targets:  make(map[string]*target, len(targets)),
		outputs:  make(map[string][]string, len(targets)),
		libs:     make(map[string][]string, len(targets)),
		visiting: make(map[string]bool),
	}
	for _, t := range targets {
		r.targets[t.name] = t
	}
	return r
}

// resolveAll fills in output, depOutputs and forwarded for every target, in
// order. After it returns rendering only reads the targets.
func (r *resolver) resolveAll(targets []*target) error {
	for _, t := range targets {
		out, err := r.output(t.name)
		if err != nil {
			return t.fail(err)
		}
		t.output = out

		if t.depOutputs, err = r.deps(t.name); err != nil {
			return t.fail(err)
		}

		if t.settings.Type == gyp.StaticLibrary || t.settings.Type == gyp.None {
			continue
		}
		if t.forwarded, err = r.forwardedLibraries(t.name); err != nil {
			return t.fail(err)
		}
	}
	return nil
}

func (r *resolver) enter(name string) error {
	if r.visiting[name] {
		start := 0
		for i, n := range r.stack {
			if n == name {
				start = i
				break
			}
		}
		path := append(append([]string(nil), r.stack[start:]...), name)
		return errors.Cycle(path)
	}
	r.visiting[name] = true
	r.stack = append(r.stack, name)
	return nil
}

func (r *resolver) leave(name string) {
	delete(r.visiting, name)
	r.stack = r.stack[:len(r.stack)-1]
}

// output is the target's own outputs or, for a pure aggregator, the outputs
// of its dependencies.
func (r *resolver) output(name string) ([]string, error) {
	if out, ok := r.outputs[name]; ok {
		return out, nil
	}

	t := r.targets[name]
	if err := r.enter(name); err != nil {
		return nil, err
	}
	defer r.leave(name)

	out, err := t.ownOutputs()
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		if out, err = r.deps(name); err != nil {
			return nil, err
		}
	}

	r.outputs[name] = out
	return out, nil
}

// deps concatenates the outputs of every direct dependency, in declaration
// order. Repeats are kept.
func (r *resolver) deps(name string) ([]string, error) {
	var res []string
	for _, dep := range r.targets[name].deps {
		out, err := r.output(dep)
		if err != nil {
			return nil, err
		}
		res = append(res, out...)
	}
	return res, nil
}

// forwardedLibraries collects the libraries declared by static library
// dependencies, reached through static libraries and aggregators, which
// archives cannot carry themselves.
func (r *resolver) forwardedLibraries(name string) ([]string, error) {
	var res []string
	for _, dep := range r.targets[name].deps {
		t := r.targets[dep]
		if t.settings.Type != gyp.StaticLibrary && t.settings.Type != gyp.None {
			continue
		}

		libs, err := r.carried(dep)
		if err != nil {
			return nil, err
		}
		res = append(res, libs...)
	}
	return res, nil
}

// carried is the libraries a static library or aggregator passes on.
func (r *resolver) carried(name string) ([]string, error) {
	if libs, ok := r.libs[name]; ok {
		return libs, nil
	}

	if err := r.enter(name); err != nil {
		return nil, err
	}
	defer r.leave(name)

	libs, err := r.forwardedLibraries(name)
	if err != nil {
		return nil, err
	}
	if t := r.targets[name]; t.settings.Type == gyp.StaticLibrary {
		libs = append(append([]string(nil), t.settings.Libraries...), libs...)
	}

	r.libs[name] = libs
	return libs, nil
}
