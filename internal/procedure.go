package internal

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Procedure is an immutable chain of stages. Extending a procedure returns a
// new one that shares the receiver's stages, so a procedure can safely serve
// as the common prefix of many endpoints.
type Procedure struct {
	tail *procNode
}

type procNode struct {
	parent   *procNode
	provides map[string]reflect.Type
	stage    Stage
	depth    int
}

// Base returns the empty procedure.
func Base() Procedure {
	return Procedure{}
}

// Extend appends s. It panics when s requires a local that the procedure does
// not guarantee, or provides a local the procedure already guarantees with a
// different type. Both are contract bugs that must fail at startup.
func (p Procedure) Extend(s Stage) Procedure {
	if s.Run == nil {
		panic(fmt.Sprintf("newsdesk: stage %q has no Run func", s.Name))
	}
	if s.Name == "" {
		s.Name = fmt.Sprintf("stage_%d", p.Len())
	}

	var guaranteed map[string]reflect.Type
	if p.tail != nil {
		guaranteed = p.tail.provides
	}

	var missing []string
	for _, d := range s.Requires {
		if t, ok := guaranteed[d.Name]; !ok || t != d.Type {
			missing = append(missing, d.String())
		}
	}
	if len(missing) > 0 {
		panic(fmt.Sprintf("newsdesk: stage %q requires %s, which the procedure does not guarantee",
			s.Name, strings.Join(missing, ", ")))
	}

	provides := make(map[string]reflect.Type, len(guaranteed)+len(s.Provides))
	for name, t := range guaranteed {
		provides[name] = t
	}
	for _, d := range s.Provides {
		if t, ok := provides[d.Name]; ok && t != d.Type {
			panic(fmt.Sprintf("newsdesk: stage %q provides %s, but the procedure already guarantees %s(%s)",
				s.Name, d, d.Name, t))
		}
		provides[d.Name] = d.Type
	}

	s.Provides = slices.Clone(s.Provides)
	s.Requires = slices.Clone(s.Requires)

	return Procedure{tail: &procNode{
		parent:   p.tail,
		stage:    s,
		provides: provides,
		depth:    p.Len() + 1,
	}}
}

// Len returns the number of stages.
func (p Procedure) Len() int {
	if p.tail == nil {
		return 0
	}
	return p.tail.depth
}

// Stages returns the stages in execution order.
func (p Procedure) Stages() []Stage {
	out := make([]Stage, p.Len())
	for n := p.tail; n != nil; n = n.parent {
		out[n.depth-1] = n.stage
	}
	return out
}

// Provides returns the guaranteed locals, sorted by name.
func (p Procedure) Provides() []Decl {
	if p.tail == nil {
		return nil
	}
	out := make([]Decl, 0, len(p.tail.provides))
	for name, t := range p.tail.provides {
		out = append(out, Decl{Name: name, Type: t})
	}
	slices.SortFunc(out, func(a, b Decl) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Guarantees reports whether d is available to stages appended to p.
func (p Procedure) Guarantees(d Decl) bool {
	t, ok := p.lookup(d.Name)
	return ok && t == d.Type
}

func (p Procedure) lookup(name string) (reflect.Type, bool) {
	if p.tail == nil {
		return nil, false
	}
	t, ok := p.tail.provides[name]
	return t, ok
}
