package amd

import (
	"fmt"

	"github.com/Sumatoshi-tech/amd2esm/pkg/jsast"
)

// definitionParts splits the captured definition call into its dependency
// array and factory function; either may be nil.
func (c *converter) definitionParts() (deps, factory *jsast.Node) {
	args := callArgs(c.caps.get(roleDefinition))

	switch c.caps.shape {
	case shapeDepsAndFactory:
		return args[0], args[1]
	case shapeDepsOnly:
		return args[0], nil
	case shapeFactoryOnly:
		return nil, args[0]
	default:
		return nil, nil
	}
}

// resolve builds the dependency table: declared dependencies first, then
// inline requires, then side-effect requires, then names for whatever is
// still unbound.
func (c *converter) resolve() error {
	depsNode, factory := c.definitionParts()

	err := c.declare(depsNode, factory)
	if err != nil {
		return err
	}

	err = c.resolveSyncRequires()
	if err != nil {
		return err
	}

	err = c.resolveSideEffects()
	if err != nil {
		return err
	}

	for _, dep := range c.deps.Entries() {
		if dep.Binding != Unassigned {
			c.names.reserve(dep.Binding)
		}
	}

	for _, dep := range c.deps.Entries() {
		if dep.Binding != Unassigned {
			continue
		}

		name := c.names.componentName(c.unquote(dep.Path))
		c.deps.Assign(dep.Path, name)
		c.components.Record(name)
	}

	return c.deps.checkBindings()
}

// declare pairs the dependency array with the factory parameters.
func (c *converter) declare(depsNode, factory *jsast.Node) error {
	if depsNode == nil {
		return nil
	}

	var params []string
	if factory != nil {
		if param := firstPatternParam(factory); param != nil {
			return patternError(c.tree, param, ErrPatternParameter)
		}

		params = paramNames(c.tree, factory)
	}

	for idx, element := range depsNode.NamedChildren() {
		if !isStringLiteral(element) {
			return patternError(c.tree, element, ErrDynamicModuleName)
		}

		path := c.tree.Text(element)

		binding := Unassigned
		if idx < len(params) {
			binding = params[idx]
		}

		if binding != Unassigned && isComponentParam(binding) {
			binding = PascalCase(binding)
		}

		if c.deps.Add(path, binding) {
			continue
		}

		existing, _ := c.deps.Binding(path)

		switch {
		case existing == binding || binding == Unassigned:
		case existing == Unassigned:
			c.deps.Assign(path, binding)
		default:
			return patternError(c.tree, element,
				fmt.Errorf("%w: %s is bound to both %s and %s", ErrConflictingBinding, path, existing, binding))
		}
	}

	return nil
}

// resolveSyncRequires binds every require('x') and replaces the call with
// the binding.
func (c *converter) resolveSyncRequires() error {
	for _, call := range c.syncRequires {
		arg := callArgs(call)[0]
		path := c.tree.Text(arg)

		binding, ok := c.deps.Binding(path)
		if !ok || binding == Unassigned {
			binding = importNameFor(c.tree.StringValue(arg))
			if !c.deps.Add(path, binding) {
				c.deps.Assign(path, binding)
			}
		}

		err := c.replace(call, binding)
		if err != nil {
			return err
		}
	}

	return nil
}

// resolveSideEffects registers the paths of require([...]) statements and
// removes the statements.
func (c *converter) resolveSideEffects() error {
	for _, call := range c.sideEffects {
		for _, element := range callArgs(call)[0].NamedChildren() {
			if !isStringLiteral(element) {
				return patternError(c.tree, element, ErrDynamicModuleName)
			}

			c.deps.Add(c.tree.Text(element), Unassigned)
		}

		err := c.replace(call.Parent, "")
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *converter) unquote(path string) string {
	if len(path) >= 2 && (path[0] == '\'' || path[0] == '"') && path[len(path)-1] == path[0] {
		return path[1 : len(path)-1]
	}

	return path
}
