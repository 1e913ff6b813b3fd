package amd

import (
	"fmt"

	"github.com/Sumatoshi-tech/amd2esm/pkg/jsast"
)

// visit walks the tree once in document order. Local rewrites are applied
// immediately and their subtrees are not descended into; everything else is
// recorded for resolve and reassemble.
func (c *converter) visit() error {
	var err error

	c.tree.Root.Walk(func(n *jsast.Node) bool {
		if err != nil {
			return false
		}

		var descend bool

		descend, err = c.visitNode(n)

		return err == nil && descend
	})

	return err
}

func (c *converter) visitNode(n *jsast.Node) (bool, error) {
	switch n.Kind {
	case jsast.KindCallExpression:
		return c.visitCall(n)
	case jsast.KindExpressionStatement:
		if isUseStrict(c.tree, n) {
			return false, c.replace(n, "")
		}
	case jsast.KindFunctionDeclaration:
		c.visitFunctionDeclaration(n)
	case jsast.KindObject:
		if c.caps.componentDefinition == nil && isComponentDefinition(c.tree, n) {
			c.caps.componentDefinition = n
		}
	case jsast.KindIdentifier:
		if loop, ok := registrationLoopPattern.match(c.tree, n); ok {
			c.caps.offer(roleRegistrationLoop, loop)
		}
	}

	return true, nil
}

func (c *converter) visitCall(n *jsast.Node) (bool, error) {
	if isNamedDefine(c.tree, n) {
		return false, patternError(c.tree, n, ErrNamedDefine)
	}

	if isDefineUsingIdentifier(c.tree, n) {
		return false, patternError(c.tree, n, ErrDefineByIdentifier)
	}

	definition := c.caps.get(roleDefinition)

	if isSideEffectRequire(c.tree, n, definition) {
		c.sideEffects = append(c.sideEffects, n)

		return true, nil
	}

	if shape := definitionShapeOf(c.tree, n); shape != shapeNone {
		err := c.caps.claim(roleDefinition, n)
		if err != nil {
			return false, patternError(c.tree, n, err)
		}

		c.caps.shape = shape

		return true, nil
	}

	if isSyncRequire(c.tree, n) {
		c.syncRequires = append(c.syncRequires, n)

		return false, nil
	}

	if isRequireWithDynamicModuleName(c.tree, n) {
		return false, patternError(c.tree, n, ErrDynamicModuleName)
	}

	if literal, ok := isRequireJSLiteralCall(c.tree, n); ok {
		return false, c.replace(n, c.tree.Text(literal))
	}

	if kind, ident, ok := componentCall(c.tree, n); ok {
		return false, c.rewriteComponentCall(n, kind, ident)
	}

	return true, nil
}

// rewriteComponentCall turns module.component(fooComponent) into
// module.component('brFooComponent', FooComponent);.
func (c *converter) rewriteComponentCall(call *jsast.Node, kind string, ident *jsast.Node) error {
	name := PascalCase(c.tree.Text(ident))
	text := fmt.Sprintf("module.%s('%s%s', %s)", kind, registeredPrefix, name, name)

	if stmt := call.Parent; stmt.Is(jsast.KindExpressionStatement) {
		return c.replace(stmt, text+";")
	}

	return c.replace(call, text)
}

func (c *converter) visitFunctionDeclaration(n *jsast.Node) {
	switch {
	case functionDeclarationNamed(c.tree, n, fnRegister):
		if looksLikeServiceRegister(c.tree.Text(n)) {
			c.caps.offer(roleServiceRegister, n)
		} else {
			c.caps.offer(roleRegister, n)
		}
	case functionDeclarationNamed(c.tree, n, fnFactory):
		c.caps.offer(roleFactory, n)
	}
}
