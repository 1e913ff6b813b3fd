package amd

import "github.com/Sumatoshi-tech/amd2esm/pkg/jsast"

// ancestorStep matches one ancestor level. An empty kinds list matches any
// kind; check, when set, must also hold.
type ancestorStep struct {
	label string
	kinds []string
	check func(tree *jsast.Tree, n *jsast.Node) bool
}

// ancestorPattern matches a fixed chain of ancestors above a leaf node and
// yields the ancestor at the last step.
type ancestorPattern struct {
	name  string
	leaf  func(tree *jsast.Tree, n *jsast.Node) bool
	steps []ancestorStep
}

// match walks one parent per step. It returns the ancestor matched by the
// final step.
func (p ancestorPattern) match(tree *jsast.Tree, n *jsast.Node) (*jsast.Node, bool) {
	if p.leaf != nil && !p.leaf(tree, n) {
		return nil, false
	}

	cur := n

	for _, step := range p.steps {
		cur = cur.Parent
		if cur == nil {
			return nil, false
		}

		if len(step.kinds) > 0 && !cur.Is(step.kinds...) {
			return nil, false
		}

		if step.check != nil && !step.check(tree, cur) {
			return nil, false
		}
	}

	return cur, true
}

// registrationLoopPattern recognizes
//
//	Array.prototype.slice.call(arguments, 1).forEach(function (register) {
//	  register(module);
//	});
//
// starting from the `module` argument of register and capturing the
// forEach statement. The callback parameter name is not checked.
var registrationLoopPattern = ancestorPattern{
	name: "registration-loop",
	leaf: func(tree *jsast.Tree, n *jsast.Node) bool {
		return n.Is(jsast.KindIdentifier) && tree.Text(n) == objectModule
	},
	steps: []ancestorStep{
		{label: "register arguments", kinds: []string{jsast.KindArguments}},
		{label: "register call", kinds: []string{jsast.KindCallExpression}, check: func(tree *jsast.Tree, n *jsast.Node) bool {
			return calleeName(tree, n) == calleeRegister
		}},
		{label: "register statement", kinds: []string{jsast.KindExpressionStatement}},
		{label: "callback body", kinds: []string{jsast.KindStatementBlock}},
		{label: "callback", kinds: []string{jsast.KindFunction, jsast.KindFunctionExpression, jsast.KindArrowFunction}},
		{label: "forEach arguments", kinds: []string{jsast.KindArguments}},
		{label: "forEach call", kinds: []string{jsast.KindCallExpression}, check: func(tree *jsast.Tree, n *jsast.Node) bool {
			_, method, ok := calleeMember(tree, n)

			return ok && method == methodForEach
		}},
		{label: "forEach statement", kinds: []string{jsast.KindExpressionStatement}},
	},
}
