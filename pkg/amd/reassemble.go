package amd

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/amd2esm/pkg/beautify"
	"github.com/Sumatoshi-tech/amd2esm/pkg/jsast"
)

const (
	keywordFunction = "function"
	exportDefault   = "export default "
)

// reassemble rewrites the captured declarations, builds the import block and
// splices imports plus factory body over the module definition statement.
func (c *converter) reassemble() error {
	for _, step := range []func() error{
		c.rewriteRegistrationLoop,
		c.rewriteRegister,
		c.removeServiceRegister,
		c.rewriteFactory,
	} {
		err := step()
		if err != nil {
			return err
		}
	}

	_, factory := c.definitionParts()

	body := ""
	if factory != nil {
		var err error

		body, err = c.moduleBody(factory)
		if err != nil {
			return err
		}
	}

	code := joinSections(c.importBlock(), body)

	if c.opts.Beautify {
		formatter := c.opts.Formatter
		if formatter == nil {
			formatter = beautify.New()
		}

		formatted, err := formatter.Format(code)
		if err != nil {
			return fmt.Errorf("beautify: %w", err)
		}

		code = formatted
	}

	def := c.caps.get(roleDefinition)
	if def.Parent.Is(jsast.KindExpressionStatement) {
		return c.replace(def.Parent, code)
	}

	return c.replace(def, code)
}

func (c *converter) rewriteRegistrationLoop() error {
	loop := c.caps.get(roleRegistrationLoop)
	if loop == nil {
		return nil
	}

	names := c.components.Names()
	if len(names) == 0 {
		return patternError(c.tree, loop, fmt.Errorf("%w: registration loop without imported components", ErrInternal))
	}

	var sb strings.Builder

	for _, name := range names {
		kind, ok := componentKind(name)
		if !ok {
			return patternError(c.tree, loop, fmt.Errorf("%w: %s", ErrUnknownComponentKind, name))
		}

		fmt.Fprintf(&sb, "module.%s('%s%s', %s);\n", kind, registeredPrefix, name, name)
	}

	return c.replace(loop, sb.String())
}

func (c *converter) rewriteRegister() error {
	register := c.caps.get(roleRegister)
	if register == nil {
		return nil
	}

	definition := c.caps.componentDefinition
	if definition == nil {
		return patternError(c.tree, register, fmt.Errorf("%w: register function without a component definition", ErrInternal))
	}

	return c.replace(register, exportDefault+c.text(definition)+";")
}

func (c *converter) removeServiceRegister() error {
	register := c.caps.get(roleServiceRegister)
	if register == nil {
		return nil
	}

	return c.replace(register, "")
}

func (c *converter) rewriteFactory() error {
	factory := c.caps.get(roleFactory)
	if factory == nil {
		return nil
	}

	if strings.HasPrefix(c.tree.Text(factory), keywordFunction) {
		return c.replaceRange(factory.Start, factory.Start+len(keywordFunction), exportDefault+keywordFunction)
	}

	// async function factory() {}
	return c.replaceRange(factory.Start, factory.Start, exportDefault)
}

// moduleBody strips the return keywords of the factory's top-level return
// statements and returns the body text between the braces.
func (c *converter) moduleBody(factory *jsast.Node) (string, error) {
	block := factory.Field("body")
	if !block.Is(jsast.KindStatementBlock) {
		return "", patternError(c.tree, factory, fmt.Errorf("%w: factory without a statement block", ErrInternal))
	}

	for _, stmt := range block.NamedChildren() {
		if !stmt.Is(jsast.KindReturnStatement) {
			continue
		}

		err := c.stripReturn(stmt)
		if err != nil {
			return "", err
		}
	}

	return trimBody(c.editor.Text(block.Start+1, block.End-1)), nil
}

// stripReturn erases the return keyword and the whitespace after it. A bare
// return is removed entirely.
func (c *converter) stripReturn(stmt *jsast.Node) error {
	value := stmt.NamedChildren()
	if len(value) == 0 {
		return c.replace(stmt, "")
	}

	return c.replaceRange(stmt.Start, value[0].Start, "")
}

func (c *converter) importBlock() string {
	entries := c.deps.Entries()
	lines := make([]string, 0, len(entries))

	for _, dep := range entries {
		lines = append(lines, fmt.Sprintf("import %s from %s;", dep.Binding, dep.Path))
	}

	return strings.Join(lines, "\n")
}

// trimBody drops trailing whitespace and leading blank lines, keeping the
// indentation of the first non-blank line.
func trimBody(body string) string {
	body = strings.TrimRight(body, " \t\r\n")

	lead := len(body) - len(strings.TrimLeft(body, " \t\r\n"))
	if nl := strings.LastIndexByte(body[:lead], '\n'); nl >= 0 {
		return body[nl+1:]
	}

	return body[lead:]
}

func joinSections(imports, body string) string {
	switch {
	case imports == "":
		return body
	case body == "":
		return imports
	default:
		return imports + "\n\n" + body
	}
}
