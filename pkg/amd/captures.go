package amd

import (
	"fmt"

	"github.com/Sumatoshi-tech/amd2esm/pkg/jsast"
)

// role names a node the converter remembers during traversal.
type role int

const (
	roleDefinition role = iota
	roleRegister
	roleServiceRegister
	roleFactory
	roleRegistrationLoop
	roleCount
)

func (r role) String() string {
	switch r {
	case roleDefinition:
		return "module definition"
	case roleRegister:
		return "register function"
	case roleServiceRegister:
		return "service register function"
	case roleFactory:
		return "factory function"
	case roleRegistrationLoop:
		return "registration loop"
	default:
		return "unknown"
	}
}

// captures holds at most one node per role. The tree owns the nodes.
// Roles other than the definition are first offered as candidates and only
// claimed once a definition is known, so plain scripts that happen to use
// the same names are left alone.
type captures struct {
	slots      [roleCount]*jsast.Node
	candidates [roleCount][]*jsast.Node
	// componentDefinition is the first module.<x>(..., {...}) object literal.
	componentDefinition *jsast.Node
	shape               definitionShape
}

// claim fills the slot for r, failing if it is already taken.
func (c *captures) claim(r role, n *jsast.Node) error {
	if c.slots[r] != nil {
		if r == roleDefinition {
			return ErrDuplicateDefinition
		}

		return fmt.Errorf("%w: %s", ErrDuplicateCapture, r)
	}

	c.slots[r] = n

	return nil
}

// offer records n as a candidate for r.
func (c *captures) offer(r role, n *jsast.Node) {
	c.candidates[r] = append(c.candidates[r], n)
}

// claimCandidates claims every offered node in role order. The first
// conflicting node is returned with the error.
func (c *captures) claimCandidates() (*jsast.Node, error) {
	for r := range roleCount {
		for _, n := range c.candidates[r] {
			err := c.claim(r, n)
			if err != nil {
				return n, err
			}
		}
	}

	return nil, nil
}

func (c *captures) get(r role) *jsast.Node {
	return c.slots[r]
}

func (c *captures) claimed() []string {
	var out []string

	for r := range roleCount {
		if c.slots[r] != nil {
			out = append(out, r.String())
		}
	}

	return out
}
