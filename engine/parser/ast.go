package parser

import (
	"strconv"
	"strings"
)

// Node is a condition expression tree node.
type Node interface {
	Pos() int
	String() string
}

// Literal is a boolean or numeric constant. Value is bool or float64.
type Literal struct {
	Value any
	At    int
}

// Path addresses a variable slot, e.g. relationships.mara.
type Path struct {
	Segments []string
	At       int
}

// Unary is a prefix operator application: "!", "-" or "+".
type Unary struct {
	Op string
	X  Node
	At int
}

// Binary is an infix operator application.
type Binary struct {
	Op   string
	X, Y Node
	At   int
}

func (n *Literal) Pos() int { return n.At }
func (n *Path) Pos() int    { return n.At }
func (n *Unary) Pos() int   { return n.At }
func (n *Binary) Pos() int  { return n.At }

func (n *Literal) String() string {
	switch v := n.Value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "?"
}

func (n *Path) String() string   { return strings.Join(n.Segments, ".") }
func (n *Unary) String() string  { return "(" + n.Op + n.X.String() + ")" }
func (n *Binary) String() string { return "(" + n.X.String() + " " + n.Op + " " + n.Y.String() + ")" }

// Statement is one effect mutation.
type Statement interface {
	Slot() *Path
	String() string
}

// Assign writes a literal into a slot: path = value.
type Assign struct {
	Target *Path
	Value  *Literal
}

// Increment adds to or subtracts from a numeric slot: path += n, path -= n.
type Increment struct {
	Target *Path
	Op     string // "+=" or "-="
	Amount float64
}

func (s *Assign) Slot() *Path    { return s.Target }
func (s *Increment) Slot() *Path { return s.Target }

func (s *Assign) String() string { return s.Target.String() + " = " + s.Value.String() }
func (s *Increment) String() string {
	return s.Target.String() + " " + s.Op + " " + strconv.FormatFloat(s.Amount, 'g', -1, 64)
}

// Delta returns the signed amount the increment applies.
func (s *Increment) Delta() float64 {
	if s.Op == "-=" {
		return -s.Amount
	}
	return s.Amount
}
