package space

import "github.com/roach88/cadcad/internal/ir"

// Operation names recognised by the compiler and the CLI. A Space's table
// may hold any name; these are the ones with built-in element-wise rules.
const (
	OpAdd      = "add"
	OpSub      = "sub"
	OpMul      = "mul"
	OpTrueDiv  = "truediv"
	OpFloorDiv = "floordiv"
	OpMod      = "mod"
	OpPow      = "pow"
	OpAnd      = "and"
	OpOr       = "or"
)

// KnownOperations lists every operation name with a built-in rule.
var KnownOperations = map[string]bool{
	OpAdd:      true,
	OpSub:      true,
	OpMul:      true,
	OpTrueDiv:  true,
	OpFloorDiv: true,
	OpMod:      true,
	OpPow:      true,
	OpAnd:      true,
	OpOr:       true,
}

// BinaryOp combines the data of two points of the same space. The result
// is validated as a point of that space by Point.Apply.
type BinaryOp func(a, b ir.Object) (ir.Object, error)
