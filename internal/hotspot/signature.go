package hotspot

import (
	"fmt"

	"github.com/funvibe/funmat/internal/types"
)

// Signature is one half of a counter row: a function specialization
// ("name(argstr)"), a loop ("_loop<id>") or an interpreted context
// ("_interpreted<id>").
type Signature string

// FuncSignature builds the signature of a function specialization from
// its name and input argument types.
func FuncSignature(name string, argTypes types.TypeSetString) Signature {
	return Signature(name + argTypes.ArgString())
}

// LoopSignature builds the signature of a profiled loop.
func LoopSignature(id int) Signature {
	return Signature(fmt.Sprintf("_loop%d", id))
}

// InterpSignature builds the signature of an interpreted-call context.
func InterpSignature(id int) Signature {
	return Signature(fmt.Sprintf("_interpreted%d", id))
}

// rowKey builds the CSV row key for a calling/callee pair. Both sides
// are quoted because argument strings contain commas.
func rowKey(calling, callee Signature) string {
	return fmt.Sprintf("%q,%q", string(calling), string(callee))
}
