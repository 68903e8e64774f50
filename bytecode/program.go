// Package bytecode defines the immutable, compiled input the VM
// consumes: constants pool, function table, and the call-expression
// table used by the Call opcode. Nothing in this package executes
// anything; it is pure data, produced by an out-of-scope compiler.
package bytecode

import (
	"fmt"

	"github.com/wudi/triggervm/opcode"
)

// SourceHandle identifies the source a Program (or a piece of it) came
// from. It is a small comparable value, not a pointer, so that two
// handles loaded for the same physical source compare equal by plain
// `==` — this backs the private-visibility check in spec.md §5.
type SourceHandle struct {
	Kind string // e.g. "file", "string", "repl-line"
	Path string
}

func (h SourceHandle) String() string {
	if h.Path == "" {
		return h.Kind
	}
	return fmt.Sprintf("%s:%s", h.Kind, h.Path)
}

// CodeSpan is a byte-offset range into a source's text.
type CodeSpan struct {
	Start int
	End   int
}

// InternalSpan marks code areas synthesised by the VM itself rather
// than coming from any user-written source (e.g. synthetic error
// values bound by a catch handler).
var InternalSpan = CodeSpan{Start: -1, End: -1}

// CodeArea pairs a span with the source it belongs to. Every Value
// carries one for diagnostics (spec.md §3).
type CodeArea struct {
	Span CodeSpan
	Src  SourceHandle
}

// ConstKind discriminates the constant-pool entry shapes the compiler
// can emit. The pool only ever holds scalar literals; compound values
// (arrays, dicts) are always built at runtime by opcodes.
type ConstKind byte

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstString
	ConstEmpty
	ConstObjectKey
)

// Constant is one constant-pool entry.
type Constant struct {
	Kind   ConstKind
	Int    int64
	Float  float64
	Bool   bool
	String string
}

// ArgExpr is one argument descriptor inside a CallExpr: the register
// holding the argument value and whether it is passed by reference
// ("as-ref").
type ArgExpr struct {
	Reg   uint8
	AsRef bool
}

// NamedArgExpr is a named-argument descriptor.
type NamedArgExpr struct {
	Name string
	Reg  uint8
	AsRef bool
}

// CallExpr describes one call site's positional and named arguments
// (spec.md §6). The return destination is the Call opcode's own B
// operand, not part of this table — see opcode.go's Call comment.
type CallExpr struct {
	Positional []ArgExpr
	Named      []NamedArgExpr
}

// CapturedRegister describes one register a macro closes over: the
// register index in the *defining* frame that the value is captured
// from.
type CapturedRegister struct {
	Reg uint8
}

// FuncAttrs carries boolean attributes the compiler attaches to a
// function (e.g. "is a macro method", "is a module's top level").
type FuncAttrs struct {
	IsMethod bool
}

// Function is one compiled function: its opcode stream, the
// opcode-index to span map the compiler produced for diagnostics, its
// register budget, and its capture descriptor list (used when a
// CreateMacro opcode inside it builds a closure over an *enclosing*
// function's registers — captures always refer to the frame that is
// executing the CreateMacro opcode, not to this function's own frame).
type Function struct {
	Name      string
	Opcodes   []opcode.Instruction
	Spans     []CodeSpan // parallel to Opcodes
	RegsUsed  uint8
	Captures  []CapturedRegister
	EntrySpan CodeSpan
	Attrs     FuncAttrs

	// Params names the registers a call binds positional and named
	// arguments into (register len(captures)+i <- Params[i]; a macro's
	// captured cells occupy the leading registers), so the VM's Call
	// opcode can resolve named arguments without the compiler needing
	// a separate name table. Not named by spec.md's function-table
	// field list explicitly, but required to implement the Call
	// opcode it does name (see DESIGN.md).
	Params []string
}

// Program is the VM's entire immutable input: a source handle, a
// constant pool, a function table, and the call-expression table the
// Call opcode indexes into.
type Program struct {
	Src       SourceHandle
	Constants []Constant
	Functions []Function
	Calls     []CallExpr
}

func (p *Program) GetConstant(id uint32) *Constant {
	return &p.Constants[id]
}

func (p *Program) GetFunction(id uint32) *Function {
	return &p.Functions[id]
}

func (p *Program) GetCall(id uint32) *CallExpr {
	return &p.Calls[id]
}

// FuncCoord names one function within one program by shared pointer —
// a plain Go pointer stands in for the original's Rc<Program>, since
// Go's GC already keeps the Program alive for as long as any Macro
// value references it (spec.md §4.B: "referenced by shared ownership
// ... may outlive the call").
type FuncCoord struct {
	Program *Program
	Func    uint32
}

func (f FuncCoord) Equal(o FuncCoord) bool {
	return f.Program == o.Program && f.Func == o.Func
}
