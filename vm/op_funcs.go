package vm

import (
	"github.com/wudi/triggervm/bytecode"
	"github.com/wudi/triggervm/execctx"
	"github.com/wudi/triggervm/opcode"
	"github.com/wudi/triggervm/value"
	"github.com/wudi/triggervm/vmerr"
)

func (v *VM) execFuncs(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP

	switch inst.Op {
	case opcode.OpCreateMacro:
		captures := make([]*value.Cell, len(inst.Regs))
		for i, r := range inst.Regs {
			captures[i] = v.cell(r)
		}
		v.bind(inst.B, value.Macro(value.MacroData{
			Func:     bytecode.FuncCoord{Program: v.Program, Func: inst.Func},
			Captures: captures,
			Defaults: map[string]*value.Cell{},
		}), ip)

	case opcode.OpPushMacroDefault:
		return v.pushMacroDefault(inst)

	case opcode.OpMarkMacroMethod:
		md, ok := v.get(inst.A).Data.(value.MacroData)
		if !ok {
			return vmerr.TypeMismatch(v.area(ip), v.callStack(), v.get(inst.A).Kind.String(), "macro", "mark-method")
		}
		md.IsMethod = true
		v.writeInPlace(inst.A, value.Macro(md), ip)

	case opcode.OpCall:
		return v.execCall(inst)

	case opcode.OpRunBuiltin:
		return v.execRunBuiltin(inst)

	case opcode.OpMakeTriggerFunc:
		v.bind(inst.A, value.TriggerFunction(value.TriggerFunctionData{
			Group:       ctx.Group,
			PrevContext: ctx.PrevGroup,
		}), ip)

	case opcode.OpCallTriggerFunc:
		return v.execCallTriggerFunc(inst)
	}
	return nil
}

func (v *VM) pushMacroDefault(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	md, ok := v.get(inst.A).Data.(value.MacroData)
	if !ok {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), v.get(inst.A).Kind.String(), "macro", "push-default")
	}
	name := v.Program.GetConstant(inst.Const).String
	defaults := make(map[string]*value.Cell, len(md.Defaults)+1)
	for k, c := range md.Defaults {
		defaults[k] = c
	}
	defaults[name] = value.DeepClone(v.cell(inst.C))
	md.Defaults = defaults
	v.writeInPlace(inst.A, value.Macro(md), ip)
	return nil
}

// execCall binds a call-expression's arguments into a fresh register
// file and pushes a new full context for the callee (spec.md §4.D,
// §6). The caller's own context is left parked, alive, at the call
// site — instruction.go's IsBranch marks Call so the dispatch loop
// does not also advance it; the return protocol (finishCurrentContext)
// does that exactly once, when the callee actually returns.
func (v *VM) execCall(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	callee := v.get(inst.A)
	if callee.Kind != value.KindMacro {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), callee.Kind.String(), "macro", "call")
	}
	md := callee.Data.(value.MacroData)
	fn := md.Func.Program.GetFunction(md.Func.Func)
	callExpr := v.Program.GetCall(inst.Call)

	regs := make([]*value.Cell, fn.RegsUsed)
	bound := make([]bool, fn.RegsUsed)
	for i := range regs {
		regs[i] = value.NewCell(value.Empty().WithArea(v.area(ip)))
	}
	// Captured registers occupy the leading slots of the callee's frame,
	// in the order CreateMacro recorded them (bytecode.Function.Captures
	// describes the *shape*; md.Captures holds the actual cells this
	// particular closure grabbed when it was created). Named parameters
	// follow immediately after the captures.
	numCaptures := len(md.Captures)
	for i, capCell := range md.Captures {
		if i >= len(regs) {
			break
		}
		regs[i] = capCell
		bound[i] = true
	}

	paramReg := func(name string) (int, bool) {
		for i, p := range fn.Params {
			if p == name {
				return numCaptures + i, true
			}
		}
		return -1, false
	}

	for i, arg := range callExpr.Positional {
		r := numCaptures + i
		if r >= len(regs) {
			break
		}
		bindArg(regs, bound, r, opcode.Register(arg.Reg), arg.AsRef, v, ip)
	}
	for _, arg := range callExpr.Named {
		r, ok := paramReg(arg.Name)
		if !ok {
			return vmerr.ArgMismatch(v.area(ip), v.callStack(), "unknown parameter "+arg.Name)
		}
		bindArg(regs, bound, r, opcode.Register(arg.Reg), arg.AsRef, v, ip)
	}
	for i, name := range fn.Params {
		r := numCaptures + i
		if bound[r] || r >= len(regs) {
			continue
		}
		if def, ok := md.Defaults[name]; ok {
			regs[r] = value.DeepClone(def)
			bound[r] = true
		}
	}

	argCount := len(callExpr.Positional) + len(callExpr.Named)
	newCtx := &execctx.Context{Registers: regs, IP: 0, Group: ctx.Group}
	dest := uint8(inst.B)
	full := execctx.NewFullContext(newCtx, execctx.CallInfo{
		Func:       md.Func,
		ReturnDest: &dest,
		ArgCount:   argCount,
	})
	v.Contexts.PushFull(full)
	return nil
}

func bindArg(regs []*value.Cell, bound []bool, destIdx int, srcReg opcode.Register, asRef bool, v *VM, ip int) {
	src := v.cell(srcReg)
	if asRef {
		regs[destIdx] = src
	} else {
		regs[destIdx] = value.DeepClone(src)
	}
	bound[destIdx] = true
}

func (v *VM) execRunBuiltin(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	name := v.Program.GetConstant(inst.Const).String
	args := make([]value.Value, len(inst.Regs))
	for i, r := range inst.Regs {
		args[i] = v.get(r)
	}
	r, err := v.Builtins.Call(name, args, v.opsCtx(ip))
	if err != nil {
		return err
	}
	v.bind(inst.A, r, ip)
	return nil
}

// execCallTriggerFunc invokes a trigger-function value. When the
// compiler has marked it divergent, both the calling group and the
// trigger-function's own group continue as siblings (the merge engine
// will fold them back with a spawn trigger if their state
// reconverges); otherwise the current context simply adopts the
// trigger-function's group and continues (spec.md §4.F).
func (v *VM) execCallTriggerFunc(inst opcode.Instruction) error {
	ctx := v.Contexts.Current()
	ip := ctx.IP
	val := v.get(inst.A)
	if val.Kind != value.KindTriggerFunction {
		return vmerr.TypeMismatch(v.area(ip), v.callStack(), val.Kind.String(), "trigger_function", "call-trigger-func")
	}
	tf := val.Data.(value.TriggerFunctionData)

	if inst.Diverges {
		v.split([]int{ip + 1, ip + 1})
		full := v.Contexts.Top()
		sibling := full.Frontier[len(full.Frontier)-2]
		sibling.Group = tf.Group
		sibling.PrevGroup = ctx.Group
		return nil
	}
	ctx.PrevGroup = ctx.Group
	ctx.Group = tf.Group
	return nil
}
