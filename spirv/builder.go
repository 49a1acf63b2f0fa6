package spirv

import "fmt"

// Builder emits instructions into the active basic block of the active
// function, the "build point". A module is built by exactly one Builder;
// nested control-flow constructs save and restore the cursor explicitly
// rather than through any global state.
//
// When specialization-constant generation mode is on, eligible operations
// are folded into OpSpecConstantOp expressions in the module's
// types/constants section instead of producing runtime instructions, so the
// result can be resolved at pipeline-creation time without recompiling the
// shader.
type Builder struct {
	module     *Module
	buildPoint *Block

	// specConstMode redirects eligible emissions to spec-constant
	// expressions. Every quad/binary/unary emission checks it first.
	specConstMode bool
}

// NewBuilder creates a builder for the module.
func NewBuilder(module *Module) *Builder {
	return &Builder{module: module}
}

// Module returns the module under construction.
func (b *Builder) Module() *Module { return b.module }

// NewFunction creates a function with the given result type and function
// type, appends it to the module, and returns it. The caller creates and
// inserts the entry block.
func (b *Builder) NewFunction(resultType, fnType ID) *Function {
	fn := &Function{
		id:         b.module.AllocID(),
		resultType: resultType,
		fnType:     fnType,
	}
	b.module.functions = append(b.module.functions, fn)
	return fn
}

// NewBlock constructs a block with a fresh id for fn without inserting it.
func (b *Builder) NewBlock(fn *Function) *Block {
	return NewBlock(b.module.AllocID(), fn)
}

// SetBuildPoint moves the cursor to blk; subsequent emissions append there.
func (b *Builder) SetBuildPoint(blk *Block) { b.buildPoint = blk }

// BuildPoint returns the block currently receiving instructions.
func (b *Builder) BuildPoint() *Block { return b.buildPoint }

// SetSpecConstantMode switches specialization-constant generation mode.
func (b *Builder) SetSpecConstantMode(on bool) { b.specConstMode = on }

// SpecConstantMode reports whether spec-constant generation mode is on.
func (b *Builder) SpecConstantMode() bool { return b.specConstMode }

// emit appends inst to the build point and records its result type.
func (b *Builder) emit(inst *Instruction) {
	if b.buildPoint == nil {
		panic("spirv: no build point set")
	}
	b.module.setResultType(inst.ResultID(), inst.TypeID())
	b.buildPoint.AddInstruction(inst)
}

// TypeOf returns the result type id of a previously emitted value.
func (b *Builder) TypeOf(result ID) ID { return b.module.TypeOf(result) }

// CreateUnaryOp emits a one-operand operation and returns its result id. In
// spec-constant mode the operation is folded into a spec-constant expression
// instead.
func (b *Builder) CreateUnaryOp(opcode Opcode, typeID, operand ID) ID {
	if b.specConstMode {
		return b.CreateSpecConstantOp(opcode, typeID, operand)
	}
	inst := NewInstruction(b.module.AllocID(), typeID, opcode)
	inst.AddIDOperand(operand)
	b.emit(inst)
	return inst.ResultID()
}

// CreateBinOp emits a two-operand operation and returns its result id. In
// spec-constant mode the operation is folded into a spec-constant expression
// instead.
func (b *Builder) CreateBinOp(opcode Opcode, typeID, operand1, operand2 ID) ID {
	if b.specConstMode {
		return b.CreateSpecConstantOp(opcode, typeID, operand1, operand2)
	}
	inst := NewInstruction(b.module.AllocID(), typeID, opcode)
	inst.AddIDOperand(operand1)
	inst.AddIDOperand(operand2)
	b.emit(inst)
	return inst.ResultID()
}

// CreateTriOp emits a three-operand operation and returns its result id. In
// spec-constant mode the operation is folded into a spec-constant expression
// instead.
func (b *Builder) CreateTriOp(opcode Opcode, typeID, operand1, operand2, operand3 ID) ID {
	if b.specConstMode {
		return b.CreateSpecConstantOp(opcode, typeID, operand1, operand2, operand3)
	}
	inst := NewInstruction(b.module.AllocID(), typeID, opcode)
	inst.AddIDOperand(operand1)
	inst.AddIDOperand(operand2)
	inst.AddIDOperand(operand3)
	b.emit(inst)
	return inst.ResultID()
}

// CreateQuadOp emits a four-operand operation and returns its result id. In
// spec-constant mode the operation is folded into a spec-constant expression
// instead of touching the build point.
func (b *Builder) CreateQuadOp(opcode Opcode, typeID, operand1, operand2, operand3, operand4 ID) ID {
	if b.specConstMode {
		return b.CreateSpecConstantOp(opcode, typeID, operand1, operand2, operand3, operand4)
	}
	inst := NewInstruction(b.module.AllocID(), typeID, opcode)
	inst.AddIDOperand(operand1)
	inst.AddIDOperand(operand2)
	inst.AddIDOperand(operand3)
	inst.AddIDOperand(operand4)
	b.emit(inst)
	return inst.ResultID()
}

// CreateSpecConstantOp emits an OpSpecConstantOp expression carrying the
// given opcode and operands into the module's types/constants section and
// returns its result id. No runtime instruction is appended to any block.
func (b *Builder) CreateSpecConstantOp(opcode Opcode, typeID ID, operands ...ID) ID {
	inst := NewInstruction(b.module.AllocID(), typeID, OpSpecConstantOp)
	inst.AddImmediateOperand(uint32(opcode))
	for _, op := range operands {
		inst.AddIDOperand(op)
	}
	b.module.addTypesGlobal(inst)
	return inst.ResultID()
}

// CreateNoContractionUnaryOp emits a unary operation and marks its result
// with the no-contraction decoration. The legacy hardware's floating-point
// rules forbid fused contraction, which would change rounding and break
// bit-exact results.
func (b *Builder) CreateNoContractionUnaryOp(opcode Opcode, typeID, operand ID) ID {
	result := b.CreateUnaryOp(opcode, typeID, operand)
	b.module.AddDecoration(result, DecorationNoContraction)
	return result
}

// CreateNoContractionBinOp emits a binary operation and marks its result with
// the no-contraction decoration.
func (b *Builder) CreateNoContractionBinOp(opcode Opcode, typeID, operand1, operand2 ID) ID {
	result := b.CreateBinOp(opcode, typeID, operand1, operand2)
	b.module.AddDecoration(result, DecorationNoContraction)
	return result
}

// CreateUnaryBuiltinCall emits a one-operand call into an extended
// instruction set (math builtins). Builtin calls are never spec-constant
// folded; they always append to the build point.
func (b *Builder) CreateUnaryBuiltinCall(resultType, builtins ID, entryPoint int, operand ID) ID {
	inst := b.newBuiltinCall(resultType, builtins, entryPoint)
	inst.AddIDOperand(operand)
	b.emit(inst)
	return inst.ResultID()
}

// CreateBinBuiltinCall emits a two-operand extended-instruction-set call.
func (b *Builder) CreateBinBuiltinCall(resultType, builtins ID, entryPoint int, operand1, operand2 ID) ID {
	inst := b.newBuiltinCall(resultType, builtins, entryPoint)
	inst.AddIDOperand(operand1)
	inst.AddIDOperand(operand2)
	b.emit(inst)
	return inst.ResultID()
}

// CreateTriBuiltinCall emits a three-operand extended-instruction-set call.
func (b *Builder) CreateTriBuiltinCall(resultType, builtins ID, entryPoint int, operand1, operand2, operand3 ID) ID {
	inst := b.newBuiltinCall(resultType, builtins, entryPoint)
	inst.AddIDOperand(operand1)
	inst.AddIDOperand(operand2)
	inst.AddIDOperand(operand3)
	b.emit(inst)
	return inst.ResultID()
}

// newBuiltinCall starts an OpExtInst with the set id and literal entry-point
// index; the caller appends the value operands.
func (b *Builder) newBuiltinCall(resultType, builtins ID, entryPoint int) *Instruction {
	inst := NewInstruction(b.module.AllocID(), resultType, OpExtInst)
	inst.AddIDOperand(builtins)
	inst.AddImmediateOperand(uint32(entryPoint))
	return inst
}

// CreateBranch emits an unconditional branch from the build point to target
// and records the predecessor edge.
func (b *Builder) CreateBranch(target *Block) {
	inst := NewInstruction(0, 0, OpBranch)
	inst.AddIDOperand(target.ID())
	b.emit(inst)
	target.AddPredecessor(b.buildPoint)
}

// CreateSelectionMerge emits the selection-merge marker declaring merge as
// the merge block of the structured construct opened by the following
// conditional branch.
func (b *Builder) CreateSelectionMerge(merge *Block, control SelectionControl) {
	inst := NewInstruction(0, 0, OpSelectionMerge)
	inst.AddIDOperand(merge.ID())
	inst.AddImmediateOperand(uint32(control))
	b.emit(inst)
}

// CreateBranchConditional emits a conditional branch from the build point.
// Branch weights are attached only when at least one is non-zero. Both
// targets record the build point as a predecessor.
func (b *Builder) CreateBranchConditional(condition ID, trueBlock, falseBlock *Block, thenWeight, elseWeight uint32) {
	inst := NewInstruction(0, 0, OpBranchConditional)
	inst.AddIDOperand(condition)
	inst.AddIDOperand(trueBlock.ID())
	inst.AddIDOperand(falseBlock.ID())
	if thenWeight != 0 || elseWeight != 0 {
		inst.AddImmediateOperand(thenWeight)
		inst.AddImmediateOperand(elseWeight)
	}
	b.emit(inst)
	trueBlock.AddPredecessor(b.buildPoint)
	falseBlock.AddPredecessor(b.buildPoint)
}

// CreateReturn emits OpReturn.
func (b *Builder) CreateReturn() {
	b.emit(NewInstruction(0, 0, OpReturn))
}

// CreateReturnValue emits OpReturnValue.
func (b *Builder) CreateReturnValue(value ID) {
	inst := NewInstruction(0, 0, OpReturnValue)
	inst.AddIDOperand(value)
	b.emit(inst)
}

// mustBuildPoint panics unless the cursor is at want. Used by the structured
// construct builders to check caller discipline.
func (b *Builder) mustBuildPoint(want *Block, op string) {
	if b.buildPoint != want {
		have := ID(0)
		if b.buildPoint != nil {
			have = b.buildPoint.ID()
		}
		panic(fmt.Sprintf("spirv: %s called with build point %d, want %d", op, have, want.ID()))
	}
}
