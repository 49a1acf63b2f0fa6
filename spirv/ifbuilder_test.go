package spirv

import "testing"

// lastInstruction returns the final instruction of a block.
func lastInstruction(t *testing.T, blk *Block) *Instruction {
	t.Helper()
	if blk.Len() == 0 {
		t.Fatalf("block %d is empty", blk.ID())
	}
	return blk.Instructions()[blk.Len()-1]
}

func TestIfBuilder_OneSided(t *testing.T) {
	builder, fn := testFunction(t)
	module := builder.Module()
	boolType := module.AddTypeBool()
	floatType := module.AddTypeFloat(32)
	cond := module.AddConstant(boolType, 1)
	a := module.AddConstantFloat32(floatType, 1.0)
	b := module.AddConstantFloat32(floatType, 2.0)

	header := builder.BuildPoint()
	iff := NewIf(builder, cond, SelectionControlNone, 0, 0)
	builder.CreateBinOp(OpFAdd, floatType, a, b)
	iff.End(true)

	// Header must end with selection merge + conditional branch whose false
	// target is the merge block (no else branch exists).
	n := header.Len()
	if n < 2 {
		t.Fatalf("header has %d instructions, want at least 2", n)
	}
	merge := header.Instructions()[n-2]
	branch := header.Instructions()[n-1]
	if merge.Opcode() != OpSelectionMerge {
		t.Errorf("second-to-last opcode = %d, want OpSelectionMerge", merge.Opcode())
	}
	if merge.IDOperand(0) != iff.MergeBlock().ID() {
		t.Errorf("selection merge target = %d, want %d", merge.IDOperand(0), iff.MergeBlock().ID())
	}
	if branch.Opcode() != OpBranchConditional {
		t.Fatalf("last opcode = %d, want OpBranchConditional", branch.Opcode())
	}
	if branch.IDOperand(1) != iff.ThenBlock().ID() {
		t.Errorf("true target = %d, want then block %d", branch.IDOperand(1), iff.ThenBlock().ID())
	}
	if branch.IDOperand(2) != iff.MergeBlock().ID() {
		t.Errorf("false target = %d, want merge block %d", branch.IDOperand(2), iff.MergeBlock().ID())
	}
	// No weights were requested, so the branch carries only three operands.
	if branch.OperandCount() != 3 {
		t.Errorf("branch operand count = %d, want 3", branch.OperandCount())
	}
	if iff.ElsePhiParent() != header.ID() {
		t.Errorf("elsePhiParent = %d, want header id %d", iff.ElsePhiParent(), header.ID())
	}
	if builder.BuildPoint() != iff.MergeBlock() {
		t.Error("build point should be at the merge block after End")
	}

	// Emission order: entry(header), then, merge.
	blocks := fn.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("function has %d blocks, want 3", len(blocks))
	}
	if blocks[1] != iff.ThenBlock() || blocks[2] != iff.MergeBlock() {
		t.Error("blocks are not in emission order (then before merge)")
	}
}

func TestIfBuilder_ElseAndPhi(t *testing.T) {
	builder, _ := testFunction(t)
	module := builder.Module()
	boolType := module.AddTypeBool()
	floatType := module.AddTypeFloat(32)
	cond := module.AddConstant(boolType, 1)
	x := module.AddConstantFloat32(floatType, 3.0)
	y := module.AddConstantFloat32(floatType, 4.0)

	iff := NewIf(builder, cond, SelectionControlNone, 0, 0)
	thenValue := builder.CreateBinOp(OpFAdd, floatType, x, y)
	thenBlockID := builder.BuildPoint().ID()
	iff.BeginElse(true)
	elseValue := builder.CreateBinOp(OpFSub, floatType, x, y)
	elseBlockID := builder.BuildPoint().ID()
	iff.End(true)

	phi := iff.CreateMergePhi(thenValue, elseValue)
	if phi == 0 {
		t.Fatal("CreateMergePhi returned zero id")
	}
	inst := lastInstruction(t, iff.MergeBlock())
	if inst.Opcode() != OpPhi {
		t.Fatalf("opcode = %d, want OpPhi", inst.Opcode())
	}
	if inst.TypeID() != floatType {
		t.Errorf("phi type = %d, want %d", inst.TypeID(), floatType)
	}
	wantOperands := []ID{thenValue, thenBlockID, elseValue, elseBlockID}
	for i, want := range wantOperands {
		if got := inst.IDOperand(i); got != want {
			t.Errorf("phi operand %d = %d, want %d", i, got, want)
		}
	}
}

func TestIfBuilder_NestedPhiParent(t *testing.T) {
	// A nested, fully closed if inside the then branch leaves the cursor at
	// the inner merge block; that block, not the outer then block, must
	// become the outer construct's then-side phi parent.
	builder, _ := testFunction(t)
	module := builder.Module()
	boolType := module.AddTypeBool()
	floatType := module.AddTypeFloat(32)
	cond := module.AddConstant(boolType, 1)
	x := module.AddConstantFloat32(floatType, 1.0)
	y := module.AddConstantFloat32(floatType, 2.0)

	outer := NewIf(builder, cond, SelectionControlNone, 0, 0)
	outerThenID := builder.BuildPoint().ID()

	inner := NewIf(builder, cond, SelectionControlNone, 0, 0)
	builder.CreateBinOp(OpFMul, floatType, x, y)
	inner.End(true)
	innerMergeID := inner.MergeBlock().ID()

	outer.BeginElse(true)
	builder.CreateBinOp(OpFDiv, floatType, x, y)
	outer.End(true)

	if outer.ThenPhiParent() == outerThenID {
		t.Error("thenPhiParent still points at the original then block")
	}
	if outer.ThenPhiParent() != innerMergeID {
		t.Errorf("thenPhiParent = %d, want inner merge %d", outer.ThenPhiParent(), innerMergeID)
	}
}

func TestIfBuilder_BranchWeights(t *testing.T) {
	builder, _ := testFunction(t)
	module := builder.Module()
	boolType := module.AddTypeBool()
	cond := module.AddConstant(boolType, 1)

	header := builder.BuildPoint()
	iff := NewIf(builder, cond, SelectionControlDontFlatten, 100, 1)
	iff.End(true)

	branch := lastInstruction(t, header)
	if branch.Opcode() != OpBranchConditional {
		t.Fatalf("opcode = %d, want OpBranchConditional", branch.Opcode())
	}
	if branch.OperandCount() != 5 {
		t.Fatalf("operand count = %d, want 5 (weights attached)", branch.OperandCount())
	}
	if branch.Operand(3) != 100 || branch.Operand(4) != 1 {
		t.Errorf("weights = %d,%d, want 100,1", branch.Operand(3), branch.Operand(4))
	}
	merge := header.Instructions()[header.Len()-2]
	if merge.Operand(1) != uint32(SelectionControlDontFlatten) {
		t.Errorf("selection control = %d, want DontFlatten", merge.Operand(1))
	}
}

func TestIfBuilder_NoBranchToMerge(t *testing.T) {
	// When the then branch terminates by itself (a return here), End(false)
	// must not synthesize a fallthrough branch.
	builder, _ := testFunction(t)
	module := builder.Module()
	boolType := module.AddTypeBool()
	cond := module.AddConstant(boolType, 0)

	iff := NewIf(builder, cond, SelectionControlNone, 0, 0)
	builder.CreateReturn()
	thenBlock := builder.BuildPoint()
	iff.End(false)

	last := lastInstruction(t, thenBlock)
	if last.Opcode() != OpReturn {
		t.Errorf("then block ends with opcode %d, want OpReturn", last.Opcode())
	}
	if len(iff.MergeBlock().Predecessors()) != 1 {
		t.Errorf("merge has %d predecessors, want 1 (header only)",
			len(iff.MergeBlock().Predecessors()))
	}
}

func TestIfBuilder_HeaderPredecessors(t *testing.T) {
	builder, _ := testFunction(t)
	module := builder.Module()
	boolType := module.AddTypeBool()
	cond := module.AddConstant(boolType, 1)

	header := builder.BuildPoint()
	iff := NewIf(builder, cond, SelectionControlNone, 0, 0)
	iff.BeginElse(true)
	iff.End(true)

	found := false
	for _, pred := range iff.ThenBlock().Predecessors() {
		if pred == header {
			found = true
		}
	}
	if !found {
		t.Errorf("then block %d missing header predecessor", iff.ThenBlock().ID())
	}
}

func TestIfBuilder_StateViolationsPanic(t *testing.T) {
	newOpenIf := func() (*Builder, *IfBuilder) {
		builder, _ := testFunction(t)
		module := builder.Module()
		cond := module.AddConstant(module.AddTypeBool(), 1)
		return builder, NewIf(builder, cond, SelectionControlNone, 0, 0)
	}

	t.Run("BeginElse after End", func(t *testing.T) {
		_, iff := newOpenIf()
		iff.End(true)
		defer func() {
			if recover() == nil {
				t.Error("BeginElse from merge state did not panic")
			}
		}()
		iff.BeginElse(true)
	})

	t.Run("MergePhi before End", func(t *testing.T) {
		_, iff := newOpenIf()
		defer func() {
			if recover() == nil {
				t.Error("CreateMergePhi outside the merge block did not panic")
			}
		}()
		iff.CreateMergePhi(1, 2)
	})

	t.Run("double End", func(t *testing.T) {
		_, iff := newOpenIf()
		iff.End(true)
		defer func() {
			if recover() == nil {
				t.Error("End from merge state did not panic")
			}
		}()
		iff.End(true)
	})
}
