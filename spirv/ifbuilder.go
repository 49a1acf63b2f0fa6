package spirv

import "fmt"

// ifState tracks which branch of a structured if is currently open.
type ifState uint8

const (
	ifStateThen ifState = iota
	ifStateElse
	ifStateMerge
)

func (s ifState) String() string {
	switch s {
	case ifStateThen:
		return "then"
	case ifStateElse:
		return "else"
	case ifStateMerge:
		return "merge"
	}
	return fmt.Sprintf("ifState(%d)", uint8(s))
}

// IfBuilder manages one structured if/else region: the header, then,
// optional else, and merge blocks, the conditional branch, and the phi
// parentage for merge-phi resolution.
//
// An IfBuilder owns the builder's cursor for its whole open lifetime. Nested
// regions follow strict stack discipline: an inner IfBuilder is opened and
// fully closed within a single branch of the outer one.
type IfBuilder struct {
	builder   *Builder
	condition ID
	control   SelectionControl

	thenWeight uint32
	elseWeight uint32

	function *Function

	headerBlock *Block
	thenBlock   *Block
	elseBlock   *Block // nil for one-sided ifs
	mergeBlock  *Block

	// thenPhiParent and elsePhiParent record which block id is the true
	// predecessor of the merge block on each side. They start at the header
	// (correct for a side that never runs any block of its own) and are
	// updated to the actual last block of a side when it closes, which may
	// differ from the originally allocated then/else block if the side
	// emitted nested control flow.
	thenPhiParent ID
	elsePhiParent ID

	state ifState
}

// NewIf opens a structured if region at the current build point and moves the
// cursor into the then block. The merge block is allocated now but inserted
// into the function only at End, so insertion order matches emission order.
func NewIf(builder *Builder, condition ID, control SelectionControl, thenWeight, elseWeight uint32) *IfBuilder {
	header := builder.BuildPoint()
	if header == nil {
		panic("spirv: NewIf requires an active build point")
	}
	fn := header.Parent()

	iff := &IfBuilder{
		builder:     builder,
		condition:   condition,
		control:     control,
		thenWeight:  thenWeight,
		elseWeight:  elseWeight,
		function:    fn,
		headerBlock: header,
		thenBlock:   builder.NewBlock(fn),
		mergeBlock:  builder.NewBlock(fn),
		state:       ifStateThen,
	}
	iff.thenPhiParent = header.ID()
	iff.elsePhiParent = header.ID()

	fn.AddBlock(iff.thenBlock)
	builder.SetBuildPoint(iff.thenBlock)
	return iff
}

// BeginElse closes the then branch and opens the else branch. When
// branchToMerge is true the current block (which may be a nested construct's
// merge, not the original then block) becomes the then-side phi parent and
// branches to the merge block; pass false when the then branch already
// terminated control flow itself.
func (iff *IfBuilder) BeginElse(branchToMerge bool) {
	if iff.state != ifStateThen {
		panic(fmt.Sprintf("spirv: BeginElse in state %v, want then", iff.state))
	}

	if branchToMerge {
		iff.thenPhiParent = iff.builder.BuildPoint().ID()
		iff.builder.CreateBranch(iff.mergeBlock)
	}

	iff.elseBlock = iff.builder.NewBlock(iff.function)
	iff.function.AddBlock(iff.elseBlock)
	iff.builder.SetBuildPoint(iff.elseBlock)

	iff.state = ifStateElse
}

// End closes the region: optionally branches the open side to the merge
// block, emits the selection merge and conditional branch at the header,
// inserts the merge block, and leaves the cursor there.
func (iff *IfBuilder) End(branchToMerge bool) {
	if iff.state != ifStateThen && iff.state != ifStateElse {
		panic(fmt.Sprintf("spirv: End in state %v, want then or else", iff.state))
	}

	if branchToMerge {
		if iff.elseBlock != nil {
			iff.elsePhiParent = iff.builder.BuildPoint().ID()
		} else {
			iff.thenPhiParent = iff.builder.BuildPoint().ID()
		}
		iff.builder.CreateBranch(iff.mergeBlock)
	}

	// Go back to the header and make the flow-control split.
	iff.builder.SetBuildPoint(iff.headerBlock)
	iff.builder.CreateSelectionMerge(iff.mergeBlock, iff.control)
	falseBlock := iff.mergeBlock
	if iff.elseBlock != nil {
		falseBlock = iff.elseBlock
	}
	iff.builder.CreateBranchConditional(iff.condition, iff.thenBlock, falseBlock,
		iff.thenWeight, iff.elseWeight)

	iff.function.AddBlock(iff.mergeBlock)
	iff.builder.SetBuildPoint(iff.mergeBlock)

	iff.state = ifStateMerge
}

// CreateMergePhi emits a phi in the merge block selecting thenValue when
// control arrived from the then side and elseValue from the else side. Valid
// only once the region is closed and the cursor is at the merge block.
func (iff *IfBuilder) CreateMergePhi(thenValue, elseValue ID) ID {
	iff.builder.mustBuildPoint(iff.mergeBlock, "CreateMergePhi")
	return iff.builder.CreateQuadOp(OpPhi, iff.builder.TypeOf(thenValue),
		thenValue, iff.thenPhiParent, elseValue, iff.elsePhiParent)
}

// ThenPhiParent returns the block id treated as the merge predecessor for
// the then side.
func (iff *IfBuilder) ThenPhiParent() ID { return iff.thenPhiParent }

// ElsePhiParent returns the block id treated as the merge predecessor for
// the else side (the header id when no else branch exists).
func (iff *IfBuilder) ElsePhiParent() ID { return iff.elsePhiParent }

// MergeBlock returns the region's merge block.
func (iff *IfBuilder) MergeBlock() *Block { return iff.mergeBlock }

// HeaderBlock returns the block the region was opened from.
func (iff *IfBuilder) HeaderBlock() *Block { return iff.headerBlock }

// ThenBlock returns the originally allocated then block.
func (iff *IfBuilder) ThenBlock() *Block { return iff.thenBlock }
