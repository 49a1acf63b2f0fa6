package spirv

// Block is a basic block: an id, an ordered instruction sequence, the set of
// predecessor blocks, and a back-reference to the owning function.
//
// A block may be constructed well before it is inserted into its function;
// construction order and insertion order are distinct, and only insertion
// order defines the linear layout of the serialized module. Once inserted a
// block is never reordered.
type Block struct {
	id           ID
	instructions []*Instruction
	predecessors []*Block
	parent       *Function
}

// NewBlock constructs a block with a fresh id for fn. The block is not yet
// part of the function; call Function.AddBlock when its position is known.
func NewBlock(id ID, fn *Function) *Block {
	return &Block{id: id, parent: fn}
}

// ID returns the block's label id.
func (b *Block) ID() ID { return b.id }

// Parent returns the function the block belongs to.
func (b *Block) Parent() *Function { return b.parent }

// AddInstruction appends an instruction to the block.
func (b *Block) AddInstruction(inst *Instruction) {
	b.instructions = append(b.instructions, inst)
}

// AddPredecessor records pred as a control-flow predecessor of the block,
// for later dominance and merge validation.
func (b *Block) AddPredecessor(pred *Block) {
	b.predecessors = append(b.predecessors, pred)
}

// Predecessors returns the recorded predecessor blocks.
func (b *Block) Predecessors() []*Block { return b.predecessors }

// Instructions returns the block's instruction sequence.
func (b *Block) Instructions() []*Instruction { return b.instructions }

// Len returns the number of instructions in the block.
func (b *Block) Len() int { return len(b.instructions) }

// Function is an ordered sequence of basic blocks together with the ids the
// serializer needs to emit its OpFunction header.
type Function struct {
	id         ID
	resultType ID
	fnType     ID
	blocks     []*Block
}

// ID returns the function's result id.
func (f *Function) ID() ID { return f.id }

// AddBlock inserts blk at the end of the function. Insertion order is
// significant: it defines the linear layout of the emitted code.
func (f *Function) AddBlock(blk *Block) {
	f.blocks = append(f.blocks, blk)
}

// Blocks returns the function's blocks in insertion order.
func (f *Function) Blocks() []*Block { return f.blocks }
