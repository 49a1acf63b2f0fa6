package spirv

// operand is a single instruction operand: either a reference to a result id
// or an immediate literal word. The distinction matters only for tooling and
// readers of the in-memory form; both encode to one word.
type operand struct {
	word    uint32
	literal bool
}

// Instruction is a single SPIR-V operation: opcode, optional result type,
// optional result id, and an ordered operand list. Instructions are owned by
// the block (or module section) they are appended to and are not mutated
// afterwards; decorations live in the module's side table instead.
type Instruction struct {
	opcode   Opcode
	typeID   ID
	resultID ID
	operands []operand
}

// NewInstruction constructs an instruction with a result id and result type.
// Pass zero for either when the opcode does not produce one.
func NewInstruction(resultID, typeID ID, opcode Opcode) *Instruction {
	return &Instruction{opcode: opcode, typeID: typeID, resultID: resultID}
}

// Opcode returns the instruction's opcode.
func (i *Instruction) Opcode() Opcode { return i.opcode }

// ResultID returns the instruction's result id, or zero if it has none.
func (i *Instruction) ResultID() ID { return i.resultID }

// TypeID returns the instruction's result type id, or zero if it has none.
func (i *Instruction) TypeID() ID { return i.typeID }

// AddIDOperand appends a result-id reference operand.
func (i *Instruction) AddIDOperand(id ID) {
	i.operands = append(i.operands, operand{word: uint32(id)})
}

// AddImmediateOperand appends an immediate literal operand.
func (i *Instruction) AddImmediateOperand(value uint32) {
	i.operands = append(i.operands, operand{word: value, literal: true})
}

// OperandCount returns the number of operands, excluding the result type and
// result id.
func (i *Instruction) OperandCount() int { return len(i.operands) }

// Operand returns the word of the n-th operand.
func (i *Instruction) Operand(n int) uint32 { return i.operands[n].word }

// IDOperand returns the n-th operand as an id. It panics if that operand is
// an immediate literal.
func (i *Instruction) IDOperand(n int) ID {
	op := i.operands[n]
	if op.literal {
		panic("spirv: operand is an immediate literal, not an id")
	}
	return ID(op.word)
}

// IsLiteral reports whether the n-th operand is an immediate literal.
func (i *Instruction) IsLiteral(n int) bool { return i.operands[n].literal }

// Words encodes the instruction to its binary word sequence: the combined
// word-count/opcode word, then result type, result id, and operands in order.
func (i *Instruction) Words() []uint32 {
	count := 1 + len(i.operands)
	if i.typeID != 0 {
		count++
	}
	if i.resultID != 0 {
		count++
	}
	words := make([]uint32, 0, count)
	words = append(words, uint32(count)<<16|uint32(i.opcode))
	if i.typeID != 0 {
		words = append(words, uint32(i.typeID))
	}
	if i.resultID != 0 {
		words = append(words, uint32(i.resultID))
	}
	for _, op := range i.operands {
		words = append(words, op.word)
	}
	return words
}
