package spirv

import (
	"encoding/binary"
	"math"
	"sort"
)

// Module is the in-memory shader module under construction: id allocation,
// the result-id→type side table, the decoration side table, the module-level
// sections (capabilities, imports, types and constants), and the functions.
//
// Modules are built by exactly one Builder at a time; nothing here is safe
// for concurrent mutation.
type Module struct {
	version Version

	nextID ID

	// resultTypes maps a result id to its result type id. Populated on every
	// emission so later instructions (phi in particular) can recover the type
	// of a value without carrying it around.
	resultTypes map[ID]ID

	// decorations is the per-result-id decoration side table. Decorations are
	// attached here rather than on the immutable Instruction values and are
	// emitted as OpDecorate at serialization time.
	decorations map[ID][]Decoration

	capabilities []*Instruction
	extImports   []*Instruction
	memoryModel  *Instruction

	// typesGlobals holds the module-level types/constants section, including
	// specialization-constant expressions produced by the builder's folding
	// path.
	typesGlobals []*Instruction

	// specIDs pairs spec-constant results with their SpecId literals for
	// emission alongside the decoration side table.
	specIDs []specIDEntry

	functions []*Function
}

// NewModule creates an empty module targeting the given SPIR-V version.
func NewModule(version Version) *Module {
	return &Module{
		version:     version,
		nextID:      1,
		resultTypes: make(map[ID]ID),
		decorations: make(map[ID][]Decoration),
	}
}

// AllocID allocates a fresh result id. Ids are never reused and never zero.
func (m *Module) AllocID() ID {
	id := m.nextID
	m.nextID++
	return id
}

// Bound returns the id bound of the module (one past the highest allocated id).
func (m *Module) Bound() uint32 { return uint32(m.nextID) }

// setResultType records the result type of a value for later queries.
func (m *Module) setResultType(result, typeID ID) {
	if result != 0 && typeID != 0 {
		m.resultTypes[result] = typeID
	}
}

// TypeOf returns the result type id of a previously emitted value, or zero
// if the value is unknown or untyped.
func (m *Module) TypeOf(result ID) ID { return m.resultTypes[result] }

// AddDecoration attaches a decoration to a result id.
func (m *Module) AddDecoration(target ID, dec Decoration) {
	m.decorations[target] = append(m.decorations[target], dec)
}

// Decorations returns the decorations attached to a result id.
func (m *Module) Decorations(target ID) []Decoration {
	return m.decorations[target]
}

// AddCapability declares a capability.
func (m *Module) AddCapability(cap Capability) {
	inst := NewInstruction(0, 0, OpCapability)
	inst.AddImmediateOperand(uint32(cap))
	m.capabilities = append(m.capabilities, inst)
}

// SetMemoryModel sets the module's addressing and memory model.
func (m *Module) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	inst := NewInstruction(0, 0, OpMemoryModel)
	inst.AddImmediateOperand(uint32(addressing))
	inst.AddImmediateOperand(uint32(memory))
	m.memoryModel = inst
}

// AddExtInstImport imports an extended instruction set (for example
// "GLSL.std.450") and returns its id for use with the builtin-call helpers.
func (m *Module) AddExtInstImport(name string) ID {
	id := m.AllocID()
	inst := NewInstruction(id, 0, OpExtInstImport)
	addStringOperand(inst, name)
	m.extImports = append(m.extImports, inst)
	return id
}

// addTypesGlobal appends an instruction to the types/constants section and
// records its result type.
func (m *Module) addTypesGlobal(inst *Instruction) {
	m.setResultType(inst.ResultID(), inst.TypeID())
	m.typesGlobals = append(m.typesGlobals, inst)
}

// TypesGlobals returns the module-level types/constants section, in emission
// order.
func (m *Module) TypesGlobals() []*Instruction { return m.typesGlobals }

// AddTypeVoid declares OpTypeVoid and returns its id.
func (m *Module) AddTypeVoid() ID {
	id := m.AllocID()
	m.addTypesGlobal(NewInstruction(id, 0, OpTypeVoid))
	return id
}

// AddTypeBool declares OpTypeBool and returns its id.
func (m *Module) AddTypeBool() ID {
	id := m.AllocID()
	m.addTypesGlobal(NewInstruction(id, 0, OpTypeBool))
	return id
}

// AddTypeFloat declares OpTypeFloat of the given bit width and returns its id.
func (m *Module) AddTypeFloat(width uint32) ID {
	id := m.AllocID()
	inst := NewInstruction(id, 0, OpTypeFloat)
	inst.AddImmediateOperand(width)
	m.addTypesGlobal(inst)
	return id
}

// AddTypeInt declares OpTypeInt and returns its id.
func (m *Module) AddTypeInt(width uint32, signed bool) ID {
	id := m.AllocID()
	inst := NewInstruction(id, 0, OpTypeInt)
	inst.AddImmediateOperand(width)
	if signed {
		inst.AddImmediateOperand(1)
	} else {
		inst.AddImmediateOperand(0)
	}
	m.addTypesGlobal(inst)
	return id
}

// AddTypeVector declares OpTypeVector and returns its id.
func (m *Module) AddTypeVector(componentType ID, count uint32) ID {
	id := m.AllocID()
	inst := NewInstruction(id, 0, OpTypeVector)
	inst.AddIDOperand(componentType)
	inst.AddImmediateOperand(count)
	m.addTypesGlobal(inst)
	return id
}

// AddTypeFunction declares OpTypeFunction and returns its id.
func (m *Module) AddTypeFunction(returnType ID, paramTypes ...ID) ID {
	id := m.AllocID()
	inst := NewInstruction(id, 0, OpTypeFunction)
	inst.AddIDOperand(returnType)
	for _, p := range paramTypes {
		inst.AddIDOperand(p)
	}
	m.addTypesGlobal(inst)
	return id
}

// AddConstant declares an OpConstant with raw value words and returns its id.
func (m *Module) AddConstant(typeID ID, values ...uint32) ID {
	id := m.AllocID()
	inst := NewInstruction(id, typeID, OpConstant)
	for _, v := range values {
		inst.AddImmediateOperand(v)
	}
	m.addTypesGlobal(inst)
	return id
}

// AddConstantFloat32 declares a 32-bit float constant and returns its id.
func (m *Module) AddConstantFloat32(typeID ID, value float32) ID {
	return m.AddConstant(typeID, math.Float32bits(value))
}

// AddSpecConstant declares an OpSpecConstant with the given default value and
// specialization-constant id decoration, and returns its result id. The value
// is resolved at pipeline-creation time.
func (m *Module) AddSpecConstant(typeID ID, defaultValue uint32, specID uint32) ID {
	id := m.AllocID()
	inst := NewInstruction(id, typeID, OpSpecConstant)
	inst.AddImmediateOperand(defaultValue)
	m.addTypesGlobal(inst)
	m.AddDecoration(id, DecorationSpecID)
	m.specIDs = append(m.specIDs, specIDEntry{target: id, spec: specID})
	return id
}

// specIDEntry pairs a spec-constant result with its SpecId literal.
type specIDEntry struct {
	target ID
	spec   uint32
}

// Functions returns the module's functions in creation order.
func (m *Module) Functions() []*Function { return m.functions }

// Words encodes the module to its SPIR-V word sequence: header, then the
// sections in specification order, with decorations drawn from the side
// table.
func (m *Module) Words() []uint32 {
	var words []uint32
	words = append(words,
		MagicNumber,
		uint32(m.version.Major)<<16|uint32(m.version.Minor)<<8,
		GeneratorID,
		m.Bound(),
		0, // reserved schema word
	)
	for _, inst := range m.capabilities {
		words = append(words, inst.Words()...)
	}
	for _, inst := range m.extImports {
		words = append(words, inst.Words()...)
	}
	if m.memoryModel != nil {
		words = append(words, m.memoryModel.Words()...)
	}
	words = append(words, m.decorationWords()...)
	for _, inst := range m.typesGlobals {
		words = append(words, inst.Words()...)
	}
	for _, fn := range m.functions {
		words = append(words, functionWords(fn)...)
	}
	return words
}

// Serialize encodes the module to little-endian SPIR-V binary.
func (m *Module) Serialize() []byte {
	words := m.Words()
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

// decorationWords emits the decoration side table as OpDecorate
// instructions, ordered by target id for deterministic output.
func (m *Module) decorationWords() []uint32 {
	targets := make([]ID, 0, len(m.decorations))
	for target := range m.decorations {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	var words []uint32
	for _, target := range targets {
		for _, dec := range m.decorations[target] {
			inst := NewInstruction(0, 0, OpDecorate)
			inst.AddIDOperand(target)
			inst.AddImmediateOperand(uint32(dec))
			if dec == DecorationSpecID {
				inst.AddImmediateOperand(m.specIDFor(target))
			}
			words = append(words, inst.Words()...)
		}
	}
	return words
}

// specIDFor returns the SpecId literal recorded for a spec constant.
func (m *Module) specIDFor(target ID) uint32 {
	for _, e := range m.specIDs {
		if e.target == target {
			return e.spec
		}
	}
	return 0
}

// functionWords emits one function: OpFunction header, each block as an
// OpLabel followed by its instructions, then OpFunctionEnd.
func functionWords(fn *Function) []uint32 {
	var words []uint32
	header := NewInstruction(fn.id, fn.resultType, OpFunction)
	header.AddImmediateOperand(uint32(FunctionControlNone))
	header.AddIDOperand(fn.fnType)
	words = append(words, header.Words()...)
	for _, blk := range fn.Blocks() {
		words = append(words, NewInstruction(blk.ID(), 0, OpLabel).Words()...)
		for _, inst := range blk.Instructions() {
			words = append(words, inst.Words()...)
		}
	}
	words = append(words, NewInstruction(0, 0, OpFunctionEnd).Words()...)
	return words
}

// addStringOperand appends a null-terminated, word-padded UTF-8 string.
func addStringOperand(inst *Instruction, s string) {
	bytes := append([]byte(s), 0)
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}
	for i := 0; i < len(bytes); i += 4 {
		inst.AddImmediateOperand(uint32(bytes[i]) |
			uint32(bytes[i+1])<<8 |
			uint32(bytes[i+2])<<16 |
			uint32(bytes[i+3])<<24)
	}
}
