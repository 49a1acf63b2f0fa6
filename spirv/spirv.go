// Package spirv builds SPIR-V shader modules in memory.
//
// Unlike a text-to-binary compiler, this package is driven instruction by
// instruction by the shader-translation front end: it maintains a mutable
// "build point" (the basic block currently receiving instructions), allocates
// result ids, tracks decorations in a module-level side table, and knows how
// to fold eligible operations into specialization-constant expressions so
// that pipeline-state permutations do not force shader recompilation.
//
// The typical flow is:
//
//	module := spirv.NewModule(spirv.Version1_3)
//	builder := spirv.NewBuilder(module)
//	fn := builder.NewFunction(voidType, fnType)
//	...
//	cond := builder.CreateBinOp(spirv.OpFOrdEqual, boolType, a, b)
//	iff := spirv.NewIf(builder, cond, spirv.SelectionControlNone, 0, 0)
//	thenValue := builder.CreateBinOp(spirv.OpFAdd, floatType, a, b)
//	iff.BeginElse(true)
//	elseValue := builder.CreateBinOp(spirv.OpFSub, floatType, a, b)
//	iff.End(true)
//	result := iff.CreateMergePhi(thenValue, elseValue)
//
// The finished Module serializes to a standard SPIR-V binary with Serialize.
package spirv

// ID references a SPIR-V result id. The zero ID means "none".
type ID uint32

// Opcode is a SPIR-V opcode number.
type Opcode uint16

// Opcodes used by the builder and the translation front end.
const (
	OpNop               Opcode = 0
	OpExtInstImport     Opcode = 11
	OpExtInst           Opcode = 12
	OpMemoryModel       Opcode = 14
	OpEntryPoint        Opcode = 15
	OpExecutionMode     Opcode = 16
	OpCapability        Opcode = 17
	OpTypeVoid          Opcode = 19
	OpTypeBool          Opcode = 20
	OpTypeInt           Opcode = 21
	OpTypeFloat         Opcode = 22
	OpTypeVector        Opcode = 23
	OpTypeFunction      Opcode = 33
	OpConstantTrue      Opcode = 41
	OpConstantFalse     Opcode = 42
	OpConstant          Opcode = 43
	OpSpecConstant      Opcode = 50
	OpSpecConstantOp    Opcode = 52
	OpFunction          Opcode = 54
	OpFunctionEnd       Opcode = 56
	OpVariable          Opcode = 59
	OpLoad              Opcode = 61
	OpStore             Opcode = 62
	OpDecorate          Opcode = 71
	OpVectorShuffle     Opcode = 79
	OpCompositeExtract  Opcode = 81
	OpBitcast           Opcode = 124
	OpSNegate           Opcode = 126
	OpFNegate           Opcode = 127
	OpIAdd              Opcode = 128
	OpFAdd              Opcode = 129
	OpISub              Opcode = 130
	OpFSub              Opcode = 131
	OpIMul              Opcode = 132
	OpFMul              Opcode = 133
	OpUDiv              Opcode = 134
	OpSDiv              Opcode = 135
	OpFDiv              Opcode = 136
	OpSelect            Opcode = 169
	OpIEqual            Opcode = 170
	OpFOrdEqual         Opcode = 180
	OpFOrdLessThan      Opcode = 184
	OpBitwiseOr         Opcode = 197
	OpBitwiseXor        Opcode = 198
	OpBitwiseAnd        Opcode = 199
	OpPhi               Opcode = 245
	OpLoopMerge         Opcode = 246
	OpSelectionMerge    Opcode = 247
	OpLabel             Opcode = 248
	OpBranch            Opcode = 249
	OpBranchConditional Opcode = 250
	OpReturn            Opcode = 253
	OpReturnValue       Opcode = 254
	OpUnreachable       Opcode = 255
)

// Decoration is a SPIR-V decoration number, attached to result ids through
// the module's decoration side table.
type Decoration uint32

// Decorations used by the translation front end.
const (
	DecorationRelaxedPrecision Decoration = 0
	DecorationSpecID           Decoration = 1
	DecorationNoContraction    Decoration = 42
)

// SelectionControl carries the selection-control mask of OpSelectionMerge.
type SelectionControl uint32

// Selection control masks.
const (
	SelectionControlNone        SelectionControl = 0
	SelectionControlFlatten     SelectionControl = 1
	SelectionControlDontFlatten SelectionControl = 2
)

// FunctionControl carries the function-control mask of OpFunction.
type FunctionControl uint32

// FunctionControlNone declares no special function control.
const FunctionControlNone FunctionControl = 0

// Capability is a SPIR-V capability number.
type Capability uint32

// CapabilityShader is required for all shader stages.
const CapabilityShader Capability = 1

// AddressingModel is a SPIR-V addressing model.
type AddressingModel uint32

// AddressingModelLogical is the addressing model used by shader modules.
const AddressingModelLogical AddressingModel = 0

// MemoryModel is a SPIR-V memory model.
type MemoryModel uint32

// MemoryModelGLSL450 is the memory model used by shader modules.
const MemoryModelGLSL450 MemoryModel = 1

// GLSL.std.450 extended-instruction entry points reachable through the
// builtin-call helpers.
const (
	GLSLstd450Sin         = 13
	GLSLstd450Cos         = 14
	GLSLstd450Pow         = 26
	GLSLstd450Exp2        = 29
	GLSLstd450Log2        = 30
	GLSLstd450Sqrt        = 31
	GLSLstd450InverseSqrt = 32
	GLSLstd450FMin        = 37
	GLSLstd450FMax        = 40
	GLSLstd450FClamp      = 43
	GLSLstd450Fma         = 50
)

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
)

// SPIR-V magic number and generator word.
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator
)
