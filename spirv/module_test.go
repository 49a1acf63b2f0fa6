package spirv

import (
	"encoding/binary"
	"testing"
)

func TestModule_SerializeHeader(t *testing.T) {
	module := NewModule(Version1_3)
	module.AddCapability(CapabilityShader)
	module.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	data := module.Serialize()
	if len(data) < 20 {
		t.Fatalf("module too small: got %d bytes, want at least 20", len(data))
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		t.Errorf("invalid magic: got 0x%08X, want 0x%08X", magic, uint32(MagicNumber))
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	want := uint32(1<<16 | 3<<8)
	if version != want {
		t.Errorf("invalid version word: got 0x%08X, want 0x%08X", version, want)
	}
	bound := binary.LittleEndian.Uint32(data[12:16])
	if bound == 0 {
		t.Error("bound should be > 0")
	}
	schema := binary.LittleEndian.Uint32(data[16:20])
	if schema != 0 {
		t.Errorf("schema should be 0, got %d", schema)
	}
}

func TestModule_SerializeFunction(t *testing.T) {
	module := NewModule(Version1_3)
	builder := NewBuilder(module)
	module.AddCapability(CapabilityShader)
	module.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	voidType := module.AddTypeVoid()
	fnType := module.AddTypeFunction(voidType)
	fn := builder.NewFunction(voidType, fnType)
	entry := builder.NewBlock(fn)
	fn.AddBlock(entry)
	builder.SetBuildPoint(entry)
	builder.CreateReturn()

	words := module.Words()

	// Walk the instruction stream past the header and account for every
	// word; a malformed length word would desynchronize the walk.
	sawFunction, sawLabel, sawReturn, sawEnd := false, false, false, false
	i := 5
	for i < len(words) {
		count := int(words[i] >> 16)
		opcode := Opcode(words[i] & 0xFFFF)
		if count == 0 {
			t.Fatalf("zero-length instruction at word %d", i)
		}
		switch opcode {
		case OpFunction:
			sawFunction = true
		case OpLabel:
			sawLabel = true
		case OpReturn:
			sawReturn = true
		case OpFunctionEnd:
			sawEnd = true
		}
		i += count
	}
	if i != len(words) {
		t.Errorf("instruction stream is misaligned: ended at %d of %d", i, len(words))
	}
	if !sawFunction || !sawLabel || !sawReturn || !sawEnd {
		t.Errorf("missing function structure: function=%v label=%v return=%v end=%v",
			sawFunction, sawLabel, sawReturn, sawEnd)
	}
}

func TestModule_DecorationsSerialized(t *testing.T) {
	module := NewModule(Version1_3)
	builder := NewBuilder(module)
	floatType := module.AddTypeFloat(32)
	fnType := module.AddTypeFunction(floatType)
	fn := builder.NewFunction(floatType, fnType)
	entry := builder.NewBlock(fn)
	fn.AddBlock(entry)
	builder.SetBuildPoint(entry)

	a := module.AddConstantFloat32(floatType, 1.5)
	result := builder.CreateNoContractionBinOp(OpFMul, floatType, a, a)

	words := module.Words()
	found := false
	i := 5
	for i < len(words) {
		count := int(words[i] >> 16)
		if Opcode(words[i]&0xFFFF) == OpDecorate &&
			words[i+1] == uint32(result) &&
			words[i+2] == uint32(DecorationNoContraction) {
			found = true
		}
		i += count
	}
	if !found {
		t.Errorf("OpDecorate NoContraction for %d not found in serialized module", result)
	}
}

func TestModule_SpecConstant(t *testing.T) {
	module := NewModule(Version1_3)
	uintType := module.AddTypeInt(32, false)
	sc := module.AddSpecConstant(uintType, 4, 0)

	if sc == 0 {
		t.Fatal("AddSpecConstant returned zero id")
	}
	decs := module.Decorations(sc)
	if len(decs) != 1 || decs[0] != DecorationSpecID {
		t.Errorf("decorations = %v, want [SpecId]", decs)
	}

	words := module.Words()
	found := false
	i := 5
	for i < len(words) {
		count := int(words[i] >> 16)
		if Opcode(words[i]&0xFFFF) == OpSpecConstant {
			found = true
		}
		i += count
	}
	if !found {
		t.Error("OpSpecConstant not found in serialized module")
	}
}
