// spvemit - emits a sample translated shader module
// Exercises the structured-if and spec-constant paths of the builder and
// writes the binary for inspection with spirv-val / spirv-dis.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/xenos/spirv"
)

func main() {
	out := "sample.spv"
	if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "usage: spvemit [output.spv]\n")
		os.Exit(2)
	}
	if len(os.Args) == 2 {
		out = os.Args[1]
	}

	data := buildSample()
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "spvemit: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), out)
}

// buildSample constructs a small module: a void function computing
// |x| via a structured if/else with a merge phi, a no-contraction multiply,
// and a sqrt builtin call, plus one spec constant folded expression.
func buildSample() []byte {
	module := spirv.NewModule(spirv.Version1_3)
	module.AddCapability(spirv.CapabilityShader)
	module.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	glsl := module.AddExtInstImport("GLSL.std.450")

	builder := spirv.NewBuilder(module)

	voidType := module.AddTypeVoid()
	boolType := module.AddTypeBool()
	floatType := module.AddTypeFloat(32)
	uintType := module.AddTypeInt(32, false)
	fnType := module.AddTypeFunction(voidType)

	x := module.AddConstantFloat32(floatType, -2.5)
	zero := module.AddConstantFloat32(floatType, 0)

	// A pipeline-state parameter folded at pipeline creation: sampleCount*2.
	sampleCount := module.AddSpecConstant(uintType, 1, 0)
	two := module.AddConstant(uintType, 2)
	builder.SetSpecConstantMode(true)
	builder.CreateBinOp(spirv.OpIMul, uintType, sampleCount, two)
	builder.SetSpecConstantMode(false)

	fn := builder.NewFunction(voidType, fnType)
	entry := builder.NewBlock(fn)
	fn.AddBlock(entry)
	builder.SetBuildPoint(entry)

	negative := builder.CreateBinOp(spirv.OpFOrdLessThan, boolType, x, zero)
	iff := spirv.NewIf(builder, negative, spirv.SelectionControlNone, 0, 0)
	negated := builder.CreateUnaryOp(spirv.OpFNegate, floatType, x)
	iff.BeginElse(true)
	passed := builder.CreateNoContractionBinOp(spirv.OpFMul, floatType, x,
		module.AddConstantFloat32(floatType, 1))
	iff.End(true)
	abs := iff.CreateMergePhi(negated, passed)

	builder.CreateUnaryBuiltinCall(floatType, glsl, spirv.GLSLstd450Sqrt, abs)
	builder.CreateReturn()

	return module.Serialize()
}
