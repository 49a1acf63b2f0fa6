// Package xenos translates the command stream and shader semantics of a
// legacy console GPU into constructs a modern explicit graphics API can
// execute.
//
// The translation core consists of four packages:
//
//   - spirv: an instruction-graph builder for SPIR-V shader modules
//     translated from the legacy GPU's microcode: basic blocks, structured
//     selection constructs, merge-phi bookkeeping, and specialization-constant
//     folding, plus binary serialization of the finished module.
//   - primitive: a draw-call index-stream converter that rewrites legacy
//     topologies (triangle fans in particular) and primitive-restart
//     conventions the host API does not accept.
//   - upload: a frame-scoped, pooled upload-buffer allocator backing the
//     converter's scratch output.
//   - register: the emulated register file the draw path reads its
//     primitive-restart state from, plus the hardware's endian-swap modes.
//
// The shader-translation front end drives spirv; the command-processor draw
// path drives primitive, which allocates from upload and reads register.
// Everything here is single-threaded by design: emulated command streams are
// recorded by exactly one thread per frame.
package xenos
