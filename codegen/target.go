// Package codegen implements the IR lowering visitor of spec.md §4.4
// against a backend façade (§4.5) that isolates the rest of the compiler
// from any particular code-generation library — the concrete NVPTX
// binding lives in package llvmtarget; package recorder is the
// in-memory test double spec.md §9 calls for explicitly.
package codegen

// Value is an opaque handle into the backend's own value space (an LLVM
// llvm.Value, a recorded token, or anything else a Target chooses). The
// lowering visitor never inspects it — only passes it back to the
// Target that produced it.
type Value any

// ParamKind tells a Target how to materialize a function parameter:
// TensorParam arrives as a pointer to the element type, ScalarParam as
// the element value itself (spec.md §4.4.1).
type ParamKind int

const (
	ScalarParam ParamKind = iota
	TensorParam
)

// Target is the backend façade of spec.md §4.5. Every method must be
// usable during a single linear pass over one kernel's body; the
// lowering visitor never revisits a basic block.
type Target interface {
	// CreateModule begins a fresh backend module. triple is a target
	// triple (e.g. "nvptx64-nvidia-cuda") used to install the data
	// layout; sm names the target SM version (e.g. "sm_70") for the
	// backend's own `.target` directive.
	CreateModule(triple, sm string)

	// CreateFunction declares a function with the given parameter kinds
	// and return-value presence, returning its Value handle. Device
	// kernels and global kernels are declared identically; only
	// AnnotateEntryPoint distinguishes them.
	CreateFunction(name string, params []ParamKind, hasReturn bool) Value

	// Param returns the handle for the function's i'th parameter.
	Param(fn Value, index int) Value

	// CreateBasicBlock appends a new block to fn and returns its handle.
	CreateBasicBlock(fn Value, name string) Value

	// SetInsertPoint directs subsequent emission into block.
	SetInsertPoint(block Value)

	// ReadThreadIndex emits a read of the x-dimension hardware thread
	// index register (spec.md §4.4.2).
	ReadThreadIndex() Value

	// ConstantFloat materializes a floating-point literal.
	ConstantFloat(v float32) Value

	// GEP computes base+index as an element pointer.
	GEP(base, index Value) Value
	// Load reads the element pointed to by ptr.
	Load(ptr Value) Value
	// Store writes value to the element pointed to by ptr.
	Store(value, ptr Value)

	FAdd(lhs, rhs Value) Value
	FSub(lhs, rhs Value) Value
	FMul(lhs, rhs Value) Value
	FDiv(lhs, rhs Value) Value

	// CallIntrinsic invokes a named target intrinsic (spec.md §4.4.5).
	CallIntrinsic(name string, args []Value) Value
	// CallFunction invokes a previously created function.
	CallFunction(fn Value, args []Value) Value

	RetVoid()
	RetValue(v Value)

	// AnnotateEntryPoint marks fn as a GPU entry point (spec.md §4.4.10).
	AnnotateEntryPoint(fn Value)

	// EmitAssembly writes the compiled module's target assembly to path.
	EmitAssembly(path string) error
	// EmitIR writes a text dump of the backend IR to path (the `.ll`
	// artifact of spec.md §6.3, produced only with --save-temps).
	EmitIR(path string) error
}
