// Package tglc provides the top-level TGL-to-PTX compiler API.
//
// tglc compiles TGL (tiny GPU language) source code to NVIDIA PTX
// assembly through a small staged pipeline:
//
//   - Parse:  TGL source -> AST (package parser)
//   - Lower:  AST -> backend IR (package codegen, against a codegen.Target)
//   - Emit:   backend IR -> PTX assembly / optional .ast and .ll dumps
//
// Example usage:
//
//	mod, err := tglc.Parse(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := tglc.CompileWithOptions(source, tglc.DefaultOptions())
package tglc

import (
	"fmt"

	"github.com/tinygpulang/tglc/ast"
	"github.com/tinygpulang/tglc/codegen"
	"github.com/tinygpulang/tglc/llvmtarget"
	"github.com/tinygpulang/tglc/parser"
)

// CompileOptions configures one compilation (spec.md §6.2).
type CompileOptions struct {
	// Triple is the LLVM target triple; spec.md's only supported target
	// is NVIDIA PTX.
	Triple string

	// SM is the target SM version passed as `sm_NN` to the backend for
	// the `.target` PTX directive (the `--sm` flag).
	SM string
}

// DefaultOptions targets a generic NVPTX device with no specific SM.
func DefaultOptions() CompileOptions {
	return CompileOptions{Triple: "nvptx64-nvidia-cuda"}
}

// Result holds everything a caller needs to write the artifacts of
// spec.md §6.3.
type Result struct {
	Module *ast.Module
	Target *llvmtarget.Target
}

// Close releases the backend resources held by Target.
func (r *Result) Close() {
	r.Target.Close()
}

// Parse parses TGL source into an AST, per spec.md §4.3.
func Parse(source string) (*ast.Module, error) {
	return parser.New(source).Parse()
}

// Compile parses and lowers source using DefaultOptions.
func Compile(source string) (*Result, error) {
	return CompileWithOptions(source, DefaultOptions())
}

// CompileWithOptions runs the full pipeline: parse, then lower against a
// fresh llvmtarget.Target. The caller is responsible for calling
// Result.Close and for invoking Target.EmitAssembly/EmitIR to persist
// artifacts.
func CompileWithOptions(source string, opts CompileOptions) (*Result, error) {
	mod, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	target := llvmtarget.New()
	if err := codegen.Lower(mod, target, codegen.Options{Triple: opts.Triple, SM: opts.SM}); err != nil {
		target.Close()
		return nil, fmt.Errorf("lowering error: %w", err)
	}

	return &Result{Module: mod, Target: target}, nil
}
