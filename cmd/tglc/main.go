// Command tglc is the TGL-to-PTX compiler CLI (spec.md §6.2).
//
// Usage:
//
//	tglc --src kernel.tgl [--target nvidia] [--sm 70] [--save-temps] [--out DIR]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/tinygpulang/tglc"
	"github.com/tinygpulang/tglc/astdump"
	"github.com/tinygpulang/tglc/diag"
)

var (
	versionFlag = flag.Bool("version", false, "print version and exit")
	helpFlag    = flag.Bool("help", false, "print usage and exit")
	srcFlag     = flag.String("src", "", "path to a .tgl source file (required)")
	targetFlag  = flag.String("target", "nvidia", "target selection")
	saveTemps   = flag.Bool("save-temps", false, "also write .ast and .ll alongside the PTX")
	outFlag     = flag.String("out", "", "write artifacts into this directory instead of alongside the source")
	smFlag      = flag.String("sm", "", "SM version for the backend's .target directive, e.g. 70")
)

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("tglc version %s\n", version())
		return
	}
	if *helpFlag {
		usage()
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if *srcFlag == "" {
		return diag.Unpositioned("--src is required")
	}
	if filepath.Ext(*srcFlag) != ".tgl" {
		return diag.Unpositioned(fmt.Sprintf("wrong extension for source file: %s", *srcFlag))
	}
	if *targetFlag != "nvidia" {
		return diag.Unpositioned(fmt.Sprintf("unsupported target: %s", *targetFlag))
	}

	source, err := os.ReadFile(*srcFlag)
	if err != nil {
		return diag.Unpositioned(fmt.Sprintf("cannot open source: %v", err))
	}

	base := strings.TrimSuffix(filepath.Base(*srcFlag), ".tgl")
	dir := filepath.Dir(*srcFlag)
	if *outFlag != "" {
		dir = *outFlag
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return diag.Unpositioned(fmt.Sprintf("cannot create output directory: %v", err))
		}
	}

	sm := ""
	if *smFlag != "" {
		sm = "sm_" + *smFlag
	}

	result, err := tglc.CompileWithOptions(string(source), tglc.CompileOptions{
		Triple: "nvptx64-nvidia-cuda",
		SM:     sm,
	})
	if err != nil {
		return err
	}
	defer result.Close()

	ptxPath := filepath.Join(dir, base+".ptx")
	if err := result.Target.EmitAssembly(ptxPath); err != nil {
		return diag.Unpositioned(fmt.Sprintf("cannot emit PTX: %v", err))
	}

	if *saveTemps {
		astPath := filepath.Join(dir, base+".ast")
		if err := os.WriteFile(astPath, []byte(astdump.Dump(result.Module)), 0o644); err != nil {
			return diag.Unpositioned(fmt.Sprintf("cannot write .ast: %v", err))
		}

		llPath := filepath.Join(dir, base+".ll")
		if err := result.Target.EmitIR(llPath); err != nil {
			return diag.Unpositioned(fmt.Sprintf("cannot write .ll: %v", err))
		}
	}

	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: tglc --src FILE.tgl [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}
