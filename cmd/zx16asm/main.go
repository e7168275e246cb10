// Command zx16asm assembles ZX16 assembly source into one of several
// downstream formats: a flat binary image, Intel HEX, a synthesizable
// Verilog lookup module, or a $readmemh memory file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"zx16asm/assembler"
	"zx16asm/config"
	"zx16asm/lint"
	"zx16asm/listing"
	"zx16asm/output"
	"zx16asm/xref"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	fs := flag.NewFlagSet("zx16asm", flag.ContinueOnError)
	var (
		showVersion   = fs.Bool("version", false, "Show version information")
		outputFile    = fs.String("o", "", "Output file")
		outputFileAlt = fs.String("output", "", "Output file")
		format        = fs.String("f", cfg.Assembler.DefaultFormat, "Output format: bin, hex, verilog, mem")
		formatAlt     = fs.String("format", cfg.Assembler.DefaultFormat, "Output format: bin, hex, verilog, mem")
		listingFile   = fs.String("l", "", "Generate listing file")
		listingAlt    = fs.String("listing", "", "Generate listing file")
		verbose       = fs.Bool("v", cfg.Assembler.Verbose, "Verbose output")
		verboseAlt    = fs.Bool("verbose", cfg.Assembler.Verbose, "Verbose output")
		verilogModule = fs.String("verilog-module", "program_memory", "Verilog module name")
		memSparse     = fs.Bool("mem-sparse", cfg.Assembler.MemSparse, "Generate sparse memory file")
		lintEnabled   = fs.Bool("lint", false, "Run lint checks and print issues")
		xrefFile      = fs.String("xref", "", "Write a symbol cross-reference report to FILE")
	)
	fs.Usage = func() { printHelp(fs) }

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Printf("zx16asm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		return 0
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	inputPath := fs.Arg(0)

	out := firstNonEmpty(*outputFile, *outputFileAlt)
	outFormat := firstNonEmpty(*format, *formatAlt)
	listingOut := firstNonEmpty(*listingFile, *listingAlt)
	isVerbose := *verbose || *verboseAlt

	return assemble(inputPath, out, outFormat, listingOut, *xrefFile, *verilogModule, *memSparse, isVerbose, *lintEnabled)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func assemble(inputPath, outputPath, format, listingPath, xrefPath, verilogModule string, memSparse, verbose, lintEnabled bool) int {
	source, err := os.ReadFile(inputPath) // #nosec G304 -- user-specified input file
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: Input file '%s' not found\n", inputPath)
		} else {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		}
		return 1
	}
	sourceLines := strings.Split(strings.TrimRight(string(source), "\n"), "\n")

	a := assembler.New(inputPath)
	success := a.Assemble(string(source))

	printDiagnostics(a)

	if !success {
		return 1
	}

	if lintEnabled {
		for _, issue := range lint.Analyze(a) {
			fmt.Println(issue.String())
		}
	}

	if xrefPath != "" {
		report := xref.Format(xref.Generate(a))
		if err := os.WriteFile(xrefPath, []byte(report), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing cross-reference file: %v\n", err)
			return 1
		}
		if verbose {
			fmt.Printf("Cross-reference written to %s\n", xrefPath)
		}
	}

	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, format)
	}

	var data []byte
	switch format {
	case "bin":
		data = output.Binary(a.Sections)
	case "hex":
		data = []byte(output.IntelHex(a.Sections))
	case "verilog":
		data = []byte(output.Verilog(a.Sections, verilogModule))
	case "mem":
		data = []byte(output.MemoryFile(a.Sections, memSparse))
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown output format %q\n", format)
		return 1
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		return 1
	}
	if verbose {
		fmt.Printf("Output written to %s\n", outputPath)
	}

	if listingPath != "" {
		content := listing.Generate(a, sourceLines)
		if err := os.WriteFile(listingPath, []byte(content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing listing file: %v\n", err)
			return 1
		}
		if verbose {
			fmt.Printf("Listing written to %s\n", listingPath)
		}
	}

	return 0
}

func defaultOutputPath(inputPath, format string) string {
	ext := map[string]string{"bin": ".bin", "hex": ".hex", "verilog": ".v", "mem": ".mem"}[format]
	if ext == "" {
		ext = ".bin"
	}
	base := inputPath[:len(inputPath)-len(filepath.Ext(inputPath))]
	return base + ext
}

func printDiagnostics(a *assembler.Assembler) {
	for _, e := range a.Diagnostics.Errors {
		fmt.Fprintln(os.Stderr, strings.TrimRight(e.Error(), "\n"))
	}
	for _, w := range a.Diagnostics.Warnings {
		fmt.Fprintln(os.Stderr, w.String())
	}

	if a.Diagnostics.HasErrors() {
		fmt.Fprintln(os.Stderr, "\n"+capitalize(a.Diagnostics.Summary())+".")
		return
	}
	fmt.Println(capitalize(a.Diagnostics.Summary()) + ".")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func printHelp(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `zx16asm %s

Usage: zx16asm [options] <assembly-file>

Options:
  -o, --output FILE       Output file (default: input with the format's extension)
  -f, --format FMT        Output format: bin, hex, verilog, mem (default: %s)
  -l, --listing FILE      Generate a listing file
  --verilog-module NAME   Verilog module name (default: program_memory)
  --mem-sparse            Generate a sparse memory file (format=mem only)
  --lint                  Run lint checks and print issues
  --xref FILE             Write a symbol cross-reference report to FILE
  -v, --verbose           Verbose output
  -version                Show version information

Examples:
  zx16asm program.asm
  zx16asm -f hex -o program.hex program.asm
  zx16asm --lint --xref program.xref program.asm
`, Version, config.DefaultConfig().Assembler.DefaultFormat)
}
