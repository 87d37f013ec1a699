package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/philatools/perf-gauge-mcp/internal/imaging"
	"github.com/philatools/perf-gauge-mcp/internal/perforation"
	"github.com/philatools/perf-gauge-mcp/internal/report"
	"github.com/philatools/perf-gauge-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("perf-gauge-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "measure":
			if err := runMeasure(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	logLevel := os.Getenv("PERF_GAUGE_LOG_LEVEL")
	if logLevel == "debug" {
		log.Printf("Perforation Gauge MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	srv := server.New()
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printHelp() {
	fmt.Println("perf-gauge-mcp - MCP server for stamp perforation gauge measurement")
	fmt.Println()
	fmt.Println("Usage: perf-gauge-mcp [options]")
	fmt.Println("       perf-gauge-mcp measure [flags] <image>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  measure          Measure one scan and print a text report")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  PERF_GAUGE_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println()
	fmt.Println("Without a command this server communicates via MCP protocol")
	fmt.Println("over stdin/stdout. Configure it in your MCP client.")
}

// runMeasure analyzes a single scan from the command line and prints the
// text report to stdout, for use outside an MCP client.
func runMeasure(args []string) error {
	fs := flag.NewFlagSet("measure", flag.ExitOnError)
	dpi := fs.Int("dpi", 600, "scan resolution in dots per inch")
	background := fs.String("background", "black", "scan background: black, dark_gray, light_gray, white, or auto")
	method := fs.String("method", "hole", "detection method: hole or line")
	outDir := fs.String("out", "", "directory to also write the report file into")
	csvPath := fs.String("csv", "", "file to write per-edge CSV records into")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one image path, got %d", fs.NArg())
	}
	path := fs.Arg(0)

	cache := imaging.NewImageCache()
	img, err := cache.Load(path)
	if err != nil {
		return err
	}

	bg := perforation.Background(*background)
	if *background == "auto" {
		bg = perforation.EstimateBackground(img)
	}

	engine := perforation.NewEngine(*dpi, bg)
	if *method == "line" {
		engine.Method = perforation.MethodLine
	}

	analysis := engine.Measure(img)
	if err := report.WriteText(os.Stdout, analysis, path); err != nil {
		return err
	}
	if *outDir != "" {
		file, err := report.WriteTextFile(*outDir, path, analysis)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", file)
	}
	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := report.WriteCSV(f, report.EdgeRecords(path, analysis)); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "csv written to %s\n", *csvPath)
	}
	return nil
}
