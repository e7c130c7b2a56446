package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"rvsdgc/internal/bridge"
	"rvsdgc/internal/config"
	"rvsdgc/internal/diag"
	"rvsdgc/internal/textir"
)

// stringList collects repeated flag occurrences, one value per -opt, the
// way a repeatable CLI flag is conventionally done with the standard
// flag package (no third-party flag library appears anywhere in the pack).
type stringList []string

func (l *stringList) String() string { return fmt.Sprint([]string(*l)) }
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var opts stringList
	flag.Var(&opts, "opt", "optimization pass to run, by name (repeatable)")
	outPath := flag.String("o", "", "output file (default: stdout)")
	textual := flag.Bool("S", false, "emit textual TAC instead of a DOT graph")
	view := flag.String("view", "", "dump the named function's RVSDG as a DOT graph instead of running the pipeline to completion")
	configPath := flag.String("config", "", "YAML pipeline configuration file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: rvsdgc [flags] <file.tir>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	if err := run(path, opts, *outPath, *textual, *view, *configPath); err != nil {
		color.Red("rvsdgc: %s", err)
		os.Exit(1)
	}
}

func run(path string, optNames []string, outPath string, textual bool, view string, configPath string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	prog, err := textir.Parse(path, string(source))
	if err != nil {
		return err
	}
	funcs, err := textir.Build(prog)
	if err != nil {
		return fmt.Errorf("building CFGs: %w", err)
	}

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}
	if len(optNames) > 0 {
		cfg.Passes = optNames
	}

	target := view
	if target == "" {
		if len(prog.Functions) == 0 {
			return fmt.Errorf("%s declares no functions", path)
		}
		target = prog.Functions[0].Name
	}
	fn, ok := funcs[target]
	if !ok {
		return fmt.Errorf("no function named %q in %s", target, path)
	}

	graph, err := bridge.BuildGraph(fn.CFG, fn.Params)
	if err != nil {
		return fmt.Errorf("constructing RVSDG for %q: %w", target, err)
	}
	config.ApplyNormalForms(graph, cfg.NormalForms)

	if view != "" {
		return writeOutput(outPath, diag.DumpDOT(graph.Root()))
	}

	passes, err := config.BuildPasses(cfg)
	if err != nil {
		return err
	}
	reports, err := diag.RunPasses(passes, graph.Root())
	if err != nil {
		return fmt.Errorf("running pipeline on %q: %w", target, err)
	}
	slog.Info("pipeline finished", "function", target, "passes", len(reports))
	fmt.Fprint(os.Stderr, diag.FormatReports(reports))

	if textual {
		lowered, _, err := bridge.Lower(graph.Root(), fn.Params)
		if err != nil {
			return fmt.Errorf("lowering %q back to TAC: %w", target, err)
		}
		return writeOutput(outPath, diag.DumpCFG(lowered))
	}
	return writeOutput(outPath, diag.DumpDOT(graph.Root()))
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	color.Green("wrote %s", path)
	return nil
}
