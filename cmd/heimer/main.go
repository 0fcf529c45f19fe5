package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	cli "github.com/jawher/mow.cli"

	"github.com/heimer-format/heimer"
	_ "github.com/heimer-format/heimer/graphql"
)

func main() {
	app := cli.App("heimer", "Compile a line-oriented format specification")
	app.Spec = "[-l] [-o] [-d] [-c] [-v] FORMAT"
	var (
		lang    = app.StringOpt("l lang", "", "output language ("+strings.Join(heimer.EmitterNames(), ", ")+"), by default taken from the output file extension")
		out     = app.StringOpt("o out", "", "output file, written to stdout if omitted")
		outDir  = app.StringOpt("d dir", "", "directory the output file is written to, created if missing")
		config  = app.StringOpt("c config", "", "config file (.json, .yaml or .hcl)")
		verbose = app.BoolOpt("v verbose", false, "log what the compiler is doing")
		path    = app.StringArg("FORMAT", "", "format specification file")
	)
	app.Action = func() {
		if *verbose {
			heimer.Verbose = true
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
		emitter := chooseEmitter(*lang, *out)
		if emitter == nil {
			fmt.Fprintf(os.Stderr, "Unsupported output language %q\n\n", *lang)
			app.PrintHelp()
			cli.Exit(1)
		}
		if err := run(emitter, *path, *out, *outDir, *config); err != nil {
			code, usage := report(os.Stderr, err)
			if usage {
				fmt.Fprintln(os.Stderr)
				app.PrintHelp()
			}
			cli.Exit(code)
		}
	}
	app.Run(os.Args)
}

func chooseEmitter(lang, out string) heimer.Emitter {
	if lang != "" {
		return heimer.FindEmitter(lang)
	}
	if e := heimer.EmitterForFile(out); e != nil {
		return e
	}
	return heimer.FindEmitter("json")
}

// report prints the error of a failed run. It returns the exit status and
// whether usage should follow, which is the case when the format file could
// not be read at all.
func report(w io.Writer, err error) (int, bool) {
	var diags *heimer.Diagnostics
	if !errors.As(err, &diags) {
		fmt.Fprintf(w, "*** %v\n", err)
		return 2, false
	}
	fmt.Fprint(w, diags.Annotate(heimer.RED, 2))
	var perr *fs.PathError
	if errors.As(diags, &perr) {
		return 1, true
	}
	return 2, false
}

func run(emitter heimer.Emitter, path, out, outDir, configPath string) error {
	conf := heimer.NewData()
	if configPath != "" {
		var err error
		if conf, err = heimer.DataFromFile(configPath); err != nil {
			return err
		}
	}
	model, err := heimer.ParseFile(path, conf)
	if err != nil {
		return err
	}
	heimer.Debug("emit", "language", emitter.Name(), "records", len(model.Records()))
	s, err := emitter.Emit(model, conf)
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Print(s)
		return nil
	}
	gen := &heimer.Generator{Config: conf, OutDir: outDir}
	gen.WriteFile(out, s)
	return gen.Err
}
