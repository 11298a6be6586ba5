package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"go.uber.org/zap"

	"github.com/jacoelho/modelxml"
	mxerrors "github.com/jacoelho/modelxml/errors"
	"github.com/jacoelho/modelxml/pkg/model"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// pathList collects a repeatable flag.
type pathList []string

func (p *pathList) String() string {
	return strings.Join(*p, ",")
}

func (p *pathList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("modelxml", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var modelPaths pathList
	fs.Var(&modelPaths, "model", "path to a model package descriptor (YAML or JSON, repeatable)")
	rootType := fs.String("root", "", "qualified type name of the document root, e.g. props:Root")
	lax := fs.Bool("lax", false, "report recoverable element errors as warnings")
	format := fs.Bool("format", false, "indent the written document")
	preamble := fs.Bool("preamble", true, "write the XML declaration")
	verbose := fs.Bool("v", false, "verbose diagnostics")
	cpuProfilePath := fs.String("cpuprofile", "", "write CPU profile to file")
	memProfilePath := fs.String("memprofile", "", "write memory profile to file")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: %s --model <package.yaml> --root <prefix:Type> <document.xml>\n\n", os.Args[0]),
			writeln(stderr, "Reads an XML document into the model and writes it back to stdout."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if len(modelPaths) == 0 || *rootType == "" {
		if err := writeln(stderr, "error: --model and --root are required"); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		if err := writeln(stderr, "error: exactly one XML file argument is required"); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}
	xmlPath := remaining[0]

	logger, err := newLogger(*verbose)
	if err != nil {
		_ = writef(stderr, "error creating logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if *cpuProfilePath != "" {
		stopCPUProfile, err := startCPUProfile(*cpuProfilePath)
		if err != nil {
			_ = writef(stderr, "error starting CPU profile: %v\n", err)
			return 1
		}
		defer func() {
			if err := stopCPUProfile(); err != nil {
				_ = writef(stderr, "error stopping CPU profile: %v\n", err)
			}
		}()
	}

	if *memProfilePath != "" {
		defer func() {
			if err := writeMemProfile(*memProfilePath); err != nil {
				_ = writef(stderr, "error writing memory profile: %v\n", err)
			}
		}()
	}

	reg, err := loadModel(modelPaths)
	if err != nil {
		_ = writef(stderr, "error loading model: %v\n", err)
		return 1
	}

	reader, err := modelxml.NewReader(reg, modelxml.NewReadOptions().WithLax(*lax).WithLogger(logger))
	if err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return 1
	}
	writer, err := modelxml.NewWriter(reg, modelxml.NewWriteOptions().
		WithFormat(*format).
		WithPreamble(*preamble).
		WithLogger(logger))
	if err != nil {
		_ = writef(stderr, "error: %v\n", err)
		return 1
	}

	res, err := reader.FromXMLFile(context.Background(), xmlPath, *rootType)
	if err != nil {
		if pe, ok := mxerrors.AsParseError(err); ok {
			if writeErr := writeWarnings(stderr, pe.Warnings); writeErr != nil {
				return 1
			}
		}
		_ = writef(stderr, "%s: %v\n", xmlPath, err)
		return 1
	}
	if err := writeWarnings(stderr, res.Warnings); err != nil {
		return 1
	}

	if err := writer.WriteTo(stdout, res.Root); err != nil {
		_ = writef(stderr, "error writing: %v\n", err)
		return 1
	}
	if !*format {
		if err := writeln(stdout); err != nil {
			return 1
		}
	}
	return 0
}

func loadModel(paths []string) (*model.Registry, error) {
	descs := make([]model.PackageDescriptor, 0, len(paths))
	for _, path := range paths {
		desc, err := loadPackage(path)
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	return model.New(descs...)
}

func loadPackage(path string) (desc model.PackageDescriptor, err error) {
	f, err := os.Open(path)
	if err != nil {
		return model.PackageDescriptor{}, fmt.Errorf("open model %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close model %s: %w", path, closeErr)
		}
	}()
	desc, err = model.LoadPackage(f)
	if err != nil {
		return model.PackageDescriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	return cfg.Build()
}

func writeWarnings(w io.Writer, warnings []mxerrors.Warning) error {
	for _, warning := range warnings {
		if err := writeln(w, "warning:", warning.String()); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile %s: %w", path, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return nil, fmt.Errorf("start cpu profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return nil, fmt.Errorf("start cpu profile %s: %w", path, err)
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return fmt.Errorf("close cpu profile %s: %w", path, err)
		}
		return nil
	}, nil
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mem profile %s: %w", path, err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("write mem profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return fmt.Errorf("write mem profile %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mem profile %s: %w", path, err)
	}
	return nil
}
