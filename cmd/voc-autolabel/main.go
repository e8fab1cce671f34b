package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/ironsheep/voc-autolabel/internal/config"
	"github.com/ironsheep/voc-autolabel/internal/dataset"
	"github.com/ironsheep/voc-autolabel/internal/detection"
	"github.com/ironsheep/voc-autolabel/internal/pipeline"
	"github.com/ironsheep/voc-autolabel/internal/server"
	"github.com/ironsheep/voc-autolabel/internal/voc"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "voc-autolabel - bounding-box annotations for single-object images")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  voc-autolabel annotate -label L [-threshold T] [-o out.xml] image")
	fmt.Fprintln(w, "  voc-autolabel batch -label L [-threshold T] [-workers N] [-out dir] dir")
	fmt.Fprintln(w, "  voc-autolabel copy -src dir -dst dir [-test-ratio R] file...")
	fmt.Fprintln(w, "  voc-autolabel serve")
	fmt.Fprintln(w, "  voc-autolabel version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (also read from ./.env):")
	fmt.Fprintf(w, "  %s=240      Foreground gray-level cutoff\n", config.EnvThreshold)
	fmt.Fprintf(w, "  %s=          Default object label\n", config.EnvLabel)
	fmt.Fprintf(w, "  %s=          Batch worker count (default: CPU count)\n", config.EnvWorkers)
	fmt.Fprintf(w, "  %s=info      debug, info, warn or error\n", config.EnvLogLevel)
	fmt.Fprintf(w, "  %s=trace       Contour backend: trace or gocv\n", config.EnvBackend)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "serve speaks MCP over stdin/stdout; configure it in your MCP client.")
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 1
	}

	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "voc-autolabel %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		usage(stdout)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	// Logs go to stderr; stdout carries results (and the MCP protocol in serve).
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	tracer, err := detection.NewTracer(cfg.Backend)
	if err != nil {
		logger.Error("contour backend unavailable", "backend", cfg.Backend, "error", err)
		return 1
	}

	newAnnotator := func(threshold int) (*pipeline.Annotator, error) {
		if threshold < 0 || threshold > 255 {
			return nil, fmt.Errorf("threshold %d outside 0-255", threshold)
		}
		return pipeline.New(pipeline.Config{
			Threshold: uint8(threshold),
			Label:     cfg.Label,
			Tracer:    tracer,
			Logger:    logger,
		}), nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "annotate":
		err = runAnnotate(rest, cfg, newAnnotator, stdout, stderr)
	case "batch":
		err = runBatch(ctx, rest, cfg, newAnnotator, stdout, stderr)
	case "copy":
		err = runCopy(rest, stdout, stderr)
	case "serve":
		var ann *pipeline.Annotator
		if ann, err = newAnnotator(int(cfg.Threshold)); err == nil {
			logger.Debug("starting MCP server", "version", Version, "commit", GitCommit)
			err = server.New(server.Options{Annotator: ann, Workers: cfg.Workers, Logger: logger}).Run(ctx)
		}
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		usage(stderr)
		return 1
	}

	if err != nil {
		if err != flag.ErrHelp {
			logger.Error(cmd+" failed", "kind", pipeline.Kind(err), "error", err)
		}
		return 1
	}
	return 0
}

type annotatorFactory func(threshold int) (*pipeline.Annotator, error)

func runAnnotate(args []string, cfg *config.Config, newAnnotator annotatorFactory, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	label := fs.String("label", cfg.Label, "object label")
	threshold := fs.Int("threshold", int(cfg.Threshold), "foreground gray-level cutoff (0-255)")
	output := fs.String("o", "", "output path (default: image path with .xml extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("annotate takes exactly one image, got %d", fs.NArg())
	}

	ann, err := newAnnotator(*threshold)
	if err != nil {
		return err
	}

	imagePath := fs.Arg(0)
	if *output == "" {
		*output = voc.OutputPath(imagePath, "")
	}

	out, err := ann.GenerateAnnotation(imagePath, *output, *label)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %s %s\n", *output, out.Annotation.Objects[0].Name, out.Box)
	return nil
}

func runBatch(ctx context.Context, args []string, cfg *config.Config, newAnnotator annotatorFactory, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	label := fs.String("label", cfg.Label, "object label for every image")
	threshold := fs.Int("threshold", int(cfg.Threshold), "foreground gray-level cutoff (0-255)")
	workers := fs.Int("workers", cfg.Workers, "number of images processed in parallel")
	outDir := fs.String("out", "", "annotation directory (default: next to each image)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("batch takes exactly one directory, got %d", fs.NArg())
	}
	if *label == "" {
		return pipeline.ErrEmptyLabel
	}

	ann, err := newAnnotator(*threshold)
	if err != nil {
		return err
	}

	jobs, err := pipeline.JobsFromDir(fs.Arg(0), *outDir, *label)
	if err != nil {
		return err
	}

	results := ann.RunBatch(ctx, jobs, *workers)
	for _, r := range results {
		if r.Err == nil {
			fmt.Fprintf(stdout, "%s: %s\n", filepath.Base(r.Job.ImagePath), r.Box)
		}
	}

	s := pipeline.Summarize(results)
	fmt.Fprintf(stdout, "%d images, %d annotated", s.Total, s.Succeeded)
	kinds := make([]string, 0, len(s.Failed))
	for k := range s.Failed {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(stdout, ", %d %s", s.Failed[k], k)
	}
	fmt.Fprintln(stdout)

	if failed := s.Total - s.Succeeded; failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, s.Total)
	}
	return nil
}

func runCopy(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("copy", flag.ContinueOnError)
	fs.SetOutput(stderr)
	src := fs.String("src", "", "source directory")
	dst := fs.String("dst", "", "destination directory")
	ratio := fs.Float64("test-ratio", 0, "fraction of files copied to dst/test (others go to dst/train)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *src == "" || *dst == "" {
		return fmt.Errorf("copy requires -src and -dst")
	}

	if *ratio == 0 {
		res, err := dataset.CopyPairs(fs.Args(), *src, *dst)
		if res != nil {
			fmt.Fprintf(stdout, "copied %d pairs to %s\n", len(res.Copied), *dst)
		}
		return err
	}

	train, test, err := dataset.Split(fs.Args(), *ratio)
	if err != nil {
		return err
	}
	for _, part := range []struct {
		name  string
		files []string
	}{{"train", train}, {"test", test}} {
		dir := filepath.Join(*dst, part.name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		res, err := dataset.CopyPairs(part.files, *src, dir)
		if res != nil {
			fmt.Fprintf(stdout, "copied %d pairs to %s\n", len(res.Copied), dir)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
