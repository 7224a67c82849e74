// Command reslib creates and reads reslib archives.
//
// Usage:
//
//	reslib pack -o out.rlib [-tier normal] <dir>
//	reslib ls <archive>
//	reslib cat <archive> <path>
//	reslib extract [-workers N] [-overwrite] <archive> <dir>
//	reslib info <archive>
//	reslib verify <archive>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/meigma/reslib"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("reslib", flag.ContinueOnError)
	global.SetOutput(stderr)
	verbose := global.Bool("v", false, "enable debug logging")
	global.Usage = func() {
		fmt.Fprintln(stderr, "usage: reslib [-v] <pack|ls|cat|extract|info|verify> [args]")
	}
	if err := global.Parse(args); err != nil {
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cmd := &command{stdout: stdout, stderr: stderr, logger: logger}
	var err error
	switch rest[0] {
	case "pack":
		err = cmd.pack(ctx, rest[1:])
	case "ls":
		err = cmd.ls(rest[1:])
	case "cat":
		err = cmd.cat(rest[1:])
	case "extract":
		err = cmd.extract(ctx, rest[1:])
	case "info":
		err = cmd.info(rest[1:])
	case "verify":
		err = cmd.verify(ctx, rest[1:])
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
	}
	if err != nil {
		fmt.Fprintf(stderr, "reslib: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

type command struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func (c *command) flags(name string) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.SetOutput(c.stderr)
	return set
}

func (c *command) pack(ctx context.Context, args []string) error {
	set := c.flags("pack")
	out := set.String("o", "", "output archive path")
	tierName := set.String("tier", reslib.TierNormal.String(), "compression tier: fastest, fast, normal, maximum, ultra")
	if err := set.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *out == "" || set.NArg() != 1 {
		return fmt.Errorf("%w: pack -o <archive> [-tier name] <dir>", errUsage)
	}
	tier, err := reslib.ParseTier(*tierName)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	stage, err := stageDir(set.Arg(0))
	if err != nil {
		return err
	}
	n, err := reslib.FlushFile(ctx, stage, *out, tier, reslib.FlushWithLogger(c.logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s: %d entries, %d bytes\n", *out, stage.Len(), n)
	return nil
}

// stageDir stages every regular file below dir under its slash-separated
// relative path.
func stageDir(dir string) (*reslib.Stage, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	stage := reslib.NewStage()
	err = fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := fs.ReadFile(root.FS(), path)
		if err != nil {
			return err
		}
		return stage.StageBytes(path, data)
	})
	if err != nil {
		return nil, err
	}
	return stage, nil
}

func (c *command) open(args []string, want int, usage string) (*reslib.Reader, error) {
	if len(args) != want {
		return nil, fmt.Errorf("%w: %s", errUsage, usage)
	}
	return reslib.Open(args[0], reslib.WithLogger(c.logger))
}

func (c *command) ls(args []string) error {
	r, err := c.open(args, 1, "ls <archive>")
	if err != nil {
		return err
	}
	defer r.Close()
	for _, p := range r.List() {
		fmt.Fprintln(c.stdout, p)
	}
	return nil
}

func (c *command) cat(args []string) error {
	r, err := c.open(args, 2, "cat <archive> <path>")
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = r.ReadInto(args[1], c.stdout)
	return err
}

func (c *command) extract(ctx context.Context, args []string) error {
	set := c.flags("extract")
	workers := set.Int("workers", 4, "number of parallel readers")
	overwrite := set.Bool("overwrite", false, "overwrite existing files")
	if err := set.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if set.NArg() != 2 {
		return fmt.Errorf("%w: extract [-workers N] [-overwrite] <archive> <dir>", errUsage)
	}
	stats, err := reslib.Extract(ctx, set.Arg(0), set.Arg(1),
		reslib.ExtractWithWorkers(*workers),
		reslib.ExtractWithOverwrite(*overwrite),
		reslib.ExtractWithLogger(c.logger),
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "extracted %d files (%d bytes), skipped %d\n", stats.FileCount, stats.TotalBytes, stats.Skipped)
	return nil
}

func (c *command) info(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: info <archive>", errUsage)
	}
	info, err := reslib.Inspect(args[0], reslib.WithLogger(c.logger))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "digest:     %s\n", info.Digest)
	fmt.Fprintf(c.stdout, "size:       %d\n", info.Size)
	fmt.Fprintf(c.stdout, "index size: %d\n", info.IndexSize)
	fmt.Fprintf(c.stdout, "data size:  %d\n", info.DataSize)
	fmt.Fprintf(c.stdout, "entries:    %d\n", info.FileCount())
	for _, e := range info.Entries {
		fmt.Fprintf(c.stdout, "  %12d %10d  %s\n", e.Offset, e.Length, e.Path)
	}
	return nil
}

func (c *command) verify(ctx context.Context, args []string) error {
	r, err := c.open(args, 1, "verify <archive>")
	if err != nil {
		return err
	}
	defer r.Close()
	if err := r.Verify(ctx); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "%s: ok (%d entries)\n", args[0], r.Len())
	return nil
}
