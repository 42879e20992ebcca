package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/libninjacom/plaidgen/internal/errs"
	"github.com/libninjacom/plaidgen/internal/parser"
)

var ErrNoCommand = errors.New("generator command is empty")

// Command записывает спецификацию во временный каталог и запускает внешний генератор.
// В аргументах подставляются {spec}, {dest}, {package}, {service}, {repo}, {version}, {target}.
type Command struct {
	Args   []string
	Format string
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func (c *Command) Generate(ctx context.Context, doc *parser.Document, opts Options) error {
	if len(c.Args) == 0 {
		return &errs.GenerateError{Target: opts.Target.String(), Cause: ErrNoCommand}
	}

	tmpDir, err := os.MkdirTemp("", "plaidgen-*")
	if err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Message: "failed to create temp directory", Cause: err}
	}
	defer os.RemoveAll(tmpDir)

	specPath, err := writeSpec(doc, tmpDir, c.Format)
	if err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Message: "failed to write specification", Cause: err}
	}
	if err := os.MkdirAll(opts.DestPath, 0755); err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Message: "failed to create output directory", Cause: err}
	}

	args := expandArgs(c.Args, specPath, opts)
	log := logger(c.Logger)
	log.Info("running generator", "command", args[0], "args", args[1:])

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = writerOr(c.Stdout, os.Stdout)
	cmd.Stderr = writerOr(c.Stderr, os.Stderr)
	if err := cmd.Run(); err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Message: "command " + args[0] + " failed", Cause: err}
	}

	log.Info("generator finished", "dest", opts.DestPath, "repo", opts.QualifiedRepo)
	return nil
}

func expandArgs(args []string, specPath string, opts Options) []string {
	r := strings.NewReplacer(
		"{spec}", specPath,
		"{dest}", opts.DestPath,
		"{package}", opts.PackageName,
		"{service}", opts.ServiceName,
		"{repo}", opts.QualifiedRepo,
		"{version}", opts.PackageVersion,
		"{target}", opts.Target.String(),
	)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}
