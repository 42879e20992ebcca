// Package pipeline связывает загрузку, исправление и генерацию.
package pipeline

import (
	"context"
	"io"
	"log/slog"

	"github.com/libninjacom/plaidgen/internal/config"
	"github.com/libninjacom/plaidgen/internal/generator"
	"github.com/libninjacom/plaidgen/internal/parser"
	"github.com/libninjacom/plaidgen/internal/patcher"
)

// Report итог одного запуска
type Report struct {
	Stats   parser.Stats
	Fixes   *patcher.Result
	Options generator.Options
}

// Pipeline выполняет шаги строго по очереди; первый сбой прерывает запуск
type Pipeline struct {
	Config    *config.Config
	Generator generator.Generator
	Logger    *slog.Logger
}

func New(cfg *config.Config, gen generator.Generator, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{Config: cfg, Generator: gen, Logger: logger}
}

// Run загружает спецификацию, применяет правки и передаёт документ генератору.
// Ошибки возвращаются без обёртки: это errs.LoadError или errs.GenerateError.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	p.Logger.Info("parsing OpenAPI spec", "source", p.Config.Source)
	doc, err := parser.Parse(p.Config.Source, &parser.ParseOptions{
		Overrides: p.Config.AllOverrides(),
		Context:   ctx,
	})
	if err != nil {
		return nil, err
	}

	stats := doc.Stats()
	p.Logger.Info("loaded spec",
		"paths", stats.Paths,
		"operations", stats.Operations,
		"schemas", stats.Schemas,
	)

	fixes := patcher.New(p.Config.DocsBaseURL, patcher.WithLogger(p.Logger)).Patch(doc)

	opts := generator.NewOptions(p.Config)
	p.Logger.Info("generating client",
		"generator", opts.Target.String(),
		"package", opts.PackageName,
		"version", opts.PackageVersion,
		"dest", opts.DestPath,
	)
	if err := p.Generator.Generate(ctx, doc, opts); err != nil {
		return nil, err
	}

	return &Report{Stats: stats, Fixes: fixes, Options: opts}, nil
}
