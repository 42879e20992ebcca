// Package generator передаёт исправленную спецификацию генератору клиентов.
//
// Генератор получает типизированный документ и Options с метаданными пакета.
// Writer только записывает спецификацию и манифест в каталог репозитория,
// Command дополнительно запускает внешнюю программу.
package generator

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/libninjacom/plaidgen/internal/config"
	"github.com/libninjacom/plaidgen/internal/parser"
	"github.com/libninjacom/plaidgen/internal/target"
)

// ManifestFile имя файла с Options в каталоге назначения
const ManifestFile = "libninja.json"

// Options метаданные пакета для генератора
type Options struct {
	PackageName       string        `json:"packageName"`
	ServiceName       string        `json:"serviceName"`
	QualifiedRepo     string        `json:"qualifiedRepo"` // org/repo
	DestPath          string        `json:"destPath"`
	PackageVersion    string        `json:"packageVersion"`
	Target            target.Target `json:"generator"`
	LibTemplatePath   string        `json:"libTemplatePath"`
	ModelTemplatePath string        `json:"modelTemplatePath"`
}

// NewOptions выводит Options из конфига и значений по умолчанию для языка
func NewOptions(cfg *config.Config) Options {
	repo := cfg.Generator.RepoName()
	return Options{
		PackageName:       cfg.Generator.PackageName(),
		ServiceName:       cfg.ServiceName,
		QualifiedRepo:     cfg.Org + "/" + repo,
		DestPath:          filepath.Join(cfg.OutputRoot, repo),
		PackageVersion:    cfg.Version,
		Target:            cfg.Generator,
		LibTemplatePath:   filepath.Join(cfg.TemplateDir, "src", "lib.rs"),
		ModelTemplatePath: filepath.Join(cfg.TemplateDir, "src", "model.rs"),
	}
}

// Generator получает документ после всех исправлений
type Generator interface {
	Generate(ctx context.Context, doc *parser.Document, opts Options) error
}

// New выбирает Command, если в конфиге задана команда, иначе Writer
func New(cfg *config.Config, logger *slog.Logger) Generator {
	if len(cfg.Command) > 0 {
		return &Command{Args: cfg.Command, Format: cfg.Format, Logger: logger}
	}
	return &Writer{Format: cfg.Format, Logger: logger}
}
