package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/libninjacom/plaidgen/internal/config"
	"github.com/libninjacom/plaidgen/internal/errs"
	"github.com/libninjacom/plaidgen/internal/parser"
)

// IndexFile список операций со ссылками на документацию
const IndexFile = "OPERATIONS.md"

// Writer записывает спецификацию, манифест и индекс операций в DestPath
type Writer struct {
	Format string
	Logger *slog.Logger
}

func (w *Writer) Generate(ctx context.Context, doc *parser.Document, opts Options) error {
	if err := ctx.Err(); err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Cause: err}
	}

	// Создаём директорию
	if err := os.MkdirAll(opts.DestPath, 0755); err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Message: "failed to create output directory", Cause: err}
	}

	specPath, err := writeSpec(doc, opts.DestPath, w.Format)
	if err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Message: "failed to write specification", Cause: err}
	}

	manifest, err := json.MarshalIndent(opts, "", "  ")
	if err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Cause: err}
	}
	manifestPath := filepath.Join(opts.DestPath, ManifestFile)
	if err := os.WriteFile(manifestPath, append(manifest, '\n'), 0644); err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Message: "failed to write " + ManifestFile, Cause: err}
	}

	indexPath := filepath.Join(opts.DestPath, IndexFile)
	if err := os.WriteFile(indexPath, []byte(generateIndex(doc, opts)), 0644); err != nil {
		return &errs.GenerateError{Target: opts.Target.String(), Message: "failed to write " + IndexFile, Cause: err}
	}

	logger(w.Logger).Info("wrote specification",
		"spec", specPath,
		"manifest", manifestPath,
		"repo", opts.QualifiedRepo,
	)
	return nil
}

// writeSpec записывает документ в dir и возвращает путь к файлу
func writeSpec(doc *parser.Document, dir, format string) (string, error) {
	var (
		data []byte
		err  error
		name string
	)
	switch format {
	case config.FormatJSON:
		data, err = doc.EncodeJSON()
		name = "openapi.json"
	case config.FormatYAML, "":
		data, err = doc.EncodeYAML()
		name = "openapi.yaml"
	default:
		return "", fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// generateIndex markdown со списком операций и их externalDocs
func generateIndex(doc *parser.Document, opts Options) string {
	var sb strings.Builder

	// Заголовок
	sb.WriteString("# " + opts.ServiceName + "\n\n")
	if doc.T.Info != nil && doc.T.Info.Version != "" {
		sb.WriteString("API version: " + doc.T.Info.Version + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("Package: `%s` %s (%s)\n\n", opts.PackageName, opts.PackageVersion, opts.QualifiedRepo))

	// Список операций
	sb.WriteString("## Operations\n\n")
	for _, op := range doc.Operations() {
		line := op.Method + " " + op.Path
		if op.Operation.OperationID != "" {
			line = op.Operation.OperationID + ": " + line
		}
		if docs := op.Operation.ExternalDocs; docs != nil && docs.URL != "" {
			sb.WriteString(fmt.Sprintf("- [%s](%s)\n", line, docs.URL))
		} else {
			sb.WriteString("- " + line + "\n")
		}
	}

	stats := doc.Stats()
	sb.WriteString(fmt.Sprintf("\n%d paths, %d operations, %d schemas\n", stats.Paths, stats.Operations, stats.Schemas))
	return sb.String()
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
