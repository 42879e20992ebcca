package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/libninjacom/plaidgen/internal/errs"
	"github.com/libninjacom/plaidgen/internal/tree"
)

// ParseOptions опции парсинга
type ParseOptions struct {
	// Overrides применяются к сырому дереву до типизированного разбора
	Overrides []tree.Override
	Context   context.Context
}

// Parse читает спецификацию из локального файла (JSON или YAML),
// применяет правила приведения и структурирует документ
func Parse(path string, opts *ParseOptions) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, &errs.LoadError{
			Path:    path,
			Stage:   errs.StageOpen,
			Message: "unsupported file format " + ext + " (expected .json, .yaml, or .yml)",
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.LoadError{Path: path, Stage: errs.StageOpen, Message: "could not open OpenAPI file", Cause: err}
	}

	return ParseData(data, path, opts)
}

// ParseData как Parse, но для уже прочитанных байтов. location нужен только для сообщений.
func ParseData(data []byte, location string, opts *ParseOptions) (*Document, error) {
	if opts == nil {
		opts = &ParseOptions{}
	}

	raw, err := tree.Decode(data)
	if err != nil {
		return nil, &errs.LoadError{Path: location, Stage: errs.StageDecode, Message: "could not parse OpenAPI file", Cause: err}
	}

	if err := Coerce(raw, opts.Overrides...); err != nil {
		return nil, &errs.LoadError{Path: location, Stage: errs.StageCoerce, Cause: err}
	}

	doc, err := structure(opts.Context, raw)
	if err != nil {
		return nil, &errs.LoadError{Path: location, Stage: errs.StageStructure, Message: "could not structure OpenAPI file", Cause: err}
	}

	return &Document{T: doc, Location: location, source: raw}, nil
}

// Coerce применяет правила приведения к сырому дереву
func Coerce(raw *tree.Value, overrides ...tree.Override) error {
	return tree.Apply(raw, overrides...)
}

func structure(ctx context.Context, raw *tree.Value) (*openapi3.T, error) {
	data, err := raw.MarshalJSON()
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	return loader.LoadFromData(data)
}
