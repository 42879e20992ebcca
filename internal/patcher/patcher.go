// Package patcher исправляет известные дефекты спецификации Plaid в уже
// типизированном документе.
//
// Три правки независимы и тотальны: отсутствующее свойство или уже
// отфильтрованный allOf дают пустую операцию, поэтому Patch не возвращает ошибку.
//
//   - FixTypeExternalDocsURL: externalDocs.url операций получает базовый URL документации
//   - FixTypeCredentialProperty: из object-схем components.schemas удаляются client_id и secret
//   - FixTypeInlineAllOfMember: из allOf схем components.schemas удаляются inline object-схемы
//
// WithDeepTraversal распространяет две последние правки на вложенные схемы.
package patcher

import (
	"io"
	"log/slog"
	"slices"

	"github.com/libninjacom/plaidgen/internal/parser"
)

// FixType вид исправления
type FixType string

const (
	FixTypeExternalDocsURL    FixType = "external-docs-url"
	FixTypeCredentialProperty FixType = "credential-property"
	FixTypeInlineAllOfMember  FixType = "inline-allof-member"
)

// DefaultStrippedProperties поля аутентификации, которые клиент подставляет сам
var DefaultStrippedProperties = []string{"client_id", "secret"}

// Fix одно исправление
type Fix struct {
	Type FixType
	// Path JSON Pointer на исправленный узел
	Path        string
	Description string
	Before      any
	After       any
}

// Result итог работы патчера
type Result struct {
	Fixes    []Fix
	FixCount int
}

// HasFixes были ли исправления
func (r *Result) HasFixes() bool {
	return r.FixCount > 0
}

// CountByType число исправлений каждого вида
func (r *Result) CountByType() map[FixType]int {
	counts := make(map[FixType]int)
	for _, f := range r.Fixes {
		counts[f.Type]++
	}
	return counts
}

func (r *Result) add(f Fix) {
	r.Fixes = append(r.Fixes, f)
	r.FixCount = len(r.Fixes)
}

// Patcher применяет правки к документу
type Patcher struct {
	// DocsBaseURL префикс для externalDocs.url, например https://plaid.com/docs
	DocsBaseURL string
	// StrippedProperties имена удаляемых свойств
	StrippedProperties []string
	// EnabledFixes ограничивает набор правок; nil включает все
	EnabledFixes []FixType
	// DeepTraversal распространяет правки B и C на вложенные схемы и на
	// inline-схемы операций; по умолчанию только components.schemas
	DeepTraversal bool

	logger *slog.Logger
}

type Option func(*Patcher)

func WithStrippedProperties(names ...string) Option {
	return func(p *Patcher) {
		p.StrippedProperties = names
	}
}

func WithEnabledFixes(fixes ...FixType) Option {
	return func(p *Patcher) {
		p.EnabledFixes = fixes
	}
}

func WithDeepTraversal() Option {
	return func(p *Patcher) {
		p.DeepTraversal = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) {
		p.logger = logger
	}
}

// New создаёт патчер с базовым URL документации
func New(docsBaseURL string, opts ...Option) *Patcher {
	p := &Patcher{
		DocsBaseURL:        docsBaseURL,
		StrippedProperties: DefaultStrippedProperties,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

func (p *Patcher) isFixEnabled(t FixType) bool {
	return p.EnabledFixes == nil || slices.Contains(p.EnabledFixes, t)
}

// Patch применяет все включённые правки по порядку
func (p *Patcher) Patch(doc *parser.Document) *Result {
	result := &Result{}

	if p.isFixEnabled(FixTypeExternalDocsURL) {
		p.RewriteExternalDocs(doc, result)
	}
	if p.isFixEnabled(FixTypeCredentialProperty) {
		p.StripProperties(doc, result)
	}
	if p.isFixEnabled(FixTypeInlineAllOfMember) {
		p.FilterAllOf(doc, result)
	}

	counts := result.CountByType()
	p.logger.Info("patched specification",
		"fixes", result.FixCount,
		string(FixTypeExternalDocsURL), counts[FixTypeExternalDocsURL],
		string(FixTypeCredentialProperty), counts[FixTypeCredentialProperty],
		string(FixTypeInlineAllOfMember), counts[FixTypeInlineAllOfMember],
	)
	return result
}

func (p *Patcher) record(result *Result, f Fix) {
	p.logger.Debug(f.Description, "type", f.Type, "path", f.Path)
	result.add(f)
}
