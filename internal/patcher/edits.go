package patcher

import (
	"fmt"
	"slices"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/libninjacom/plaidgen/internal/parser"
	"github.com/libninjacom/plaidgen/internal/tree"
)

// RewriteExternalDocs дописывает DocsBaseURL перед externalDocs.url каждой операции.
// URL считается фрагментом пути; абсолютный URL будет склеен как есть.
func (p *Patcher) RewriteExternalDocs(doc *parser.Document, result *Result) {
	for _, op := range doc.Operations() {
		docs := op.Operation.ExternalDocs
		if docs == nil {
			continue
		}
		before := docs.URL
		docs.URL = p.DocsBaseURL + docs.URL

		p.record(result, Fix{
			Type:        FixTypeExternalDocsURL,
			Path:        tree.Path{"paths", op.Path, strings.ToLower(op.Method), "externalDocs", "url"}.String(),
			Description: "prefixed external docs URL",
			Before:      before,
			After:       docs.URL,
		})
	}
}

// StripProperties удаляет StrippedProperties из каждой object-схемы components.schemas
// (с DeepTraversal и из вложенных). Имена удаляются и из required.
// Порядок остальных свойств хранится в исходном дереве документа и не меняется.
func (p *Patcher) StripProperties(doc *parser.Document, result *Result) {
	walkSchemas(doc, p.DeepTraversal, func(path tree.Path, s *openapi3.Schema) {
		if !isObject(s) {
			return
		}
		for _, name := range p.StrippedProperties {
			if _, ok := s.Properties[name]; !ok {
				continue
			}
			delete(s.Properties, name)
			s.Required = slices.DeleteFunc(s.Required, func(r string) bool { return r == name })

			p.record(result, Fix{
				Type:        FixTypeCredentialProperty,
				Path:        sub(path, "properties", name).String(),
				Description: fmt.Sprintf("removed property %q", name),
				Before:      name,
			})
		}
	})
}

// FilterAllOf убирает из allOf inline-схемы с type: object.
// Именованные ссылки и inline-схемы других видов остаются в прежнем порядке;
// исходное дерево теряет те же элементы, чтобы порядок ключей оставшихся сохранился.
func (p *Patcher) FilterAllOf(doc *parser.Document, result *Result) {
	walkSchemas(doc, p.DeepTraversal, func(path tree.Path, s *openapi3.Schema) {
		if len(s.AllOf) == 0 {
			return
		}
		before := len(s.AllOf)
		kept := make(openapi3.SchemaRefs, 0, before)
		var keptIdx []int
		for i, member := range s.AllOf {
			if isInlineObject(member) {
				continue
			}
			kept = append(kept, member)
			keptIdx = append(keptIdx, i)
		}
		if len(kept) == before {
			return
		}
		s.AllOf = kept
		doc.RetainSourceItems(sub(path, "allOf"), keptIdx)

		p.record(result, Fix{
			Type:        FixTypeInlineAllOfMember,
			Path:        sub(path, "allOf").String(),
			Description: fmt.Sprintf("removed %d inline object member(s) from allOf", before-len(kept)),
			Before:      before,
			After:       len(kept),
		})
	})
}

func isInlineObject(ref *openapi3.SchemaRef) bool {
	return ref != nil && ref.Ref == "" && isObject(ref.Value)
}
