package patcher

import (
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/libninjacom/plaidgen/internal/parser"
	"github.com/libninjacom/plaidgen/internal/tree"
)

type visitFunc func(path tree.Path, s *openapi3.Schema)

// schemaWalker обходит каждую схему документа ровно один раз.
// По именованным ссылкам не переходит: их цели лежат в components.
type schemaWalker struct {
	visit   visitFunc
	visited map[*openapi3.Schema]bool
}

// walkSchemas посещает схемы components.schemas по алфавиту.
// С deep обход спускается во вложенные схемы и в inline-схемы
// параметров, тел запросов, ответов и операций.
func walkSchemas(doc *parser.Document, deep bool, visit visitFunc) {
	if doc == nil || doc.T == nil {
		return
	}

	if !deep {
		if c := doc.T.Components; c != nil {
			for _, name := range sortedKeys(c.Schemas) {
				if ref := c.Schemas[name]; ref != nil && ref.Ref == "" && ref.Value != nil {
					visit(tree.Path{"components", "schemas", name}, ref.Value)
				}
			}
		}
		return
	}

	w := &schemaWalker{visit: visit, visited: make(map[*openapi3.Schema]bool)}

	if c := doc.T.Components; c != nil {
		for _, name := range sortedKeys(c.Schemas) {
			w.ref(tree.Path{"components", "schemas", name}, c.Schemas[name])
		}
		for _, name := range sortedKeys(c.Parameters) {
			if p := c.Parameters[name]; p != nil && p.Ref == "" {
				w.parameter(tree.Path{"components", "parameters", name}, p.Value)
			}
		}
		for _, name := range sortedKeys(c.RequestBodies) {
			if rb := c.RequestBodies[name]; rb != nil && rb.Ref == "" && rb.Value != nil {
				w.content(tree.Path{"components", "requestBodies", name, "content"}, rb.Value.Content)
			}
		}
		for _, name := range sortedKeys(c.Responses) {
			if r := c.Responses[name]; r != nil && r.Ref == "" && r.Value != nil {
				w.content(tree.Path{"components", "responses", name, "content"}, r.Value.Content)
			}
		}
	}

	for _, op := range doc.Operations() {
		w.operation(tree.Path{"paths", op.Path, strings.ToLower(op.Method)}, op.Operation)
	}
}

func (w *schemaWalker) operation(path tree.Path, op *openapi3.Operation) {
	for i, p := range op.Parameters {
		if p != nil && p.Ref == "" {
			w.parameter(sub(path, "parameters", strconv.Itoa(i)), p.Value)
		}
	}
	if rb := op.RequestBody; rb != nil && rb.Ref == "" && rb.Value != nil {
		w.content(sub(path, "requestBody", "content"), rb.Value.Content)
	}
	if op.Responses != nil {
		responses := op.Responses.Map()
		for _, code := range sortedKeys(responses) {
			if r := responses[code]; r != nil && r.Ref == "" && r.Value != nil {
				w.content(sub(path, "responses", code, "content"), r.Value.Content)
			}
		}
	}
}

func (w *schemaWalker) parameter(path tree.Path, p *openapi3.Parameter) {
	if p == nil {
		return
	}
	w.ref(sub(path, "schema"), p.Schema)
	w.content(sub(path, "content"), p.Content)
}

func (w *schemaWalker) content(path tree.Path, content openapi3.Content) {
	for _, mt := range sortedKeys(content) {
		if m := content[mt]; m != nil {
			w.ref(sub(path, mt, "schema"), m.Schema)
		}
	}
}

func (w *schemaWalker) ref(path tree.Path, ref *openapi3.SchemaRef) {
	if ref == nil || ref.Ref != "" || ref.Value == nil {
		return
	}
	w.schema(path, ref.Value)
}

func (w *schemaWalker) schema(path tree.Path, s *openapi3.Schema) {
	if w.visited[s] {
		return
	}
	w.visited[s] = true
	w.visit(path, s)

	for _, name := range sortedKeys(s.Properties) {
		w.ref(sub(path, "properties", name), s.Properties[name])
	}
	w.ref(sub(path, "items"), s.Items)
	w.ref(sub(path, "additionalProperties"), s.AdditionalProperties.Schema)
	w.ref(sub(path, "not"), s.Not)
	for i, m := range s.AllOf {
		w.ref(sub(path, "allOf", strconv.Itoa(i)), m)
	}
	for i, m := range s.OneOf {
		w.ref(sub(path, "oneOf", strconv.Itoa(i)), m)
	}
	for i, m := range s.AnyOf {
		w.ref(sub(path, "anyOf", strconv.Itoa(i)), m)
	}
}

// isObject схема объявлена ровно как type: object
func isObject(s *openapi3.Schema) bool {
	return s != nil && s.Type != nil && len(*s.Type) == 1 && (*s.Type)[0] == openapi3.TypeObject
}

func sub(path tree.Path, segs ...string) tree.Path {
	out := make(tree.Path, 0, len(path)+len(segs))
	out = append(out, path...)
	return append(out, segs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
