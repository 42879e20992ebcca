package parser

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/libninjacom/plaidgen/internal/tree"
)

// Document типизированная спецификация вместе с приведённым исходным деревом.
// Дерево хранит порядок ключей, который теряется в map kin-openapi.
type Document struct {
	T        *openapi3.T
	Location string
	source   *tree.Value
}

// NewDocument оборачивает уже построенный документ без исходного дерева
func NewDocument(t *openapi3.T) *Document {
	return &Document{T: t}
}

// OperationRef операция вместе с путём и методом
type OperationRef struct {
	Path      string
	Method    string // GET, POST, PUT, DELETE, PATCH
	Operation *openapi3.Operation
}

// Stats счётчики документа для логов
type Stats struct {
	Paths      int
	Operations int
	Schemas    int
}

// Source приведённое исходное дерево, nil для NewDocument
func (d *Document) Source() *tree.Value {
	return d.source
}

// Operations все операции, отсортированные по пути и методу
func (d *Document) Operations() []OperationRef {
	if d.T == nil || d.T.Paths == nil {
		return nil
	}

	var ops []OperationRef
	for path, item := range d.T.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			ops = append(ops, OperationRef{Path: path, Method: method, Operation: op})
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Path == ops[j].Path {
			return methodOrder(ops[i].Method) < methodOrder(ops[j].Method)
		}
		return ops[i].Path < ops[j].Path
	})
	return ops
}

func methodOrder(method string) int {
	order := map[string]int{"GET": 1, "POST": 2, "PUT": 3, "PATCH": 4, "DELETE": 5, "HEAD": 6, "OPTIONS": 7, "TRACE": 8}
	if o, ok := order[method]; ok {
		return o
	}
	return 99
}

// SchemaNames имена схем components.schemas по алфавиту
func (d *Document) SchemaNames() []string {
	if d.T == nil || d.T.Components == nil {
		return nil
	}
	names := make([]string, 0, len(d.T.Components.Schemas))
	for name := range d.T.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema схема из components.schemas по имени
func (d *Document) Schema(name string) *openapi3.Schema {
	if d.T == nil || d.T.Components == nil {
		return nil
	}
	ref, ok := d.T.Components.Schemas[name]
	if !ok || ref == nil {
		return nil
	}
	return ref.Value
}

// PropertyNames свойства именованной схемы в порядке исходного документа.
// Свойства, которых не было в исходнике, идут в конце по алфавиту.
func (d *Document) PropertyNames(name string) []string {
	schema := d.Schema(name)
	if schema == nil {
		return nil
	}
	current := make([]string, 0, len(schema.Properties))
	for prop := range schema.Properties {
		current = append(current, prop)
	}

	var sourceKeys []string
	if props, ok := d.source.Lookup(tree.Path{"components", "schemas", name, "properties"}); ok {
		sourceKeys = props.Keys()
	}
	return tree.MergeKeyOrder(sourceKeys, current)
}

// RetainSourceItems оставляет в последовательности исходного дерева по пути p
// только элементы с индексами keep. Вызывается после удаления элементов из
// типизированного документа, чтобы оставшиеся сопоставлялись со своими исходниками.
func (d *Document) RetainSourceItems(p tree.Path, keep []int) {
	seq, ok := d.source.Lookup(p)
	if !ok || seq.Kind() != tree.KindSequence {
		return
	}
	items := make([]*tree.Value, 0, len(keep))
	for _, i := range keep {
		if it, ok := seq.Index(i); ok {
			items = append(items, it)
		}
	}
	_ = d.source.SetPath(p, tree.Sequence(items...))
}

// Stats считает пути, операции и схемы
func (d *Document) Stats() Stats {
	s := Stats{Operations: len(d.Operations()), Schemas: len(d.SchemaNames())}
	if d.T != nil && d.T.Paths != nil {
		s.Paths = d.T.Paths.Len()
	}
	return s
}

// Tree текущее состояние документа в виде дерева с порядком ключей исходника
func (d *Document) Tree() (*tree.Value, error) {
	data, err := json.Marshal(d.T)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	current, err := tree.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return tree.Conform(current, d.source), nil
}

// EncodeYAML сериализует документ в YAML с исходным порядком ключей
func (d *Document) EncodeYAML() ([]byte, error) {
	v, err := d.Tree()
	if err != nil {
		return nil, err
	}
	return v.EncodeYAML()
}

// EncodeJSON сериализует документ в JSON с исходным порядком ключей
func (d *Document) EncodeJSON() ([]byte, error) {
	v, err := d.Tree()
	if err != nil {
		return nil, err
	}
	return v.MarshalJSON()
}
