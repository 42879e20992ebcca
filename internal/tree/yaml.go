package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode разбирает YAML (и JSON, как его подмножество) с сохранением порядка ключей
func Decode(data []byte) (*Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return FromNode(&node)
}

// FromNode строит дерево из узла yaml.v3
func FromNode(n *yaml.Node) (*Value, error) {
	if n == nil {
		return Null(), nil
	}
	switch n.Kind {
	case 0:
		return Null(), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.SequenceNode:
		v := &Value{kind: KindSequence, items: make([]*Value, 0, len(n.Content))}
		for _, c := range n.Content {
			item, err := FromNode(c)
			if err != nil {
				return nil, err
			}
			v.items = append(v.items, item)
		}
		return v, nil
	case yaml.MappingNode:
		return mappingFromNode(n)
	case yaml.ScalarNode:
		return scalarFromNode(n)
	}
	return nil, fmt.Errorf("tree: unsupported yaml node kind %d at line %d", n.Kind, n.Line)
}

func mappingFromNode(n *yaml.Node) (*Value, error) {
	if len(n.Content)%2 != 0 {
		return nil, fmt.Errorf("tree: malformed mapping at line %d", n.Line)
	}
	v := &Value{kind: KindMapping, entries: make([]Entry, 0, len(n.Content)/2)}
	for i := 0; i < len(n.Content); i += 2 {
		k, val := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.AliasNode {
			k = k.Alias
		}
		if k.ShortTag() == "!!merge" {
			if err := mergeInto(v, val); err != nil {
				return nil, err
			}
			continue
		}
		child, err := FromNode(val)
		if err != nil {
			return nil, err
		}
		v.Set(k.Value, child)
	}
	return v, nil
}

// mergeInto добавляет ключи "<<" которых ещё нет; явные ключи приоритетнее
func mergeInto(v *Value, src *yaml.Node) error {
	merged, err := FromNode(src)
	if err != nil {
		return err
	}
	sources := []*Value{merged}
	if merged.Kind() == KindSequence {
		sources = merged.items
	}
	for _, s := range sources {
		if s.Kind() != KindMapping {
			return fmt.Errorf("tree: merge key at line %d expects a mapping", src.Line)
		}
		for _, e := range s.entries {
			if _, ok := v.Get(e.Key); !ok {
				v.Set(e.Key, e.Value)
			}
		}
	}
	return nil
}

func scalarFromNode(n *yaml.Node) (*Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := n.Decode(&f); err == nil {
			return Float(f), nil
		}
		return String(n.Value), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return Float(f), nil
	}
	// !!str, !!timestamp, !!binary и пользовательские теги остаются строками
	return String(n.Value), nil
}

// Node строит узел yaml.v3
func (v *Value) Node() *yaml.Node {
	switch v.Kind() {
	case KindScalar:
		return scalarNode(v.scalar)
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range v.items {
			n.Content = append(n.Content, it.Node())
		}
		return n
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range v.entries {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				e.Value.Node())
		}
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

func scalarNode(x any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch s := x.(type) {
	case string:
		n.Tag, n.Value = "!!str", s
	case bool:
		n.Tag, n.Value = "!!bool", strconv.FormatBool(s)
	case int64:
		n.Tag, n.Value = "!!int", strconv.FormatInt(s, 10)
	case float64:
		n.Tag, n.Value = "!!float", formatFloat(s)
	case json.Number:
		n.Tag, n.Value = "!!int", s.String()
		if strings.ContainsAny(n.Value, ".eE") {
			n.Tag = "!!float"
		}
	default:
		n.Tag, n.Value = "!!str", fmt.Sprint(s)
	}
	return n
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// UnmarshalYAML реализует yaml.Unmarshaler
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	out, err := FromNode(n)
	if err != nil {
		return err
	}
	*v = *out
	return nil
}

// MarshalYAML реализует yaml.Marshaler
func (v *Value) MarshalYAML() (any, error) {
	return v.Node(), nil
}

// EncodeYAML сериализует дерево в YAML с отступом в два пробела
func (v *Value) EncodeYAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v.Node()); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
