package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// MarshalJSON сериализует дерево в JSON, сохраняя порядок ключей
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) writeJSON(buf *bytes.Buffer) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindScalar:
		b, err := json.Marshal(v.scalar)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindSequence:
		buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// FromAny строит дерево из результата encoding/json. Ключи отображений
// сортируются, так как порядок map в Go не определён.
func FromAny(x any) (*Value, error) {
	switch t := x.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		v := &Value{kind: KindMapping, entries: make([]Entry, 0, len(keys))}
		for _, k := range keys {
			child, err := FromAny(t[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			v.entries = append(v.entries, Entry{Key: k, Value: child})
		}
		return v, nil
	case []any:
		v := &Value{kind: KindSequence, items: make([]*Value, 0, len(t))}
		for i, it := range t {
			child, err := FromAny(it)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			v.items = append(v.items, child)
		}
		return v, nil
	}
	return Scalar(x)
}

// Conform возвращает копию data, в которой ключи отображений упорядочены
// как в source. Ключи, которых нет в source, идут следом по алфавиту;
// ключи, удалённые из data, пропадают.
func Conform(data, source *Value) *Value {
	switch data.Kind() {
	case KindMapping:
		if source.Kind() != KindMapping {
			return data.Clone()
		}
		index := make(map[string]*Value, len(data.entries))
		for _, e := range data.entries {
			index[e.Key] = e.Value
		}
		out := &Value{kind: KindMapping, entries: make([]Entry, 0, len(data.entries))}
		for _, k := range MergeKeyOrder(source.Keys(), data.Keys()) {
			src, _ := source.Get(k)
			out.entries = append(out.entries, Entry{Key: k, Value: Conform(index[k], src)})
		}
		return out
	case KindSequence:
		out := &Value{kind: KindSequence, items: make([]*Value, len(data.items))}
		for i, it := range data.items {
			src, _ := source.Index(i)
			out.items[i] = Conform(it, src)
		}
		return out
	}
	return data.Clone()
}

// MergeKeyOrder оставляет ключи source, присутствующие в data, в исходном
// порядке и дописывает остальные ключи data по алфавиту.
func MergeKeyOrder(sourceKeys, dataKeys []string) []string {
	present := make(map[string]bool, len(dataKeys))
	for _, k := range dataKeys {
		present[k] = true
	}

	order := make([]string, 0, len(dataKeys))
	seen := make(map[string]bool, len(sourceKeys))
	for _, k := range sourceKeys {
		if present[k] && !seen[k] {
			order = append(order, k)
			seen[k] = true
		}
	}

	var extra []string
	for _, k := range dataKeys {
		if !seen[k] {
			extra = append(extra, k)
			seen[k] = true
		}
	}
	slices.Sort(extra)

	return append(order, extra...)
}
