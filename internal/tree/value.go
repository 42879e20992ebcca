// Package tree описывает полуструктурированный документ: дерево из null,
// скаляров, последовательностей и отображений с сохранением порядка ключей.
//
// Дерево не зависит от формата сериализации; конвертация в YAML и JSON
// вынесена в yaml.go и json.go.
package tree

import (
	"encoding/json"
	"fmt"
)

// Kind вид узла дерева
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value узел дерева. Нулевое значение и nil означают null.
//
// Скаляр хранит одно из: string, bool, int64, float64, json.Number.
type Value struct {
	kind    Kind
	scalar  any
	items   []*Value
	entries []Entry
}

// Entry пара ключ-значение отображения
type Entry struct {
	Key   string
	Value *Value
}

// Null создаёт null-узел
func Null() *Value { return &Value{} }

// String создаёт строковый скаляр
func String(s string) *Value { return &Value{kind: KindScalar, scalar: s} }

// Bool создаёт логический скаляр
func Bool(b bool) *Value { return &Value{kind: KindScalar, scalar: b} }

// Int создаёт целочисленный скаляр
func Int(i int64) *Value { return &Value{kind: KindScalar, scalar: i} }

// Float создаёт скаляр с плавающей точкой
func Float(f float64) *Value { return &Value{kind: KindScalar, scalar: f} }

// Sequence создаёт последовательность
func Sequence(items ...*Value) *Value {
	v := &Value{kind: KindSequence, items: make([]*Value, 0, len(items))}
	for _, it := range items {
		v.items = append(v.items, orNull(it))
	}
	return v
}

// Mapping создаёт отображение. Повторный ключ перезаписывает значение на месте.
func Mapping(entries ...Entry) *Value {
	v := &Value{kind: KindMapping, entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		v.Set(e.Key, e.Value)
	}
	return v
}

// Scalar создаёт скаляр из значения Go. nil даёт null.
func Scalar(x any) (*Value, error) {
	switch s := x.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(s), nil
	case bool:
		return Bool(s), nil
	case int:
		return Int(int64(s)), nil
	case int32:
		return Int(int64(s)), nil
	case int64:
		return Int(s), nil
	case float32:
		return Float(float64(s)), nil
	case float64:
		return Float(s), nil
	case json.Number:
		return &Value{kind: KindScalar, scalar: s}, nil
	}
	return nil, fmt.Errorf("tree: unsupported scalar type %T", x)
}

func orNull(v *Value) *Value {
	if v == nil {
		return Null()
	}
	return v
}

// Kind возвращает вид узла
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull сообщает, является ли узел null
func (v *Value) IsNull() bool { return v.Kind() == KindNull }

// Interface возвращает значение скаляра или nil для остальных видов
func (v *Value) Interface() any {
	if v.Kind() != KindScalar {
		return nil
	}
	return v.scalar
}

// Text возвращает строку, если узел строковый скаляр
func (v *Value) Text() (string, bool) {
	s, ok := v.Interface().(string)
	return s, ok
}

// Len длина последовательности или число ключей отображения
func (v *Value) Len() int {
	switch v.Kind() {
	case KindSequence:
		return len(v.items)
	case KindMapping:
		return len(v.entries)
	}
	return 0
}

// Items элементы последовательности
func (v *Value) Items() []*Value {
	if v.Kind() != KindSequence {
		return nil
	}
	return v.items
}

// Index элемент последовательности по индексу
func (v *Value) Index(i int) (*Value, bool) {
	if v.Kind() != KindSequence || i < 0 || i >= len(v.items) {
		return nil, false
	}
	return v.items[i], true
}

// Append добавляет элемент в конец последовательности
func (v *Value) Append(item *Value) {
	if v.kind == KindNull {
		v.kind = KindSequence
	}
	if v.kind != KindSequence {
		return
	}
	v.items = append(v.items, orNull(item))
}

// Entries пары отображения в порядке вставки
func (v *Value) Entries() []Entry {
	if v.Kind() != KindMapping {
		return nil
	}
	return v.entries
}

// Keys ключи отображения в порядке вставки
func (v *Value) Keys() []string {
	if v.Kind() != KindMapping {
		return nil
	}
	keys := make([]string, len(v.entries))
	for i, e := range v.entries {
		keys[i] = e.Key
	}
	return keys
}

// Get значение по ключу
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindMapping {
		return nil, false
	}
	for _, e := range v.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set записывает значение по ключу. Существующий ключ сохраняет позицию,
// новый добавляется в конец. Null-узел становится отображением.
func (v *Value) Set(key string, val *Value) {
	if v.kind == KindNull {
		v.kind = KindMapping
	}
	if v.kind != KindMapping {
		return
	}
	val = orNull(val)
	for i := range v.entries {
		if v.entries[i].Key == key {
			v.entries[i].Value = val
			return
		}
	}
	v.entries = append(v.entries, Entry{Key: key, Value: val})
}

// Delete удаляет ключ, сохраняя порядок остальных. Отсутствующий ключ не ошибка.
func (v *Value) Delete(key string) bool {
	if v.Kind() != KindMapping {
		return false
	}
	for i, e := range v.entries {
		if e.Key == key {
			v.entries = append(v.entries[:i], v.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clone глубокая копия узла
func (v *Value) Clone() *Value {
	if v == nil {
		return Null()
	}
	out := &Value{kind: v.kind, scalar: v.scalar}
	if v.items != nil {
		out.items = make([]*Value, len(v.items))
		for i, it := range v.items {
			out.items[i] = it.Clone()
		}
	}
	if v.entries != nil {
		out.entries = make([]Entry, len(v.entries))
		for i, e := range v.entries {
			out.entries[i] = Entry{Key: e.Key, Value: e.Value.Clone()}
		}
	}
	return out
}

// Equal сравнивает деревья с учётом порядка ключей
func (v *Value) Equal(o *Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindScalar:
		return v.scalar == o.scalar
	case KindSequence:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for i := range v.entries {
			if v.entries[i].Key != o.entries[i].Key || !v.entries[i].Value.Equal(o.entries[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// ToAny переводит дерево в map[string]any / []any / скаляры
func (v *Value) ToAny() any {
	switch v.Kind() {
	case KindScalar:
		return v.scalar
	case KindSequence:
		out := make([]any, len(v.items))
		for i, it := range v.items {
			out[i] = it.ToAny()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.entries))
		for _, e := range v.entries {
			out[e.Key] = e.Value.ToAny()
		}
		return out
	}
	return nil
}
