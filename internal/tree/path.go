package tree

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Path абсолютный путь в дереве, записывается как JSON Pointer (RFC 6901)
type Path []string

// ParsePath разбирает JSON Pointer. Пустая строка означает корень.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("tree: path %q must start with /", s)
	}
	parts := strings.Split(s[1:], "/")
	p := make(Path, len(parts))
	for i, part := range parts {
		p[i] = unescape(part)
	}
	return p, nil
}

// MustParsePath как ParsePath, но паникует на ошибке. Для констант.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, seg := range p {
		sb.WriteByte('/')
		sb.WriteString(escape(seg))
	}
	return sb.String()
}

func escape(seg string) string {
	seg = strings.ReplaceAll(seg, "~", "~0")
	return strings.ReplaceAll(seg, "/", "~1")
}

func unescape(seg string) string {
	seg = strings.ReplaceAll(seg, "~1", "/")
	return strings.ReplaceAll(seg, "~0", "~")
}

// PathError путь не удалось пройти: на нём скаляр или индекс вне последовательности
type PathError struct {
	Path Path
	// Depth число пройденных сегментов
	Depth int
	Kind  Kind
}

func (e *PathError) Error() string {
	at := Path(e.Path[:e.Depth]).String()
	if at == "" {
		at = "/"
	}
	return fmt.Sprintf("tree: cannot address %q through %s at %q", e.Path[e.Depth], e.Kind, at)
}

// Lookup возвращает узел по пути
func (v *Value) Lookup(p Path) (*Value, bool) {
	cur := v
	for _, seg := range p {
		var ok bool
		switch cur.Kind() {
		case KindMapping:
			cur, ok = cur.Get(seg)
		case KindSequence:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil, false
			}
			cur, ok = cur.Index(i)
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath записывает val по пути, создавая недостающие отображения.
// Null на пути превращается в отображение; существующий ключ сохраняет
// позицию. Числовой сегмент адресует существующий элемент последовательности.
func (v *Value) SetPath(p Path, val *Value) error {
	if v == nil {
		return fmt.Errorf("tree: SetPath on nil value")
	}
	if len(p) == 0 {
		*v = *val.Clone()
		return nil
	}

	cur := v
	for depth, seg := range p[:len(p)-1] {
		next, err := cur.child(p, depth, seg)
		if err != nil {
			return err
		}
		cur = next
	}

	last := len(p) - 1
	seg := p[last]
	switch cur.kind {
	case KindNull, KindMapping:
		cur.Set(seg, val.Clone())
		return nil
	case KindSequence:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(cur.items) {
			return &PathError{Path: p, Depth: last, Kind: KindSequence}
		}
		cur.items[i] = val.Clone()
		return nil
	}
	return &PathError{Path: p, Depth: last, Kind: cur.kind}
}

func (v *Value) child(p Path, depth int, seg string) (*Value, error) {
	switch v.kind {
	case KindNull, KindMapping:
		if next, ok := v.Get(seg); ok {
			return next, nil
		}
		next := Null()
		v.Set(seg, next)
		return next, nil
	case KindSequence:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(v.items) {
			return nil, &PathError{Path: p, Depth: depth, Kind: KindSequence}
		}
		return v.items[i], nil
	}
	return nil, &PathError{Path: p, Depth: depth, Kind: v.kind}
}

// Override правило принудительной записи значения по пути
type Override struct {
	Path  Path
	Value *Value
}

// Apply применяет правила по порядку. Каждое правило безусловно.
func Apply(root *Value, overrides ...Override) error {
	for i, o := range overrides {
		if err := root.SetPath(o.Path, o.Value); err != nil {
			return fmt.Errorf("override[%d] %s: %w", i, o.Path, err)
		}
	}
	return nil
}

// UnmarshalJSON читает правило вида {"path": "/a/b", "value": ...}
func (o *Override) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path  string          `json:"path"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p, err := ParsePath(raw.Path)
	if err != nil {
		return err
	}
	val := Null()
	if len(raw.Value) > 0 {
		if val, err = Decode(raw.Value); err != nil {
			return err
		}
	}
	o.Path = p
	o.Value = val
	return nil
}

func (o Override) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Path  string `json:"path"`
		Value *Value `json:"value"`
	}{Path: o.Path.String(), Value: orNull(o.Value)})
}
