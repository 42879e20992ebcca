// Package target перечисляет языки, для которых генерируется клиент Plaid,
// и их параметры упаковки.
package target

import (
	"encoding"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

var (
	_ pflag.Value              = (*Target)(nil)
	_ encoding.TextUnmarshaler = (*Target)(nil)
	_ encoding.TextMarshaler   = Target(0)
)

// Target язык генерации
type Target int

const (
	Unknown Target = iota
	Rust
	Python
	TypeScript
	Go
)

// All поддерживаемые языки в порядке объявления
var All = []Target{Rust, Python, TypeScript, Go}

type defaults struct {
	name        string
	repoName    string
	packageName string
	aliases     []string
}

var table = map[Target]defaults{
	Rust:       {name: "rust", repoName: "plaid-rs", packageName: "plaid", aliases: []string{"rs"}},
	Python:     {name: "python", repoName: "plaid-python", packageName: "plaid2", aliases: []string{"py"}},
	TypeScript: {name: "typescript", repoName: "plaid-ts", packageName: "plaid", aliases: []string{"ts"}},
	Go:         {name: "go", repoName: "plaid-go", packageName: "plaid", aliases: []string{"golang"}},
}

// Parse разбирает имя языка без учёта регистра, включая сокращения
func Parse(s string) (Target, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range All {
		d := table[t]
		if name == d.name {
			return t, nil
		}
		for _, a := range d.aliases {
			if name == a {
				return t, nil
			}
		}
	}
	return Unknown, fmt.Errorf("unsupported generator %q (expected one of %s)", s, strings.Join(Names(), ", "))
}

// Names канонические имена языков
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = table[t].name
	}
	return names
}

func (t Target) String() string {
	if d, ok := table[t]; ok {
		return d.name
	}
	return ""
}

// Valid сообщает, выбран ли поддерживаемый язык
func (t Target) Valid() bool {
	_, ok := table[t]
	return ok
}

// RepoName имя репозитория с сгенерированным клиентом
func (t Target) RepoName() string { return table[t].repoName }

// PackageName имя пакета в реестре языка
func (t Target) PackageName() string { return table[t].packageName }

// Set реализует pflag.Value
func (t *Target) Set(s string) error {
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Type реализует pflag.Value
func (t *Target) Type() string { return "generator" }

func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Target) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*t = Unknown
		return nil
	}
	return t.Set(string(text))
}
