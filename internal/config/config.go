package config

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"strconv"

	"github.com/libninjacom/plaidgen/internal/errs"
	"github.com/libninjacom/plaidgen/internal/target"
	"github.com/libninjacom/plaidgen/internal/tree"
)

// Переменные окружения, из которых читаются настройки
const (
	EnvSource      = "OPENAPI_PATH"
	EnvVersion     = "VERSION"
	EnvGenerator   = "GENERATOR"
	EnvDocsBaseURL = "DOCS_BASE_URL"
)

// Форматы вывода исправленной спецификации
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

var (
	ErrSourceRequired    = errors.New("source is required")
	ErrVersionRequired   = errors.New("package version is required")
	ErrGeneratorRequired = errors.New("generator is required")
)

type Config struct {
	Source      string        `json:"source"`
	Version     string        `json:"version"`
	Generator   target.Target `json:"generator"`
	DocsBaseURL string        `json:"docsBaseUrl"` // префикс для externalDocs.url операций
	OutputRoot  string        `json:"outputRoot"`  // каталог, в котором лежат репозитории клиентов
	Org         string        `json:"org"`
	ServiceName string        `json:"serviceName"`
	TemplateDir string        `json:"templateDir"`
	Format      string        `json:"format"`  // yaml, json
	Command     []string      `json:"command"` // внешний генератор, если пусто, файлы только записываются
	// Overrides дополняют правила DefaultOverrides
	Overrides []tree.Override `json:"overrides"`
}

func DefaultConfig() *Config {
	return &Config{
		DocsBaseURL: "https://plaid.com/docs",
		OutputRoot:  "..",
		Org:         "libninjacom",
		ServiceName: "Plaid",
		TemplateDir: "template",
		Format:      FormatYAML,
	}
}

// DefaultOverrides схемы Plaid, у которых type не совпадает с фактической формой
func DefaultOverrides() []tree.Override {
	return []tree.Override{
		{Path: tree.MustParsePath("/components/schemas/PartnerCustomersCreateRequest/type"), Value: tree.String("object")},
		{Path: tree.MustParsePath("/components/schemas/UserName/type"), Value: tree.String("object")},
	}
}

// AllOverrides правила по умолчанию и пользовательские, в порядке применения
func (c *Config) AllOverrides() []tree.Override {
	return append(DefaultOverrides(), c.Overrides...)
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.ConfigError{Field: "config", Message: path, Cause: err}
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, &errs.ConfigError{Field: "config", Message: path, Cause: err}
	}

	return cfg, nil
}

// ApplyEnv переносит заданные переменные окружения в конфиг.
// lookup обычно os.LookupEnv; пустые значения игнорируются.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSource); ok && v != "" {
		c.Source = v
	}
	if v, ok := lookup(EnvVersion); ok && v != "" {
		c.Version = v
	}
	if v, ok := lookup(EnvDocsBaseURL); ok && v != "" {
		c.DocsBaseURL = v
	}
	if v, ok := lookup(EnvGenerator); ok && v != "" {
		if err := c.Generator.Set(v); err != nil {
			return &errs.ConfigError{Field: EnvGenerator, Cause: err}
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Source == "" {
		return &errs.ConfigError{Field: EnvSource, Cause: ErrSourceRequired}
	}
	if c.Version == "" {
		return &errs.ConfigError{Field: EnvVersion, Cause: ErrVersionRequired}
	}
	if !c.Generator.Valid() {
		return &errs.ConfigError{Field: EnvGenerator, Cause: ErrGeneratorRequired}
	}

	u, err := url.Parse(c.DocsBaseURL)
	if err != nil {
		return &errs.ConfigError{Field: EnvDocsBaseURL, Cause: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return &errs.ConfigError{Field: EnvDocsBaseURL, Message: "must be an absolute URL"}
	}

	switch c.Format {
	case FormatYAML, FormatJSON:
	default:
		return &errs.ConfigError{Field: "format", Message: "must be yaml or json, got " + c.Format}
	}

	if c.Org == "" || c.ServiceName == "" {
		return &errs.ConfigError{Field: "org", Message: "org and service name must not be empty"}
	}
	for i, o := range c.Overrides {
		if len(o.Path) == 0 {
			return &errs.ConfigError{Field: "overrides", Message: "rule " + strconv.Itoa(i) + " targets the document root"}
		}
	}
	return nil
}
