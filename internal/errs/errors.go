// Package errs содержит типы фатальных ошибок plaidgen.
//
// Все три вида ошибок завершают процесс: ConfigError возникает до начала
// работы, LoadError до появления типизированного документа, GenerateError
// после передачи документа генератору. Ошибки патчера не существует.
package errs

import "errors"

// Sentinel-ошибки для errors.Is.
var (
	ErrConfig   = errors.New("configuration error")
	ErrLoad     = errors.New("load error")
	ErrGenerate = errors.New("generation error")
)

// ConfigError описывает отсутствующую или некорректную настройку.
type ConfigError struct {
	// Field имя настройки, например "VERSION"
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Cause }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// LoadError описывает сбой чтения, разбора или структурирования спецификации.
type LoadError struct {
	// Path путь к файлу спецификации
	Path string
	// Stage этап, на котором произошёл сбой: open, decode, coerce, structure
	Stage   string
	Message string
	Cause   error
}

// Этапы загрузки.
const (
	StageOpen      = "open"
	StageDecode    = "decode"
	StageCoerce    = "coerce"
	StageStructure = "structure"
)

func (e *LoadError) Error() string {
	msg := "load error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Stage != "" {
		msg += " (" + e.Stage + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Cause }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// GenerateError описывает сбой генератора.
type GenerateError struct {
	// Target язык генерации
	Target  string
	Message string
	Cause   error
}

func (e *GenerateError) Error() string {
	msg := "generation error"
	if e.Target != "" {
		msg += " for " + e.Target
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GenerateError) Unwrap() error { return e.Cause }

func (e *GenerateError) Is(target error) bool { return target == ErrGenerate }
