package resume

import (
	"fmt"
	"strings"
)

// ProviderError — сбой вызова языковой модели (сеть, авторизация, квоты).
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return "llm provider: " + e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }

// ParseError — ответ модели не удалось превратить в Resume.
// Raw holds a truncated excerpt of the reply for logs.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return "parse llm reply: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError lists every way a syntactically valid reply breaks the
// expected shape. It always arrives wrapped in a ParseError.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("reply does not match schema: %s", strings.Join(e.Violations, "; "))
}
