package document

import (
	"context"
	"fmt"
)

// Ref points at a document the chat channel has announced but not yet
// delivered.
type Ref struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// Document is a fetched file held in memory.
type Document struct {
	Name     string
	MimeType string
	Data     []byte
}

// Fetcher retrieves the bytes behind a Ref.
type Fetcher interface {
	Fetch(ctx context.Context, ref Ref) (Document, error)
}

// FetchError — документ не удалось скачать.
type FetchError struct {
	Ref Ref
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch document %q: %v", e.Ref.Name, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError — из документа не удалось получить текст
// (неподдерживаемый формат, повреждённый файл или пустой текст).
type ExtractionError struct {
	Name string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %q: %v", e.Name, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
