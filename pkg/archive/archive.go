package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/artem13815/resumebot/pkg/document"
)

// Store keeps the original bytes of uploaded documents.
type Store interface {
	// Put stores doc under key and returns a URI that locates it.
	Put(ctx context.Context, key string, doc document.Document) (string, error)
}

// Key builds the object key for an upload: the upload id plus the
// original extension.
func Key(uploadID, name string) string {
	return uploadID + strings.ToLower(filepath.Ext(name))
}

// Disk writes documents under a local directory.
type Disk struct {
	dir string
}

func NewDisk(dir string) *Disk {
	return &Disk{dir: dir}
}

func (d *Disk) Put(_ context.Context, key string, doc document.Document) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare archive dir: %w", err)
	}
	dst := filepath.Join(d.dir, filepath.Base(key))
	if err := os.WriteFile(dst, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return dst, nil
}

// Nop discards documents.
type Nop struct{}

func (Nop) Put(context.Context, string, document.Document) (string, error) { return "", nil }
