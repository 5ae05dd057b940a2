package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes = 15 << 20

// ErrTooLarge is returned when a document exceeds the configured cap.
var ErrTooLarge = errors.New("document exceeds size limit")

// Resolver turns a channel file id into a downloadable URL.
type Resolver func(fileID string) (string, error)

// HTTPFetcher downloads documents the chat platform hosts.
type HTTPFetcher struct {
	resolve  Resolver
	client   *http.Client
	maxBytes int64
}

func NewHTTPFetcher(resolve Resolver, client *http.Client, maxBytes int64) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTPFetcher{resolve: resolve, client: client, maxBytes: maxBytes}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref Ref) (Document, error) {
	if ref.Size > f.maxBytes {
		return Document{}, &FetchError{Ref: ref, Err: ErrTooLarge}
	}
	url, err := f.resolve(ref.ID)
	if err != nil {
		return Document{}, &FetchError{Ref: ref, Err: fmt.Errorf("resolve file url: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, &FetchError{Ref: ref, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Document{}, &FetchError{Ref: ref, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Document{}, &FetchError{Ref: ref, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Document{}, &FetchError{Ref: ref, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return Document{}, &FetchError{Ref: ref, Err: ErrTooLarge}
	}

	mimeType := ref.MimeType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	return Document{Name: ref.Name, MimeType: mimeType, Data: data}, nil
}

// FileFetcher reads documents from the local filesystem; Ref.ID is the path.
type FileFetcher struct {
	maxBytes int64
}

func NewFileFetcher(maxBytes int64) *FileFetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &FileFetcher{maxBytes: maxBytes}
}

func (f *FileFetcher) Fetch(_ context.Context, ref Ref) (Document, error) {
	st, err := os.Stat(ref.ID)
	if err != nil {
		return Document{}, &FetchError{Ref: ref, Err: err}
	}
	if st.Size() > f.maxBytes {
		return Document{}, &FetchError{Ref: ref, Err: ErrTooLarge}
	}
	data, err := os.ReadFile(ref.ID)
	if err != nil {
		return Document{}, &FetchError{Ref: ref, Err: err}
	}
	name := ref.Name
	if name == "" {
		name = filepath.Base(ref.ID)
	}
	mimeType := ref.MimeType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(name))
	}
	return Document{Name: name, MimeType: mimeType, Data: data}, nil
}
