package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: only pdf, docx and txt are allowed")
	ErrEmptyText         = errors.New("document contains no text")

	reTags     = regexp.MustCompile(`<[^>]+>`)
	reBlanks   = regexp.MustCompile(`[ \t\r\f\v]+`)
	reNewlines = regexp.MustCompile(`\n\s*\n+`)
)

// ExtractText returns the plain text of a resume document. The format is
// decided by file extension first, then by MIME type.
func ExtractText(doc Document) (string, error) {
	var (
		txt string
		err error
	)
	switch kind(doc) {
	case MimePDF:
		txt, err = extractPDF(doc.Data)
	case MimeDOCX:
		txt, err = extractDOCX(doc.Data)
	case MimeText:
		if !utf8.Valid(doc.Data) {
			err = errors.New("text file is not valid utf-8")
		}
		txt = string(doc.Data)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return "", &ExtractionError{Name: doc.Name, Err: err}
	}
	txt = normalizeWhitespace(txt)
	if txt == "" {
		return "", &ExtractionError{Name: doc.Name, Err: ErrEmptyText}
	}
	return txt, nil
}

func kind(doc Document) string {
	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	case ".txt":
		return MimeText
	}
	mt, _, err := mime.ParseMediaType(doc.MimeType)
	if err != nil {
		return ""
	}
	return mt
}

func extractPDF(data []byte) (txt string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	rs, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	xml := doc.Editable().GetContent()
	// Paragraph ends become newlines before tags are dropped.
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
	xml = strings.ReplaceAll(xml, "<w:br/>", "\n")
	txt := reTags.ReplaceAllString(xml, "")
	return unescapeXML(txt), nil
}

var xmlEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reBlanks.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = reNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
