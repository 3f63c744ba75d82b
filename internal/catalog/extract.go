package catalog

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF")

// ExtractText returns the plain text of a catalog document. PDFs are
// decoded; anything else must already be UTF-8 text.
func ExtractText(name string, data []byte) (string, error) {
	var text string
	if bytes.HasPrefix(data, pdfMagic) || strings.HasSuffix(strings.ToLower(name), ".pdf") {
		extracted, err := extractPDF(data)
		if err != nil {
			return "", err
		}
		text = extracted
	} else {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("catalog: %s is neither PDF nor UTF-8 text", name)
		}
		text = string(data)
	}

	text = normalizeWhitespace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func extractPDF(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("catalog: malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("catalog: open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("catalog: extract pdf text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("catalog: read pdf text: %w", err)
	}
	return string(out), nil
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
