package capabilities

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"
)

var (
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

type ReadFile func(path string) (string, error)

// ReadFile returns the content of a text file. Binary content is rejected
// rather than garbled: the leading bytes are sniffed and anything outside the
// text-like content types fails with ErrUnsupportedFormat.
func (Module) ReadFile() ReadFile {
	return func(path string) (string, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return "", err
		}

		if !isTextContent(content) {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
		}

		return string(content), nil
	}
}

func isTextContent(content []byte) bool {
	if len(content) == 0 {
		return true
	}
	contentType := http.DetectContentType(content)
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	switch {
	case strings.HasPrefix(contentType, "application/json"),
		strings.HasPrefix(contentType, "application/xml"),
		strings.HasPrefix(contentType, "image/svg+xml"):
		return true
	}
	// DetectContentType defaults to octet-stream for plain text it cannot
	// recognize, so fall back to a UTF-8 check
	if contentType == "application/octet-stream" && utf8.Valid(content) && !strings.Contains(string(content), "\x00") {
		return true
	}
	return false
}
