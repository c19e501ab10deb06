package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Writer renders an Analysis to an output stream.
type Writer interface {
	Write(out io.Writer, a Analysis) error
}

// WriterFor returns the Writer for f.
func WriterFor(f Format) (Writer, error) {
	switch f {
	case FormatPDF:
		return PDFWriter{}, nil
	case FormatMarkdown:
		return MarkdownWriter{}, nil
	case FormatJSON:
		return JSONWriter{Indent: true}, nil
	}
	return nil, fmt.Errorf("unknown report format %q", f)
}

// WriteFile renders a in format f into dir under the suggested filename and
// returns the written path. dir is created when missing.
func WriteFile(dir string, a Analysis, f Format) (string, error) {
	w, err := WriterFor(f)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := w.Write(&buf, a); err != nil {
		return "", fmt.Errorf("render %s: %w", f, err)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}
	path := filepath.Join(dir, Filename(a.Host, a.Result.FinalScore, f))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	log.Debug().Str("path", path).Str("format", string(f)).Msg("report written")
	return path, nil
}
