package report

import (
	"encoding/json"
	"io"
)

// JSONWriter emits the Analysis as a JSON document.
type JSONWriter struct {
	Indent bool
}

func (w JSONWriter) Write(out io.Writer, a Analysis) error {
	enc := json.NewEncoder(out)
	if w.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(a)
}
