// Package out writes command payloads to stdout. Output is either
// pretty-printed JSON or a human report, never both.
package out

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSON pretty-prints v with a stable two-space indent. json.RawMessage values
// (and raw messages nested inside v) keep their upstream key order: encoding
// only re-indents, it never reorders.
func JSON(w io.Writer, v any) error {
	if raw, ok := v.(json.RawMessage); ok {
		return RawJSON(w, raw)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RawJSON re-indents upstream bytes without decoding them.
func RawJSON(w io.Writer, raw json.RawMessage) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		_, err := fmt.Fprintln(w, "null")
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		// Not valid JSON; emit verbatim rather than lose the payload.
		_, werr := fmt.Fprintln(w, string(raw))
		return werr
	}
	_, err := fmt.Fprintln(w, buf.String())
	return err
}

// Text writes a finished human report followed by a newline.
func Text(w io.Writer, report string) error {
	_, err := fmt.Fprintln(w, report)
	return err
}
