package export

import (
	"bufio"
	"encoding/json"
	"io"
)

// jsonlEncoder returns a function that writes one JSON-encoded value per
// line to w, matching the JSONL line-delimited convention the Silver and
// Gold-Lite artifacts both use.
func jsonlEncoder(w io.Writer) func(v interface{}) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	return func(v interface{}) error {
		if err := enc.Encode(v); err != nil {
			return err
		}
		return bw.Flush()
	}
}

// writeJSON writes v as a single compact JSON document.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	return enc.Encode(v)
}
