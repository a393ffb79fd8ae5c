package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodySize caps request bodies; imported files are the largest payloads.
const maxBodySize = 10 << 20

// ParseJSON decodes the request body into dest, limiting body size so a
// hostile client cannot exhaust memory.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
