package server

import (
	"net/http"
	"strings"

	"github.com/spetersoncode/tablebridge/a2a"
)

// requestedExtensions gathers extension identifiers from the
// X-A2A-Extensions header, the message metadata and the params metadata.
// Extensions on the message itself are read by the executor.
func requestedExtensions(r *http.Request, params *a2a.SendMessageParams) []string {
	var out []string
	for _, h := range r.Header.Values(a2a.ExtensionsHeader) {
		for _, uri := range strings.Split(h, ",") {
			if uri = strings.TrimSpace(uri); uri != "" {
				out = append(out, uri)
			}
		}
	}
	out = append(out, metadataExtensions(params.Message.Metadata)...)
	out = append(out, metadataExtensions(params.Metadata)...)
	return out
}

// metadataExtensions reads an "extensions" list of strings from metadata.
func metadataExtensions(metadata map[string]any) []string {
	raw, ok := metadata["extensions"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
