package whatweb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/example/stackscan/internal/core"
)

// defaultPluginConfidence applies when a plugin record carries no
// confidence of its own.
const defaultPluginConfidence = 50

// logEntry is one line of whatweb --log-json output.
type logEntry struct {
	Target  string            `json:"target"`
	Plugins map[string]plugin `json:"plugins"`
}

// plugin tolerates whatweb's loose field shapes: most values arrive as
// arrays, some as scalars, depending on the plugin.
type plugin struct {
	Version    flexStrings `json:"version"`
	String     flexStrings `json:"string"`
	Module     flexStrings `json:"module"`
	Confidence flexInt     `json:"certainty"`
	Category   flexStrings `json:"category"`
	Website    flexStrings `json:"website"`
}

// ParseOutput converts whatweb JSON log output into raw detections. Each
// input line is an independent JSON document; unparseable lines are skipped
// rather than failing the batch.
func ParseOutput(output []byte) []core.RawDetection {
	var detections []core.RawDetection

	for _, line := range bytes.Split(output, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Some whatweb builds emit a top-level array instead of one
		// object per line.
		var entries []logEntry
		if line[0] == '[' {
			if err := json.Unmarshal(line, &entries); err != nil {
				continue
			}
		} else {
			var entry logEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = []logEntry{entry}
		}

		for _, entry := range entries {
			for name, p := range entry.Plugins {
				detections = append(detections, pluginDetection(name, p))
			}
		}
	}
	return detections
}

func pluginDetection(name string, p plugin) core.RawDetection {
	confidence := defaultPluginConfidence
	if p.Confidence.set {
		confidence = p.Confidence.value
	}

	category := "Unknown"
	if len(p.Category) > 0 {
		category = p.Category[0]
	}

	match := name
	detail := fmt.Sprintf("plugin %s", name)
	if len(p.String) > 0 {
		match = p.String[0]
	}

	det := core.RawDetection{
		Name:       name,
		Confidence: confidence,
		Category:   category,
		Versions:   p.Version,
		Source:     "whatweb",
		Evidence: []core.EvidenceItem{{
			Field:      "whatweb",
			Detail:     detail,
			Match:      match,
			Confidence: confidence,
		}},
	}
	if len(p.Website) > 0 {
		det.Website = p.Website[0]
	}
	return det
}

// flexStrings accepts a JSON string, number, or array of either.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		for _, raw := range list {
			if s, ok := rawToString(raw); ok && s != "" {
				*f = append(*f, s)
			}
		}
		return nil
	}
	if s, ok := rawToString(data); ok && s != "" {
		*f = []string{s}
	}
	return nil
}

// flexInt accepts a JSON number, numeric string, or array of either,
// keeping the first usable value.
type flexInt struct {
	value int
	set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		for _, raw := range list {
			if f.tryParse(raw) {
				return nil
			}
		}
		return nil
	}
	f.tryParse(data)
	return nil
}

func (f *flexInt) tryParse(raw json.RawMessage) bool {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		f.value, f.set = n, true
		return true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			f.value, f.set = n, true
			return true
		}
	}
	return false
}

func rawToString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}
