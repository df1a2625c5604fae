package zotero

import (
	"fmt"
	"sort"
	"strings"
)

// Outcome is the interpretation of an upload response.
type Outcome struct {
	Success bool   `json:"success"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

// Interpret decides whether an upload succeeded. A 2xx response whose
// "successful" or "success" map names an item key succeeds with that key.
// A 2xx response that only lists failed items fails; any other 2xx succeeds
// without a key. Everything else fails with the body's message.
func Interpret(resp Response) Outcome {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, _ := resp.Body.(map[string]any)
		for _, field := range []string{"successful", "success"} {
			if key := firstKey(body[field]); key != "" {
				return Outcome{Success: true, Key: key, Message: "Upload successful"}
			}
		}
		if msg := failedMessage(body); msg != "" {
			return Outcome{Success: false, Message: "Upload failed: " + msg}
		}
		return Outcome{Success: true, Message: "Upload accepted"}
	}
	return Outcome{Success: false, Message: "Upload failed: " + explanation(resp)}
}

// Err returns nil for a successful upload and a typed error otherwise.
func (r Response) Err() error {
	if r.StatusCode == 0 {
		return fmt.Errorf("%w: %s", ErrNetworkError, explanation(r))
	}
	o := Interpret(r)
	if o.Success {
		return nil
	}
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return &UploadError{StatusCode: r.StatusCode, Message: o.Message}
	}
	return checkStatus(r.StatusCode, []byte(explanation(r)))
}

// firstKey returns the key of the lowest-indexed entry of a Zotero result
// map. Entries are either objects with a "key" or the key itself.
func firstKey(v any) string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return ""
	}
	for _, idx := range sortedIndexes(m) {
		switch e := m[idx].(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if key, ok := e["key"].(string); ok && key != "" {
				return key
			}
		}
	}
	return ""
}

func failedMessage(body map[string]any) string {
	failed, ok := body["failed"].(map[string]any)
	if !ok || len(failed) == 0 {
		return ""
	}
	for _, idx := range sortedIndexes(failed) {
		if e, ok := failed[idx].(map[string]any); ok {
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return "item rejected"
}

func explanation(resp Response) string {
	switch b := resp.Body.(type) {
	case map[string]any:
		if msg, ok := b["message"].(string); ok && msg != "" {
			return msg
		}
	case string:
		if s := strings.TrimSpace(b); s != "" {
			return s
		}
	}
	return "Unknown error"
}

// sortedIndexes orders Zotero's "0", "1", ... keys numerically.
func sortedIndexes(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
