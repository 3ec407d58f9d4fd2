package report

import (
	"bytes"
	"encoding/json"
)

// ResolveAnswers reduces the report's raw answer records into one display
// string per item id. An answer with a present level wins over a JSON value;
// an answer with neither resolves to "". Items that were never answered are
// absent from the map and must be treated by callers as "no answer".
func ResolveAnswers(rep Report) map[int]string {
	resolved := make(map[int]string, len(rep.Answers))
	for _, ans := range rep.Answers {
		switch {
		case ans.Level.Valid:
			resolved[ans.ItemID] = ans.Level.String
		case ans.Value.Valid:
			resolved[ans.ItemID] = stringifyAnswerValue(ans.Value.JSON)
		default:
			resolved[ans.ItemID] = ""
		}
	}
	return resolved
}

// stringifyAnswerValue renders a raw JSON answer value for display: a JSON
// string is used directly, anything else (number, bool, object...) keeps its
// compact serialized form. Malformed payloads degrade to the raw bytes
// instead of failing the whole document.
func stringifyAnswerValue(raw []byte) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	var buff bytes.Buffer
	if err := json.Compact(&buff, raw); err != nil {
		return string(raw)
	}
	return buff.String()
}
