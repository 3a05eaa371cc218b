package ledger

import "encoding/json"

// Canonical renders v as deterministic JSON: object keys sorted
// lexicographically, no insignificant whitespace, UTF-8 with
// JSON-standard escapes. encoding/json already sorts map[string]any
// keys and emits compact output; round-tripping a struct through a
// generic interface{} forces every nested struct to become a sorted
// map as well, which is what makes nested Envelope/Actor/Context
// fields canonical too.
func Canonical(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
