package spotify

import (
	"encoding/json"
	"fmt"
)

// spliceCollection rewrites the nested collection at path inside doc so
// that its items hold the full accumulated list and totalCount matches
// its length. Used by the aggregate fetch path.
func spliceCollection(doc json.RawMessage, path []string, items []json.RawMessage) (json.RawMessage, error) {
	var root map[string]any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	node := root
	for _, key := range path[:len(path)-1] {
		next, ok := node[key].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("document missing %q", key)
		}
		node = next
	}
	leaf, ok := node[path[len(path)-1]].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document missing %q", path[len(path)-1])
	}

	decoded := make([]any, 0, len(items))
	for _, item := range items {
		var v any
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		decoded = append(decoded, v)
	}
	leaf["items"] = decoded
	leaf["totalCount"] = len(decoded)

	return json.Marshal(root)
}
