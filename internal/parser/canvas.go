package parser

import (
	"encoding/json"
	"fmt"

	"github.com/starford/raido/internal/models"
)

// canvasDoc mirrors the JSON canvas layout loosely: nodes are kept as raw
// maps so fields this tool does not know about survive a rewrite.
type canvasDoc struct {
	Nodes []map[string]interface{} `json:"nodes"`
	Edges []json.RawMessage        `json:"edges,omitempty"`
}

// ParseCanvas extracts one Reference per file-type node in a canvas note.
// The node id doubles as the reference identifier since canvas content has
// no byte spans to splice.
func ParseCanvas(data []byte) ([]models.Reference, error) {
	var doc canvasDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parser: canvas: %w", err)
	}

	var out []models.Reference
	for _, node := range doc.Nodes {
		if t, _ := node["type"].(string); t != "file" {
			continue
		}
		file, _ := node["file"].(string)
		if file == "" {
			continue
		}
		id, _ := node["id"].(string)
		out = append(out, models.Reference{
			Raw:    file,
			Target: file,
			NodeID: id,
			Embed:  true,
		})
	}
	return out, nil
}

// RewriteCanvas applies an old-path → new-path mapping to every matching
// file node in one pass and re-marshals the document. Nodes whose file is
// not in the mapping are left untouched.
func RewriteCanvas(data []byte, mapping map[string]string) ([]byte, error) {
	if len(mapping) == 0 {
		return data, nil
	}
	var doc canvasDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parser: canvas: %w", err)
	}

	changed := false
	for _, node := range doc.Nodes {
		if t, _ := node["type"].(string); t != "file" {
			continue
		}
		file, _ := node["file"].(string)
		if newPath, ok := mapping[file]; ok && newPath != file {
			node["file"] = newPath
			changed = true
		}
	}
	if !changed {
		return data, nil
	}

	out, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("parser: canvas marshal: %w", err)
	}
	return out, nil
}
