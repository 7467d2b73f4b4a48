package puzzle

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// Document is the canonical serialization format for region graphs. It is
// used for CLI artifacts, API payloads and cache entries, and is designed
// for round-trip fidelity: export, re-import and export again produces
// identical bytes.
type Document struct {
	Regions []RegionDoc `json:"regions" bson:"regions"`

	// Palette optionally maps color indices to hex colors ("#6ecbf5").
	// Extraction fills it in; hand-written documents may omit it.
	Palette []string `json:"palette,omitempty" bson:"palette,omitempty"`
}

// RegionDoc is the serialized form of one region.
type RegionDoc struct {
	ID       int   `json:"id" bson:"id"`
	Color    int   `json:"color" bson:"color"`
	Size     int   `json:"size" bson:"size"`
	Adjacent []int `json:"adjacent,omitempty" bson:"adjacent,omitempty"`
}

// FromGraph converts a graph into its serialization format. Regions appear
// in ascending id order with sorted adjacency lists, so output is stable.
// The palette may be nil.
func FromGraph(g *Graph, palette []string) Document {
	doc := Document{
		Regions: make([]RegionDoc, 0, g.RegionCount()),
		Palette: slices.Clone(palette),
	}
	for _, r := range g.Regions() {
		doc.Regions = append(doc.Regions, RegionDoc{
			ID:       r.ID,
			Color:    r.Color,
			Size:     r.Size,
			Adjacent: r.Neighbors(),
		})
	}
	return doc
}

// ToGraph rebuilds a graph from its serialization format. Adjacency lists
// are applied symmetrically, so a document only needs each edge once (both
// directions are tolerated). The rebuilt graph is validated before being
// returned; errors are wrapped with the offending region for context.
func (d Document) ToGraph() (*Graph, error) {
	g := New()
	for _, r := range d.Regions {
		if err := g.AddRegion(Region{ID: r.ID, Color: r.Color, Size: r.Size}); err != nil {
			return nil, fmt.Errorf("region %d: %w", r.ID, err)
		}
	}
	for _, r := range d.Regions {
		for _, nb := range r.Adjacent {
			if err := g.Link(r.ID, nb); err != nil {
				return nil, fmt.Errorf("region %d -> %d: %w", r.ID, nb, err)
			}
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// WriteJSON encodes a graph document as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadJSON decodes a graph document from r and rebuilds the graph.
//
// The input must be a JSON object with a "regions" array:
//
//	{
//	  "regions": [
//	    {"id": 0, "color": 0, "size": 4, "adjacent": [1]},
//	    {"id": 1, "color": 1, "size": 2, "adjacent": [0]}
//	  ],
//	  "palette": ["#1c2b4b", "#6ecbf5"]
//	}
//
// ReadJSON returns an error if the JSON is malformed, a region id repeats,
// an adjacency references an unknown region, or any structural invariant
// fails. Use errors.Is to check for the package sentinels. ReadJSON does
// not close r.
func ReadJSON(r io.Reader) (*Graph, []string, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode: %w", err)
	}
	g, err := doc.ToGraph()
	if err != nil {
		return nil, nil, err
	}
	return g, doc.Palette, nil
}

// ExportJSON writes a graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *Graph, palette []string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(FromGraph(g, palette), f)
}

// ImportJSON reads the JSON file at path and returns the decoded graph and
// palette. Errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (*Graph, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, palette, err := ReadJSON(f)
	if err != nil {
		return nil, nil, fmt.Errorf("import %s: %w", path, err)
	}
	return g, palette, nil
}
