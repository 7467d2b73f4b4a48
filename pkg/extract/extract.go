package extract

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

// Extraction errors.
var (
	// ErrImageTooSmall indicates the screenshot has fewer pixels than the
	// grid has cells.
	ErrImageTooSmall = errors.New("image too small for grid")

	// ErrTooManyColors indicates classification found more palette entries
	// than MaxColors, usually because the screenshot was not cropped to
	// the board.
	ErrTooManyColors = errors.New("too many colors")

	// ErrInvalidOptions indicates nonsensical grid or tolerance settings.
	ErrInvalidOptions = errors.New("invalid extraction options")
)

// Defaults applied by the zero Options value.
const (
	// DefaultColumns and DefaultRows describe the standard KAMI 2 board.
	DefaultColumns = 10
	DefaultRows    = 28

	// DefaultTolerance is the RGB distance within which two samples count
	// as the same color. Board colors sit far apart; anti-aliased samples
	// of one color sit close together.
	DefaultTolerance = 40

	// DefaultMaxColors bounds the palette. A classification that exceeds
	// it almost always means the grid was laid over UI chrome.
	DefaultMaxColors = 10

	// referenceWidth is the width screenshots are downsampled to before
	// sampling. Retina screenshots carry no extra information the sampler
	// needs.
	referenceWidth = 750

	// sampleRadius is the pixel radius of each centroid sample window.
	sampleRadius = 2
)

// Options configures extraction. The zero value applies the defaults above.
type Options struct {
	// Columns and Rows give the triangle grid dimensions.
	Columns int `json:"columns,omitempty"`
	Rows    int `json:"rows,omitempty"`

	// Tolerance is the maximum RGB distance between a sample and a palette
	// entry for them to be considered the same color.
	Tolerance int `json:"tolerance,omitempty"`

	// TopInset and BottomInset crop pixels off the image before the grid
	// is laid over it, measured after downsampling to the reference width.
	// Use BottomInset to cut off the in-game palette bar.
	TopInset    int `json:"top_inset,omitempty"`
	BottomInset int `json:"bottom_inset,omitempty"`

	// MaxColors caps the discovered palette size.
	MaxColors int `json:"max_colors,omitempty"`
}

func (o *Options) setDefaults() {
	if o.Columns == 0 {
		o.Columns = DefaultColumns
	}
	if o.Rows == 0 {
		o.Rows = DefaultRows
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxColors == 0 {
		o.MaxColors = DefaultMaxColors
	}
}

func (o Options) validate() error {
	if o.Columns < 1 || o.Rows < 1 {
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidOptions, o.Columns, o.Rows)
	}
	if o.Tolerance < 1 {
		return fmt.Errorf("%w: tolerance %d", ErrInvalidOptions, o.Tolerance)
	}
	if o.TopInset < 0 || o.BottomInset < 0 {
		return fmt.Errorf("%w: negative inset", ErrInvalidOptions)
	}
	return nil
}

// Board is the result of extracting a screenshot.
type Board struct {
	// Graph is the extracted region graph. It always passes
	// [puzzle.Graph.Validate].
	Graph *puzzle.Graph

	// Palette holds one #rrggbb hex color per color index.
	Palette []string

	// Cells maps each grid cell to its region id, indexed [row][col].
	Cells [][]int

	// Columns and Rows echo the grid the board was extracted with.
	Columns, Rows int
}

// FromFile extracts a board from a screenshot on disk.
func FromFile(path string, opts Options) (*Board, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return FromImage(img, opts)
}

// FromBytes extracts a board from raw encoded image bytes. The HTTP API
// uses this for uploaded screenshots.
func FromBytes(data []byte, opts Options) (*Board, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(img, opts)
}

// FromImage extracts a board from a decoded screenshot.
func FromImage(img image.Image, opts Options) (*Board, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if img.Bounds().Dx() > referenceWidth {
		img = imaging.Resize(img, referenceWidth, 0, imaging.Lanczos)
	}
	nrgba := imaging.Clone(img)

	width := nrgba.Bounds().Dx()
	height := nrgba.Bounds().Dy()
	boardHeight := height - opts.TopInset - opts.BottomInset
	if width < opts.Columns || boardHeight < opts.Rows {
		return nil, fmt.Errorf("%w: %dx%d board area for %dx%d grid",
			ErrImageTooSmall, width, boardHeight, opts.Columns, opts.Rows)
	}

	g := newGrid(opts.Columns, opts.Rows, width, height, opts.TopInset, opts.BottomInset)

	// Classify every cell against the growing palette.
	cl := newClusterer(opts.Tolerance)
	colors := make([]int, opts.Columns*opts.Rows)
	for row := range opts.Rows {
		for col := range opts.Columns {
			c := cell{Col: col, Row: row}
			x, y := g.centroid(c)
			colors[g.index(c)] = cl.assign(sampleWindow(nrgba, x, y, sampleRadius))
		}
	}
	if cl.size() > opts.MaxColors {
		return nil, fmt.Errorf("%w: found %d, max %d (is the screenshot cropped to the board?)",
			ErrTooManyColors, cl.size(), opts.MaxColors)
	}

	regions := floodFill(g, colors)

	graph, err := buildGraph(g, colors, regions)
	if err != nil {
		return nil, err
	}

	cells := make([][]int, opts.Rows)
	for row := range opts.Rows {
		cells[row] = regions[row*opts.Columns : (row+1)*opts.Columns]
	}

	return &Board{
		Graph:   graph,
		Palette: cl.palette(),
		Cells:   cells,
		Columns: opts.Columns,
		Rows:    opts.Rows,
	}, nil
}

// floodFill groups same-colored connected cells into regions. Region ids
// are assigned in row-major discovery order, so extraction is deterministic
// for a given screenshot and options.
func floodFill(g grid, colors []int) []int {
	regions := make([]int, len(colors))
	for i := range regions {
		regions[i] = -1
	}

	next := 0
	var queue []cell
	var buf []cell
	for row := range g.rows {
		for col := range g.columns {
			start := cell{Col: col, Row: row}
			if regions[g.index(start)] != -1 {
				continue
			}
			id := next
			next++

			regions[g.index(start)] = id
			queue = append(queue[:0], start)
			for len(queue) > 0 {
				c := queue[0]
				queue = queue[1:]
				buf = g.neighbors(c, buf)
				for _, n := range buf {
					ni := g.index(n)
					if regions[ni] == -1 && colors[ni] == colors[g.index(c)] {
						regions[ni] = id
						queue = append(queue, n)
					}
				}
			}
		}
	}
	return regions
}

// buildGraph assembles the region graph from per-cell color and region
// assignments.
func buildGraph(g grid, colors, regions []int) (*puzzle.Graph, error) {
	count := 0
	for _, id := range regions {
		if id >= count {
			count = id + 1
		}
	}

	sizes := make([]int, count)
	regionColors := make([]int, count)
	for i, id := range regions {
		sizes[id]++
		regionColors[id] = colors[i]
	}

	graph := puzzle.New()
	for id := range count {
		err := graph.AddRegion(puzzle.Region{ID: id, Color: regionColors[id], Size: sizes[id]})
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", id, err)
		}
	}

	var buf []cell
	for row := range g.rows {
		for col := range g.columns {
			c := cell{Col: col, Row: row}
			from := regions[g.index(c)]
			buf = g.neighbors(c, buf)
			for _, n := range buf {
				if to := regions[g.index(n)]; to != from {
					if err := graph.Link(from, to); err != nil {
						return nil, fmt.Errorf("link %d-%d: %w", from, to, err)
					}
				}
			}
		}
	}

	if err := graph.Validate(); err != nil {
		return nil, fmt.Errorf("extracted graph: %w", err)
	}
	return graph, nil
}
