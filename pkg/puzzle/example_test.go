package puzzle_test

import (
	"fmt"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
)

func ExampleGraph_Apply() {
	// Three regions in a row: dark, light, dark.
	g := puzzle.New()
	_ = g.AddRegion(puzzle.Region{ID: 0, Color: 0, Size: 4})
	_ = g.AddRegion(puzzle.Region{ID: 1, Color: 1, Size: 2})
	_ = g.AddRegion(puzzle.Region{ID: 2, Color: 0, Size: 1})
	_ = g.Link(0, 1)
	_ = g.Link(1, 2)

	// Recoloring the middle region dark absorbs both neighbors.
	next, _ := g.Apply(puzzle.Move{Region: 1, Color: 0})

	fmt.Println("regions:", next.RegionCount())
	fmt.Println("solved:", next.Solved())
	fmt.Println("original untouched:", g.RegionCount())
	// Output:
	// regions: 1
	// solved: true
	// original untouched: 3
}

func ExampleGraph_Moves() {
	g := puzzle.New()
	_ = g.AddRegion(puzzle.Region{ID: 0, Color: 0, Size: 1})
	_ = g.AddRegion(puzzle.Region{ID: 1, Color: 1, Size: 1})
	_ = g.AddRegion(puzzle.Region{ID: 2, Color: 2, Size: 1})
	_ = g.Link(0, 1)
	_ = g.Link(1, 2)

	for _, m := range g.Moves() {
		fmt.Println(m)
	}
	// Output:
	// region 0 -> color 1
	// region 1 -> color 0
	// region 1 -> color 2
	// region 2 -> color 1
}
