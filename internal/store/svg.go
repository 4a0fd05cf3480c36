package store

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/attractor/internal/sim"
)

var palette = []string{"#00ffff", "#ff00ff", "#ffaa00", "#00ff88", "#ff4444", "#8888ff"}

type bounds struct {
	minX, maxX, minY, maxY float64
	empty                  bool
}

func (b *bounds) add(x, y float64) {
	if b.empty {
		b.minX, b.maxX, b.minY, b.maxY = x, x, y, y
		b.empty = false
		return
	}
	b.minX, b.maxX = min(b.minX, x), max(b.maxX, x)
	b.minY, b.maxY = min(b.minY, y), max(b.maxY, y)
}

// pad widens the box by 10% on every side and uses one scale for both axes
// so orbits keep their shape.
func (b *bounds) pad() {
	rx, ry := b.maxX-b.minX, b.maxY-b.minY
	r := max(rx, ry)
	if r == 0 {
		r = 1
	}
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	half := r * 0.6
	b.minX, b.maxX = cx-half, cx+half
	b.minY, b.maxY = cy-half, cy+half
}

// WriteSVG draws each body's path in the XY plane as one SVG polyline. A
// body that is inactive in some frames gets a gap in its path.
func WriteSVG(w io.Writer, result *sim.Result, width, height int) error {
	box := bounds{empty: true}
	var names []string
	seen := make(map[string]bool)
	for _, f := range result.Frames {
		for _, b := range f.Bodies {
			if !seen[b.Name] {
				seen[b.Name] = true
				names = append(names, b.Name)
			}
			if b.Active {
				box.add(b.Position.X, b.Position.Y)
			}
		}
	}
	box.pad()

	project := func(x, y float64) (float64, float64) {
		px := (x - box.minX) / (box.maxX - box.minX) * float64(width)
		py := float64(height) - (y-box.minY)/(box.maxY-box.minY)*float64(height)
		return px, py
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, name := range names {
		color := palette[i%len(palette)]
		fmt.Fprintf(bw, `<path id=%q fill="none" stroke="%s" stroke-width="1.5" d="`, name, color)
		pen, drawn := false, false
		var last [2]float64
		for _, f := range result.Frames {
			b, ok := f.Body(name)
			if !ok || !b.Active {
				pen = false
				continue
			}
			x, y := project(b.Position.X, b.Position.Y)
			if pen {
				fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(bw, " M%.1f,%.1f", x, y)
				pen = true
			}
			last = [2]float64{x, y}
			drawn = true
		}
		bw.WriteString("\"/>\n")
		if drawn {
			fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", last[0], last[1], color)
		}
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
