package render

import (
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	tileWidth  = 15 * vg.Centimeter
	tileHeight = 10 * vg.Centimeter
)

// WritePNG draws the chart's subplots into their grid layout and writes the
// result as a PNG.
func (c *Chart) WritePNG(w io.Writer) error {
	img := vgimg.New(vg.Length(c.cols)*tileWidth, vg.Length(c.rows)*tileHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: c.rows,
		Cols: c.cols,
		PadX: vg.Millimeter * 2,
		PadY: vg.Millimeter * 2,
	}
	grid := make([][]*plot.Plot, c.rows)
	for row := range grid {
		grid[row] = make([]*plot.Plot, c.cols)
		for col := range grid[row] {
			if i := row*c.cols + col; i < len(c.plots) {
				grid[row][col] = c.plots[i]
			}
		}
	}
	canvases := plot.Align(grid, tiles, dc)
	for row := range grid {
		for col := range grid[row] {
			if grid[row][col] != nil {
				grid[row][col].Draw(canvases[row][col])
			}
		}
	}
	png := vgimg.PngCanvas{Canvas: img}
	_, err := png.WriteTo(w)
	return err
}

// SavePNG writes the chart to a file, creating or truncating it.
func (c *Chart) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
