package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/zalepa/judgefee/fee"
)

const (
	pageWidth  = 8.5 * vg.Inch
	pageHeight = 11 * vg.Inch
	pdfMargin  = 0.75 * vg.Inch

	lineHeight   = 0.22 * vg.Inch
	blockGap     = 0.18 * vg.Inch
	headerHeight = 1.0 * vg.Inch
	contHeight   = 0.4 * vg.Inch
)

var (
	headingBlue = color.RGBA{R: 30, G: 64, B: 175, A: 255}
	titleRed    = color.RGBA{R: 220, G: 38, B: 38, A: 255}
	chartBlue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// page is the set of judge indexes drawn on one page.
type page []int

func blockHeight(nLines int) vg.Length {
	return vg.Length(nLines)*lineHeight + blockGap
}

// paginate assigns judge blocks to pages. The first page loses headerHeight
// to the title; later pages lose contHeight to the continuation header. A
// block taller than a whole page still gets a page of its own.
func paginate(blockLines []int) []page {
	usable := pageHeight - 2*pdfMargin
	var pages []page
	cur := page{}
	avail := usable - headerHeight
	for i, n := range blockLines {
		h := blockHeight(n)
		if h > avail && len(cur) > 0 {
			pages = append(pages, cur)
			cur = page{}
			avail = usable - contHeight
		}
		cur = append(cur, i)
		avail -= h
	}
	return append(pages, cur)
}

// PageCount returns how many pages RenderPDF produces for results.
func PageCount(results []fee.Result, o Options) int {
	n := len(paginate(blockSizes(results, o)))
	if o.Chart && len(results) > 0 {
		n++
	}
	return n
}

func blockSizes(results []fee.Result, o Options) []int {
	sizes := make([]int, len(results))
	for i, r := range results {
		sizes[i] = len(Block(i, r, o))
	}
	return sizes
}

// WritePDFFile renders results to a PDF at path.
func WritePDFFile(path string, results []fee.Result, o Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderPDF(f, results, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderPDF writes a letter-size fee summary: one text block per judge in
// roster order, paginated, followed by a bar chart of total pay.
func RenderPDF(w io.Writer, results []fee.Result, o Options) error {
	title := pdfSafe(o.title())
	c := vgpdf.New(pageWidth, pageHeight)

	blocks := make([][]string, len(results))
	for i, r := range results {
		blocks[i] = Block(i, r, o)
	}
	pages := paginate(blockSizes(results, o))

	for pageNum, pg := range pages {
		if pageNum > 0 {
			c.NextPage()
		}
		dc := draw.New(c)
		area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
		usableW := area.Max.X - area.Min.X

		y := area.Max.Y
		if pageNum == 0 {
			fillText(area, title, vg.Points(16), area.Min.X, y-vg.Points(16), titleRed)
			summary := fmt.Sprintf("%d judge(s), total %s", len(results), fee.FormatMoney(fee.Sum(results)))
			fillText(area, summary, vg.Points(10), area.Min.X, y-0.45*vg.Inch, color.Gray{Y: 100})
			strokeHLine(area, area.Min.X, area.Min.X+usableW, y-0.65*vg.Inch, color.Gray{Y: 180})
			y -= headerHeight
		} else {
			fillText(area, title+" (continued)", vg.Points(10), area.Min.X, y-vg.Points(10), color.Gray{Y: 100})
			y -= contHeight
		}

		if len(results) == 0 {
			fillText(area, "No judges entered.", vg.Points(11), area.Min.X, y-lineHeight, color.Black)
		}

		for _, idx := range pg {
			lines := blocks[idx]
			for li, line := range lines {
				y -= lineHeight
				line = pdfSafe(line)
				switch {
				case li == 0:
					fillText(area, line, vg.Points(12), area.Min.X, y, headingBlue)
				case li == len(lines)-1:
					fillText(area, line, vg.Points(11), area.Min.X+0.2*vg.Inch, y, headingBlue)
				default:
					fillText(area, line, vg.Points(10), area.Min.X+0.2*vg.Inch, y, color.Black)
				}
			}
			y -= blockGap
		}
	}

	if o.Chart && len(results) > 0 {
		c.NextPage()
		if err := drawTotalsChart(c, title, results); err != nil {
			return err
		}
	}

	_, err := c.WriteTo(w)
	return err
}

func drawTotalsChart(c *vgpdf.Canvas, title string, results []fee.Result) error {
	vals := make(plotter.Values, len(results))
	names := make([]string, len(results))
	for i, r := range results {
		vals[i] = r.Total
		names[i] = pdfSafe(chartLabel(i, r))
	}

	usableW := pageWidth - 2*pdfMargin
	width := usableW / vg.Length(2*len(results))
	if width > vg.Points(28) {
		width = vg.Points(28)
	}

	bars, err := plotter.NewBarChart(vals, width)
	if err != nil {
		return fmt.Errorf("total pay chart: %w", err)
	}
	bars.Color = chartBlue
	bars.LineStyle.Width = 0

	p := plot.New()
	p.Title.Text = title + " - Total Pay"
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White
	p.Add(plotter.NewGrid(), bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	if nonNegative(vals) {
		p.Y.Min = 0
	}
	p.Y.Tick.Marker = moneyTicks{}

	dc := draw.New(c)
	area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
	p.Draw(area)
	return nil
}

// nonNegative reports whether no value would draw below the axis.
func nonNegative(vals plotter.Values) bool {
	for _, v := range vals {
		if v < 0 {
			return false
		}
	}
	return true
}

func chartLabel(i int, r fee.Result) string {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Sprintf("Judge %d", i+1)
	}
	return r.Name
}

type moneyTicks struct{}

func (moneyTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		switch v := ticks[i].Value; {
		case ticks[i].Label == "":
		case v < 0:
			ticks[i].Label = fmt.Sprintf("-$%.0f", -v)
		default:
			ticks[i].Label = fmt.Sprintf("$%.0f", v)
		}
	}
	return ticks
}

// pdfSafe replaces characters the bundled Liberation font renders badly.
func pdfSafe(s string) string {
	s = strings.ReplaceAll(s, "\u2014", "-")
	s = strings.ReplaceAll(s, "\u2013", "-")
	return s
}

func fillText(c draw.Canvas, txt string, size vg.Length, x, y vg.Length, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = size
	c.FillText(sty, vg.Point{X: x, Y: y}, txt)
}

func strokeHLine(c draw.Canvas, x0, x1, y vg.Length, clr color.Color) {
	c.StrokeLine2(draw.LineStyle{
		Color: clr,
		Width: vg.Points(0.5),
	}, x0, y, x1, y)
}
