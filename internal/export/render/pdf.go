package render

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"manjaword/pkg/apperr"
)

// PageLayout positions text on a fixed-size page. Vertical positions are
// measured from the bottom edge, in millimetres.
type PageLayout struct {
	Width       float64
	Height      float64
	Left        float64
	Top         float64
	Bottom      float64
	LineAdvance float64
	FontFamily  string
	FontSize    float64
	// Paginate continues on a new page instead of dropping overflow.
	Paginate bool
}

// DefaultLayout is an A4 page with Helvetica 12pt starting 17mm below the
// top edge.
var DefaultLayout = PageLayout{
	Width:       210,
	Height:      297,
	Left:        15,
	Top:         280,
	Bottom:      15,
	LineAdvance: 8,
	FontFamily:  "Helvetica",
	FontSize:    12,
}

// Placement is one line of text at its position.
type Placement struct {
	Page int
	X    float64
	Y    float64
	Text string
}

// Place walks lines top to bottom. Blank lines take no space. Once the cursor
// drops below the bottom margin the rest is dropped, or moved to a fresh page
// when Paginate is set.
func (l PageLayout) Place(lines []string) []Placement {
	placed := []Placement{}
	page, y := 0, l.Top
	for _, line := range lines {
		if y < l.Bottom {
			if !l.Paginate {
				break
			}
			page++
			y = l.Top
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		placed = append(placed, Placement{Page: page, X: l.Left, Y: y, Text: line})
		y -= l.LineAdvance
	}
	return placed
}

// PDF renders lines onto pages with a built-in base font.
type PDF struct {
	Title    string
	Layout   PageLayout
	Compress bool
}

func NewPDF(title string, paginate bool) *PDF {
	layout := DefaultLayout
	layout.Paginate = paginate
	return &PDF{Title: title, Layout: layout, Compress: true}
}

// Write renders lines to w and returns the number of lines placed.
func (p *PDF) Write(w io.Writer, lines []string) (int, error) {
	l := p.Layout
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: l.Width, Ht: l.Height},
	})
	doc.SetCompression(p.Compress)
	doc.SetTitle(p.Title, true)
	doc.SetCreator("ManjaWord", true)
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont(l.FontFamily, "", l.FontSize)
	toCP1252 := doc.UnicodeTranslatorFromDescriptor("")

	placed := l.Place(lines)
	doc.AddPage()
	page := 0
	for _, pl := range placed {
		for page < pl.Page {
			doc.AddPage()
			page++
		}
		// fpdf measures from the top edge.
		doc.Text(pl.X, l.Height-pl.Y, toCP1252(pl.Text))
	}

	if err := doc.Output(w); err != nil {
		return 0, &apperr.FormatError{Format: "pdf", Err: err}
	}
	return len(placed), nil
}
