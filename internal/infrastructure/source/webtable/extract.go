package webtable

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Cell is the visible text of one table cell.
type Cell struct {
	Text  string   // whitespace-collapsed
	Lines []string // non-empty text fragments in document order
}

type Row struct {
	Cells []Cell
}

// Text is the whole row's visible text.
func (r Row) Text() string {
	parts := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		parts[i] = c.Text
	}
	return strings.Join(parts, " ")
}

// Contains reports whether the row's text contains s.
func (r Row) Contains(s string) bool { return strings.Contains(r.Text(), s) }

// RowExtractor turns a fetched page into table body rows.
type RowExtractor interface {
	Rows(r io.Reader) ([]Row, error)
}

// HTMLExtractor reads rows matching Selector (default "table tbody tr").
type HTMLExtractor struct {
	Selector string
}

func (e HTMLExtractor) Rows(r io.Reader) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	sel := e.Selector
	if sel == "" {
		sel = "table tbody tr"
	}
	var rows []Row
	doc.Find(sel).Each(func(_ int, tr *goquery.Selection) {
		var row Row
		tr.ChildrenFiltered("td").Each(func(_ int, td *goquery.Selection) {
			var lines []string
			textLines(td, &lines)
			row.Cells = append(row.Cells, Cell{
				Text:  strings.Join(strings.Fields(td.Text()), " "),
				Lines: lines,
			})
		})
		rows = append(rows, row)
	})
	return rows, nil
}

func textLines(s *goquery.Selection, out *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			for _, l := range strings.Split(c.Text(), "\n") {
				if t := strings.TrimSpace(l); t != "" {
					*out = append(*out, t)
				}
			}
			return
		}
		textLines(c, out)
	})
}
