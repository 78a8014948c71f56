package scrape

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/go-gota/gota/dataframe"
	"golang.org/x/net/html"
)

// ErrTableNotFound is returned when the XPath expression matches no table node
var ErrTableNotFound = errors.New("no table matched the XPath expression")

// Table is an extracted HTML table reshaped into rows and named columns
type Table struct {
	Caption string
	Headers []string
	Records [][]string
}

var (
	refBracketRe = regexp.MustCompile(`\[[0-9a-zA-Z ]{1,4}\]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	numericRe    = regexp.MustCompile(`^[+\-]?[0-9]*\.?[0-9]+$`)
)

// Select parses body as HTML, locates a table node with the XPath
// expression and reshapes it. When the expression matches a non-table
// element (a div wrapping the table, say) the first table beneath it is
// used instead.
func Select(body []byte, xpathExpr string) (*Table, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	node, err := htmlquery.Query(doc, xpathExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression %q: %w", xpathExpr, err)
	}
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, xpathExpr)
	}

	if node.Type != html.ElementNode || node.Data != "table" {
		inner := htmlquery.FindOne(node, "//table")
		if inner == nil {
			return nil, fmt.Errorf("%w: %s matched a %q element with no table inside", ErrTableNotFound, xpathExpr, node.Data)
		}
		node = inner
	}

	return reshape(node)
}

// reshape walks the table node and produces headers plus expanded records
func reshape(node *html.Node) (*Table, error) {
	doc := goquery.NewDocumentFromNode(node)

	// Footnote markers ("[1]", "[a]") carry no data; drop the sup elements
	// before text extraction so "Chile[3]" comes out as "Chile"
	doc.Find("sup").Remove()

	t := &Table{
		Caption: cleanText(doc.Find("caption").First().Text()),
	}

	// rowspan cells spill into following rows; carry tracks the pending
	// value and remaining row count per column index
	type spill struct {
		value     string
		remaining int
	}
	carry := map[int]*spill{}

	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		headerRow := true
		col := 0

		consumeCarry := func() {
			for {
				s, ok := carry[col]
				if !ok {
					break
				}
				row = append(row, s.value)
				s.remaining--
				if s.remaining == 0 {
					delete(carry, col)
				}
				col++
			}
		}

		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			consumeCarry()

			if cell.Is("td") {
				headerRow = false
			}

			text := cleanText(cell.Text())
			colspan := intAttr(cell, "colspan", 1)
			rowspan := intAttr(cell, "rowspan", 1)

			for i := 0; i < colspan; i++ {
				row = append(row, text)
				if rowspan > 1 {
					carry[col] = &spill{value: text, remaining: rowspan - 1}
				}
				col++
			}
		})
		consumeCarry()

		if len(row) == 0 {
			return
		}

		if headerRow {
			// Multi-row headers keep the first row; later all-th rows are
			// usually column subgroups that would only duplicate names
			if t.Headers == nil {
				t.Headers = row
			}
			return
		}

		t.Records = append(t.Records, row)
	})

	if t.Headers == nil && len(t.Records) == 0 {
		return nil, fmt.Errorf("%w: matched table contains no rows", ErrTableNotFound)
	}

	t.normalize()
	return t, nil
}

// normalize pads or trims every record to the header width
func (t *Table) normalize() {
	width := len(t.Headers)
	if width == 0 {
		for _, r := range t.Records {
			if len(r) > width {
				width = len(r)
			}
		}
		t.Headers = make([]string, width)
		for i := range t.Headers {
			t.Headers[i] = fmt.Sprintf("col_%d", i+1)
		}
	}

	for i, r := range t.Records {
		switch {
		case len(r) < width:
			padded := make([]string, width)
			copy(padded, r)
			t.Records[i] = padded
		case len(r) > width:
			t.Records[i] = r[:width]
		}
	}
}

// NumRows returns the number of data records
func (t *Table) NumRows() int {
	return len(t.Records)
}

// Limit returns a copy of the table keeping at most n records
func (t *Table) Limit(n int) *Table {
	if n <= 0 || n >= len(t.Records) {
		return t
	}
	return &Table{
		Caption: t.Caption,
		Headers: t.Headers,
		Records: t.Records[:n],
	}
}

// ColumnIndex returns the index of a named column, case-insensitive
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found (have: %s)", name, strings.Join(t.Headers, ", "))
}

// Column returns the raw string values of a named column
func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}

	values := make([]string, len(t.Records))
	for i, r := range t.Records {
		values[i] = r[idx]
	}
	return values, nil
}

// NumericColumn parses a named column as float64 values. Entries that are
// not numeric after cleanup come back as NaN so callers can skip them.
func (t *Table) NumericColumn(name string) ([]float64, error) {
	raw, err := t.Column(name)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(raw))
	for i, s := range raw {
		v, ok := ParseNumeric(s)
		if !ok {
			v = math.NaN()
		}
		values[i] = v
	}
	return values, nil
}

// DataFrame loads the table into a gota dataframe with type detection
func (t *Table) DataFrame() dataframe.DataFrame {
	records := make([][]string, 0, len(t.Records)+1)
	records = append(records, t.Headers)
	records = append(records, t.Records...)
	return dataframe.LoadRecords(records)
}

// ParseNumeric parses a cleaned cell value as a number. Thousands
// separators, percent signs, currency markers and Unicode minus are
// tolerated; dashes and N/A markers report not-a-number.
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "-", "—", "–", "N/A", "n/a", "NA", "..":
		return 0, false
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "−", "-") // Unicode minus
	s = strings.TrimSpace(s)

	if !numericRe.MatchString(s) {
		// Fall back to a leading-number parse for values like "1.2 million"
		if v, err := strconv.ParseFloat(leadingNumber(s), 64); err == nil {
			return v, true
		}
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// leadingNumber returns the longest numeric prefix of s
func leadingNumber(s string) string {
	end := 0
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || (i == 0 && (r == '-' || r == '+')) {
			end = i + len(string(r))
			continue
		}
		break
	}
	return s[:end]
}

// cleanText normalizes cell text: non-breaking spaces become plain
// spaces, footnote brackets are dropped and whitespace is collapsed
func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = refBracketRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// intAttr reads an integer attribute with a default
func intAttr(sel *goquery.Selection, name string, def int) int {
	v, ok := sel.Attr(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return def
	}
	return n
}
