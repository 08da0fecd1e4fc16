package planpdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultMaxPages caps how many sheets one takeoff run reads. Plan sets
// run long; the title block and the first sheets carry the signal.
const DefaultMaxPages = 3

// Line is a vector segment in page units.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// Rect is an axis-aligned rectangle in page units.
type Rect struct {
	X, Y, W, H float64
}

// Page holds the extracted text and vector primitives of one sheet.
type Page struct {
	Number int
	Text   string
	Lines  []Line
	Rects  []Rect
}

// Document is the parsed view of a plan PDF.
type Document struct {
	Path      string
	PageCount int
	Pages     []Page
}

// CombinedText joins page texts with newlines, in page order.
func (d *Document) CombinedText() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// HasVectorGeometry reports whether any read page carried drawing
// primitives.
func (d *Document) HasVectorGeometry() bool {
	for _, p := range d.Pages {
		if len(p.Lines) > 0 || len(p.Rects) > 0 {
			return true
		}
	}
	return false
}

// Read parses up to maxPages sheets of a plan PDF (<=0 selects
// DefaultMaxPages). Pages whose content stream cannot be read are
// skipped, not fatal.
func Read(path string, maxPages int) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plan %s: %w", path, err)
	}
	defer f.Close()
	return read(f, path, maxPages)
}

// ReadBytes parses a plan PDF held in memory, as served from object
// storage.
func ReadBytes(data []byte, name string, maxPages int) (*Document, error) {
	return read(bytes.NewReader(data), name, maxPages)
}

func read(rs io.ReadSeeker, name string, maxPages int) (*Document, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read %s: %w", name, err)
	}

	doc := &Document{Path: name, PageCount: ctx.PageCount}
	limit := ctx.PageCount
	if limit > maxPages {
		limit = maxPages
	}
	for pageNr := 1; pageNr <= limit; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		page := Page{Number: pageNr, Text: textFromStream(data)}
		page.Lines, page.Rects = geometryFromStream(data)
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

// pdfStringRe matches PDF string literals: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromStream walks content stream text operators. Tj and TJ show
// text, ' shows text on the next line, Td/TD reposition and T* starts a
// new line.
func textFromStream(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodePDFString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}
	return cleanText(sb.String())
}

// geometryFromStream walks path construction operators: m sets the
// current point, l appends a segment from it, re appends a rectangle.
func geometryFromStream(data []byte) ([]Line, []Rect) {
	var lines []Line
	var rects []Rect
	var stack []float64
	var curX, curY float64
	haveCur := false

	for _, raw := range bytes.Split(data, []byte{'\n'}) {
		for _, tok := range strings.Fields(string(bytes.TrimSpace(raw))) {
			if v, err := strconv.ParseFloat(tok, 64); err == nil {
				stack = append(stack, v)
				continue
			}
			switch tok {
			case "m":
				if len(stack) >= 2 {
					curX, curY = stack[len(stack)-2], stack[len(stack)-1]
					haveCur = true
				}
			case "l":
				if haveCur && len(stack) >= 2 {
					x, y := stack[len(stack)-2], stack[len(stack)-1]
					lines = append(lines, Line{X1: curX, Y1: curY, X2: x, Y2: y})
					curX, curY = x, y
				}
			case "re":
				if len(stack) >= 4 {
					n := len(stack)
					rects = append(rects, Rect{
						X: stack[n-4], Y: stack[n-3], W: stack[n-2], H: stack[n-1],
					})
				}
			}
			stack = stack[:0]
		}
	}
	return lines, rects
}

func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for j := 0; j < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; j++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

// cleanText collapses runs of spaces while preserving line structure.
func cleanText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case r == '\n':
			sb.WriteByte('\n')
			prevSpace = true
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
