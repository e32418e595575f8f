package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// chunkDocument is the in-memory tree for one page section. It is rendered
// once and then dropped; nothing in it outlives its chunk.
type chunkDocument struct {
	root *html.Node
}

func newChunkDocument(index int) *chunkDocument {
	return &chunkDocument{
		root: element(atom.Section,
			attr("class", "page"),
			attr("data-chunk", strconv.Itoa(index)),
		),
	}
}

// layout adds the optional heading blocks and an empty table with its header
// row.
func (d *chunkDocument) layout(cfg *PagedConfig, heading bool, generated string) {
	if heading {
		d.root.AppendChild(withText(element(atom.H1, attr("class", "title")), cfg.Title))

		label := cfg.Label
		if generated != "" {
			label = fmt.Sprintf("%s (Generated: %s)", cfg.Label, generated)
		}
		d.root.AppendChild(withText(element(atom.P, attr("class", "label")), label))
	}

	table := element(atom.Table)

	colgroup := element(atom.Colgroup)
	for _, width := range cfg.ColumnWidths {
		colgroup.AppendChild(element(atom.Col, attr("style", "width: "+strconv.Itoa(width)+"%")))
	}
	table.AppendChild(colgroup)

	header := element(atom.Tr, attr("class", "header"))
	for _, h := range cfg.Headers {
		if cfg.UppercaseHeaders {
			h = strings.ToUpper(h)
		}
		header.AppendChild(withText(element(atom.Th), h))
	}
	thead := element(atom.Thead)
	thead.AppendChild(header)
	table.AppendChild(thead)
	table.AppendChild(element(atom.Tbody))

	d.root.AppendChild(table)
}

// body finds the row container of the chunk's table by walking the tree.
// Returns nil when the table structure is missing.
func (d *chunkDocument) body() *html.Node {
	var table *html.Node
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Table {
			table = c
			break
		}
	}
	if table == nil {
		return nil
	}
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Tbody {
			return c
		}
	}
	return nil
}

// appendRow adds one row of exactly columns cells. Excess fields are dropped;
// missing fields leave empty cells.
func appendRow(body *html.Node, fields []string, columns int, class string) {
	tr := element(atom.Tr, attr("class", class))
	for i := 0; i < columns; i++ {
		td := element(atom.Td)
		if i < len(fields) && fields[i] != "" {
			td.AppendChild(textNode(fields[i]))
		}
		tr.AppendChild(td)
	}
	body.AppendChild(tr)
}

// render writes the section followed by a newline.
func (d *chunkDocument) render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// writePrologue writes everything up to and including the opening body tag,
// followed by the caller's prefix markup.
func writePrologue(w io.Writer, cfg *PagedConfig) error {
	if err := html.Render(w, &html.Node{Type: html.DoctypeNode, Data: "html"}); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n<html>\n"); err != nil {
		return err
	}

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	head.AppendChild(withText(element(atom.Title), cfg.Title))
	head.AppendChild(withText(element(atom.Style), stylesheet(cfg)))
	if err := html.Render(w, head); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "\n<body>\n"); err != nil {
		return err
	}
	if cfg.PrefixHTML == "" {
		return nil
	}
	_, err := io.WriteString(w, cfg.PrefixHTML)
	return err
}

func writeEpilogue(w io.Writer) error {
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}

// stylesheet holds the page geometry and table formatting. Colours are
// validated hex values, so they are safe inside the raw style text.
func stylesheet(cfg *PagedConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@page { size: %s %s; margin: 15mm; }\n", cfg.PageSize, cfg.Orientation)
	b.WriteString("body { font-family: Arial, sans-serif; }\n")
	b.WriteString("section.page { page-break-after: always; break-after: page; }\n")
	b.WriteString("h1.title { text-align: center; font-size: 24pt; font-weight: bold; }\n")
	b.WriteString("p.label { font-size: 12pt; margin-bottom: 20px; }\n")
	b.WriteString("table { width: 100%; border-collapse: collapse; table-layout: fixed; }\n")
	b.WriteString("th, td { border: 0.5px solid #000000; padding: 5px; text-align: left; word-wrap: break-word; }\n")
	fmt.Fprintf(&b, "tr.header th { font-weight: bold; background-color: %s; }\n", cfg.HeaderColor)
	fmt.Fprintf(&b, "tr.even td { background-color: %s; }\n", cfg.ZebraEven)
	fmt.Fprintf(&b, "tr.odd td { background-color: %s; }\n", cfg.ZebraOdd)
	return b.String()
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	if s != "" {
		n.AppendChild(textNode(s))
	}
	return n
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}
