package export

import (
	"encoding/xml"
	"io"
	"strings"
	"unicode"

	"github.com/JonMunkholm/tallyreview/internal/core"
)

// WriteTallyXML writes the table as a Tally "Import Data" envelope with
// one TALLYMESSAGE per row.
func WriteTallyXML(w io.Writer, t *core.TableData) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	cols := t.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = ElementName(c)
	}

	tw := &tokenWriter{enc: xml.NewEncoder(w)}
	tw.enc.Indent("", "  ")

	tw.open("ENVELOPE")
	tw.open("HEADER")
	tw.leaf("VERSION", "1")
	tw.leaf("TALLYREQUEST", "Import Data")
	tw.close("HEADER")
	tw.open("BODY")
	tw.open("IMPORTDATA")
	tw.open("REQUESTDESC")
	tw.leaf("REPORTNAME", "Custom")
	tw.close("REQUESTDESC")
	tw.open("REQUESTDATA")

	for _, row := range t.Rows {
		tw.open("TALLYMESSAGE")
		for i, c := range cols {
			tw.leaf(names[i], row.Value(c))
		}
		tw.close("TALLYMESSAGE")
	}

	tw.close("REQUESTDATA")
	tw.close("IMPORTDATA")
	tw.close("BODY")
	tw.close("ENVELOPE")

	if tw.err != nil {
		return tw.err
	}
	if err := tw.enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// tokenWriter keeps the first encoding error and ignores later calls.
type tokenWriter struct {
	enc *xml.Encoder
	err error
}

func (tw *tokenWriter) open(name string) {
	if tw.err == nil {
		tw.err = tw.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}})
	}
}

func (tw *tokenWriter) close(name string) {
	if tw.err == nil {
		tw.err = tw.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
	}
}

func (tw *tokenWriter) leaf(name, value string) {
	if tw.err == nil {
		tw.err = tw.enc.EncodeElement(value, xml.StartElement{Name: xml.Name{Local: name}})
	}
}

// ElementName turns a column key into a valid XML element name.
// Disallowed characters become '_', and names that start with a digit,
// punctuation or "xml" are prefixed with '_'.
func ElementName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		return "_"
	}

	first := []rune(name)[0]
	if !(unicode.IsLetter(first) || first == '_') || strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "_" + name
	}
	return name
}
