package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"time"

	"manjaword/internal/export/delta"
	"manjaword/pkg/apperr"
)

const (
	contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
		`</Types>`

	relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
		`</Relationships>`

	documentHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

	// A4 in twentieths of a point with one-inch margins.
	documentTail = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/>` +
		`</w:sectPr></w:body></w:document>`
)

// Docx writes a WordprocessingML package with one single-run paragraph per
// non-blank line.
type Docx struct {
	Title string
	now   func() time.Time
}

func NewDocx(title string) *Docx {
	return &Docx{Title: title, now: time.Now}
}

// Write renders lines to w and returns the number of paragraphs written.
func (d *Docx) Write(w io.Writer, lines []string) (int, error) {
	body, paragraphs, err := documentXML(delta.NonBlank(lines))
	if err != nil {
		return 0, &apperr.FormatError{Format: "docx", Err: err}
	}
	core, err := d.coreXML()
	if err != nil {
		return 0, &apperr.FormatError{Format: "docx", Err: err}
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(relsXML)},
		{"docProps/core.xml", core},
		{"word/document.xml", body},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return 0, &apperr.FormatError{Format: "docx", Err: err}
		}
		if _, err := f.Write(part.data); err != nil {
			return 0, &apperr.FormatError{Format: "docx", Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return 0, &apperr.FormatError{Format: "docx", Err: err}
	}
	return paragraphs, nil
}

func documentXML(lines []string) ([]byte, int, error) {
	var buf bytes.Buffer
	buf.WriteString(documentHead)
	for _, line := range lines {
		buf.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		if err := xml.EscapeText(&buf, []byte(line)); err != nil {
			return nil, 0, err
		}
		buf.WriteString(`</w:t></w:r></w:p>`)
	}
	buf.WriteString(documentTail)
	return buf.Bytes(), len(lines), nil
}

type coreProperties struct {
	XMLName  xml.Name `xml:"cp:coreProperties"`
	CP       string   `xml:"xmlns:cp,attr"`
	DC       string   `xml:"xmlns:dc,attr"`
	DCTerms  string   `xml:"xmlns:dcterms,attr"`
	XSI      string   `xml:"xmlns:xsi,attr"`
	Title    string   `xml:"dc:title"`
	Creator  string   `xml:"dc:creator"`
	Created  dcDate   `xml:"dcterms:created"`
	Modified dcDate   `xml:"dcterms:modified"`
}

type dcDate struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

func (d *Docx) coreXML() ([]byte, error) {
	stamp := dcDate{Type: "dcterms:W3CDTF", Value: d.now().UTC().Format(time.RFC3339)}
	props := coreProperties{
		CP:       "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		DC:       "http://purl.org/dc/elements/1.1/",
		DCTerms:  "http://purl.org/dc/terms/",
		XSI:      "http://www.w3.org/2001/XMLSchema-instance",
		Title:    d.Title,
		Creator:  "ManjaWord",
		Created:  stamp,
		Modified: stamp,
	}
	out, err := xml.Marshal(props)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
