package xlsxwriter

import (
	"encoding/xml"
	"io"
	"strconv"
	"time"
)

// Properties are the document metadata written to docProps/core.xml and
// docProps/app.xml.
type Properties struct {
	Title         string
	Subject       string
	Author        string
	Manager       string
	Company       string
	Category      string
	Keywords      string
	Comments      string
	Status        string
	HyperlinkBase string
	Created       time.Time
}

type dcTerms struct {
	Type string `xml:"xsi:type,attr"`
	Text string `xml:",chardata"`
}

type xlsxCoreProperties struct {
	XMLName        xml.Name `xml:"http://schemas.openxmlformats.org/package/2006/metadata/core-properties coreProperties"`
	Dc             string   `xml:"xmlns:dc,attr"`
	Dcterms        string   `xml:"xmlns:dcterms,attr"`
	Dcmitype       string   `xml:"xmlns:dcmitype,attr"`
	XSI            string   `xml:"xmlns:xsi,attr"`
	Title          string   `xml:"dc:title,omitempty"`
	Subject        string   `xml:"dc:subject,omitempty"`
	Creator        string   `xml:"dc:creator"`
	Keywords       string   `xml:"keywords,omitempty"`
	Description    string   `xml:"dc:description,omitempty"`
	LastModifiedBy string   `xml:"lastModifiedBy"`
	Created        dcTerms  `xml:"dcterms:created"`
	Modified       dcTerms  `xml:"dcterms:modified"`
	Category       string   `xml:"category,omitempty"`
	ContentStatus  string   `xml:"contentStatus,omitempty"`
}

func (p Properties) writeCore(w io.Writer) error {
	created := p.Created
	if created.IsZero() {
		created = time.Now()
	}
	stamp := created.UTC().Format(time.RFC3339)
	core := xlsxCoreProperties{
		Dc:             "http://purl.org/dc/elements/1.1/",
		Dcterms:        "http://purl.org/dc/terms/",
		Dcmitype:       "http://purl.org/dc/dcmitype/",
		XSI:            "http://www.w3.org/2001/XMLSchema-instance",
		Title:          p.Title,
		Subject:        p.Subject,
		Creator:        p.Author,
		Keywords:       p.Keywords,
		Description:    p.Comments,
		LastModifiedBy: p.Author,
		Created:        dcTerms{Type: "dcterms:W3CDTF", Text: stamp},
		Modified:       dcTerms{Type: "dcterms:W3CDTF", Text: stamp},
		Category:       p.Category,
		ContentStatus:  p.Status,
	}
	return writeXML(w, core)
}

type vtVariant struct {
	LPStr string `xml:"vt:lpstr,omitempty"`
	I4    string `xml:"vt:i4,omitempty"`
}

type vtVector struct {
	Size     int         `xml:"size,attr"`
	BaseType string      `xml:"baseType,attr"`
	Variant  []vtVariant `xml:"vt:variant,omitempty"`
	LPStr    []string    `xml:"vt:lpstr,omitempty"`
}

type vectorHolder struct {
	Vector vtVector `xml:"vt:vector"`
}

type xlsxAppProperties struct {
	XMLName           xml.Name     `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Properties"`
	Vt                string       `xml:"xmlns:vt,attr"`
	Application       string       `xml:"Application"`
	DocSecurity       int          `xml:"DocSecurity"`
	ScaleCrop         bool         `xml:"ScaleCrop"`
	HeadingPairs      vectorHolder `xml:"HeadingPairs"`
	TitlesOfParts     vectorHolder `xml:"TitlesOfParts"`
	Manager           string       `xml:"Manager,omitempty"`
	Company           string       `xml:"Company"`
	LinksUpToDate     bool         `xml:"LinksUpToDate"`
	SharedDoc         bool         `xml:"SharedDoc"`
	HyperlinkBase     string       `xml:"HyperlinkBase,omitempty"`
	HyperlinksChanged bool         `xml:"HyperlinksChanged"`
	AppVersion        string       `xml:"AppVersion"`
}

func (p Properties) writeApp(w io.Writer, sheetNames []string) error {
	app := xlsxAppProperties{
		Vt:          "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes",
		Application: "Microsoft Excel",
		HeadingPairs: vectorHolder{vtVector{
			Size:     2,
			BaseType: "variant",
			Variant: []vtVariant{
				{LPStr: "Worksheets"},
				{I4: strconv.Itoa(len(sheetNames))},
			},
		}},
		TitlesOfParts: vectorHolder{vtVector{
			Size:     len(sheetNames),
			BaseType: "lpstr",
			LPStr:    sheetNames,
		}},
		Manager:       p.Manager,
		Company:       p.Company,
		HyperlinkBase: p.HyperlinkBase,
		AppVersion:    "12.0000",
	}
	return writeXML(w, app)
}
