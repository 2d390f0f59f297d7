package sword

import (
	"encoding/xml"
	"time"
)

// XML namespaces. Elements are written with literal prefixes and the
// namespaces declared on the root, which is what SWORD clients expect to see.
const (
	nsAtom    = "http://www.w3.org/2005/Atom"
	nsApp     = "http://www.w3.org/2007/app"
	nsSword   = "http://purl.org/net/sword/terms/"
	nsDCTerms = "http://purl.org/dc/terms/"

	relAdd             = nsSword + "add"
	relStatement       = nsSword + "statement"
	relOriginalDeposit = nsSword + "originalDeposit"
)

type xmlService struct {
	XMLName       xml.Name       `xml:"service"`
	Xmlns         string         `xml:"xmlns,attr"`
	XmlnsAtom     string         `xml:"xmlns:atom,attr"`
	XmlnsSword    string         `xml:"xmlns:sword,attr"`
	XmlnsDCTerms  string         `xml:"xmlns:dcterms,attr"`
	Version       string         `xml:"sword:version"`
	MaxUploadSize int64          `xml:"sword:maxUploadSize"`
	Workspaces    []xmlWorkspace `xml:"workspace"`
}

type xmlWorkspace struct {
	Title       string          `xml:"atom:title"`
	Collections []xmlCollection `xml:"collection"`
}

type xmlCollection struct {
	Href            string      `xml:"href,attr"`
	Title           string      `xml:"atom:title"`
	Accept          []xmlAccept `xml:"accept"`
	Policy          string      `xml:"sword:collectionPolicy"`
	Abstract        string      `xml:"dcterms:abstract"`
	Mediation       bool        `xml:"sword:mediation"`
	Treatment       string      `xml:"sword:treatment"`
	AcceptPackaging []string    `xml:"sword:acceptPackaging"`
	SubServices     []string    `xml:"sword:service"`
}

type xmlAccept struct {
	Alternate string `xml:"alternate,attr,omitempty"`
	Value     string `xml:",chardata"`
}

type xmlGenerator struct {
	URI     string `xml:"uri,attr"`
	Version string `xml:"version,attr,omitempty"`
}

type xmlLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr,omitempty"`
}

type xmlContent struct {
	Type string `xml:"type,attr,omitempty"`
	Src  string `xml:"src,attr"`
}

type xmlEntry struct {
	XMLName      xml.Name      `xml:"entry"`
	Xmlns        string        `xml:"xmlns,attr"`
	XmlnsSword   string        `xml:"xmlns:sword,attr"`
	XmlnsDCTerms string        `xml:"xmlns:dcterms,attr"`
	ID           string        `xml:"id"`
	Title        string        `xml:"title"`
	Updated      string        `xml:"updated"`
	Generator    *xmlGenerator `xml:"generator,omitempty"`
	Content      *xmlContent   `xml:"content,omitempty"`
	Links        []xmlLink     `xml:"link"`
	Packaging    []string      `xml:"sword:packaging"`
	Treatment    string        `xml:"sword:treatment,omitempty"`
}

type xmlFeed struct {
	XMLName    xml.Name       `xml:"atom:feed"`
	XmlnsAtom  string         `xml:"xmlns:atom,attr"`
	XmlnsSword string         `xml:"xmlns:sword,attr"`
	ID         string         `xml:"atom:id"`
	Title      string         `xml:"atom:title"`
	Updated    string         `xml:"atom:updated"`
	Generator  *xmlGenerator  `xml:"atom:generator,omitempty"`
	Links      []xmlLink      `xml:"atom:link"`
	States     []xmlState     `xml:"sword:state"`
	Entries    []xmlFeedEntry `xml:"atom:entry"`
}

type xmlState struct {
	Href        string `xml:"href,attr"`
	Description string `xml:"sword:stateDescription,omitempty"`
}

type xmlCategory struct {
	Scheme string `xml:"scheme,attr"`
	Term   string `xml:"term,attr"`
	Label  string `xml:"label,attr,omitempty"`
}

type xmlFeedEntry struct {
	ID                  string         `xml:"atom:id"`
	Title               string         `xml:"atom:title,omitempty"`
	Updated             string         `xml:"atom:updated,omitempty"`
	Categories          []xmlCategory  `xml:"atom:category"`
	Content             xmlContent     `xml:"atom:content"`
	Author              *xmlFeedAuthor `xml:"atom:author,omitempty"`
	Packaging           string         `xml:"sword:packaging,omitempty"`
	DepositedOn         string         `xml:"sword:depositedOn,omitempty"`
	DepositedBy         string         `xml:"sword:depositedBy,omitempty"`
	DepositedOnBehalfOf string         `xml:"sword:depositedOnBehalfOf,omitempty"`
}

// Atom requires a name in every author element, so an unknown author is
// left out entirely.
type xmlFeedAuthor struct {
	Name string `xml:"atom:name"`
}

func newFeedAuthor(name string) *xmlFeedAuthor {
	if name == "" {
		return nil
	}
	return &xmlFeedAuthor{Name: name}
}

type xmlErrorAuthor struct {
	Name string `xml:"name"`
}

type xmlError struct {
	XMLName    xml.Name        `xml:"sword:error"`
	Xmlns      string          `xml:"xmlns,attr"`
	XmlnsSword string          `xml:"xmlns:sword,attr"`
	Href       string          `xml:"href,attr"`
	Title      string          `xml:"title"`
	Updated    string          `xml:"updated"`
	Generator  *xmlGenerator   `xml:"generator,omitempty"`
	Author     *xmlErrorAuthor `xml:"author,omitempty"`
	Summary    string          `xml:"summary"`
	Treatment  string          `xml:"sword:treatment,omitempty"`
}

// ErrorDocument is a SWORD error document.
type ErrorDocument struct {
	ErrorURI  string
	Updated   time.Time
	Generator Generator
	Message   string
	Author    string
	Treatment string
}

// Serialise renders the service document.
func (d *ServiceDocument) Serialise() ([]byte, error) {
	doc := xmlService{
		Xmlns:         nsApp,
		XmlnsAtom:     nsAtom,
		XmlnsSword:    nsSword,
		XmlnsDCTerms:  nsDCTerms,
		Version:       d.Version,
		MaxUploadSize: d.MaxUploadSize,
	}

	for _, ws := range d.Workspaces {
		xws := xmlWorkspace{Title: ws.Title}
		for _, c := range ws.Collections {
			xc := xmlCollection{
				Href:            c.Href,
				Title:           c.Title,
				Policy:          c.Policy,
				Abstract:        c.Description,
				Mediation:       c.Mediation,
				Treatment:       c.Treatment,
				AcceptPackaging: c.AcceptPackaging,
				SubServices:     c.SubServices,
			}
			for _, a := range c.Accept {
				xc.Accept = append(xc.Accept, xmlAccept{Value: a})
			}
			for _, a := range c.MultipartAccept {
				xc.Accept = append(xc.Accept, xmlAccept{Alternate: "multipart-related", Value: a})
			}
			xws.Collections = append(xws.Collections, xc)
		}
		doc.Workspaces = append(doc.Workspaces, xws)
	}

	return marshalXML(doc)
}

// Serialise renders the deposit receipt as an Atom entry.
func (e *EntryDocument) Serialise() ([]byte, error) {
	doc := xmlEntry{
		Xmlns:        nsAtom,
		XmlnsSword:   nsSword,
		XmlnsDCTerms: nsDCTerms,
		ID:           e.AtomID,
		Title:        e.Title,
		Updated:      formatTime(e.Updated),
		Generator:    newXMLGenerator(e.Generator),
		Content:      &xmlContent{Src: e.ContentURI},
		Packaging:    e.Packaging,
		Treatment:    e.Treatment,
		Links: []xmlLink{
			{Rel: "edit", Href: e.EditURI},
			{Rel: relAdd, Href: e.EditURI},
		},
	}
	for _, em := range e.EditMediaLinks {
		doc.Links = append(doc.Links, xmlLink{Rel: "edit-media", Href: em.Href, Type: em.Type})
	}
	for _, st := range e.StatementLinks {
		doc.Links = append(doc.Links, xmlLink{Rel: relStatement, Href: st.Href, Type: st.Type})
	}
	if e.OriginalDepositURI != "" {
		doc.Links = append(doc.Links, xmlLink{Rel: relOriginalDeposit, Href: e.OriginalDepositURI})
	}

	return marshalXML(doc)
}

// SerialiseAtom renders the statement as an Atom feed.
func (s *Statement) SerialiseAtom() ([]byte, error) {
	doc := xmlFeed{
		XmlnsAtom:  nsAtom,
		XmlnsSword: nsSword,
		ID:         s.AggregationURI,
		Title:      "Notification Statement",
		Updated:    formatTime(s.Updated),
		Generator:  newXMLGenerator(s.Generator),
		Links:      []xmlLink{{Rel: "related", Href: s.REMURI}},
	}

	for _, st := range s.States {
		doc.States = append(doc.States, xmlState{Href: st.URI, Description: st.Description})
	}

	for _, od := range s.OriginalDeposits {
		doc.Entries = append(doc.Entries, xmlFeedEntry{
			ID:      od.URI,
			Title:   "Original Deposit",
			Updated: formatTime(od.DepositedOn),
			Categories: []xmlCategory{{
				Scheme: nsSword,
				Term:   relOriginalDeposit,
				Label:  "Original Deposit",
			}},
			Content:             xmlContent{Type: MimeZip, Src: od.URI},
			Author:              newFeedAuthor(od.By),
			Packaging:           od.Packaging,
			DepositedOn:         formatTime(od.DepositedOn),
			DepositedBy:         od.By,
			DepositedOnBehalfOf: od.OnBehalfOf,
		})
	}

	for _, agg := range s.Aggregates {
		doc.Entries = append(doc.Entries, xmlFeedEntry{
			ID:      agg,
			Content: xmlContent{Src: agg},
		})
	}

	return marshalXML(doc)
}

// Serialise renders the error document.
func (d *ErrorDocument) Serialise() ([]byte, error) {
	var author *xmlErrorAuthor
	if d.Author != "" {
		author = &xmlErrorAuthor{Name: d.Author}
	}
	return marshalXML(xmlError{
		Xmlns:      nsAtom,
		XmlnsSword: nsSword,
		Href:       d.ErrorURI,
		Title:      "ERROR",
		Updated:    formatTime(d.Updated),
		Generator:  newXMLGenerator(d.Generator),
		Author:     author,
		Summary:    d.Message,
		Treatment:  d.Treatment,
	})
}

func newXMLGenerator(g Generator) *xmlGenerator {
	if g.URI == "" {
		return nil
	}
	return &xmlGenerator{URI: g.URI, Version: g.Version}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func marshalXML(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
