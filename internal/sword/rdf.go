package sword

import (
	"encoding/xml"
)

const (
	nsRDF = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsORE = "http://www.openarchives.org/ore/terms/"

	xsdDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
)

type rdfDocument struct {
	XMLName      xml.Name         `xml:"rdf:RDF"`
	XmlnsRDF     string           `xml:"xmlns:rdf,attr"`
	XmlnsORE     string           `xml:"xmlns:ore,attr"`
	XmlnsSword   string           `xml:"xmlns:sword,attr"`
	XmlnsDCTerms string           `xml:"xmlns:dcterms,attr"`
	Descriptions []rdfDescription `xml:"rdf:Description"`
}

type rdfDescription struct {
	About            string        `xml:"rdf:about,attr"`
	Describes        *rdfResource  `xml:"ore:describes,omitempty"`
	IsDescribedBy    *rdfResource  `xml:"ore:isDescribedBy,omitempty"`
	Aggregates       []rdfResource `xml:"ore:aggregates"`
	OriginalDeposits []rdfResource `xml:"sword:originalDeposit"`
	States           []rdfResource `xml:"sword:state"`
	Packaging        *rdfResource  `xml:"sword:packaging,omitempty"`
	DepositedOn      *rdfLiteral   `xml:"sword:depositedOn,omitempty"`
	DepositedBy      string        `xml:"sword:depositedBy,omitempty"`
	OnBehalfOf       string        `xml:"sword:depositedOnBehalfOf,omitempty"`
	StateDescription string        `xml:"sword:stateDescription,omitempty"`
	Modified         *rdfLiteral   `xml:"dcterms:modified,omitempty"`
}

type rdfResource struct {
	Resource string `xml:"rdf:resource,attr"`
}

type rdfLiteral struct {
	Datatype string `xml:"rdf:datatype,attr,omitempty"`
	Value    string `xml:",chardata"`
}

// SerialiseRDF renders the statement as an ORE resource map in RDF/XML.
func (s *Statement) SerialiseRDF() ([]byte, error) {
	rem := rdfDescription{
		About:     s.REMURI,
		Describes: &rdfResource{Resource: s.AggregationURI},
	}
	if updated := formatTime(s.Updated); updated != "" {
		rem.Modified = &rdfLiteral{Datatype: xsdDateTime, Value: updated}
	}

	aggregation := rdfDescription{
		About:         s.AggregationURI,
		IsDescribedBy: &rdfResource{Resource: s.REMURI},
	}
	for _, agg := range s.Aggregates {
		aggregation.Aggregates = append(aggregation.Aggregates, rdfResource{Resource: agg})
	}
	for _, od := range s.OriginalDeposits {
		aggregation.OriginalDeposits = append(aggregation.OriginalDeposits, rdfResource{Resource: od.URI})
	}
	for _, st := range s.States {
		aggregation.States = append(aggregation.States, rdfResource{Resource: st.URI})
	}

	doc := rdfDocument{
		XmlnsRDF:     nsRDF,
		XmlnsORE:     nsORE,
		XmlnsSword:   nsSword,
		XmlnsDCTerms: nsDCTerms,
		Descriptions: []rdfDescription{rem, aggregation},
	}

	for _, od := range s.OriginalDeposits {
		desc := rdfDescription{
			About:       od.URI,
			DepositedBy: od.By,
			OnBehalfOf:  od.OnBehalfOf,
		}
		if od.Packaging != "" {
			desc.Packaging = &rdfResource{Resource: od.Packaging}
		}
		if on := formatTime(od.DepositedOn); on != "" {
			desc.DepositedOn = &rdfLiteral{Datatype: xsdDateTime, Value: on}
		}
		doc.Descriptions = append(doc.Descriptions, desc)
	}

	for _, st := range s.States {
		doc.Descriptions = append(doc.Descriptions, rdfDescription{
			About:            st.URI,
			StateDescription: st.Description,
		})
	}

	return marshalXML(doc)
}
