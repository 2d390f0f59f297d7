package sword

import (
	"strings"
)

// Route templates relative to the route prefix. The HTTP binding registers
// exactly these, so generated URIs always resolve.
const (
	RouteServiceDocument = "/service-document"
	RouteCollection      = "/collection/:collection_id"
	RouteEntry           = "/entry/:entry_id"
	RouteEntryContent    = "/entry/:entry_id/content"
	RouteStatement       = "/entry/:entry_id/statement/:type"
)

// Statement kinds as they appear in statement URIs.
const (
	StatementAtom = "atom"
	StatementRDF  = "rdf"
)

// URIManager formats every identifier and URL the service hands out.
type URIManager struct {
	base      string
	namespace string
}

// NewURIManager builds the formatter from cfg.
func NewURIManager(cfg Config) *URIManager {
	cfg = cfg.withDefaults()
	return &URIManager{
		base:      strings.TrimSuffix(cfg.BaseURL, "/") + cfg.RoutePrefix,
		namespace: cfg.Namespace,
	}
}

// ServiceDocumentURI is the URL of the service document.
func (u *URIManager) ServiceDocumentURI() string {
	return u.base + RouteServiceDocument
}

// CollectionURI is the deposit URL of a collection.
func (u *URIManager) CollectionURI(id string) string {
	return u.base + "/collection/" + id
}

// EditURI is the container URL of a notification.
func (u *URIManager) EditURI(id string) string {
	return u.base + "/entry/" + id
}

// MediaURI is the media resource URL of a notification.
func (u *URIManager) MediaURI(id string) string {
	return u.EditURI(id) + "/content"
}

// ContentURI is the content URL of a notification; it is the media URI.
func (u *URIManager) ContentURI(id string) string {
	return u.MediaURI(id)
}

// StatementURI is the statement URL for kind atom or rdf.
func (u *URIManager) StatementURI(id, kind string) string {
	return u.EditURI(id) + "/statement/" + kind
}

// AtomID is the atom:id of a notification's container.
func (u *URIManager) AtomID(id string) string {
	return "tag:container@" + u.namespace + "/" + id
}

// AggregationURI identifies the notification's ORE aggregation.
func (u *URIManager) AggregationURI(id string) string {
	return "tag:aggregation@" + u.namespace + "/" + id
}
