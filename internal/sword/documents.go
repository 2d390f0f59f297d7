package sword

import (
	"time"

	"github.com/tphakala/swordgate/internal/jper"
)

// Media types the adapter produces or negotiates.
const (
	MimeAtomEntry       = "application/atom+xml;type=entry"
	MimeAtomFeed        = "application/atom+xml;type=feed"
	MimeRDF             = "application/rdf+xml"
	MimeZip             = "application/zip"
	MimeServiceDocument = "application/atomsvc+xml"
)

// Packaging URIs.
const (
	PackagingFilesAndJATS = "https://pubrouter.jisc.ac.uk/FilesAndJATS"
	PackagingSimpleZip    = "http://purl.org/net/sword/package/SimpleZip"
	PackagingBinary       = "http://purl.org/net/sword/package/Binary"
)

// Deposit collections.
const (
	CollectionValidate = "validate"
	CollectionNotify   = "notify"
)

const (
	collectionPolicy = "This collection will take any deposit package intended for the Router"

	validateDescription = "Deposit here to validate the format of your notification files"
	validateTreatment   = "Packages sent here will be validated, and you will receive an error document or a deposit receipt.  " +
		"The deposit will not subsequently be stored, so you will not be able to retrieve it again afterwards."

	notifyDescription = "Deposit here to deliver a publication event notification"
	notifyTreatment   = "Packages sent here will be analysed for metadata suitable for routing to appropriate repository systems, " +
		"and then delivered onward."
)

// Treatment and state texts of a notification.
const (
	TreatmentAccepted = "Notification has been accepted for routing"
	TreatmentRouted   = "Notification has been routed for appropriate repositories"
)

// Collection is one deposit target of the service document.
type Collection struct {
	Href            string
	Title           string
	Accept          []string
	MultipartAccept []string
	AcceptPackaging []string
	Description     string
	Policy          string
	Mediation       bool
	Treatment       string
	SubServices     []string
}

// Workspace groups collections.
type Workspace struct {
	Title       string
	Collections []Collection
}

// ServiceDocument lists what a client may deposit and where.
type ServiceDocument struct {
	Version string
	// MaxUploadSize in kB
	MaxUploadSize int64
	Workspaces    []Workspace
}

// Generator identifies the software that produced a document.
type Generator struct {
	URI     string
	Version string
}

// TypedLink is a link with a media type.
type TypedLink struct {
	Href string
	Type string
}

// EntryDocument is a deposit receipt.
type EntryDocument struct {
	AtomID             string
	Title              string
	Updated            time.Time
	ContentURI         string
	EditURI            string
	EditMediaLinks     []TypedLink
	Packaging          []string
	StatementLinks     []TypedLink
	Generator          Generator
	Treatment          string
	OriginalDepositURI string
}

// State is a notification's processing state.
type State struct {
	URI         string
	Description string
}

// OriginalDeposit describes the package as it was deposited.
type OriginalDeposit struct {
	URI         string
	DepositedOn time.Time
	Packaging   string
	By          string
	OnBehalfOf  string
}

// Statement is the current state of a notification and what it aggregates.
type Statement struct {
	AggregationURI   string
	REMURI           string
	Updated          time.Time
	Generator        Generator
	States           []State
	OriginalDeposits []OriginalDeposit
	// Aggregates are the notification's link URLs in record order
	Aggregates []string
}

// Translator turns notifications into SWORD documents.
type Translator struct {
	cfg  Config
	uris *URIManager
	now  func() time.Time
}

// NewTranslator returns a Translator for cfg. now may be nil.
func NewTranslator(cfg Config, uris *URIManager, now func() time.Time) *Translator {
	if now == nil {
		now = time.Now
	}
	return &Translator{cfg: cfg.withDefaults(), uris: uris, now: now}
}

// BuildServiceDocument describes the two collections, validate and notify.
func (t *Translator) BuildServiceDocument() *ServiceDocument {
	collection := func(id, title, description, treatment string) Collection {
		return Collection{
			Href:            t.uris.CollectionURI(id),
			Title:           title,
			Accept:          t.cfg.Accept,
			MultipartAccept: t.cfg.MultipartAccept,
			AcceptPackaging: t.cfg.AcceptPackaging,
			Description:     description,
			Policy:          collectionPolicy,
			Mediation:       t.cfg.Mediation,
			Treatment:       treatment,
		}
	}

	return &ServiceDocument{
		Version:       t.cfg.Version,
		MaxUploadSize: t.cfg.MaxUploadSize / 1024,
		Workspaces: []Workspace{{
			Title: t.cfg.WorkspaceTitle,
			Collections: []Collection{
				collection(CollectionValidate, "Validate", validateDescription, validateTreatment),
				collection(CollectionNotify, "Notify", notifyDescription, notifyTreatment),
			},
		}},
	}
}

// BuildReceipt builds the deposit receipt of notification id.
func (t *Translator) BuildReceipt(id, packaging, treatment string) *EntryDocument {
	mediaURI := t.uris.MediaURI(id)
	return &EntryDocument{
		AtomID:         t.uris.AtomID(id),
		Title:          "Notification " + id,
		Updated:        t.now(),
		ContentURI:     t.uris.ContentURI(id),
		EditURI:        t.uris.EditURI(id),
		EditMediaLinks: []TypedLink{{Href: mediaURI, Type: MimeZip}},
		Packaging:      []string{packaging},
		StatementLinks: []TypedLink{
			{Href: t.uris.StatementURI(id, StatementAtom), Type: MimeAtomFeed},
			{Href: t.uris.StatementURI(id, StatementRDF), Type: MimeRDF},
		},
		Generator:          t.generator(),
		Treatment:          treatment,
		OriginalDepositURI: mediaURI,
	}
}

// BuildStatement describes n as deposited by the given user. The state depends
// only on whether the router has analysed the notification.
func (t *Translator) BuildStatement(n *jper.Notification, id, by, onBehalfOf string) *Statement {
	state := State{URI: t.cfg.PendingStateURI, Description: TreatmentAccepted}
	if n.Routed() {
		state = State{URI: t.cfg.RoutedStateURI, Description: TreatmentRouted}
	}

	return &Statement{
		AggregationURI: t.uris.AggregationURI(id),
		REMURI:         t.uris.EditURI(id),
		Updated:        t.now(),
		Generator:      t.generator(),
		States:         []State{state},
		OriginalDeposits: []OriginalDeposit{{
			URI:         t.uris.ContentURI(id),
			DepositedOn: n.Created,
			Packaging:   n.PackagingFormat(),
			By:          by,
			OnBehalfOf:  onBehalfOf,
		}},
		Aggregates: n.AllURLs(),
	}
}

// BuildError builds the error document for err.
func (t *Translator) BuildError(err *SwordError) *ErrorDocument {
	return &ErrorDocument{
		ErrorURI:  err.ErrorURI,
		Updated:   t.now(),
		Generator: t.generator(),
		Message:   err.Message,
		Author:    err.Author,
		Treatment: err.Treatment,
	}
}

func (t *Translator) generator() Generator {
	return Generator{URI: t.cfg.GeneratorURI, Version: t.cfg.GeneratorVersion}
}

// Serialise renders the statement in the given media type. ok is false when
// the type is not one the statement can be rendered in.
func (s *Statement) Serialise(mimeType string) (data []byte, ok bool, err error) {
	switch mimeType {
	case MimeAtomFeed:
		data, err = s.SerialiseAtom()
	case MimeRDF:
		data, err = s.SerialiseRDF()
	default:
		return nil, false, nil
	}
	return data, true, err
}
