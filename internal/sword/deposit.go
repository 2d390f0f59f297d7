package sword

import (
	"io"

	"github.com/tphakala/swordgate/internal/jper"
)

// DepositRequest is a package sent to a collection.
type DepositRequest struct {
	// Packaging is the SWORD packaging URI from the Packaging header
	Packaging   string
	Filename    string
	ContentType string
	Content     io.Reader
	OnBehalfOf  string
}

func (d *DepositRequest) jperDeposit() *jper.Deposit {
	return &jper.Deposit{
		Packaging:   d.Packaging,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		Content:     d.Content,
		OnBehalfOf:  d.OnBehalfOf,
	}
}

// DepositResponse is the outcome of DepositNew. Exactly one of Accepted
// (validate) or Created (notify) is set.
type DepositResponse struct {
	Accepted bool
	Created  bool

	// Set when Created
	ID string
	// Location is the router's URL of the new notification
	Location string
	EditURI  string
	Receipt  []byte
}

// MediaResourceResponse points the client at the media resource.
type MediaResourceResponse struct {
	Redirect bool
	URL      string
}
