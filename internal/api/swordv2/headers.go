package swordv2

import (
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/swordgate/internal/sword"
)

const headerPackaging = "Packaging"

// depositRequest reads the deposit headers and streams the request body.
func depositRequest(ctx echo.Context) *sword.DepositRequest {
	req := ctx.Request()

	packaging := strings.TrimSpace(req.Header.Get(headerPackaging))
	if packaging == "" {
		packaging = sword.PackagingBinary
	}

	var content io.Reader = req.Body
	if req.Body == nil || req.Body == http.NoBody || req.ContentLength == 0 {
		content = nil
	}

	return &sword.DepositRequest{
		Packaging:   packaging,
		Filename:    dispositionFilename(req.Header.Get(echo.HeaderContentDisposition)),
		ContentType: req.Header.Get(echo.HeaderContentType),
		Content:     content,
		OnBehalfOf:  req.Header.Get(headerOnBehalfOf),
	}
}

// dispositionFilename extracts filename from a Content-Disposition value.
func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// negotiateContainer picks the representation of a container GET. A missing
// or wildcard Accept, and plain Atom, ask for the deposit receipt.
func negotiateContainer(accept string) string {
	mediaType := preferredMediaType(accept)
	switch mediaType {
	case "", "*/*", "application/*", "application/atom+xml":
		return sword.MimeAtomEntry
	}
	return mediaType
}

// preferredMediaType returns the first media range of an Accept header in
// canonical form: lower-case type, parameters sorted, unquoted and without
// whitespace, so `application/atom+xml; type="entry"` compares equal to
// MimeAtomEntry. Quality values are ignored.
func preferredMediaType(accept string) string {
	first, _, _ := strings.Cut(accept, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return ""
	}

	mediaType, params, err := mime.ParseMediaType(first)
	if err != nil {
		return first
	}
	delete(params, "q")

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString(mediaType)
	for _, name := range names {
		b.WriteString(";" + name + "=" + params[name])
	}
	return b.String()
}

// statementMediaType maps the :type path segment onto a statement media type.
func statementMediaType(kind string) (string, bool) {
	switch kind {
	case sword.StatementAtom:
		return sword.MimeAtomFeed, true
	case sword.StatementRDF:
		return sword.MimeRDF, true
	default:
		return "", false
	}
}
