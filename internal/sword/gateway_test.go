package sword

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/swordgate/internal/errors"
	"github.com/tphakala/swordgate/internal/jper"
)

const routerURL = "https://router.example.org/api/v1"

func newMockGateway(t *testing.T, token string) (*JPERGateway, *httpmock.MockTransport) {
	t.Helper()

	transport := httpmock.NewMockTransport()
	cfg := jper.DefaultConfig()
	cfg.APIURL = routerURL
	cfg.Transport = transport

	client, err := jper.NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return NewJPERGateway(client, Auth{Username: "u", Token: token}), transport
}

func TestJPERGateway_Fetch(t *testing.T) {
	t.Parallel()

	g, transport := newMockGateway(t, "forwarded-key")
	transport.RegisterResponder(http.MethodGet, routerURL+"/notification/n1",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "forwarded-key", req.URL.Query().Get("api_key"))
			return httpmock.NewStringResponse(http.StatusOK,
				`{"id":"n1","created_date":"2024-05-17T10:30:00Z","links":[{"type":"package","url":"https://x/1.zip"}]}`), nil
		})
	transport.RegisterResponder(http.MethodGet, routerURL+"/notification/gone",
		httpmock.NewStringResponder(http.StatusNotFound, ""))
	transport.RegisterResponder(http.MethodGet, routerURL+"/notification/locked",
		httpmock.NewStringResponder(http.StatusForbidden, ""))
	transport.RegisterResponder(http.MethodGet, routerURL+"/notification/broken",
		httpmock.NewStringResponder(http.StatusInternalServerError, "oops"))

	n, err := g.Fetch(t.Context(), "n1")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/1.zip"}, n.URLs(jper.LinkTypePackage))

	_, err = g.Fetch(t.Context(), "gone")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, jper.ErrNotFound, "router error stays in the chain")

	_, err = g.Fetch(t.Context(), "locked")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = g.Fetch(t.Context(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestJPERGateway_Deposits(t *testing.T) {
	t.Parallel()

	g, transport := newMockGateway(t, "k")
	transport.RegisterResponder(http.MethodPost, routerURL+"/validate",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error":"File is not a zip"}`))
	transport.RegisterResponder(http.MethodPost, routerURL+"/notification",
		httpmock.NewStringResponder(http.StatusAccepted, `{"id":"new-1","location":"https://router.example.org/api/v1/notification/new-1"}`))

	err := g.Validate(t.Context(), &DepositRequest{Packaging: PackagingSimpleZip, Content: strings.NewReader("not a zip")})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "File is not a zip", validationErr.Message)

	id, location, err := g.Create(t.Context(), &DepositRequest{Packaging: PackagingSimpleZip, Content: strings.NewReader("PK")})
	require.NoError(t, err)
	assert.Equal(t, "new-1", id)
	assert.Equal(t, "https://router.example.org/api/v1/notification/new-1", location)
}

func TestJPERGateway_ForwardsOnBehalfOf(t *testing.T) {
	t.Parallel()

	g, transport := newMockGateway(t, "k")
	transport.RegisterResponder(http.MethodPost, routerURL+"/validate",
		func(req *http.Request) (*http.Response, error) {
			_, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
			require.NoError(t, err)
			meta, err := multipart.NewReader(req.Body, params["boundary"]).NextPart()
			require.NoError(t, err)
			body, err := io.ReadAll(meta)
			require.NoError(t, err)
			assert.JSONEq(t, `{"content":{"packaging_format":"`+PackagingSimpleZip+`"},"provider":{"agent":"repository-7"}}`, string(body))
			return httpmock.NewStringResponse(http.StatusNoContent, ""), nil
		})

	d := zipDeposit(PackagingSimpleZip)
	d.OnBehalfOf = "repository-7"
	require.NoError(t, g.Validate(t.Context(), d))
}

func TestServerOverJPERGateway_ValidationBecomesBadRequest(t *testing.T) {
	t.Parallel()

	g, transport := newMockGateway(t, "k")
	transport.RegisterResponder(http.MethodPost, routerURL+"/notification",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error":"Unable to find JATS XML"}`))
	transport.RegisterResponder(http.MethodPost, routerURL+"/validate",
		httpmock.NewStringResponder(http.StatusUnauthorized, ""))

	s := NewServer(testConfig(), testAuth, g)

	_, err := s.DepositNew(t.Context(), CollectionNotify, zipDeposit(PackagingFilesAndJATS))
	var swordErr *SwordError
	require.ErrorAs(t, err, &swordErr)
	assert.Equal(t, "Unable to find JATS XML", swordErr.Message)

	_, err = s.DepositNew(t.Context(), CollectionValidate, zipDeposit(PackagingFilesAndJATS))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"nil", nil, http.StatusOK},
		{"not found category", errors.Newf("notification n1 missing").Category(errors.CategoryNotFound).Build(), http.StatusNotFound},
		{"unauthorized", jper.ErrUnauthorized, http.StatusUnauthorized},
		{"validation", &jper.ValidationError{StatusCode: http.StatusBadRequest, Message: "bad zip"}, http.StatusInternalServerError},
		{"other category", errors.Newf("boom").Category(errors.CategoryNetwork).Build(), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.status, StatusCode(normalize(tt.err)))
		})
	}

	var validationErr *ValidationError
	require.ErrorAs(t, normalize(&jper.ValidationError{Message: "bad zip"}), &validationErr)
	assert.Equal(t, "bad zip", validationErr.Message)
}
