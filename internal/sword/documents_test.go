package sword

import (
	"encoding/xml"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/swordgate/internal/jper"
)

func newTestTranslator() *Translator {
	cfg := testConfig()
	return NewTranslator(cfg, NewURIManager(cfg), func() time.Time { return testNow })
}

func TestServiceDocument(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxUploadSize = 20 * 1024 * 1024
	cfg.Mediation = true
	tr := NewTranslator(cfg, NewURIManager(cfg), nil)

	data, err := tr.BuildServiceDocument().Serialise()
	require.NoError(t, err)

	var doc struct {
		XMLName       xml.Name
		Version       string `xml:"version"`
		MaxUploadSize int64  `xml:"maxUploadSize"`
		Workspaces    []struct {
			Title       string `xml:"title"`
			Collections []struct {
				Href   string `xml:"href,attr"`
				Title  string `xml:"title"`
				Accept []struct {
					Alternate string `xml:"alternate,attr"`
					Value     string `xml:",chardata"`
				} `xml:"accept"`
				Policy          string   `xml:"collectionPolicy"`
				Abstract        string   `xml:"abstract"`
				Mediation       bool     `xml:"mediation"`
				Treatment       string   `xml:"treatment"`
				AcceptPackaging []string `xml:"acceptPackaging"`
				SubServices     []string `xml:"service"`
			} `xml:"collection"`
		} `xml:"workspace"`
	}
	require.NoError(t, xml.Unmarshal(data, &doc))

	assert.Equal(t, nsApp, doc.XMLName.Space)
	assert.Equal(t, "service", doc.XMLName.Local)
	assert.Equal(t, "2.0", doc.Version)
	assert.EqualValues(t, 20*1024, doc.MaxUploadSize)

	require.Len(t, doc.Workspaces, 1)
	ws := doc.Workspaces[0]
	assert.Equal(t, "DeepGreen Prototype", ws.Title)
	require.Len(t, ws.Collections, 2)

	validate, notify := ws.Collections[0], ws.Collections[1]
	assert.Equal(t, "https://sword.example.org/swordv2/collection/validate", validate.Href)
	assert.Equal(t, "Validate", validate.Title)
	assert.Equal(t, validateDescription, validate.Abstract)
	assert.Contains(t, validate.Treatment, "will not subsequently be stored")

	assert.Equal(t, "https://sword.example.org/swordv2/collection/notify", notify.Href)
	assert.Equal(t, "Notify", notify.Title)
	assert.Equal(t, "Deposit here to deliver a publication event notification", notify.Abstract)
	assert.Contains(t, notify.Treatment, "delivered onward")

	for _, c := range ws.Collections {
		assert.Equal(t, "This collection will take any deposit package intended for the Router", c.Policy)
		assert.True(t, c.Mediation)
		assert.Equal(t, cfg.AcceptPackaging, c.AcceptPackaging)
		assert.Empty(t, c.SubServices)
		require.Len(t, c.Accept, 2)
		assert.Equal(t, "*/*", c.Accept[0].Value)
		assert.Empty(t, c.Accept[0].Alternate)
		assert.Equal(t, "multipart-related", c.Accept[1].Alternate)
	}
}

func TestReceipt_AlwaysOneMediaAndTwoStatementLinks(t *testing.T) {
	t.Parallel()

	tr := newTestTranslator()
	inputs := []struct{ id, packaging, treatment string }{
		{"n1", PackagingSimpleZip, TreatmentAccepted},
		{"0f3c2a", PackagingFilesAndJATS, TreatmentRouted},
		{"x", "", ""},
		{"weird id", "urn:custom & <packaging>", "free text"},
	}

	for _, in := range inputs {
		t.Run(fmt.Sprintf("%q", in.id), func(t *testing.T) {
			t.Parallel()

			data, err := tr.BuildReceipt(in.id, in.packaging, in.treatment).Serialise()
			require.NoError(t, err)

			var entry testEntry
			require.NoError(t, xml.Unmarshal(data, &entry))

			media := entry.linksByRel("edit-media")
			require.Len(t, media, 1)
			assert.Equal(t, MimeZip, media[0].Type)

			statements := entry.linksByRel(relStatement)
			require.Len(t, statements, 2)
			assert.Equal(t, MimeAtomFeed, statements[0].Type)
			assert.Equal(t, MimeRDF, statements[1].Type)

			original := entry.linksByRel(relOriginalDeposit)
			require.Len(t, original, 1)
			assert.Equal(t, media[0].Href, original[0].Href)

			assert.Equal(t, []string{in.packaging}, entry.Packaging)
			assert.Equal(t, in.treatment, entry.Treatment)
		})
	}
}

func TestReceipt_Contents(t *testing.T) {
	t.Parallel()

	data, err := newTestTranslator().BuildReceipt("n1", PackagingSimpleZip, TreatmentAccepted).Serialise()
	require.NoError(t, err)

	var entry testEntry
	require.NoError(t, xml.Unmarshal(data, &entry))

	assert.Equal(t, "tag:container@jper/n1", entry.ID)
	assert.Equal(t, "2024-05-17T10:30:00Z", entry.Updated)
	assert.Equal(t, "https://sword.example.org/swordv2/entry/n1/content", entry.Content.Src)
	assert.Equal(t, "https://github.com/tphakala/swordgate", entry.Generator.URI)
	assert.Equal(t, "1.0", entry.Generator.Version)

	edit := entry.linksByRel("edit")
	require.Len(t, edit, 1)
	assert.Equal(t, "https://sword.example.org/swordv2/entry/n1", edit[0].Href)
	require.Len(t, entry.linksByRel(relAdd), 1)

	statements := entry.linksByRel(relStatement)
	assert.Equal(t, "https://sword.example.org/swordv2/entry/n1/statement/atom", statements[0].Href)
	assert.Equal(t, "https://sword.example.org/swordv2/entry/n1/statement/rdf", statements[1].Href)
}

func TestStatement_StateDependsOnlyOnAnalysisDate(t *testing.T) {
	t.Parallel()

	tr := newTestTranslator()
	analysed := testNow.Add(-time.Minute)
	variants := []*jper.Notification{
		{},
		{ID: "a", Created: testNow, Content: jper.NotificationContent{PackagingFormat: PackagingBinary}},
		{ID: "b", Links: []jper.Link{{Type: "package", URL: "https://x"}}},
		{ID: "c", LastUpdated: &analysed},
	}

	for i, n := range variants {
		pending := tr.BuildStatement(n, "id", "user", "")
		require.Len(t, pending.States, 1, "variant %d", i)
		assert.Equal(t, TreatmentAccepted, pending.States[0].Description, "variant %d", i)
		assert.Equal(t, "http://datahub.deepgreen.org/sword/state/pending", pending.States[0].URI)

		routed := *n
		routed.AnalysisDate = &analysed
		st := tr.BuildStatement(&routed, "id", "user", "")
		assert.Equal(t, TreatmentRouted, st.States[0].Description, "variant %d", i)
		assert.Equal(t, "http://datahub.deepgreen.org/sword/state/routed", st.States[0].URI)
	}
}

func TestStatement_StateURIsAreConfigurable(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.PendingStateURI = "http://router2.example.ac.uk/swordv2/state/pending"
	cfg.RoutedStateURI = "http://router2.example.ac.uk/swordv2/state/routed"
	tr := NewTranslator(cfg, NewURIManager(cfg), nil)

	assert.Equal(t, cfg.PendingStateURI, tr.BuildStatement(pendingNote("p"), "p", "", "").States[0].URI)
	assert.Equal(t, cfg.RoutedStateURI, tr.BuildStatement(routedNote("r"), "r", "", "").States[0].URI)
}

func TestStatement_SerialiseAtom(t *testing.T) {
	t.Parallel()

	n := routedNote("n9")
	st := newTestTranslator().BuildStatement(n, "n9", "depositor", "someone-else")

	data, ok, err := st.Serialise(MimeAtomFeed)
	require.NoError(t, err)
	require.True(t, ok)

	var feed testFeed
	require.NoError(t, xml.Unmarshal(data, &feed))

	assert.Equal(t, "tag:aggregation@jper/n9", feed.ID)
	require.Len(t, feed.States, 1)
	assert.Equal(t, TreatmentRouted, feed.States[0].Description)

	require.Len(t, feed.Entries, 1+len(n.Links))
	original := feed.Entries[0]
	assert.Equal(t, "https://sword.example.org/swordv2/entry/n9/content", original.Content.Src)
	assert.Equal(t, PackagingFilesAndJATS, original.Packaging)
	assert.Equal(t, "2024-05-17T10:30:00Z", original.DepositedOn)
	assert.Equal(t, "depositor", original.DepositedBy)
	assert.Equal(t, "someone-else", original.DepositedOnBehalfOf)
	require.Len(t, original.Authors, 1)
	assert.Equal(t, "depositor", original.Authors[0].Name)

	for i, link := range n.Links {
		aggregate := feed.Entries[i+1]
		assert.Equal(t, link.URL, aggregate.Content.Src)
		assert.Empty(t, aggregate.Authors, "aggregated resources have no author")
	}
	assert.NotContains(t, string(data), "<atom:author></atom:author>")
}

func TestStatement_SerialiseAtomWithoutDepositor(t *testing.T) {
	t.Parallel()

	st := newTestTranslator().BuildStatement(routedNote("n9"), "n9", "", "")
	data, ok, err := st.Serialise(MimeAtomFeed)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(data), "atom:author")
}

func TestStatement_SerialiseRDF(t *testing.T) {
	t.Parallel()

	n := pendingNote("n2",
		jper.Link{Type: "splash", URL: "https://publisher.example.org/3"},
		jper.Link{Type: "package", URL: "https://router.example.org/1.zip"},
		jper.Link{Type: "package", URL: "https://router.example.org/2.zip"},
	)
	st := newTestTranslator().BuildStatement(n, "n2", "depositor", "")

	data, ok, err := st.Serialise(MimeRDF)
	require.NoError(t, err)
	require.True(t, ok)

	var doc testRDF
	require.NoError(t, xml.Unmarshal(data, &doc))

	byAbout := make(map[string]int)
	for i, d := range doc.Descriptions {
		byAbout[d.About] = i
	}

	rem := doc.Descriptions[byAbout["https://sword.example.org/swordv2/entry/n2"]]
	assert.Equal(t, "tag:aggregation@jper/n2", rem.Describes.Resource)

	agg := doc.Descriptions[byAbout["tag:aggregation@jper/n2"]]
	var aggregated []string
	for _, a := range agg.Aggregates {
		aggregated = append(aggregated, a.Resource)
	}
	assert.Equal(t, n.AllURLs(), aggregated, "aggregates keep record order and are not filtered by type")
	require.Len(t, agg.OriginalDeposits, 1)
	require.Len(t, agg.States, 1)

	deposit := doc.Descriptions[byAbout["https://sword.example.org/swordv2/entry/n2/content"]]
	assert.Equal(t, PackagingSimpleZip, deposit.Packaging.Resource)
	assert.Equal(t, "depositor", deposit.DepositedBy)

	state := doc.Descriptions[byAbout[agg.States[0].Resource]]
	assert.Equal(t, TreatmentAccepted, state.StateDescription)
}

func TestStatement_SerialiseUnsupportedType(t *testing.T) {
	t.Parallel()

	st := newTestTranslator().BuildStatement(pendingNote("n"), "n", "", "")
	for _, mimeType := range []string{"text/html", "application/json", MimeAtomEntry, ""} {
		data, ok, err := st.Serialise(mimeType)
		require.NoError(t, err)
		assert.False(t, ok, mimeType)
		assert.Nil(t, data)
	}
}

func TestErrorDocument(t *testing.T) {
	t.Parallel()

	data, err := newTestTranslator().BuildError(newBadRequest("metadata missing <title>")).Serialise()
	require.NoError(t, err)

	var doc testErrorDoc
	require.NoError(t, xml.Unmarshal(data, &doc))

	assert.Equal(t, ErrorURIBadRequest, doc.Href)
	assert.Equal(t, "ERROR", doc.Title)
	assert.Equal(t, "JPER", doc.Author)
	assert.Equal(t, "metadata missing <title>", doc.Summary)
	assert.Equal(t, "validation failed", doc.Treatment)
}

func TestErrorDocument_NoAuthor(t *testing.T) {
	t.Parallel()

	doc := &ErrorDocument{ErrorURI: ErrorURIBadRequest, Message: "empty deposit"}
	data, err := doc.Serialise()
	require.NoError(t, err)

	assert.NotContains(t, string(data), "<author")
	assert.Contains(t, string(data), "<summary>empty deposit</summary>")
}
