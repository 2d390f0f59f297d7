package sword

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tphakala/swordgate/internal/jper"
)

var testNow = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://sword.example.org/"
	cfg.RoutePrefix = "/swordv2"
	cfg.Namespace = "jper"
	return cfg
}

// fakeGateway is an in-memory router. Created notifications become fetchable.
type fakeGateway struct {
	mu          sync.Mutex
	notes       map[string]*jper.Notification
	fetchCalls  map[string]int
	fetchErr    error
	validateErr error
	createErr   error
	validated   int
	created     int
	received    []string
}

func newFakeGateway(notes ...*jper.Notification) *fakeGateway {
	g := &fakeGateway{
		notes:      make(map[string]*jper.Notification),
		fetchCalls: make(map[string]int),
	}
	for _, n := range notes {
		g.notes[n.ID] = n
	}
	return g
}

func (g *fakeGateway) Fetch(_ context.Context, id string) (*jper.Notification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fetchCalls[id]++
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	n, ok := g.notes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n, nil
}

func (g *fakeGateway) Validate(_ context.Context, deposit *DepositRequest) error {
	body, _ := io.ReadAll(deposit.Content)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.received = append(g.received, string(body))
	if g.validateErr != nil {
		return g.validateErr
	}
	g.validated++
	return nil
}

func (g *fakeGateway) Create(_ context.Context, deposit *DepositRequest) (string, string, error) {
	body, _ := io.ReadAll(deposit.Content)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.received = append(g.received, string(body))
	if g.createErr != nil {
		return "", "", g.createErr
	}

	g.created++
	id := fmt.Sprintf("note-%d", g.created)
	g.notes[id] = &jper.Notification{
		ID:      id,
		Created: testNow,
		Content: jper.NotificationContent{PackagingFormat: deposit.Packaging},
		Links: []jper.Link{
			{Type: "splash", Format: "text/html", URL: "https://publisher.example.org/" + id},
			{Type: jper.LinkTypePackage, Format: MimeZip, URL: "https://router.example.org/api/v1/notification/" + id + "/content"},
			{Type: jper.LinkTypeUnpacked, Format: "application/pdf", URL: "https://router.example.org/api/v1/notification/" + id + "/content/article.pdf"},
		},
	}
	return id, "https://router.example.org/api/v1/notification/" + id, nil
}

func (g *fakeGateway) fetchCount(id string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetchCalls[id]
}

func (g *fakeGateway) noteCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.notes)
}

func routedNote(id string) *jper.Notification {
	analysed := testNow.Add(time.Hour)
	return &jper.Notification{
		ID:           id,
		Created:      testNow,
		AnalysisDate: &analysed,
		Content:      jper.NotificationContent{PackagingFormat: PackagingFilesAndJATS},
		Links: []jper.Link{
			{Type: jper.LinkTypePackage, URL: "https://router.example.org/files/" + id + ".zip"},
			{Type: "splash", URL: "https://publisher.example.org/" + id},
		},
	}
}

func pendingNote(id string, links ...jper.Link) *jper.Notification {
	return &jper.Notification{
		ID:      id,
		Created: testNow,
		Content: jper.NotificationContent{PackagingFormat: PackagingSimpleZip},
		Links:   links,
	}
}

// Decoding shapes for the generated documents, matched by local name.

type testLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

type testEntry struct {
	ID        string `xml:"id"`
	Updated   string `xml:"updated"`
	Generator struct {
		URI     string `xml:"uri,attr"`
		Version string `xml:"version,attr"`
	} `xml:"generator"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Links     []testLink `xml:"link"`
	Packaging []string   `xml:"packaging"`
	Treatment string     `xml:"treatment"`
}

func (e testEntry) linksByRel(rel string) []testLink {
	var out []testLink
	for _, l := range e.Links {
		if l.Rel == rel {
			out = append(out, l)
		}
	}
	return out
}

type testFeed struct {
	ID     string `xml:"id"`
	States []struct {
		Href        string `xml:"href,attr"`
		Description string `xml:"stateDescription"`
	} `xml:"state"`
	Entries []struct {
		ID      string `xml:"id"`
		Content struct {
			Src string `xml:"src,attr"`
		} `xml:"content"`
		Authors []struct {
			Name string `xml:"name"`
		} `xml:"author"`
		Packaging           string `xml:"packaging"`
		DepositedOn         string `xml:"depositedOn"`
		DepositedBy         string `xml:"depositedBy"`
		DepositedOnBehalfOf string `xml:"depositedOnBehalfOf"`
	} `xml:"entry"`
}

type testRDFResource struct {
	Resource string `xml:"resource,attr"`
}

type testRDF struct {
	Descriptions []struct {
		About            string            `xml:"about,attr"`
		Describes        testRDFResource   `xml:"describes"`
		Aggregates       []testRDFResource `xml:"aggregates"`
		OriginalDeposits []testRDFResource `xml:"originalDeposit"`
		States           []testRDFResource `xml:"state"`
		Packaging        testRDFResource   `xml:"packaging"`
		DepositedBy      string            `xml:"depositedBy"`
		StateDescription string            `xml:"stateDescription"`
	} `xml:"Description"`
}

type testErrorDoc struct {
	Href      string `xml:"href,attr"`
	Title     string `xml:"title"`
	Author    string `xml:"author>name"`
	Summary   string `xml:"summary"`
	Treatment string `xml:"treatment"`
}
