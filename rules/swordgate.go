//go:build ruleguard

// Package gorules holds the go-ruleguard checks run by the linter.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// SharedHTTPClient flags outbound calls that bypass internal/httpclient. The
// shared client carries the router timeout, user agent and request logging.
func SharedHTTPClient(m dsl.Matcher) {
	m.Match(
		`http.Get($*_)`,
		`http.Post($*_)`,
		`http.Head($*_)`,
		`http.PostForm($*_)`,
		`http.DefaultClient.$_($*_)`,
	).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report("use internal/httpclient instead of the default net/http client")
}

// CentralLogger flags the standard log package outside main.
func CentralLogger(m dsl.Matcher) {
	m.Match(
		`log.Printf($*_)`,
		`log.Println($*_)`,
		`log.Print($*_)`,
		`log.Fatalf($*_)`,
		`log.Fatal($*_)`,
	).
		Where(!m.File().Name.Matches(`_test\.go$`) && !m.File().PkgPath.Matches(`^github\.com/tphakala/swordgate$`)).
		Report("log through internal/logger, not the standard log package")
}

// DocumentTimestamps flags hand-written layouts for the Atom timestamps.
func DocumentTimestamps(m dsl.Matcher) {
	m.Match(
		`$t.Format("2006-01-02T15:04:05Z07:00")`,
	).
		Report(`use $t.Format(time.RFC3339)`).
		Suggest(`$t.Format(time.RFC3339)`)

	m.Match(
		`time.Parse("2006-01-02T15:04:05Z07:00", $s)`,
	).
		Report(`use time.Parse(time.RFC3339, $s)`).
		Suggest(`time.Parse(time.RFC3339, $s)`)
}

// JoinHostPort detects fmt.Sprintf patterns for host:port. The listen address
// may be an IPv6 literal.
func JoinHostPort(m dsl.Matcher) {
	m.Match(
		`fmt.Sprintf("%s:%d", $host, $port)`,
		`fmt.Sprintf("%s:%s", $host, $port)`,
		`$host + ":" + $port`,
	).
		Where(m["host"].Text.Matches(`(?i)host`)).
		Report("use net.JoinHostPort($host, $port)")
}

// TestingContext detects context.Background() or context.TODO() in tests.
func TestingContext(m dsl.Matcher) {
	m.Match(
		`$ctx := context.Background()`,
		`$ctx := context.TODO()`,
		`$fn(context.Background(), $*args)`,
		`$fn(context.TODO(), $*args)`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() so work is cancelled when the test ends")
}

// RequestContext flags context.Background() in request handlers, which drops
// the request id and cancellation.
func RequestContext(m dsl.Matcher) {
	m.Match(
		`context.Background()`,
	).
		Where(m.File().PkgPath.Matches(`/internal/(api|sword)`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("use the request context instead of context.Background()")
}
