// Package sword adapts the SWORD v2 deposit protocol onto the JPER notification
// router. A Server is built per request: it owns a session cache of fetched
// notifications and a gateway bound to the caller's forwarded credentials.
package sword

// Config describes the SWORD service as clients see it.
type Config struct {
	// BaseURL is the public URL of this service; one trailing slash is ignored
	BaseURL     string
	RoutePrefix string
	// Namespace is the authority of tag: URIs, e.g. tag:container@<Namespace>/<id>
	Namespace string

	Version string
	// MaxUploadSize in bytes, advertised in kB
	MaxUploadSize   int64
	Accept          []string
	MultipartAccept []string
	AcceptPackaging []string
	Mediation       bool
	WorkspaceTitle  string

	GeneratorURI     string
	GeneratorVersion string

	PendingStateURI string
	RoutedStateURI  string
}

// DefaultConfig returns the configuration of the reference deployment.
func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://localhost:8080/",
		RoutePrefix:      "/swordv2",
		Namespace:        "jper",
		Version:          "2.0",
		MaxUploadSize:    100 * 1024 * 1024,
		Accept:           []string{"*/*"},
		MultipartAccept:  []string{"*/*"},
		AcceptPackaging:  []string{PackagingFilesAndJATS, PackagingSimpleZip, PackagingBinary},
		WorkspaceTitle:   "DeepGreen Prototype",
		GeneratorURI:     "https://github.com/tphakala/swordgate",
		GeneratorVersion: "1.0",
		PendingStateURI:  "http://datahub.deepgreen.org/sword/state/pending",
		RoutedStateURI:   "http://datahub.deepgreen.org/sword/state/routed",
	}
}

// withDefaults fills empty fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Namespace == "" {
		c.Namespace = d.Namespace
	}
	if c.Version == "" {
		c.Version = d.Version
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = d.MaxUploadSize
	}
	if len(c.Accept) == 0 {
		c.Accept = d.Accept
	}
	if len(c.MultipartAccept) == 0 {
		c.MultipartAccept = d.MultipartAccept
	}
	if len(c.AcceptPackaging) == 0 {
		c.AcceptPackaging = d.AcceptPackaging
	}
	if c.WorkspaceTitle == "" {
		c.WorkspaceTitle = d.WorkspaceTitle
	}
	if c.GeneratorURI == "" {
		c.GeneratorURI = d.GeneratorURI
		c.GeneratorVersion = d.GeneratorVersion
	}
	if c.PendingStateURI == "" {
		c.PendingStateURI = d.PendingStateURI
	}
	if c.RoutedStateURI == "" {
		c.RoutedStateURI = d.RoutedStateURI
	}
	return c
}
