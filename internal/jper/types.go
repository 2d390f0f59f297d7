package jper

import (
	"io"
	"time"
)

// Link types used by the router.
const (
	LinkTypePackage  = "package"
	LinkTypeUnpacked = "unpackaged"
)

// Notification is the subset of a routed notification the SWORD adapter needs.
// AnalysisDate is nil until the router has matched the notification to repositories.
type Notification struct {
	ID           string              `json:"id"`
	Created      time.Time           `json:"created_date"`
	LastUpdated  *time.Time          `json:"last_updated,omitempty"`
	AnalysisDate *time.Time          `json:"analysis_date,omitempty"`
	Content      NotificationContent `json:"content"`
	Links        []Link              `json:"links,omitempty"`
}

// NotificationContent describes the deposited package.
type NotificationContent struct {
	PackagingFormat string `json:"packaging_format,omitempty"`
}

// Link is a retrievable resource attached to a notification.
type Link struct {
	Type      string `json:"type"`
	Format    string `json:"format,omitempty"`
	Access    string `json:"access,omitempty"`
	URL       string `json:"url"`
	Packaging string `json:"packaging,omitempty"`
}

// PackagingFormat returns the packaging identifier recorded at deposit time.
func (n *Notification) PackagingFormat() string {
	return n.Content.PackagingFormat
}

// Routed reports whether the router has analysed the notification.
func (n *Notification) Routed() bool {
	return n.AnalysisDate != nil
}

// URLs returns the URLs of links of the given type, in record order.
func (n *Notification) URLs(linkType string) []string {
	var urls []string
	for _, link := range n.Links {
		if link.Type == linkType {
			urls = append(urls, link.URL)
		}
	}
	return urls
}

// AllURLs returns every link URL, in record order.
func (n *Notification) AllURLs() []string {
	urls := make([]string, 0, len(n.Links))
	for _, link := range n.Links {
		urls = append(urls, link.URL)
	}
	return urls
}

// Deposit is a package submitted for validation or as a new notification.
type Deposit struct {
	// Packaging is the SWORD packaging URI, recorded as the notification's packaging format
	Packaging string
	// Filename from Content-Disposition; defaults to "deposit.zip"
	Filename string
	// ContentType of Content; defaults to application/zip
	ContentType string
	Content     io.Reader
	// OnBehalfOf names the agent the depositor acts for; sent as provider.agent
	OnBehalfOf string
}

// CreateResult is the router's answer to an accepted notification.
type CreateResult struct {
	ID       string
	Location string
}
