package sources

import (
	"net/url"

	"daily-feed/core/interfaces"
)

const (
	arsTechnicaName = "Ars Technica"
	arsTechnicaFeed = "https://arstechnica.com/feed/"
)

// ArsTechnica is the Ars Technica RSS feed with forum comments.
type ArsTechnica struct {
	base
}

// NewArsTechnica creates the Ars Technica source. An API token selects the
// subscriber feed with full article bodies; it is only sent with the request
// and never shows up in URL.
func NewArsTechnica(cfg Config, client interfaces.HTTPClient) *ArsTechnica {
	feedURL := cfg.URL
	if feedURL == "" {
		feedURL = arsTechnicaFeed
	}
	var fetchURL string
	if cfg.APIToken != "" {
		if u, err := url.Parse(feedURL); err == nil {
			q := u.Query()
			q.Set("t", cfg.APIToken)
			u.RawQuery = q.Encode()
			fetchURL = u.String()
		}
	}

	name := cfg.Name
	if name == "" {
		name = arsTechnicaName
	}

	return &ArsTechnica{base: base{
		name:        name,
		kind:        interfaces.KindArsTechnica,
		description: cfg.Description,
		url:         feedURL,
		caps: interfaces.Capabilities{
			Comments:  cfg.Comments,
			FullText:  cfg.FullText,
			RawEmbeds: cfg.RawEmbeds,
		},
		client:   client,
		fetchURL: fetchURL,
	}}
}

// Items parses the Ars Technica RSS payload
func (s *ArsTechnica) Items(payload []byte) (*interfaces.RawFeed, error) {
	return parseFeed(payload)
}
