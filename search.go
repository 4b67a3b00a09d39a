package drugwatch

import "context"

// SearchHit is a single organic result returned by a Searcher.
type SearchHit struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`

	// Position is the 1-based relevance rank within the search response.
	Position int `json:"position"`
}

// SearchQuery is a request to a Searcher.
type SearchQuery struct {
	Query string `json:"query"`
	Count int    `json:"count"`

	// Recency is an opaque provider-specific window code (e.g. "d", "w", "m").
	// It is forwarded to the provider without validation.
	Recency string `json:"recency"`
}

// Searcher finds candidate approval announcements on the web.
type Searcher interface {
	// Search returns hits ordered by relevance.
	Search(ctx context.Context, q SearchQuery) ([]*SearchHit, error)
}

// Agency identifiers with dedicated query templates.
const (
	AgencyFDA   = "fda.gov"
	AgencyEMA   = "ema.europa.eu"
	AgencyCDSCO = "cdsco.gov.in"
)

var agencyQueries = map[string]string{
	AgencyFDA:   `site:fda.gov drug approval "approved" -generic`,
	AgencyEMA:   `site:ema.europa.eu "marketing authorisation" drug approved`,
	AgencyCDSCO: `site:cdsco.gov.in drug approval "approved" license`,
}

const genericQuery = `drug approval "approved" FDA OR EMA OR CDSCO`

// KnownAgencies returns the agency identifiers that have a dedicated query.
func KnownAgencies() []string {
	return []string{AgencyFDA, AgencyEMA, AgencyCDSCO}
}

// BuildQuery returns the search query for an agency identifier.
// Unknown agencies get a generic multi-agency query.
func BuildQuery(agency string) string {
	if q, ok := agencyQueries[agency]; ok {
		return q
	}
	return genericQuery
}

// NewSearchQuery builds the search request for an agency, recency window
// and desired result count.
func NewSearchQuery(agency, window string, count int) SearchQuery {
	return SearchQuery{
		Query:   BuildQuery(agency),
		Count:   count,
		Recency: window,
	}
}
