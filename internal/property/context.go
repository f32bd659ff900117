// Package property holds the per-request property context: constructed once
// from request input, read-only everywhere downstream.
package property

// Context describes the property a question is about. Cached carries
// provider payloads the caller already holds (e.g. a listing fetched by the
// search flow); components prefer cached values over re-fetching.
type Context struct {
	Address   string         `json:"address"`
	City      string         `json:"city"`
	State     string         `json:"state"`
	Zip       string         `json:"zip"`
	Lat       float64        `json:"lat"`
	Lon       float64        `json:"lon"`
	ListPrice float64        `json:"listPrice,omitempty"`
	Beds      int            `json:"beds,omitempty"`
	Baths     float64        `json:"baths,omitempty"`
	Sqft      int            `json:"sqft,omitempty"`
	YearBuilt int            `json:"yearBuilt,omitempty"`
	ListingID string         `json:"listingId,omitempty"`
	PhotoURLs []string       `json:"photoUrls,omitempty"`
	Cached    map[string]any `json:"cached,omitempty"`
}

// Summary is a one-line description used in AI prompts.
func (c Context) Summary() string {
	s := c.Address
	if c.City != "" {
		s += ", " + c.City
	}
	if c.State != "" {
		s += ", " + c.State
	}
	if c.Zip != "" {
		s += " " + c.Zip
	}
	return s
}
