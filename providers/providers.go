package providers

import (
	"context"
	"time"
)

// Source values carried on every handler result.
const (
	SourceLive = "live"
	SourceMock = "mock"
)

// HandlerResult is the uniform envelope every handler kind returns. The
// fan-out executor treats all handlers polymorphically through it.
type HandlerResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Source  string         `json:"source"`
	Err     string         `json:"error,omitempty"`
}

func Failed(err error) HandlerResult {
	return HandlerResult{Success: false, Source: SourceMock, Err: err.Error()}
}

// Descriptor is one static table entry per external capability.
type Descriptor struct {
	ID           string
	Capabilities []string
	Fields       []string
	Keywords     []string
	Timeout      time.Duration
}

// Fetcher is the collaborator contract for one provider: fetch whatever the
// provider knows about the property. Implementations never return a nil map
// on success.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (map[string]any, error)
}

// Query is the slice of request state a provider needs. Providers never see
// the question text.
type Query struct {
	Address string
	City    string
	State   string
	Zip     string
	Lat     float64
	Lon     float64
	Place   string // free-text target for distance/commute lookups
}

// Availability says, per provider id, whether the live client may be called.
// Anything absent or false is served from the mock fixture. Injected at
// construction time so tests stay deterministic.
type Availability map[string]bool

func (a Availability) Live(id string) bool { return a != nil && a[id] }

// Provider ids. These double as the keys of the merged result map, so every
// id must stay distinct and stable.
const (
	MapsDistance      = "maps_distance"
	MapsNearby        = "maps_nearby"
	TransitCommute    = "transit_commute"
	WalkScore         = "walkscore"
	AttomAVM          = "attom_avm"
	RentEstimate      = "rent_estimate"
	AttomComps        = "attom_comps"
	AttomRecords      = "attom_records"
	AttomTax          = "attom_tax"
	AttomSales        = "attom_sales"
	FredMortgage      = "fred_mortgage"
	FemaFlood         = "fema_flood"
	WildfireRisk      = "wildfire_risk"
	USGSQuakes        = "usgs_quakes"
	AirQuality        = "air_quality"
	NoiseScore        = "noise_score"
	ClimateNormals    = "climate_normals"
	CrimeGrade        = "crime_grade"
	Schools           = "schools"
	CensusACS         = "census_acs"
	Broadband         = "broadband"
	UtilityRates      = "utility_rates"
	ListingDetail     = "listing_detail"
	StreetView        = "street_view"
	Permits           = "permits"
	HOARecords        = "hoa_records"
	CountyLegal       = "county_legal"
	NeighborhoodScore = "neighborhood_score"
	EnvHazards        = "env_hazards"
	MarketTrends      = "market_trends"
)

// Table is the static provider descriptor table. Keyword lists drive the
// selector's keyword pass; timeouts bound each fan-out call.
var Table = []Descriptor{
	{ID: MapsDistance, Capabilities: []string{"distance"}, Fields: []string{"distance_miles", "duration_min", "destination"},
		Keywords: []string{"how far", "distance", "miles from", "close to", "closest", "nearest"}, Timeout: 10 * time.Second},
	{ID: MapsNearby, Capabilities: []string{"amenities"}, Fields: []string{"places"},
		Keywords: []string{"grocery", "restaurant", "coffee", "gym", "park", "hospital", "pharmacy", "shopping", "amenities", "nearby"}, Timeout: 10 * time.Second},
	{ID: TransitCommute, Capabilities: []string{"commute"}, Fields: []string{"drive_min", "transit_min", "routes"},
		Keywords: []string{"commute", "transit", "bus", "train", "subway", "downtown", "drive to work"}, Timeout: 15 * time.Second},
	{ID: WalkScore, Capabilities: []string{"walkability"}, Fields: []string{"walk_score", "bike_score", "transit_score"},
		Keywords: []string{"walkable", "walk score", "bike", "walkability"}, Timeout: 10 * time.Second},
	{ID: AttomAVM, Capabilities: []string{"valuation"}, Fields: []string{"value", "low", "high", "confidence_score"},
		Keywords: []string{"worth", "market value", "avm", "apprais", "valuation", "overpriced", "underpriced", "fair price"}, Timeout: 20 * time.Second},
	{ID: RentEstimate, Capabilities: []string{"rent"}, Fields: []string{"rent", "rent_low", "rent_high"},
		Keywords: []string{"rent", "rental income", "airbnb", "tenant"}, Timeout: 20 * time.Second},
	{ID: AttomComps, Capabilities: []string{"comparables"}, Fields: []string{"comps"},
		Keywords: []string{"comps", "comparable", "sold nearby", "similar homes"}, Timeout: 30 * time.Second},
	{ID: AttomRecords, Capabilities: []string{"records"}, Fields: []string{"beds", "baths", "sqft", "year_built", "lot_sqft", "property_type"},
		Keywords: []string{"square feet", "sqft", "year built", "lot size", "bedrooms", "bathrooms", "garage", "basement"}, Timeout: 20 * time.Second},
	{ID: AttomTax, Capabilities: []string{"tax"}, Fields: []string{"annual_tax", "assessed_value", "tax_year"},
		Keywords: []string{"property tax", "taxes", "assessed"}, Timeout: 20 * time.Second},
	{ID: AttomSales, Capabilities: []string{"sale-history"}, Fields: []string{"sales"},
		Keywords: []string{"last sold", "sale history", "price history", "previous owner", "when did it sell"}, Timeout: 20 * time.Second},
	{ID: FredMortgage, Capabilities: []string{"mortgage-rates"}, Fields: []string{"rate_30yr", "rate_15yr", "as_of"},
		Keywords: []string{"mortgage rate", "interest rate", "apr", "refinance"}, Timeout: 10 * time.Second},
	{ID: FemaFlood, Capabilities: []string{"flood"}, Fields: []string{"zone", "panel", "effective_date"},
		Keywords: []string{"flood"}, Timeout: 30 * time.Second},
	{ID: WildfireRisk, Capabilities: []string{"wildfire"}, Fields: []string{"risk_index", "risk_label"},
		Keywords: []string{"wildfire", "fire risk", "fire danger"}, Timeout: 30 * time.Second},
	{ID: USGSQuakes, Capabilities: []string{"seismic"}, Fields: []string{"quakes_mag4_past_year", "largest_magnitude"},
		Keywords: []string{"earthquake", "seismic", "fault"}, Timeout: 30 * time.Second},
	{ID: AirQuality, Capabilities: []string{"air"}, Fields: []string{"aqi", "category", "pollutant"},
		Keywords: []string{"air quality", "aqi", "pollution", "smog"}, Timeout: 15 * time.Second},
	{ID: NoiseScore, Capabilities: []string{"noise"}, Fields: []string{"sound_score", "traffic", "airports"},
		Keywords: []string{"noise", "noisy", "loud", "quiet"}, Timeout: 15 * time.Second},
	{ID: ClimateNormals, Capabilities: []string{"climate"}, Fields: []string{"avg_high_f", "avg_low_f", "annual_rain_in", "annual_snow_in"},
		Keywords: []string{"climate", "weather", "rainfall", "snow", "humidity", "temperature"}, Timeout: 20 * time.Second},
	{ID: CrimeGrade, Capabilities: []string{"crime"}, Fields: []string{"overall_grade", "violent_grade", "property_grade"},
		Keywords: []string{"crime", "safe", "safety", "dangerous", "burglar"}, Timeout: 20 * time.Second},
	{ID: Schools, Capabilities: []string{"schools"}, Fields: []string{"schools"},
		Keywords: []string{"school", "district", "elementary", "middle school", "high school"}, Timeout: 20 * time.Second},
	{ID: CensusACS, Capabilities: []string{"demographics"}, Fields: []string{"population", "median_age", "median_income", "owner_occupied_pct"},
		Keywords: []string{"demographic", "population", "median income", "median age", "who lives"}, Timeout: 20 * time.Second},
	{ID: Broadband, Capabilities: []string{"broadband"}, Fields: []string{"max_down_mbps", "fiber", "providers"},
		Keywords: []string{"internet", "broadband", "fiber", "wifi"}, Timeout: 15 * time.Second},
	{ID: UtilityRates, Capabilities: []string{"utilities"}, Fields: []string{"electric_cents_kwh", "gas_rate", "water_avg_monthly"},
		Keywords: []string{"utility", "utilities", "electric", "gas bill", "water bill", "heating"}, Timeout: 15 * time.Second},
	{ID: ListingDetail, Capabilities: []string{"listing"}, Fields: []string{"list_price", "status", "days_on_market", "description"},
		Keywords: []string{"listing", "days on market", "asking price", "list price", "still available"}, Timeout: 20 * time.Second},
	{ID: StreetView, Capabilities: []string{"vision"}, Fields: []string{"observations"},
		Keywords: []string{"look like", "curb appeal", "photo", "picture", "roof condition", "exterior"}, Timeout: 60 * time.Second},
	{ID: Permits, Capabilities: []string{"permits"}, Fields: []string{"permits"},
		Keywords: []string{"permit", "renovation", "remodel", "addition"}, Timeout: 30 * time.Second},
	{ID: HOARecords, Capabilities: []string{"hoa"}, Fields: []string{"hoa_monthly", "association"},
		Keywords: []string{"hoa", "association", "dues"}, Timeout: 15 * time.Second},
	{ID: CountyLegal, Capabilities: []string{"legal"}, Fields: []string{"zoning", "liens", "easements"},
		Keywords: []string{"zoning", "lien", "easement", "encumbrance", "deed restriction"}, Timeout: 30 * time.Second},
	{ID: NeighborhoodScore, Capabilities: []string{"neighborhood"}, Fields: []string{"investment_score", "trend"},
		Keywords: []string{"up and coming", "neighborhood rating", "gentrif", "appreciating area"}, Timeout: 20 * time.Second},
	{ID: EnvHazards, Capabilities: []string{"hazards"}, Fields: []string{"radon_zone", "superfund_sites_5mi"},
		Keywords: []string{"radon", "contamination", "superfund", "toxic", "asbestos", "lead paint"}, Timeout: 30 * time.Second},
	{ID: MarketTrends, Capabilities: []string{"market"}, Fields: []string{"median_sale_price", "yoy_change_pct", "median_dom"},
		Keywords: []string{"market trend", "appreciation", "hot market", "seller's market", "buyer's market", "prices going"}, Timeout: 20 * time.Second},
}

var tableByID = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(Table))
	for _, d := range Table {
		m[d.ID] = d
	}
	return m
}()

func Lookup(id string) (Descriptor, bool) {
	d, ok := tableByID[id]
	return d, ok
}

// IDs returns every provider id in table order.
func IDs() []string {
	out := make([]string, 0, len(Table))
	for _, d := range Table {
		out = append(out, d.ID)
	}
	return out
}
