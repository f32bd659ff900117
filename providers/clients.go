package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Thin live clients for the public-data providers. Each one is a uniform
// REST wrapper: build URL, fire through retryablehttp, decode, reshape into
// the provider's documented fields. Paid providers without keys configured
// never get a live client and fall through to mocks.

func newRetryClient(timeout time.Duration) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil
	return rc
}

func getJSON(ctx context.Context, rc *retryablehttp.Client, u string, headers map[string]string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := rc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var body map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("provider error %d: %v", resp.StatusCode, body)
	}
	b, err := readAllLimit(resp.Body, 4<<20) // 4MB guard
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func readAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}

// femaFlood queries the FEMA NFHL flood hazard layer by point.
type femaFlood struct {
	http    *retryablehttp.Client
	baseURL string
}

func NewFEMAFlood() Fetcher {
	return &femaFlood{http: newRetryClient(25 * time.Second), baseURL: "https://hazards.fema.gov/arcgis/rest/services/public/NFHL/MapServer/28/query"}
}

func (c *femaFlood) Fetch(ctx context.Context, q Query) (map[string]any, error) {
	v := url.Values{}
	v.Set("geometry", fmt.Sprintf("%.6f,%.6f", q.Lon, q.Lat))
	v.Set("geometryType", "esriGeometryPoint")
	v.Set("inSR", "4326")
	v.Set("outFields", "FLD_ZONE,FIRM_PAN,EFF_DATE")
	v.Set("returnGeometry", "false")
	v.Set("f", "json")
	var body struct {
		Features []struct {
			Attributes map[string]any `json:"attributes"`
		} `json:"features"`
	}
	if err := getJSON(ctx, c.http, c.baseURL+"?"+v.Encode(), nil, &body); err != nil {
		return nil, err
	}
	if len(body.Features) == 0 {
		// outside mapped flood hazard areas
		return map[string]any{"zone": "X", "panel": "", "effective_date": ""}, nil
	}
	attrs := body.Features[0].Attributes
	out := map[string]any{
		"zone":           str(attrs["FLD_ZONE"]),
		"panel":          str(attrs["FIRM_PAN"]),
		"effective_date": str(attrs["EFF_DATE"]),
	}
	return out, nil
}

// usgsQuakes counts magnitude-4+ events within 100km over the trailing year.
type usgsQuakes struct {
	http    *retryablehttp.Client
	baseURL string
}

func NewUSGSQuakes() Fetcher {
	return &usgsQuakes{http: newRetryClient(25 * time.Second), baseURL: "https://earthquake.usgs.gov/fdsnws/event/1/query"}
}

func (c *usgsQuakes) Fetch(ctx context.Context, q Query) (map[string]any, error) {
	v := url.Values{}
	v.Set("format", "geojson")
	v.Set("latitude", fmt.Sprintf("%.6f", q.Lat))
	v.Set("longitude", fmt.Sprintf("%.6f", q.Lon))
	v.Set("maxradiuskm", "100")
	v.Set("minmagnitude", "4")
	v.Set("starttime", time.Now().AddDate(-1, 0, 0).Format("2006-01-02"))
	var body struct {
		Features []struct {
			Properties struct {
				Mag float64 `json:"mag"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := getJSON(ctx, c.http, c.baseURL+"?"+v.Encode(), nil, &body); err != nil {
		return nil, err
	}
	largest := 0.0
	for _, f := range body.Features {
		if f.Properties.Mag > largest {
			largest = f.Properties.Mag
		}
	}
	return map[string]any{
		"quakes_mag4_past_year": len(body.Features),
		"largest_magnitude":     largest,
	}, nil
}

// fredMortgage reads the weekly 30yr/15yr fixed averages from the FRED API.
type fredMortgage struct {
	http    *retryablehttp.Client
	apiKey  string
	baseURL string
}

func NewFREDMortgage(apiKey string) Fetcher {
	return &fredMortgage{http: newRetryClient(8 * time.Second), apiKey: apiKey, baseURL: "https://api.stlouisfed.org/fred/series/observations"}
}

func (c *fredMortgage) Fetch(ctx context.Context, _ Query) (map[string]any, error) {
	r30, asOf, err := c.latest(ctx, "MORTGAGE30US")
	if err != nil {
		return nil, err
	}
	r15, _, err := c.latest(ctx, "MORTGAGE15US")
	if err != nil {
		return nil, err
	}
	return map[string]any{"rate_30yr": r30, "rate_15yr": r15, "as_of": asOf}, nil
}

func (c *fredMortgage) latest(ctx context.Context, series string) (float64, string, error) {
	v := url.Values{}
	v.Set("series_id", series)
	v.Set("api_key", c.apiKey)
	v.Set("file_type", "json")
	v.Set("sort_order", "desc")
	v.Set("limit", "1")
	var body struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := getJSON(ctx, c.http, c.baseURL+"?"+v.Encode(), nil, &body); err != nil {
		return 0, "", err
	}
	if len(body.Observations) == 0 {
		return 0, "", errors.New("no observations")
	}
	var rate float64
	if _, err := fmt.Sscanf(body.Observations[0].Value, "%f", &rate); err != nil {
		return 0, "", fmt.Errorf("bad rate value %q", body.Observations[0].Value)
	}
	return rate, body.Observations[0].Date, nil
}

// censusACS pulls ZCTA-level ACS 5-year profile fields for the property ZIP.
type censusACS struct {
	http    *retryablehttp.Client
	baseURL string
}

func NewCensusACS() Fetcher {
	return &censusACS{http: newRetryClient(15 * time.Second), baseURL: "https://api.census.gov/data/2023/acs/acs5/profile"}
}

func (c *censusACS) Fetch(ctx context.Context, q Query) (map[string]any, error) {
	if q.Zip == "" {
		return nil, errors.New("zip required")
	}
	v := url.Values{}
	v.Set("get", "DP05_0001E,DP05_0018E,DP03_0062E,DP04_0046PE")
	v.Set("for", "zip code tabulation area:"+q.Zip)
	var rows [][]string
	if err := getJSON(ctx, c.http, c.baseURL+"?"+v.Encode(), nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) < 2 || len(rows[1]) < 4 {
		return nil, errors.New("no acs rows for zip")
	}
	return map[string]any{
		"population":         atoiLoose(rows[1][0]),
		"median_age":         atofLoose(rows[1][1]),
		"median_income":      atoiLoose(rows[1][2]),
		"owner_occupied_pct": atofLoose(rows[1][3]),
	}, nil
}

// airNow reads the current observation for the property ZIP.
type airNow struct {
	http    *retryablehttp.Client
	apiKey  string
	baseURL string
}

func NewAirNow(apiKey string) Fetcher {
	return &airNow{http: newRetryClient(12 * time.Second), apiKey: apiKey, baseURL: "https://www.airnowapi.org/aq/observation/zipCode/current/"}
}

func (c *airNow) Fetch(ctx context.Context, q Query) (map[string]any, error) {
	if q.Zip == "" {
		return nil, errors.New("zip required")
	}
	v := url.Values{}
	v.Set("format", "application/json")
	v.Set("zipCode", q.Zip)
	v.Set("API_KEY", c.apiKey)
	var body []struct {
		AQI           int    `json:"AQI"`
		ParameterName string `json:"ParameterName"`
		Category      struct {
			Name string `json:"Name"`
		} `json:"Category"`
	}
	if err := getJSON(ctx, c.http, c.baseURL+"?"+v.Encode(), nil, &body); err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("no observations for zip")
	}
	worst := body[0]
	for _, o := range body[1:] {
		if o.AQI > worst.AQI {
			worst = o
		}
	}
	return map[string]any{"aqi": worst.AQI, "category": worst.Category.Name, "pollutant": worst.ParameterName}, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func atoiLoose(s string) int {
	var n int
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}

func atofLoose(s string) float64 {
	var f float64
	_, _ = fmt.Sscanf(s, "%f", &f)
	return f
}
