package market

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	fuzzworkBaseURL = "https://market.fuzzwork.co.uk/aggregates/"

	// JitaStationID is the default price station (Jita IV-4 CNAP).
	JitaStationID = 60003760

	defaultBatchSize  = 100
	defaultBatchPause = 500 * time.Millisecond
)

// Aggregate holds one item's current market aggregates from Fuzzwork.
// Absent sides come back as 0, which downstream code treats as the
// "no known price" sentinel.
type Aggregate struct {
	BuyMax     float64
	BuyVolume  float64
	SellMin    float64
	SellVolume float64
}

// fuzzNum tolerates Fuzzwork's habit of returning numbers as JSON strings.
type fuzzNum float64

func (n *fuzzNum) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse fuzzwork number %q: %w", s, err)
	}
	*n = fuzzNum(v)
	return nil
}

type fuzzSide struct {
	Max    fuzzNum `json:"max"`
	Min    fuzzNum `json:"min"`
	Volume fuzzNum `json:"volume"`
}

type fuzzAggregate struct {
	Buy  fuzzSide `json:"buy"`
	Sell fuzzSide `json:"sell"`
}

// FuzzworkClient fetches market aggregates from the Fuzzwork Market API.
// The API accepts many type IDs per call, so requests are batched; a short
// pause between batches keeps the client polite.
type FuzzworkClient struct {
	http       *resty.Client
	baseURL    string
	stationID  int64
	batchSize  int
	batchPause time.Duration
}

// NewFuzzworkClient creates a client priced against the given station.
func NewFuzzworkClient(stationID int64) *FuzzworkClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "eve-manufacturing-analyzer/1.0")

	return &FuzzworkClient{
		http:       client,
		baseURL:    fuzzworkBaseURL,
		stationID:  stationID,
		batchSize:  defaultBatchSize,
		batchPause: defaultBatchPause,
	}
}

// SetBaseURL overrides the API endpoint (tests).
func (c *FuzzworkClient) SetBaseURL(u string) { c.baseURL = u }

// SetBatchPause overrides the inter-batch pause (tests).
func (c *FuzzworkClient) SetBatchPause(d time.Duration) { c.batchPause = d }

// FetchAggregates fetches current aggregates for the given type IDs,
// splitting the request into batches. A failed batch fails the whole call.
func (c *FuzzworkClient) FetchAggregates(typeIDs []int64) (map[int64]Aggregate, error) {
	out := make(map[int64]Aggregate, len(typeIDs))

	for start := 0; start < len(typeIDs); start += c.batchSize {
		end := start + c.batchSize
		if end > len(typeIDs) {
			end = len(typeIDs)
		}
		batch := typeIDs[start:end]

		if start > 0 {
			time.Sleep(c.batchPause)
		}
		if err := c.fetchBatch(batch, out); err != nil {
			return nil, fmt.Errorf("fuzzwork batch %d-%d: %w", start, end, err)
		}
	}
	return out, nil
}

func (c *FuzzworkClient) fetchBatch(typeIDs []int64, out map[int64]Aggregate) error {
	ids := make([]string, len(typeIDs))
	for i, id := range typeIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	resp, err := c.http.R().
		SetQueryParam("station", strconv.FormatInt(c.stationID, 10)).
		SetQueryParam("types", strings.Join(ids, ",")).
		Get(c.baseURL)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.Status())
	}

	var payload map[string]fuzzAggregate
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	for idStr, agg := range payload {
		typeID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue // skip malformed keys
		}
		out[typeID] = Aggregate{
			BuyMax:     float64(agg.Buy.Max),
			BuyVolume:  float64(agg.Buy.Volume),
			SellMin:    float64(agg.Sell.Min),
			SellVolume: float64(agg.Sell.Volume),
		}
	}
	return nil
}
