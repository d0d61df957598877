package market

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	tycoonBaseURL = "https://evetycoon.com/api/v1/market/history"

	// TheForgeRegionID is Jita's region in the EVE Tycoon API.
	TheForgeRegionID = 44992
)

// HistoryRecord is one day of trade history for an item in a region.
type HistoryRecord struct {
	DateUTC    string // YYYY-MM-DD
	Average    float64
	Highest    float64
	Lowest     float64
	OrderCount int64
	Volume     int64
}

// TycoonClient fetches full per-item market history from EVE Tycoon.
// The API has no batch endpoint: one request per (region, type), and a
// single response carries all available days.
type TycoonClient struct {
	http    *resty.Client
	baseURL string
}

// NewTycoonClient creates a history client.
func NewTycoonClient() *TycoonClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "eve-manufacturing-analyzer/1.0")

	return &TycoonClient{http: client, baseURL: tycoonBaseURL}
}

// SetBaseURL overrides the API endpoint (tests).
func (c *TycoonClient) SetBaseURL(u string) { c.baseURL = u }

type tycoonRecord struct {
	Date       json.Number `json:"date"` // Unix ms (sometimes seconds)
	Average    float64     `json:"average"`
	Highest    float64     `json:"highest"`
	Lowest     float64     `json:"lowest"`
	OrderCount int64       `json:"orderCount"`
	Volume     int64       `json:"volume"`
}

// FetchHistory fetches the full daily history for one item.
func (c *TycoonClient) FetchHistory(regionID, typeID int64) ([]HistoryRecord, error) {
	url := fmt.Sprintf("%s/%d/%d", c.baseURL, regionID, typeID)

	resp, err := c.http.R().Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch history %d/%d: %w", regionID, typeID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch history %d/%d: HTTP %d", regionID, typeID, resp.StatusCode())
	}

	var raw []tycoonRecord
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode history %d/%d: %w", regionID, typeID, err)
	}

	records := make([]HistoryRecord, 0, len(raw))
	for _, rec := range raw {
		date, ok := normalizeDate(rec.Date)
		if !ok {
			continue // record without a usable timestamp
		}
		records = append(records, HistoryRecord{
			DateUTC:    date,
			Average:    rec.Average,
			Highest:    rec.Highest,
			Lowest:     rec.Lowest,
			OrderCount: rec.OrderCount,
			Volume:     rec.Volume,
		})
	}
	return records, nil
}

// normalizeDate converts a Unix timestamp (milliseconds or seconds) to a
// UTC calendar date string.
func normalizeDate(n json.Number) (string, bool) {
	ts, err := n.Float64()
	if err != nil || ts <= 0 {
		return "", false
	}
	if ts > 1e12 {
		ts /= 1000.0 // was milliseconds
	}
	return time.Unix(int64(ts), 0).UTC().Format("2006-01-02"), true
}
