package ingest

import (
	"fmt"
	"time"

	"github.com/Morneplaine/EVE/internal/db"
	"github.com/Morneplaine/EVE/internal/logger"
	"github.com/Morneplaine/EVE/internal/market"
)

// HistorySource supplies full per-item daily history.
type HistorySource interface {
	FetchHistory(regionID, typeID int64) ([]market.HistoryRecord, error)
}

// HistoryParams scopes one history ingestion run.
type HistoryParams struct {
	RegionID int64

	// TypeIDs limits the run to an explicit list. When nil, the scope is
	// every item with a tracked price.
	TypeIDs []int64

	// Start skips the first N items of the scope (0-based), for resuming
	// an interrupted run at the index named in the progress log.
	Start int

	// Limit caps the number of items fetched after Start; 0 means no cap.
	Limit int

	// Delay is the pause between consecutive requests. The source has no
	// batch endpoint, so this is the politeness knob.
	Delay time.Duration

	// ProgressEvery logs progress (and the resume index) every N items.
	ProgressEvery int
}

// HistoryStats summarizes a history ingestion run.
type HistoryStats struct {
	Processed  int // items fetched and stored
	Skipped    int // items whose fetch failed
	RowsStored int // daily rows upserted
}

// FetchHistory ingests daily market history one item at a time.
//
// A failed fetch for one item is logged and skipped; it never aborts the
// rest of the batch. Every stored day is an upsert keyed by
// (region, type, date), so interrupting and re-running is safe.
func FetchHistory(d *db.DB, src HistorySource, p HistoryParams) (*HistoryStats, error) {
	if p.RegionID == 0 {
		p.RegionID = market.TheForgeRegionID
	}
	if p.ProgressEvery <= 0 {
		p.ProgressEvery = 50
	}

	typeIDs := p.TypeIDs
	if typeIDs == nil {
		var err error
		typeIDs, err = d.TrackedTypeIDs()
		if err != nil {
			return nil, err
		}
		logger.Info("HISTORY", fmt.Sprintf("Scope: %d tracked items", len(typeIDs)))
	}

	total := len(typeIDs)
	if p.Start > 0 {
		if p.Start >= total {
			logger.Warn("HISTORY", fmt.Sprintf("start=%d >= %d items; nothing to do", p.Start, total))
			return &HistoryStats{}, nil
		}
		typeIDs = typeIDs[p.Start:]
		logger.Info("HISTORY", fmt.Sprintf("Resuming at item %d of %d", p.Start+1, total))
	}
	if p.Limit > 0 && len(typeIDs) > p.Limit {
		typeIDs = typeIDs[:p.Limit]
	}

	stats := &HistoryStats{}
	for i, typeID := range typeIDs {
		if i > 0 && p.Delay > 0 {
			time.Sleep(p.Delay)
		}

		records, err := src.FetchHistory(p.RegionID, typeID)
		if err != nil {
			logger.Warn("HISTORY", fmt.Sprintf("Fetch type %d failed: %v (skipping)", typeID, err))
			stats.Skipped++
			continue
		}

		typeName := d.ItemName(typeID)
		for _, rec := range records {
			row := db.HistoryRow{
				RegionID:   p.RegionID,
				TypeID:     typeID,
				TypeName:   typeName,
				DateUTC:    rec.DateUTC,
				Average:    rec.Average,
				Highest:    rec.Highest,
				Lowest:     rec.Lowest,
				OrderCount: rec.OrderCount,
				Volume:     rec.Volume,
			}
			if err := d.UpsertHistoryRow(row); err != nil {
				return stats, err
			}
			stats.RowsStored++
		}
		stats.Processed++

		if (i+1)%p.ProgressEvery == 0 {
			logger.Info("HISTORY", fmt.Sprintf("Progress: item %d/%d, %d rows stored. Resume with -start %d",
				p.Start+i+1, total, stats.RowsStored, p.Start+i+1))
		}
	}

	logger.Success("HISTORY", fmt.Sprintf("Done: %d items, %d skipped, %d daily rows",
		stats.Processed, stats.Skipped, stats.RowsStored))
	return stats, nil
}
