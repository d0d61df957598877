package ingest

import (
	"fmt"

	"github.com/Morneplaine/EVE/internal/db"
	"github.com/Morneplaine/EVE/internal/engine"
	"github.com/Morneplaine/EVE/internal/logger"
	"github.com/Morneplaine/EVE/internal/market"
)

// RefreshPrices fetches current aggregates for every tracked item and
// upserts them into the price table. Items missing from the fetched batch
// keep their existing rows; each upsert replaces all quote fields and
// stamps the row, so re-running is idempotent.
//
// Returns the number of rows that came back with at least one priced side.
func RefreshPrices(d *db.DB, src market.PriceSource) (int, error) {
	typeIDs, err := d.TrackedTypeIDs()
	if err != nil {
		return 0, err
	}
	if len(typeIDs) == 0 {
		logger.Warn("PRICES", "No tracked items; import the catalog first")
		return 0, nil
	}

	logger.Info("PRICES", fmt.Sprintf("Refreshing %d tracked items", len(typeIDs)))
	return refreshPriceRows(d, src, typeIDs)
}

// RefreshPricesFor refreshes prices for an explicit set of type IDs instead
// of the whole tracked list, seeding rows for IDs not yet tracked so the
// regular refresh picks them up afterwards.
func RefreshPricesFor(d *db.DB, src market.PriceSource, typeIDs []int64) (int, error) {
	if len(typeIDs) == 0 {
		logger.Warn("PRICES", "No type IDs given")
		return 0, nil
	}
	for _, id := range typeIDs {
		if err := d.SeedPriceRow(id); err != nil {
			return 0, err
		}
	}

	logger.Info("PRICES", fmt.Sprintf("Refreshing %d requested items", len(typeIDs)))
	return refreshPriceRows(d, src, typeIDs)
}

func refreshPriceRows(d *db.DB, src market.PriceSource, typeIDs []int64) (int, error) {
	aggs, err := src.FetchAggregates(typeIDs)
	if err != nil {
		return 0, fmt.Errorf("fetch aggregates: %w", err)
	}

	priced := 0
	for typeID, agg := range aggs {
		// Fuzzwork aggregates carry no per-order averages; mirror
		// sell_min into avg and median.
		q := engine.PriceQuote{
			TypeID:     typeID,
			BuyMax:     agg.BuyMax,
			BuyVolume:  agg.BuyVolume,
			SellMin:    agg.SellMin,
			SellAvg:    agg.SellMin,
			SellMedian: agg.SellMin,
			SellVolume: agg.SellVolume,
		}
		if err := d.UpsertPriceQuote(q); err != nil {
			return priced, err
		}
		if agg.BuyMax > 0 || agg.SellMin > 0 {
			priced++
		}
	}

	logger.Success("PRICES", fmt.Sprintf("Updated %d items with live prices", priced))
	return priced, nil
}
