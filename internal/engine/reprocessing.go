package engine

import (
	"math"
	"sort"
)

// PriceBasis selects which side of the book prices an item.
type PriceBasis int

const (
	BasisSellMin PriceBasis = iota
	BasisBuyMax
	BasisAverage // midpoint of buy_max and sell_min, falling back to whichever exists
)

func (b PriceBasis) String() string {
	switch b {
	case BasisSellMin:
		return "sell_min"
	case BasisBuyMax:
		return "buy_max"
	default:
		return "average"
	}
}

// ParsePriceBasis maps a basis name from config or a flag to its constant.
func ParsePriceBasis(s string) (PriceBasis, error) {
	switch s {
	case "sell_min":
		return BasisSellMin, nil
	case "buy_max":
		return BasisBuyMax, nil
	case "average":
		return BasisAverage, nil
	default:
		return 0, &ConfigurationError{Field: "price_basis", Reason: "must be sell_min, buy_max or average, got " + s}
	}
}

// ReprocessingOutput is one material yielded by breaking an item down.
// Quantity is the base output for a whole batch of BatchSize items.
type ReprocessingOutput struct {
	MaterialTypeID int64
	MaterialName   string
	Quantity       int64
	BatchSize      int64
}

// ReprocessingItem is an item together with its reprocessing outputs.
type ReprocessingItem struct {
	TypeID  int64
	Name    string
	Outputs []ReprocessingOutput
}

// ReprocessingParams controls a reprocessing-value computation.
type ReprocessingParams struct {
	YieldPercent float64 // fraction of base output recovered, 0 < y <= 100
	CostPercent  float64 // base reprocessing fee, scaled by yield
	BatchCount   int64   // items evaluated per batch; large counts absorb rounding

	// BuyMarkupPercent pads the acquisition price when items are priced at
	// buy_max, covering the premium needed to actually fill a buy order.
	BuyMarkupPercent float64

	ItemPriceBasis    PriceBasis
	MineralPriceBasis PriceBasis

	// Items whose sell_min falls outside [MinItemPrice, MaxItemPrice] are
	// skipped; 0 for MaxItemPrice means no upper bound.
	MinItemPrice float64
	MaxItemPrice float64
}

// Validate rejects parameters before any row is computed.
func (p ReprocessingParams) Validate() error {
	if p.YieldPercent <= 0 || p.YieldPercent > 100 {
		return &ConfigurationError{Field: "yield_percent", Reason: "must be in (0, 100]"}
	}
	if p.CostPercent < 0 {
		return &ConfigurationError{Field: "cost_percent", Reason: "must not be negative"}
	}
	if p.BatchCount < 1 {
		return &ConfigurationError{Field: "batch_count", Reason: "must be at least 1"}
	}
	if p.BuyMarkupPercent < 0 {
		return &ConfigurationError{Field: "buy_markup_percent", Reason: "must not be negative"}
	}
	return nil
}

// ReprocessingRow is one ranked result, all figures per single item.
type ReprocessingRow struct {
	TypeID              int64
	Name                string
	ItemPrice           float64 // acquisition price, markup included
	MineralValuePerItem float64
	CostPerItem         float64
	ProfitPerItem       float64
	ReturnPercent       float64

	// BreakevenPrice is the highest acquisition price at which the batch
	// still breaks even after the reprocessing fee.
	BreakevenPrice float64
}

// ReprocessingReport is the ordered output of one AnalyzeReprocessing call.
type ReprocessingReport struct {
	Rows []ReprocessingRow

	// SkippedUnpriced counts items excluded because the item itself or all
	// of its outputs carried the zero-price sentinel.
	SkippedUnpriced int
}

// AnalyzeReprocessing values breaking each item into its reprocessing
// outputs at the given yield, against current prices.
//
// Per batch of BatchCount items:
//
//	output quantity = floor(base/batch_size * yield * BatchCount)
//	value = sum(output quantity * mineral price) - acquisition - fee
//
// where the fee is acquisition * CostPercent * yield. Quantities stay
// fractional until the final floor so sub-unit yields are not lost.
func AnalyzeReprocessing(items []ReprocessingItem, prices map[int64]PriceQuote, p ReprocessingParams) (*ReprocessingReport, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	yield := p.YieldPercent / 100.0
	effCostPercent := p.CostPercent * yield
	batch := float64(p.BatchCount)

	rep := &ReprocessingReport{}

	for _, item := range items {
		quote := prices[item.TypeID]
		if quote.SellMin < p.MinItemPrice {
			continue
		}
		if p.MaxItemPrice > 0 && quote.SellMin > p.MaxItemPrice {
			continue
		}

		itemPrice := basisPrice(quote, p.ItemPriceBasis)
		if itemPrice == 0 {
			rep.SkippedUnpriced++
			continue
		}
		if p.ItemPriceBasis == BasisBuyMax {
			itemPrice *= 1 + p.BuyMarkupPercent/100.0
		}

		totalValue := 0.0
		for _, out := range item.Outputs {
			batchSize := out.BatchSize
			if batchSize < 1 {
				batchSize = 1
			}
			perItem := float64(out.Quantity) / float64(batchSize)
			recovered := math.Floor(perItem * yield * batch)
			totalValue += recovered * basisPrice(prices[out.MaterialTypeID], p.MineralPriceBasis)
		}
		if totalValue == 0 {
			rep.SkippedUnpriced++
			continue
		}

		acquisition := itemPrice * batch
		fee := acquisition * effCostPercent / 100.0

		mineralPerItem := totalValue / batch
		costPerItem := fee / batch
		profitPerItem := mineralPerItem - itemPrice - costPerItem

		rep.Rows = append(rep.Rows, ReprocessingRow{
			TypeID:              item.TypeID,
			Name:                item.Name,
			ItemPrice:           itemPrice,
			MineralValuePerItem: mineralPerItem,
			CostPerItem:         costPerItem,
			ProfitPerItem:       profitPerItem,
			ReturnPercent:       profitPerItem / itemPrice * 100.0,
			BreakevenPrice:      totalValue / (1 + effCostPercent/100.0) / batch,
		})
	}

	sort.Slice(rep.Rows, func(i, j int) bool {
		if rep.Rows[i].ReturnPercent != rep.Rows[j].ReturnPercent {
			return rep.Rows[i].ReturnPercent > rep.Rows[j].ReturnPercent
		}
		return rep.Rows[i].TypeID < rep.Rows[j].TypeID
	})

	return rep, nil
}

func basisPrice(q PriceQuote, b PriceBasis) float64 {
	switch b {
	case BasisBuyMax:
		return q.BuyMax
	case BasisAverage:
		switch {
		case q.BuyMax > 0 && q.SellMin > 0:
			return (q.BuyMax + q.SellMin) / 2
		case q.BuyMax > 0:
			return q.BuyMax
		default:
			return q.SellMin
		}
	default:
		return q.SellMin
	}
}
