package engine

import (
	"math"
	"sort"
)

// EffectiveQuantity applies Material Efficiency to a base material quantity.
// Each ME level cuts consumption by 1%, rounded up per material, and a
// requirement never drops below a single unit.
func EffectiveQuantity(base int64, meLevel int) int64 {
	q := int64(math.Ceil(float64(base) * (1.0 - float64(meLevel)/100.0)))
	if q < 1 {
		q = 1
	}
	return q
}

// Analyze joins the catalog with prices, skills, and inventory under the
// given parameters and returns the ranked profitability report.
//
// Prices and inventory are total maps keyed by type ID: a missing price row
// behaves as the zero sentinel, a missing inventory row as quantity 0, a
// missing skill as level 0.
func Analyze(cat *Catalog, prices map[int64]PriceQuote, skills map[int64]int, inventory map[int64]int64, p Params) (*Report, error) {
	if p.MELevel < 0 || p.MELevel > 10 {
		return nil, &ConfigurationError{Field: "me_level", Reason: "must be in 0..10"}
	}

	rep := &Report{}

	for _, bp := range cat.Blueprints {
		if bp.OutputQuantity < 1 {
			return nil, &DataIntegrityError{
				BlueprintTypeID: bp.BlueprintTypeID,
				Reason:          "non-positive output quantity",
			}
		}

		if p.FilterBySkills && !skillsMet(bp, skills) {
			continue
		}

		productPrice := prices[bp.ProductTypeID].SellMin
		if productPrice == 0 {
			rep.SkippedUnpriced++
			continue
		}

		costPerRun, priced := materialCostPerRun(bp, prices, p.MELevel)
		if !priced {
			rep.SkippedUnpriced++
			continue
		}

		maxBuildable := int64(-1)
		if p.FilterByResources {
			maxBuildable = maxBuildableUnits(bp, inventory, p.MELevel)
			if maxBuildable == 0 {
				continue
			}
		}

		costPerRun += costPerRun * p.ManufacturingFeePercent / 100.0
		revenue := productPrice * (1.0 - p.SalesTaxPercent/100.0)
		cost := costPerRun / float64(bp.OutputQuantity)
		profit := revenue - cost

		if profit <= p.MinProfit {
			continue
		}

		rep.Rows = append(rep.Rows, Row{
			ProductTypeID:       bp.ProductTypeID,
			ProductName:         bp.ProductName,
			OutputQuantity:      bp.OutputQuantity,
			RevenuePerUnit:      revenue,
			MaterialCostPerUnit: cost,
			ProfitPerUnit:       profit,
			MaxBuildable:        maxBuildable,
		})
	}

	sort.Slice(rep.Rows, func(i, j int) bool {
		if rep.Rows[i].ProfitPerUnit != rep.Rows[j].ProfitPerUnit {
			return rep.Rows[i].ProfitPerUnit > rep.Rows[j].ProfitPerUnit
		}
		return rep.Rows[i].ProductTypeID < rep.Rows[j].ProductTypeID
	})

	return rep, nil
}

// skillsMet reports whether every required skill is held at the required
// level. A skill absent from the held map counts as level 0.
func skillsMet(bp Blueprint, held map[int64]int) bool {
	for _, req := range bp.Skills {
		if held[req.TypeID] < req.Level {
			return false
		}
	}
	return true
}

// materialCostPerRun sums effective quantity times sell minimum across the
// blueprint's materials. Returns priced=false if any material carries the
// zero-price sentinel; a blueprint with no materials costs 0 and is priced.
func materialCostPerRun(bp Blueprint, prices map[int64]PriceQuote, meLevel int) (cost float64, priced bool) {
	for _, mat := range bp.Materials {
		price := prices[mat.TypeID].SellMin
		if price == 0 {
			return 0, false
		}
		cost += float64(EffectiveQuantity(mat.Quantity, meLevel)) * price
	}
	return cost, true
}

// maxBuildableUnits returns min over materials of floor(on-hand / effective
// quantity), or -1 (unconstrained) when the blueprint needs no materials.
func maxBuildableUnits(bp Blueprint, inventory map[int64]int64, meLevel int) int64 {
	if len(bp.Materials) == 0 {
		return -1
	}
	limit := int64(math.MaxInt64)
	for _, mat := range bp.Materials {
		eff := EffectiveQuantity(mat.Quantity, meLevel)
		units := inventory[mat.TypeID] / eff
		if units < limit {
			limit = units
		}
	}
	return limit
}
