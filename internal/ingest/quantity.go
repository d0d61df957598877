package ingest

import (
	"fmt"
	"sort"

	"github.com/Morneplaine/EVE/internal/db"
	"github.com/Morneplaine/EVE/internal/logger"
)

// QuantitySource records which inference tier produced a cached input
// quantity.
type QuantitySource int

const (
	SourceBlueprint QuantitySource = iota
	SourceGroupConsensus
	SourceGroupFrequency
	SourceDefault
)

func (s QuantitySource) String() string {
	switch s {
	case SourceBlueprint:
		return "blueprint"
	case SourceGroupConsensus:
		return "group_consensus"
	case SourceGroupFrequency:
		return "group_most_frequent"
	default:
		return "default"
	}
}

// InputQuantity is one inferred standard batch size with its provenance.
type InputQuantity struct {
	Quantity    int64
	Source      QuantitySource
	NeedsReview bool
}

// InferInputQuantity resolves the standard input batch size for an item.
//
// Tiers, in order: the item's own blueprint output quantity; a strict
// majority among the output quantities of items in the same group; the
// most frequent group quantity (flagged for review, smallest value wins a
// frequency tie); and finally 1 (flagged for review).
func InferInputQuantity(ownQty int64, hasBlueprint bool, groupQuantities []int64) InputQuantity {
	if hasBlueprint && ownQty > 0 {
		return InputQuantity{Quantity: ownQty, Source: SourceBlueprint}
	}

	if len(groupQuantities) > 0 {
		counts := make(map[int64]int)
		for _, q := range groupQuantities {
			counts[q]++
		}

		best, bestCount := int64(0), 0
		values := make([]int64, 0, len(counts))
		for q := range counts {
			values = append(values, q)
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		for _, q := range values {
			if counts[q] > bestCount {
				best, bestCount = q, counts[q]
			}
		}

		if bestCount*2 > len(groupQuantities) {
			return InputQuantity{Quantity: best, Source: SourceGroupConsensus}
		}
		return InputQuantity{Quantity: best, Source: SourceGroupFrequency, NeedsReview: true}
	}

	return InputQuantity{Quantity: 1, Source: SourceDefault, NeedsReview: true}
}

// PopulateInputQuantityCache recomputes the standard-batch-size cache for
// every catalog item. Existing rows are replaced, so the cache always
// reflects the current catalog.
func PopulateInputQuantityCache(d *db.DB) error {
	items, err := d.AllItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		logger.Warn("CACHE", "No catalog items; import the catalog first")
		return nil
	}

	cat, err := d.LoadCatalog()
	if err != nil {
		return err
	}

	outputQty := make(map[int64]int64, len(cat.Blueprints))
	for _, bp := range cat.Blueprints {
		outputQty[bp.ProductTypeID] = bp.OutputQuantity
	}

	groupQuantities := make(map[int64][]int64)
	for _, it := range items {
		if q, ok := outputQty[it.TypeID]; ok && q > 0 {
			groupQuantities[it.GroupID] = append(groupQuantities[it.GroupID], q)
		}
	}

	logger.Info("CACHE", fmt.Sprintf("Computing input quantities for %d items", len(items)))

	for _, it := range items {
		ownQty, hasBlueprint := outputQty[it.TypeID]

		// The item's own quantity participates in the group sample;
		// exclude it so the fallback tiers see only peers.
		peers := groupQuantities[it.GroupID]
		if hasBlueprint && ownQty > 0 {
			trimmed := make([]int64, 0, len(peers))
			removed := false
			for _, q := range peers {
				if !removed && q == ownQty {
					removed = true
					continue
				}
				trimmed = append(trimmed, q)
			}
			peers = trimmed
		}

		inferred := InferInputQuantity(ownQty, hasBlueprint, peers)
		row := db.InputQuantityRow{
			TypeID:        it.TypeID,
			TypeName:      it.TypeName,
			InputQuantity: inferred.Quantity,
			Source:        inferred.Source.String(),
			NeedsReview:   inferred.NeedsReview,
		}
		if err := d.UpsertInputQuantity(row); err != nil {
			return err
		}
	}

	bySource, needsReview, err := d.InputQuantityStats()
	if err != nil {
		return err
	}
	for _, src := range []QuantitySource{SourceBlueprint, SourceGroupConsensus, SourceGroupFrequency, SourceDefault} {
		if n := bySource[src.String()]; n > 0 {
			logger.Stats(src.String(), n)
		}
	}
	logger.Success("CACHE", fmt.Sprintf("Cached %d items (%d flagged for review)", len(items), needsReview))
	return nil
}
