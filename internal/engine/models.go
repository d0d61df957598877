package engine

import "time"

// Material is a single material requirement of a blueprint at ME 0.
type Material struct {
	TypeID   int64  `db:"material_type_id"`
	Name     string `db:"material_name"`
	Quantity int64  `db:"quantity"`
}

// SkillRequirement is a minimum skill level needed to run a blueprint.
type SkillRequirement struct {
	TypeID int64  `db:"skill_type_id"`
	Name   string `db:"skill_name"`
	Level  int    `db:"level"`
}

// Blueprint is a production recipe: materials in, one product out.
type Blueprint struct {
	BlueprintTypeID int64
	ProductTypeID   int64
	ProductName     string
	GroupName       string
	OutputQuantity  int64 // units produced per run, >= 1
	Materials       []Material
	Skills          []SkillRequirement
}

// Catalog is the read-only recipe store the engine consumes.
type Catalog struct {
	Blueprints []Blueprint
}

// PriceQuote holds current market aggregates for one item.
// A SellMin of 0 is the "no known price" sentinel, not a real ask.
type PriceQuote struct {
	TypeID     int64     `db:"type_id"`
	BuyMax     float64   `db:"buy_max"`
	BuyVolume  float64   `db:"buy_volume"`
	SellMin    float64   `db:"sell_min"`
	SellAvg    float64   `db:"sell_avg"`
	SellMedian float64   `db:"sell_median"`
	SellVolume float64   `db:"sell_volume"`
	UpdatedAt  time.Time `db:"-"`
}

// Params controls a single profitability computation.
type Params struct {
	MELevel           int     // blueprint material efficiency, 0-10
	FilterBySkills    bool    // drop blueprints whose skill requirements are unmet
	FilterByResources bool    // drop blueprints that can't be built from inventory
	MinProfit         float64 // rows must exceed this profit per unit (strict)

	// Optional fee model; both default to 0, which leaves the raw
	// sell-minimum economics untouched.
	SalesTaxPercent         float64
	ManufacturingFeePercent float64
}

// Row is one ranked result in the profitability report.
type Row struct {
	ProductTypeID       int64
	ProductName         string
	OutputQuantity      int64
	RevenuePerUnit      float64
	MaterialCostPerUnit float64
	ProfitPerUnit       float64

	// MaxBuildable is the unit count buildable from inventory. -1 means
	// unconstrained: either the resource filter was off or the blueprint
	// has no material requirements.
	MaxBuildable int64
}

// Report is the ordered output of one Analyze call.
type Report struct {
	Rows []Row

	// SkippedUnpriced counts blueprints excluded because the product or a
	// material carried the zero-price sentinel.
	SkippedUnpriced int
}
