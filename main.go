package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Morneplaine/EVE/internal/config"
	"github.com/Morneplaine/EVE/internal/db"
	"github.com/Morneplaine/EVE/internal/engine"
	"github.com/Morneplaine/EVE/internal/ingest"
	"github.com/Morneplaine/EVE/internal/logger"
	"github.com/Morneplaine/EVE/internal/market"
	"github.com/Morneplaine/EVE/internal/report"
	"github.com/Morneplaine/EVE/internal/sde"
	"github.com/Morneplaine/EVE/internal/userdata"
)

var version = "dev"

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger.Banner(version)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("CONFIG", fmt.Sprintf("Load failed: %v", err))
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "import-sde":
		err = cmdImportSDE(cfg, args)
	case "update-prices":
		err = cmdUpdatePrices(cfg, args)
	case "fetch-history":
		err = cmdFetchHistory(cfg, args)
	case "populate-cache":
		err = cmdPopulateCache(cfg, args)
	case "import-skills":
		err = cmdImportUserData(cfg, args, "skills")
	case "import-inventory":
		err = cmdImportUserData(cfg, args, "inventory")
	case "analyze":
		err = cmdAnalyze(cfg, args)
	case "reprocess":
		err = cmdReprocess(cfg, args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error(strings.ToUpper(cmd), err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `EVE manufacturing profitability analyzer

Usage:
  evemfg <command> [flags]

Commands:
  import-sde        Download and import the static data export
  update-prices     Refresh current Jita prices for all tracked items
  fetch-history     Fetch daily market history, one item at a time
  populate-cache    Recompute the standard input batch size cache
  import-skills     Import character skill levels from CSV
  import-inventory  Import on-hand materials from CSV
  analyze           Rank blueprints by manufacturing profit per unit
  reprocess         Rank items by reprocessing value against mineral prices

Configuration comes from EVEMFG_* environment variables or the YAML file
named by EVEMFG_CONFIG. Run "evemfg <command> -h" for command flags.
`)
}

func openDB(cfg *config.Config) (*db.DB, error) {
	return db.Open(cfg.DBPath)
}

func cmdImportSDE(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import-sde", flag.ExitOnError)
	dataDir := fs.String("data-dir", "data", "directory for the downloaded static data")
	fs.Parse(args)

	d, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	os.MkdirAll(*dataDir, 0755)
	return sde.Import(d, *dataDir)
}

func cmdUpdatePrices(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("update-prices", flag.ExitOnError)
	station := fs.Int64("station", cfg.StationID, "station ID to price against")
	types := fs.String("types", "", "comma-separated type IDs (default: all tracked)")
	fs.Parse(args)

	typeIDs, err := parseTypeIDs(*types)
	if err != nil {
		return err
	}

	d, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	src := market.NewCachedPriceSource(market.NewFuzzworkClient(*station), 5*time.Minute)
	if len(typeIDs) > 0 {
		_, err = ingest.RefreshPricesFor(d, src, typeIDs)
	} else {
		_, err = ingest.RefreshPrices(d, src)
	}
	return err
}

func cmdFetchHistory(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("fetch-history", flag.ExitOnError)
	region := fs.Int64("region", cfg.RegionID, "region ID for history")
	types := fs.String("types", "", "comma-separated type IDs (default: all tracked)")
	limit := fs.Int("limit", 0, "max items this run (0 = all)")
	start := fs.Int("start", 0, "resume offset into the item list")
	delay := fs.Float64("delay", cfg.FetchDelaySeconds, "seconds between requests")
	progress := fs.Int("progress", cfg.ProgressEvery, "log progress every N items")
	fs.Parse(args)

	typeIDs, err := parseTypeIDs(*types)
	if err != nil {
		return err
	}

	d, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	_, err = ingest.FetchHistory(d, market.NewTycoonClient(), ingest.HistoryParams{
		RegionID:      *region,
		TypeIDs:       typeIDs,
		Limit:         *limit,
		Start:         *start,
		Delay:         time.Duration(*delay * float64(time.Second)),
		ProgressEvery: *progress,
	})
	return err
}

func cmdPopulateCache(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("populate-cache", flag.ExitOnError)
	fs.Parse(args)

	d, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	return ingest.PopulateInputQuantityCache(d)
}

func cmdImportUserData(cfg *config.Config, args []string, kind string) error {
	fs := flag.NewFlagSet("import-"+kind, flag.ExitOnError)
	file := fs.String("file", kind+".csv", "CSV file to import")
	merge := fs.Bool("merge", false, "merge into existing rows instead of replacing all")
	fs.Parse(args)

	d, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	if kind == "skills" {
		_, err = userdata.ImportSkills(d, *file, !*merge)
	} else {
		_, err = userdata.ImportInventory(d, *file, !*merge)
	}
	return err
}

func cmdAnalyze(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	me := fs.Int("me", cfg.MELevel, "blueprint material efficiency (0-10)")
	filterSkills := fs.Bool("filter-skills", cfg.FilterBySkills, "drop blueprints with unmet skill requirements")
	filterResources := fs.Bool("filter-resources", cfg.FilterByResources, "drop blueprints not buildable from inventory")
	minProfit := fs.Float64("min-profit", cfg.MinProfit, "profit per unit must exceed this")
	csvPath := fs.String("csv", "", "also write the report to this CSV file")
	xlsxPath := fs.String("xlsx", "", "also write the report to this Excel file")
	top := fs.Int("top", 25, "console rows to print (0 = all)")
	fs.Parse(args)

	// Flag overrides must fail validation before any query runs.
	merged := *cfg
	merged.MELevel = *me
	merged.MinProfit = *minProfit
	if err := merged.Validate(); err != nil {
		return err
	}

	d, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	cat, err := d.LoadCatalog()
	if err != nil {
		return err
	}
	prices, err := d.LoadPrices()
	if err != nil {
		return err
	}
	skills, err := d.LoadCharacterSkills()
	if err != nil {
		return err
	}
	inventory, err := d.LoadInventory()
	if err != nil {
		return err
	}

	params := cfg.EngineParams()
	params.MELevel = *me
	params.FilterBySkills = *filterSkills
	params.FilterByResources = *filterResources
	params.MinProfit = *minProfit

	rep, err := engine.Analyze(cat, prices, skills, inventory, params)
	if err != nil {
		return err
	}

	report.PrintTop(rep, *top)
	if *csvPath != "" {
		if err := report.WriteCSV(rep, *csvPath); err != nil {
			return err
		}
	}
	if *xlsxPath != "" {
		if err := report.WriteExcel(rep, *xlsxPath); err != nil {
			return err
		}
	}
	return nil
}

func cmdReprocess(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("reprocess", flag.ExitOnError)
	yield := fs.Float64("yield", 55, "reprocessing yield percent")
	cost := fs.Float64("cost", 3.37, "base reprocessing fee percent, scaled by yield")
	batch := fs.Int64("batch", 10000, "items per evaluation batch")
	markup := fs.Float64("markup", 10, "markup percent when items are priced at buy_max")
	itemBasis := fs.String("item-price", "sell_min", "item price basis: sell_min, buy_max or average")
	mineralBasis := fs.String("mineral-price", "buy_max", "mineral price basis: sell_min, buy_max or average")
	minPrice := fs.Float64("min-price", 1, "skip items with sell_min below this")
	maxPrice := fs.Float64("max-price", 100000, "skip items with sell_min above this (0 = no cap)")
	top := fs.Int("top", 30, "console rows to print (0 = all)")
	csvPath := fs.String("csv", "", "also write the report to this CSV file")
	fs.Parse(args)

	// Flag values must fail validation before any query runs.
	params := engine.ReprocessingParams{
		YieldPercent:     *yield,
		CostPercent:      *cost,
		BatchCount:       *batch,
		BuyMarkupPercent: *markup,
		MinItemPrice:     *minPrice,
		MaxItemPrice:     *maxPrice,
	}
	var err error
	if params.ItemPriceBasis, err = engine.ParsePriceBasis(*itemBasis); err != nil {
		return err
	}
	if params.MineralPriceBasis, err = engine.ParsePriceBasis(*mineralBasis); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	d, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	items, err := d.LoadReprocessingItems()
	if err != nil {
		return err
	}
	prices, err := d.LoadPrices()
	if err != nil {
		return err
	}

	rep, err := engine.AnalyzeReprocessing(items, prices, params)
	if err != nil {
		return err
	}

	report.PrintReprocessTop(rep, *top)
	if *csvPath != "" {
		if err := report.WriteReprocessCSV(rep, *csvPath); err != nil {
			return err
		}
	}
	return nil
}

func parseTypeIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad type ID %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
