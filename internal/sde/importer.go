package sde

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Morneplaine/EVE/internal/db"
	"github.com/Morneplaine/EVE/internal/engine"
	"github.com/Morneplaine/EVE/internal/logger"
)

const sdeURL = "https://developers.eveonline.com/static-data/eve-online-static-data-latest-jsonl.zip"

// Import downloads the static data export if needed, parses it and replaces
// the catalog tables wholesale. Price rows are seeded for every product and
// material so the price refresh knows what to track.
func Import(d *db.DB, dataDir string) error {
	zipPath := filepath.Join(dataDir, "sde.zip")
	extractDir := filepath.Join(dataDir, "sde")

	if _, err := os.Stat(extractDir); os.IsNotExist(err) {
		logger.Info("SDE", "Downloading static data...")
		if err := downloadFile(zipPath, sdeURL); err != nil {
			return fmt.Errorf("download SDE: %w", err)
		}
		logger.Info("SDE", "Extracting...")
		if err := extractZip(zipPath, extractDir); err != nil {
			return fmt.Errorf("extract SDE: %w", err)
		}
	}

	return ImportFromDir(d, extractDir)
}

type groupRec struct {
	Name       string
	CategoryID int64
}

type typeRec struct {
	Name           string
	GroupID        int64
	Volume         float64
	PackagedVolume float64
}

type blueprintRec struct {
	BlueprintTypeID int64
	ProductTypeID   int64
	OutputQuantity  int64
	Materials       []engine.Material
	Skills          []engine.SkillRequirement
}

// ImportFromDir parses an already-extracted static data directory.
func ImportFromDir(d *db.DB, dir string) error {
	logger.Info("SDE", "Loading groups...")
	groups, err := loadGroups(dir)
	if err != nil {
		return err
	}

	logger.Info("SDE", "Loading item types...")
	types, err := loadTypes(dir, groups)
	if err != nil {
		return err
	}

	logger.Info("SDE", "Loading blueprints...")
	raw, err := loadBlueprints(dir)
	if err != nil {
		return err
	}

	blueprints := validateBlueprints(raw, types, groups)

	logger.Info("SDE", "Loading reprocessing yields...")
	reprocessing, err := loadReprocessing(dir, types, groups)
	if err != nil {
		return err
	}

	items := make([]db.Item, 0, len(types))
	for typeID, t := range types {
		items = append(items, db.Item{
			TypeID:         typeID,
			TypeName:       t.Name,
			GroupID:        t.GroupID,
			CategoryID:     groups[t.GroupID].CategoryID,
			Volume:         t.Volume,
			PackagedVolume: t.PackagedVolume,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].TypeID < items[j].TypeID })

	dbGroups := make([]db.Group, 0, len(groups))
	for groupID, g := range groups {
		dbGroups = append(dbGroups, db.Group{
			GroupID:    groupID,
			GroupName:  g.Name,
			CategoryID: g.CategoryID,
		})
	}
	sort.Slice(dbGroups, func(i, j int) bool { return dbGroups[i].GroupID < dbGroups[j].GroupID })

	if err := d.ReplaceCatalog(items, dbGroups, blueprints); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	if err := d.ReplaceReprocessingOutputs(reprocessing); err != nil {
		return fmt.Errorf("replace reprocessing outputs: %w", err)
	}

	// Seed tracking rows so price refresh covers every product, input and
	// reprocessable item.
	tracked := make(map[int64]bool)
	for _, bp := range blueprints {
		tracked[bp.ProductTypeID] = true
		for _, m := range bp.Materials {
			tracked[m.TypeID] = true
		}
	}
	reproItems := make(map[int64]bool)
	for _, r := range reprocessing {
		tracked[r.ItemTypeID] = true
		tracked[r.MaterialTypeID] = true
		reproItems[r.ItemTypeID] = true
	}
	for typeID := range tracked {
		if err := d.SeedPriceRow(typeID); err != nil {
			return err
		}
	}

	logger.Section("Catalog Statistics")
	logger.Stats("Groups", len(dbGroups))
	logger.Stats("Item types", len(items))
	logger.Stats("Blueprints", len(blueprints))
	logger.Stats("Reprocessable items", len(reproItems))
	logger.Stats("Tracked prices", len(tracked))
	logger.Success("SDE", "Catalog import complete")
	return nil
}

func loadGroups(dir string) (map[int64]groupRec, error) {
	groups := make(map[int64]groupRec)
	err := readJSONL(dir, "groups", func(raw json.RawMessage) error {
		var g struct {
			Key        int64             `json:"_key"`
			Name       map[string]string `json:"name"`
			CategoryID int64             `json:"categoryID"`
		}
		if err := json.Unmarshal(raw, &g); err != nil {
			return err
		}
		name := strings.TrimSpace(g.Name["en"])
		if name == "" {
			return nil
		}
		groups[g.Key] = groupRec{Name: name, CategoryID: g.CategoryID}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	return groups, nil
}

func loadTypes(dir string, groups map[int64]groupRec) (map[int64]typeRec, error) {
	types := make(map[int64]typeRec)
	err := readJSONL(dir, "types", func(raw json.RawMessage) error {
		var t struct {
			Key            int64             `json:"_key"`
			Name           map[string]string `json:"name"`
			Volume         float64           `json:"volume"`
			PackagedVolume float64           `json:"packagedVolume"`
			Published      bool              `json:"published"`
			GroupID        int64             `json:"groupID"`
		}
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		if !t.Published {
			return nil
		}
		name := t.Name["en"]
		if name == "" {
			return nil
		}
		pv := t.PackagedVolume
		if pv == 0 {
			pv = t.Volume
		}
		types[t.Key] = typeRec{
			Name:           name,
			GroupID:        t.GroupID,
			Volume:         t.Volume,
			PackagedVolume: pv,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load types: %w", err)
	}
	return types, nil
}

// loadBlueprints keeps only blueprints with a manufacturing activity that
// names exactly one product.
func loadBlueprints(dir string) ([]blueprintRec, error) {
	var out []blueprintRec
	err := readJSONL(dir, "blueprints", func(raw json.RawMessage) error {
		var bp struct {
			Key        int64 `json:"_key"`
			Activities struct {
				Manufacturing *struct {
					Materials []struct {
						TypeID   int64 `json:"typeID"`
						Quantity int64 `json:"quantity"`
					} `json:"materials"`
					Products []struct {
						TypeID   int64 `json:"typeID"`
						Quantity int64 `json:"quantity"`
					} `json:"products"`
					Skills []struct {
						TypeID int64 `json:"typeID"`
						Level  int   `json:"level"`
					} `json:"skills"`
				} `json:"manufacturing"`
			} `json:"activities"`
		}
		if err := json.Unmarshal(raw, &bp); err != nil {
			return err
		}

		mfg := bp.Activities.Manufacturing
		if mfg == nil || len(mfg.Products) != 1 {
			return nil
		}

		rec := blueprintRec{
			BlueprintTypeID: bp.Key,
			ProductTypeID:   mfg.Products[0].TypeID,
			OutputQuantity:  mfg.Products[0].Quantity,
		}
		if rec.OutputQuantity < 1 {
			logger.Warn("SDE", fmt.Sprintf("Blueprint %d: output quantity %d coerced to 1",
				bp.Key, rec.OutputQuantity))
			rec.OutputQuantity = 1
		}
		for _, m := range mfg.Materials {
			rec.Materials = append(rec.Materials, engine.Material{
				TypeID:   m.TypeID,
				Quantity: m.Quantity,
			})
		}
		for _, s := range mfg.Skills {
			rec.Skills = append(rec.Skills, engine.SkillRequirement{
				TypeID: s.TypeID,
				Level:  s.Level,
			})
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load blueprints: %w", err)
	}
	return out, nil
}

// validateBlueprints drops blueprints referencing unknown types and resolves
// display names. A recipe with a hole in it is worse than no recipe.
func validateBlueprints(raw []blueprintRec, types map[int64]typeRec, groups map[int64]groupRec) []engine.Blueprint {
	dropped := 0
	out := make([]engine.Blueprint, 0, len(raw))

	for _, rec := range raw {
		product, ok := types[rec.ProductTypeID]
		if !ok {
			logger.Warn("SDE", fmt.Sprintf("Blueprint %d: unknown product %d, dropped",
				rec.BlueprintTypeID, rec.ProductTypeID))
			dropped++
			continue
		}

		valid := true
		for _, m := range rec.Materials {
			if _, ok := types[m.TypeID]; !ok {
				logger.Warn("SDE", fmt.Sprintf("Blueprint %d: unknown material %d, dropped",
					rec.BlueprintTypeID, m.TypeID))
				valid = false
				break
			}
		}
		if valid {
			for _, s := range rec.Skills {
				if _, ok := types[s.TypeID]; !ok {
					logger.Warn("SDE", fmt.Sprintf("Blueprint %d: unknown skill %d, dropped",
						rec.BlueprintTypeID, s.TypeID))
					valid = false
					break
				}
			}
		}
		if !valid {
			dropped++
			continue
		}

		bp := engine.Blueprint{
			BlueprintTypeID: rec.BlueprintTypeID,
			ProductTypeID:   rec.ProductTypeID,
			ProductName:     product.Name,
			GroupName:       groups[product.GroupID].Name,
			OutputQuantity:  rec.OutputQuantity,
		}
		bp.Materials = make([]engine.Material, len(rec.Materials))
		for i, m := range rec.Materials {
			bp.Materials[i] = engine.Material{
				TypeID:   m.TypeID,
				Name:     types[m.TypeID].Name,
				Quantity: m.Quantity,
			}
		}
		bp.Skills = make([]engine.SkillRequirement, len(rec.Skills))
		for i, s := range rec.Skills {
			bp.Skills[i] = engine.SkillRequirement{
				TypeID: s.TypeID,
				Name:   types[s.TypeID].Name,
				Level:  s.Level,
			}
		}
		out = append(out, bp)
	}

	if dropped > 0 {
		logger.Warn("SDE", fmt.Sprintf("Dropped %d blueprints with unresolved references", dropped))
	}
	return out
}

// batchSizeForGroup maps an item's group name to the quantity a single SDE
// yield row refers to. Ammo yields are listed per stack, everything else per
// unit.
func batchSizeForGroup(groupName string) int64 {
	switch {
	case strings.Contains(groupName, "Missile"),
		strings.Contains(groupName, "Rocket"),
		strings.Contains(groupName, "Torpedo"):
		return 5000
	case strings.Contains(groupName, "Charge"),
		strings.Contains(groupName, "Projectile Ammo"),
		strings.Contains(groupName, "Hybrid Charge"),
		strings.Contains(groupName, "Frequency Crystal"),
		strings.Contains(groupName, "Capacitor Charge"):
		return 100
	default:
		return 1
	}
}

// loadReprocessing reads typeMaterials.jsonl and keeps yields for published
// items whose materials all resolve. Rows naming an unknown material are
// dropped item-wide, same policy as blueprints.
func loadReprocessing(dir string, types map[int64]typeRec, groups map[int64]groupRec) ([]db.ReprocessingOutput, error) {
	var out []db.ReprocessingOutput
	dropped := 0
	err := readJSONL(dir, "typeMaterials", func(raw json.RawMessage) error {
		var tm struct {
			Key       int64 `json:"_key"`
			Materials []struct {
				TypeID   int64 `json:"typeID"`
				Quantity int64 `json:"quantity"`
			} `json:"materials"`
		}
		if err := json.Unmarshal(raw, &tm); err != nil {
			return err
		}

		item, ok := types[tm.Key]
		if !ok || len(tm.Materials) == 0 {
			return nil
		}
		for _, m := range tm.Materials {
			if _, ok := types[m.TypeID]; !ok {
				logger.Warn("SDE", fmt.Sprintf("Item %d: unknown reprocessing material %d, dropped",
					tm.Key, m.TypeID))
				dropped++
				return nil
			}
		}

		batch := batchSizeForGroup(groups[item.GroupID].Name)
		for _, m := range tm.Materials {
			if m.Quantity < 1 {
				continue
			}
			out = append(out, db.ReprocessingOutput{
				ItemTypeID:     tm.Key,
				ItemName:       item.Name,
				MaterialTypeID: m.TypeID,
				MaterialName:   types[m.TypeID].Name,
				Quantity:       m.Quantity,
				BatchSize:      batch,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load reprocessing: %w", err)
	}
	if dropped > 0 {
		logger.Warn("SDE", fmt.Sprintf("Dropped %d items with unresolved reprocessing materials", dropped))
	}
	return out, nil
}

// readJSONL finds a .jsonl file by base name under dir and streams its lines.
func readJSONL(dir, baseName string, fn func(json.RawMessage) error) error {
	var filePath string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		name := strings.TrimSuffix(info.Name(), ".jsonl")
		if strings.EqualFold(name, baseName) {
			filePath = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return err
	}
	if filePath == "" {
		logger.Warn("SDE", fmt.Sprintf("File %s.jsonl not found, skipping", baseName))
		return nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(json.RawMessage(line)); err != nil {
			continue // skip malformed lines
		}
	}
	return scanner.Err()
}

func downloadFile(dst, url string) error {
	os.MkdirAll(filepath.Dir(dst), 0755)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func extractZip(src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolve extract dir: %w", err)
	}

	for _, f := range r.File {
		fpath := filepath.Join(dstAbs, f.Name)

		// Zip slip guard
		if rel, err := filepath.Rel(dstAbs, fpath); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("illegal zip entry path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, 0755)
			continue
		}
		os.MkdirAll(filepath.Dir(fpath), 0755)
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(fpath)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
