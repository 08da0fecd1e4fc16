// Command calibrate parses a vendor quote batch against a stored
// estimate response and emits the multiplier factors document, without
// a database. Factors print to stdout as JSON; an optional third
// argument writes the estimate-versus-vendor report as CSV.
// Usage: calibrate <estimate.json> <quotes_dir> [compare.csv]
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jcwest/internal/calibration"
	"jcwest/internal/config"
	"jcwest/internal/csvexport"
	"jcwest/internal/domain"
	"jcwest/internal/planpdf"
	"jcwest/internal/quotes"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 3 {
		fmt.Println("Usage: calibrate <estimate.json> <quotes_dir> [compare.csv]")
		os.Exit(1)
	}
	estimatePath, quotesDir := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	raw, err := os.ReadFile(estimatePath)
	if err != nil {
		return fmt.Errorf("reading estimate %s: %w", estimatePath, err)
	}
	var est domain.EstimateResponse
	if err := json.Unmarshal(raw, &est); err != nil {
		return fmt.Errorf("decoding estimate %s: %w", estimatePath, err)
	}

	vendorMap, err := quotes.LoadVendorMap(cfg.Quotes.VendorMapPath)
	if err != nil {
		return err
	}
	rules, err := quotes.LoadVendorRules(cfg.Quotes.VendorRulesPath)
	if err != nil {
		return err
	}
	parser := quotes.NewParser(vendorMap, rules)

	rows, err := parseDir(parser, rules, quotesDir)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return domain.ErrNoVendorRows
	}

	factors := calibration.ComputeFactors(&est, rows, calibration.Options{
		ClampMin:    cfg.Calibration.ClampMin,
		ClampMax:    cfg.Calibration.ClampMax,
		MinEstimate: cfg.Calibration.MinEstimate,
	})

	out, err := json.MarshalIndent(factors, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling factors: %w", err)
	}
	fmt.Println(string(out))

	log.Printf("calibrate: %d rows, %d factors, %d outliers",
		len(rows), len(factors.Factors), len(parser.Outliers))

	if len(os.Args) > 3 {
		report := calibration.BuildCompare(&est, rows, factors)
		if err := writeCompareCSV(os.Args[3], report); err != nil {
			return err
		}
		log.Printf("wrote %s", os.Args[3])
	}
	return nil
}

func parseDir(parser *quotes.Parser, rules *quotes.VendorRules, dir string) ([]domain.VendorRow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading quotes dir %s: %w", dir, err)
	}

	var files []quotes.QuoteFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".txt" && ext != ".pdf" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, quotes.QuoteFile{
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	if parser.Map.Parsing.PreferLatestFile != nil && *parser.Map.Parsing.PreferLatestFile {
		files = quotes.ChooseLatest(files, rules)
	}

	var rows []domain.VendorRow
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("reading quote %s: %w", f.Path, err)
		}
		text := string(data)
		if strings.EqualFold(filepath.Ext(f.Path), ".pdf") {
			doc, err := planpdf.ReadBytes(data, f.Path, 0)
			if err != nil {
				log.Printf("skipping unreadable quote %s: %v", f.Path, err)
				continue
			}
			text = doc.CombinedText()
		}
		vendor, trade := rules.Classify(f.Path)
		rows = append(rows, parser.ParseText(text, vendor, trade)...)
	}
	return rows, nil
}

func writeCompareCSV(path string, report *calibration.CompareReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(csvexport.BOM); err != nil {
		return err
	}
	w := csvexport.NewWriter(f)
	if err := w.WriteCompare(report); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
