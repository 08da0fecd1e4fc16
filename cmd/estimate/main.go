// Command estimate runs the takeoff and pricing pipeline over a plan
// PDF or a quantities JSON document, without a database. The estimate
// response prints to stdout as JSON; an optional second argument writes
// the line items as CSV.
// Usage: estimate <plan.pdf|quantities.json> [out.csv]
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"jcwest/internal/assemblies"
	"jcwest/internal/config"
	"jcwest/internal/csvexport"
	"jcwest/internal/domain"
	"jcwest/internal/pricing"
	"jcwest/internal/quantities"
	"jcwest/internal/takeoff"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		fmt.Println("Usage: estimate <plan.pdf|quantities.json> [out.csv]")
		os.Exit(1)
	}
	input := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	doc, err := loadQuantities(input, cfg)
	if err != nil {
		return err
	}

	policy, policyText, err := pricing.LoadPolicy(cfg.Pricing.PolicyPath, cfg.Pricing.DefaultRegion)
	if err != nil {
		return err
	}

	in := pricing.Inputs{
		Quantities: doc,
		Policy:     policy,
		PolicyText: policyText,
	}
	if cfg.Pricing.UnitCostsPath != "" {
		table, raw, err := pricing.LoadCostTable(cfg.Pricing.UnitCostsPath)
		if err != nil {
			return err
		}
		in.UnitCosts = table
		in.UnitCostsText = raw
	}
	if cfg.Pricing.VendorCostsPath != "" {
		table, raw, err := pricing.LoadCostTable(cfg.Pricing.VendorCostsPath)
		if err != nil {
			return err
		}
		in.VendorCosts = table
		in.VendorCostsText = raw
	}

	resp, err := pricing.Price(in)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling estimate: %w", err)
	}
	fmt.Println(string(out))

	if len(os.Args) > 2 {
		if err := writeCSV(os.Args[2], resp); err != nil {
			return err
		}
		log.Printf("wrote %s", os.Args[2])
	}
	return nil
}

// loadQuantities takes off a plan PDF or loads an existing quantities
// document, depending on the input extension.
func loadQuantities(input string, cfg *config.Config) (*domain.TradeQuantities, error) {
	if !strings.EqualFold(filepath.Ext(input), ".pdf") {
		doc, _, err := quantities.Load(input)
		return doc, err
	}

	opts := takeoff.Options{
		ProjectID: strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)),
		MaxPages:  cfg.Takeoff.MaxPages,
	}
	if cfg.Takeoff.FixtureRulesPath != "" {
		rules, err := takeoff.LoadFixtureRules(cfg.Takeoff.FixtureRulesPath)
		if err != nil {
			log.Printf("fixture rules %s unavailable: %v", cfg.Takeoff.FixtureRulesPath, err)
		} else {
			opts.FixtureRules = rules
		}
	}

	result, err := takeoff.Run(input, opts)
	if err != nil {
		return nil, err
	}

	if cfg.Takeoff.AssembliesPath != "" {
		catalog, err := assemblies.LoadCatalog(cfg.Takeoff.AssembliesPath)
		if err != nil {
			log.Printf("assembly catalog %s unavailable: %v", cfg.Takeoff.AssembliesPath, err)
		} else {
			catalog.Apply(result.Quantities, cfg.Takeoff.ProjectType)
		}
	}

	log.Printf("takeoff: %d trades, scale %s (%s)",
		len(result.Quantities.Trades), result.Scale.Label, result.Scale.Signal)
	return result.Quantities, nil
}

func writeCSV(path string, resp *domain.EstimateResponse) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(csvexport.BOM); err != nil {
		return err
	}
	w := csvexport.NewWriter(f)
	if err := w.WriteEstimate(resp); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
