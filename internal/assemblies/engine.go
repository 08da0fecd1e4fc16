package assemblies

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"jcwest/internal/domain"
)

// Assembly derives one quantity line from existing takeoff variables.
// Variables stays a yaml.Node so declaration order is preserved:
// later variables may reference earlier ones in their formulas.
type Assembly struct {
	Name         string    `yaml:"name"`
	ProjectTypes []string  `yaml:"project_types"`
	Trade        string    `yaml:"trade"`
	Item         string    `yaml:"item"`
	Unit         string    `yaml:"unit"`
	Description  string    `yaml:"description"`
	Formula      string    `yaml:"formula"`
	Variables    yaml.Node `yaml:"variables"`
}

// Catalog is a loaded assemblies document.
type Catalog struct {
	Assemblies []Assembly `yaml:"assemblies"`
}

// ParseCatalog decodes an assemblies YAML document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing assemblies: %w", err)
	}
	return &c, nil
}

// LoadCatalog reads an assemblies file. A missing path yields an empty
// catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("reading assemblies %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// BaseVariables exposes a quantities document to formulas: each item
// under both its bare code and its trade_code form.
func BaseVariables(q *domain.TradeQuantities) map[string]float64 {
	vars := make(map[string]float64)
	for _, item := range q.Flatten() {
		vars[item.Code] = item.Qty
		vars[item.Trade+"_"+item.Code] = item.Qty
	}
	return vars
}

// Apply evaluates the catalog against a quantities document and appends
// the derived items in place. Assemblies scoped to other project types
// are skipped, as are results that round to zero; negative results clamp
// to zero. A formula error skips that assembly with a log line, never
// the whole run.
func (c *Catalog) Apply(q *domain.TradeQuantities, projectType string) {
	if len(c.Assemblies) == 0 {
		return
	}
	base := BaseVariables(q)

	for i := range c.Assemblies {
		a := &c.Assemblies[i]
		if a.Trade == "" || a.Item == "" || a.Formula == "" {
			continue
		}
		if !a.appliesTo(projectType) {
			continue
		}

		vars := make(map[string]float64, len(base))
		for k, v := range base {
			vars[k] = v
		}
		if err := a.evalVariables(vars); err != nil {
			log.Printf("assemblies: %s: %v", a.Name, err)
			continue
		}

		result, err := Eval(a.Formula, vars)
		if err != nil {
			log.Printf("assemblies: %s: %v", a.Name, err)
			continue
		}
		if result < 0 {
			result = 0
		}
		if result == 0 {
			continue
		}

		trade := strings.ToLower(strings.TrimSpace(a.Trade))
		unit := strings.ToLower(strings.TrimSpace(a.Unit))
		if unit == "" {
			unit = string(domain.UnitEA)
		}
		desc := a.Description
		if desc == "" {
			desc = a.Name
		}
		group := q.Trades[trade]
		group.Items = append(group.Items, domain.QuantityItem{
			Code:        strings.ToLower(strings.TrimSpace(a.Item)),
			Description: desc,
			Unit:        unit,
			Quantity:    result,
			Notes:       "assembly:" + a.Name,
		})
		q.Trades[trade] = group
	}
}

func (a *Assembly) appliesTo(projectType string) bool {
	if len(a.ProjectTypes) == 0 {
		return true
	}
	want := strings.ToLower(strings.TrimSpace(projectType))
	for _, pt := range a.ProjectTypes {
		if strings.ToLower(strings.TrimSpace(pt)) == want {
			return true
		}
	}
	return false
}

// evalVariables resolves the assembly's own variables in declaration
// order, adding each to the map as it goes. Values may be numbers or
// formula strings over everything defined so far.
func (a *Assembly) evalVariables(vars map[string]float64) error {
	if a.Variables.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(a.Variables.Content); i += 2 {
		name := a.Variables.Content[i].Value
		valNode := a.Variables.Content[i+1]

		var num float64
		if err := valNode.Decode(&num); err == nil {
			vars[name] = num
			continue
		}
		var formula string
		if err := valNode.Decode(&formula); err != nil {
			return fmt.Errorf("variable %q: unsupported value", name)
		}
		v, err := Eval(formula, vars)
		if err != nil {
			return fmt.Errorf("variable %q: %w", name, err)
		}
		vars[name] = v
	}
	return nil
}
