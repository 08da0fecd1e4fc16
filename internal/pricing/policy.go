package pricing

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"jcwest/internal/domain"
)

// multiPolicyDoc is the outer shape of a multi-region policy document.
// Regions stays a yaml.Node so declaration order survives decoding; the
// first declared region is the fallback of last resort.
type multiPolicyDoc struct {
	DefaultRegion string    `yaml:"default_region"`
	Regions       yaml.Node `yaml:"regions"`
}

// ResolvePolicy decodes a policy document and selects the sub-policy for
// the requested region. Single-region documents ignore the region
// argument. For multi-region documents the requested region wins, then
// the declared default_region, then the first declared region. A region
// miss is never fatal.
func ResolvePolicy(data []byte, region string) (*domain.Policy, error) {
	var outer multiPolicyDoc
	if err := yaml.Unmarshal(data, &outer); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPolicyInvalid, err)
	}

	if outer.Regions.Kind != yaml.MappingNode {
		var p domain.Policy
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPolicyInvalid, err)
		}
		return finishPolicy(&p, p.Region)
	}

	names, policies, err := decodeRegions(&outer.Regions)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: regions map is empty", domain.ErrPolicyInvalid)
	}

	want := strings.ToLower(strings.TrimSpace(region))
	if want == "" {
		want = strings.ToLower(strings.TrimSpace(outer.DefaultRegion))
	}
	for i, name := range names {
		if strings.ToLower(name) == want {
			return finishPolicy(policies[i], name)
		}
	}
	if def := strings.ToLower(strings.TrimSpace(outer.DefaultRegion)); def != "" && def != want {
		for i, name := range names {
			if strings.ToLower(name) == def {
				return finishPolicy(policies[i], name)
			}
		}
	}
	return finishPolicy(policies[0], names[0])
}

func decodeRegions(node *yaml.Node) ([]string, []*domain.Policy, error) {
	var names []string
	var policies []*domain.Policy
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var p domain.Policy
		if err := node.Content[i+1].Decode(&p); err != nil {
			return nil, nil, fmt.Errorf("%w: region %q: %v", domain.ErrPolicyInvalid, name, err)
		}
		names = append(names, name)
		policies = append(policies, &p)
	}
	return names, policies, nil
}

func finishPolicy(p *domain.Policy, region string) (*domain.Policy, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%w: policy_id is required", domain.ErrPolicyInvalid)
	}
	if p.Region == "" {
		p.Region = region
	}
	if len(p.ResolutionOrder) == 0 {
		p.ResolutionOrder = append([]string(nil), domain.DefaultResolutionOrder...)
	}
	return p, nil
}

// LoadPolicy reads and resolves a policy file for the given region.
func LoadPolicy(path, region string) (*domain.Policy, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading policy %s: %w", path, err)
	}
	p, err := ResolvePolicy(data, region)
	if err != nil {
		return nil, nil, err
	}
	return p, data, nil
}
