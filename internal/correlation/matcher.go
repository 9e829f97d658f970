package correlation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
)

// Matcher decides whether a new report belongs to an existing campaign. The
// aggregation pipeline only depends on this predicate; the matching algorithm
// behind it can be swapped without touching counter maintenance.
type Matcher interface {
	Matches(inc *db.Incident, c *db.Campaign) bool
}

// Rules configure the default matcher.
type Rules struct {
	// MatchAttackVector requires the report's attack vector to equal the
	// campaign's primary vector.
	MatchAttackVector bool `yaml:"match_attack_vector"`
	// MinComponentOverlap additionally requires at least this many shared
	// AI components between report and campaign. Zero disables the check.
	MinComponentOverlap int `yaml:"min_component_overlap"`
}

// DefaultRules matches on attack vector only.
func DefaultRules() Rules {
	return Rules{MatchAttackVector: true}
}

// LoadRules reads matcher configuration from a YAML file. A missing file is
// not an error; the defaults apply.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRules(), nil
		}
		return Rules{}, fmt.Errorf("failed to read correlation rules: %w", err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse correlation rules: %w", err)
	}
	return rules, nil
}

type RuleMatcher struct {
	rules Rules
}

func NewRuleMatcher(rules Rules) *RuleMatcher {
	return &RuleMatcher{rules: rules}
}

func (m *RuleMatcher) Matches(inc *db.Incident, c *db.Campaign) bool {
	if m.rules.MatchAttackVector && inc.AttackVector != c.PrimaryAttackVector {
		return false
	}

	if m.rules.MinComponentOverlap > 0 {
		overlap := 0
		for _, comp := range inc.AIComponents {
			if c.AIComponents.Contains(comp) {
				overlap++
			}
		}
		if overlap < m.rules.MinComponentOverlap {
			return false
		}
	}

	return true
}
