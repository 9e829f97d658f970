package campaigns

import (
	"time"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
)

// MinOrgsForDisclosure is the k in the k-anonymity rule: sector and region
// information is only disclosed once this many distinct organizations have
// contributed to a campaign.
const MinOrgsForDisclosure = 2

// View is the external representation of a campaign after privacy rules.
type View struct {
	ID                  string          `json:"id"`
	PrimaryAttackVector db.AttackVector `json:"primary_attack_vector"`
	AIComponents        []string        `json:"ai_components"`
	Sectors             []string        `json:"sectors"`
	Regions             []string        `json:"regions"`
	FirstSeen           time.Time       `json:"first_seen"`
	LastSeen            time.Time       `json:"last_seen"`
	NumOrgs             int             `json:"num_orgs"`
	NumIncidents        int             `json:"num_incidents"`
	CanonicalSummary    string          `json:"canonical_summary"`
}

// ApplyPrivacyRules shapes a campaign for external consumption. With fewer
// than MinOrgsForDisclosure contributors the sector and region attributes are
// suppressed, since they would identify the single contributor rather than
// describe aggregate activity. The stored campaign is never modified.
func ApplyPrivacyRules(c *db.Campaign) View {
	v := View{
		ID:                  c.ID,
		PrimaryAttackVector: c.PrimaryAttackVector,
		AIComponents:        append([]string{}, c.AIComponents...),
		Sectors:             []string{},
		Regions:             []string{},
		FirstSeen:           c.FirstSeen,
		LastSeen:            c.LastSeen,
		NumOrgs:             c.NumOrgs,
		NumIncidents:        c.NumIncidents,
		CanonicalSummary:    c.CanonicalSummary,
	}

	if c.NumOrgs >= MinOrgsForDisclosure {
		v.Sectors = append(v.Sectors, c.Sectors...)
		v.Regions = append(v.Regions, c.Regions...)
	}

	return v
}
