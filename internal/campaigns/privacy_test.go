package campaigns

import (
	"testing"
	"time"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
)

func sampleCampaign(numOrgs, numIncidents int) *db.Campaign {
	return &db.Campaign{
		ID:                  "c-1",
		PrimaryAttackVector: db.VectorAIPhishing,
		AIComponents:        db.StringSlice{"LLM"},
		Sectors:             db.StringSlice{"health", "energy"},
		Regions:             db.StringSlice{"NA-East", "EU"},
		FirstSeen:           time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		LastSeen:            time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC),
		NumOrgs:             numOrgs,
		NumIncidents:        numIncidents,
		CanonicalSummary:    "AI-generated phishing wave",
	}
}

func TestApplyPrivacyRulesSuppressesBelowThreshold(t *testing.T) {
	for _, numOrgs := range []int{0, 1} {
		c := sampleCampaign(numOrgs, numOrgs)
		v := ApplyPrivacyRules(c)

		if len(v.Sectors) != 0 {
			t.Fatalf("num_orgs=%d: expected sectors suppressed, got %v", numOrgs, v.Sectors)
		}
		if len(v.Regions) != 0 {
			t.Fatalf("num_orgs=%d: expected regions suppressed, got %v", numOrgs, v.Regions)
		}
		if v.Sectors == nil || v.Regions == nil {
			t.Fatalf("suppressed attributes should be empty, not nil, for stable JSON output")
		}
	}
}

func TestApplyPrivacyRulesDisclosesAtThreshold(t *testing.T) {
	for _, numOrgs := range []int{2, 5} {
		c := sampleCampaign(numOrgs, numOrgs+1)
		v := ApplyPrivacyRules(c)

		if len(v.Sectors) != 2 || v.Sectors[0] != "health" || v.Sectors[1] != "energy" {
			t.Fatalf("num_orgs=%d: expected sectors disclosed, got %v", numOrgs, v.Sectors)
		}
		if len(v.Regions) != 2 {
			t.Fatalf("num_orgs=%d: expected regions disclosed, got %v", numOrgs, v.Regions)
		}
	}
}

func TestApplyPrivacyRulesPassesThroughOtherFields(t *testing.T) {
	c := sampleCampaign(1, 4)
	v := ApplyPrivacyRules(c)

	if v.ID != c.ID || v.PrimaryAttackVector != c.PrimaryAttackVector {
		t.Fatalf("identity fields must pass through unchanged")
	}
	if v.NumOrgs != 1 || v.NumIncidents != 4 {
		t.Fatalf("counters must pass through unchanged, got orgs=%d incidents=%d", v.NumOrgs, v.NumIncidents)
	}
	if !v.FirstSeen.Equal(c.FirstSeen) || !v.LastSeen.Equal(c.LastSeen) {
		t.Fatalf("timestamps must pass through unchanged")
	}
	if v.CanonicalSummary != c.CanonicalSummary {
		t.Fatalf("summary must pass through unchanged")
	}
	if len(v.AIComponents) != 1 || v.AIComponents[0] != "LLM" {
		t.Fatalf("ai_components must pass through even when suppressed, got %v", v.AIComponents)
	}
}

func TestApplyPrivacyRulesNeverMutatesCampaign(t *testing.T) {
	c := sampleCampaign(1, 1)
	v := ApplyPrivacyRules(c)

	// Growing the view's slices must not leak into the stored campaign.
	v.Sectors = append(v.Sectors, "finance")
	v.Regions = append(v.Regions, "APAC")
	v.AIComponents = append(v.AIComponents, "vector_db")

	if len(c.Sectors) != 2 || len(c.Regions) != 2 {
		t.Fatalf("stored campaign mutated: sectors=%v regions=%v", c.Sectors, c.Regions)
	}
	if len(c.AIComponents) != 1 {
		t.Fatalf("stored campaign components mutated: %v", c.AIComponents)
	}
}
