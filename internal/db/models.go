package db

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

type Sector string

const (
	SectorHealth        Sector = "health"
	SectorEnergy        Sector = "energy"
	SectorFinance       Sector = "finance"
	SectorGovernment    Sector = "government"
	SectorEducation     Sector = "education"
	SectorTechnology    Sector = "technology"
	SectorManufacturing Sector = "manufacturing"
	SectorRetail        Sector = "retail"
	SectorOther         Sector = "other"
)

type Region string

const (
	RegionNAEast Region = "NA-East"
	RegionNAWest Region = "NA-West"
	RegionEU     Region = "EU"
	RegionAPAC   Region = "APAC"
	RegionLATAM  Region = "LATAM"
	RegionMEA    Region = "MEA"
	RegionOther  Region = "other"
)

type AttackVector string

const (
	VectorAIPhishing        AttackVector = "ai_phishing"
	VectorDeepfakeVoice     AttackVector = "deepfake_voice"
	VectorDeepfakeVideo     AttackVector = "deepfake_video"
	VectorPromptInjection   AttackVector = "prompt_injection"
	VectorModelPoisoning    AttackVector = "model_poisoning"
	VectorAutomatedRecon    AttackVector = "automated_recon"
	VectorSyntheticIdentity AttackVector = "synthetic_identity"
	VectorOther             AttackVector = "other"
)

type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "low"
	ImpactMedium   ImpactLevel = "medium"
	ImpactHigh     ImpactLevel = "high"
	ImpactCritical ImpactLevel = "critical"
)

type Organization struct {
	ID            string    `json:"id" db:"id"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	Sector        Sector    `json:"sector" db:"sector"`
	Region        Region    `json:"region" db:"region"`
	APIKeyHash    string    `json:"-" db:"api_key_hash"`
	QueryBudget   int       `json:"query_budget" db:"query_budget"`
	BudgetResetAt time.Time `json:"budget_reset_at" db:"budget_reset_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type IOC struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Incident struct {
	ID           string       `json:"id" db:"id"`
	OrgID        string       `json:"org_id" db:"org_id"`
	LocalRef     string       `json:"local_ref" db:"local_ref"`
	TimeStart    time.Time    `json:"time_start" db:"time_start"`
	TimeEnd      *time.Time   `json:"time_end,omitempty" db:"time_end"`
	AttackVector AttackVector `json:"attack_vector" db:"attack_vector"`
	AIComponents StringSlice  `json:"ai_components" db:"ai_components"`
	Techniques   StringSlice  `json:"techniques" db:"techniques"`
	IOCs         IOCList      `json:"iocs" db:"iocs"`
	ImpactLevel  ImpactLevel  `json:"impact_level" db:"impact_level"`
	Summary      string       `json:"summary" db:"summary"`
	CampaignID   *string      `json:"campaign_id,omitempty" db:"campaign_id"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

type Campaign struct {
	ID                  string       `json:"id" db:"id"`
	PrimaryAttackVector AttackVector `json:"primary_attack_vector" db:"primary_attack_vector"`
	AIComponents        StringSlice  `json:"ai_components" db:"ai_components"`
	Sectors             StringSlice  `json:"sectors" db:"sectors"`
	Regions             StringSlice  `json:"regions" db:"regions"`
	FirstSeen           time.Time    `json:"first_seen" db:"first_seen"`
	LastSeen            time.Time    `json:"last_seen" db:"last_seen"`
	NumOrgs             int          `json:"num_orgs" db:"num_orgs"`
	NumIncidents        int          `json:"num_incidents" db:"num_incidents"`
	CanonicalSummary    string       `json:"canonical_summary" db:"canonical_summary"`
	CreatedAt           time.Time    `json:"created_at" db:"created_at"`
}

// Custom types for PostgreSQL JSONB columns
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	return json.Unmarshal(value.([]byte), s)
}

// Contains reports whether v is already present.
func (s StringSlice) Contains(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

type IOCList []IOC

func (l IOCList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *IOCList) Scan(value interface{}) error {
	if value == nil {
		*l = IOCList{}
		return nil
	}
	return json.Unmarshal(value.([]byte), l)
}
