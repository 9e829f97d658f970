package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

type Repository struct {
	db *sqlx.DB
}

func NewConnection(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping() error {
	return r.db.Ping()
}

// Organization operations
func (r *Repository) CreateOrganization(org *Organization) error {
	query := `
        INSERT INTO organizations (
            id, display_name, sector, region, api_key_hash,
            query_budget, budget_reset_at, created_at
        ) VALUES (
            :id, :display_name, :sector, :region, :api_key_hash,
            :query_budget, :budget_reset_at, :created_at
        )`

	_, err := r.db.NamedExec(query, org)
	return err
}

func (r *Repository) GetOrganization(id string) (*Organization, error) {
	var org Organization
	query := `SELECT * FROM organizations WHERE id = $1`
	err := r.db.Get(&org, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("organization %s: %w", id, ErrNotFound)
	}
	return &org, err
}

// GetOrganizationByAPIKeyHash resolves a presented credential. The hash column
// carries a unique index, so a colliding credential fails at provisioning time
// instead of silently matching the wrong organization here.
func (r *Repository) GetOrganizationByAPIKeyHash(hash string) (*Organization, error) {
	var org Organization
	query := `SELECT * FROM organizations WHERE api_key_hash = $1`
	err := r.db.Get(&org, query, hash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return &org, err
}

// Incident operations
func (r *Repository) GetIncidentByLocalRef(orgID, localRef string) (*Incident, error) {
	var inc Incident
	query := `SELECT * FROM incidents WHERE org_id = $1 AND local_ref = $2`
	err := r.db.Get(&inc, query, orgID, localRef)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return &inc, err
}

// UpdateIncidentPayload overwrites the mutable report fields of an existing
// incident. The id, org, local_ref and campaign assignment are never touched.
func (r *Repository) UpdateIncidentPayload(inc *Incident) error {
	query := `
        UPDATE incidents SET
            time_start = :time_start,
            time_end = :time_end,
            attack_vector = :attack_vector,
            ai_components = :ai_components,
            techniques = :techniques,
            iocs = :iocs,
            impact_level = :impact_level,
            summary = :summary,
            updated_at = :updated_at
        WHERE id = :id`

	_, err := r.db.NamedExec(query, inc)
	return err
}

func (r *Repository) ListIncidentsByOrg(orgID string, limit, offset int) ([]*Incident, error) {
	incidents := []*Incident{}
	query := `
        SELECT * FROM incidents
        WHERE org_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	err := r.db.Select(&incidents, query, orgID, limit, offset)
	return incidents, err
}

// Campaign operations
func (r *Repository) ListCampaigns() ([]*Campaign, error) {
	campaigns := []*Campaign{}
	query := `SELECT * FROM campaigns ORDER BY created_at ASC, id ASC`
	err := r.db.Select(&campaigns, query)
	return campaigns, err
}

func (r *Repository) GetCampaign(id string) (*Campaign, error) {
	var c Campaign
	query := `SELECT * FROM campaigns WHERE id = $1`
	err := r.db.Get(&c, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("campaign %s: %w", id, ErrNotFound)
	}
	return &c, err
}

// correlationLockKey serializes campaign correlation. Matching a new incident
// against the campaign set and creating a campaign on a miss is one
// read-modify-write over the whole set, so concurrent submissions must not
// interleave between the miss and the insert.
const correlationLockKey int64 = 0x53454e544e4554

// CreateIncidentInCampaign stores a new incident and its campaign assignment
// in a single transaction: the incident is inserted, matched against the
// existing campaigns via match, attached to the first hit or to blank when
// nothing matches, and the campaign aggregates are updated. Either everything
// commits or nothing does, so no incident is ever left unassigned and no
// campaign is ever visible with zero incidents.
func (r *Repository) CreateIncidentInCampaign(inc *Incident, org *Organization, match func(*Campaign) bool, blank *Campaign) (*Campaign, bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock($1)`, correlationLockKey); err != nil {
		return nil, false, err
	}

	insertIncident := `
        INSERT INTO incidents (
            id, org_id, local_ref, time_start, time_end, attack_vector,
            ai_components, techniques, iocs, impact_level, summary,
            campaign_id, created_at, updated_at
        ) VALUES (
            :id, :org_id, :local_ref, :time_start, :time_end, :attack_vector,
            :ai_components, :techniques, :iocs, :impact_level, :summary,
            :campaign_id, :created_at, :updated_at
        )`
	if _, err := tx.NamedExec(insertIncident, inc); err != nil {
		return nil, false, err
	}

	campaigns := []*Campaign{}
	if err := tx.Select(&campaigns, `SELECT * FROM campaigns ORDER BY created_at ASC, id ASC`); err != nil {
		return nil, false, err
	}

	var c *Campaign
	for _, existing := range campaigns {
		if match(existing) {
			c = existing
			break
		}
	}

	created := false
	if c == nil {
		c = blank
		created = true
		insertCampaign := `
        INSERT INTO campaigns (
            id, primary_attack_vector, ai_components, sectors, regions,
            first_seen, last_seen, num_orgs, num_incidents,
            canonical_summary, created_at
        ) VALUES (
            :id, :primary_attack_vector, :ai_components, :sectors, :regions,
            :first_seen, :last_seen, :num_orgs, :num_incidents,
            :canonical_summary, :created_at
        )`
		if _, err := tx.NamedExec(insertCampaign, c); err != nil {
			return nil, false, err
		}
	}

	// num_orgs counts distinct contributors, so it only moves on the first
	// incident an organization brings to this campaign.
	var hasOrg bool
	err = tx.Get(&hasOrg,
		`SELECT EXISTS(SELECT 1 FROM incidents WHERE campaign_id = $1 AND org_id = $2)`,
		c.ID, org.ID)
	if err != nil {
		return nil, false, err
	}

	c.NumIncidents++
	if !hasOrg {
		c.NumOrgs++
	}
	if !c.Sectors.Contains(string(org.Sector)) {
		c.Sectors = append(c.Sectors, string(org.Sector))
	}
	if !c.Regions.Contains(string(org.Region)) {
		c.Regions = append(c.Regions, string(org.Region))
	}
	for _, comp := range inc.AIComponents {
		if !c.AIComponents.Contains(comp) {
			c.AIComponents = append(c.AIComponents, comp)
		}
	}
	if inc.TimeStart.Before(c.FirstSeen) {
		c.FirstSeen = inc.TimeStart
	}
	if inc.TimeStart.After(c.LastSeen) {
		c.LastSeen = inc.TimeStart
	}

	updateCampaign := `
        UPDATE campaigns SET
            ai_components = :ai_components,
            sectors = :sectors,
            regions = :regions,
            first_seen = :first_seen,
            last_seen = :last_seen,
            num_orgs = :num_orgs,
            num_incidents = :num_incidents
        WHERE id = :id`

	if _, err := tx.NamedExec(updateCampaign, c); err != nil {
		return nil, false, err
	}

	if _, err := tx.Exec(`UPDATE incidents SET campaign_id = $1 WHERE id = $2`, c.ID, inc.ID); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	inc.CampaignID = &c.ID
	return c, created, nil
}

// UpdateBudget runs fn against an organization's budget fields while holding a
// row lock, so the reset-check-decrement sequence is atomic per organization.
// An error from fn rolls the transaction back and is returned unchanged.
func (r *Repository) UpdateBudget(orgID string, fn func(remaining int, resetAt time.Time) (int, time.Time, error)) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var row struct {
		QueryBudget   int       `db:"query_budget"`
		BudgetResetAt time.Time `db:"budget_reset_at"`
	}
	err = tx.Get(&row, `SELECT query_budget, budget_reset_at FROM organizations WHERE id = $1 FOR UPDATE`, orgID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("organization %s: %w", orgID, ErrNotFound)
	}
	if err != nil {
		return err
	}

	remaining, resetAt, err := fn(row.QueryBudget, row.BudgetResetAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`UPDATE organizations SET query_budget = $1, budget_reset_at = $2 WHERE id = $3`,
		remaining, resetAt, orgID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetBudget(orgID string) (int, time.Time, error) {
	var row struct {
		QueryBudget   int       `db:"query_budget"`
		BudgetResetAt time.Time `db:"budget_reset_at"`
	}
	err := r.db.Get(&row, `SELECT query_budget, budget_reset_at FROM organizations WHERE id = $1`, orgID)
	if err == sql.ErrNoRows {
		return 0, time.Time{}, fmt.Errorf("organization %s: %w", orgID, ErrNotFound)
	}
	return row.QueryBudget, row.BudgetResetAt, err
}
