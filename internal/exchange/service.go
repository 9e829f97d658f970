package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/correlation"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/metrics"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/storage/redis"
)

// ErrEmptyLocalRef rejects submissions without a deduplication reference.
var ErrEmptyLocalRef = errors.New("local_ref must not be empty")

// Report is the submitted payload of an incident, before any identity or
// campaign assignment exists.
type Report struct {
	LocalRef     string
	TimeStart    time.Time
	TimeEnd      *time.Time
	AttackVector db.AttackVector
	AIComponents []string
	Techniques   []string
	IOCs         []db.IOC
	ImpactLevel  db.ImpactLevel
	Summary      string
}

type Store interface {
	GetOrganization(id string) (*db.Organization, error)
	GetIncidentByLocalRef(orgID, localRef string) (*db.Incident, error)
	UpdateIncidentPayload(inc *db.Incident) error
	ListIncidentsByOrg(orgID string, limit, offset int) ([]*db.Incident, error)
	// CreateIncidentInCampaign persists a new incident together with its
	// campaign assignment as one atomic unit. The incident is matched
	// against existing campaigns via match and attached to the first hit,
	// or to blank when nothing matches. The second return reports whether
	// blank was used. On error nothing is persisted.
	CreateIncidentInCampaign(inc *db.Incident, org *db.Organization, match func(*db.Campaign) bool, blank *db.Campaign) (*db.Campaign, bool, error)
}

type Service struct {
	store   Store
	matcher correlation.Matcher
	cache   *redis.Cache
	metrics *metrics.Collector
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires the submission pipeline. cache may be nil; now defaults to
// time.Now.
func NewService(store Store, matcher correlation.Matcher, cache *redis.Cache, collector *metrics.Collector, logger *zap.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   store,
		matcher: matcher,
		cache:   cache,
		metrics: collector,
		logger:  logger,
		now:     now,
	}
}

// Submit creates or updates the incident identified by (orgID, local_ref).
// A resubmission overwrites the report payload in place: the incident keeps
// its id and campaign assignment and no aggregate moves. Only a genuinely new
// incident enters campaign correlation.
func (s *Service) Submit(ctx context.Context, orgID string, report Report) (*db.Incident, bool, error) {
	if strings.TrimSpace(report.LocalRef) == "" {
		return nil, false, ErrEmptyLocalRef
	}

	org, err := s.store.GetOrganization(orgID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.store.GetIncidentByLocalRef(org.ID, report.LocalRef)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up incident: %w", err)
	}

	if existing != nil {
		applyReport(existing, report)
		existing.UpdatedAt = s.now()

		if err := s.store.UpdateIncidentPayload(existing); err != nil {
			return nil, false, fmt.Errorf("failed to update incident: %w", err)
		}

		s.metrics.RecordSubmission(false)
		s.logger.Info("Updated incident",
			zap.String("incident_id", existing.ID),
			zap.String("org_id", org.ID),
			zap.String("local_ref", existing.LocalRef),
		)
		return existing, false, nil
	}

	now := s.now()
	inc := &db.Incident{
		ID:        uuid.New().String(),
		OrgID:     org.ID,
		LocalRef:  report.LocalRef,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyReport(inc, report)

	// The blank campaign is only persisted when no existing campaign
	// matches; the store decides under its own lock.
	blank := &db.Campaign{
		ID:                  uuid.New().String(),
		PrimaryAttackVector: inc.AttackVector,
		AIComponents:        db.StringSlice{},
		Sectors:             db.StringSlice{},
		Regions:             db.StringSlice{},
		FirstSeen:           inc.TimeStart,
		LastSeen:            inc.TimeStart,
		NumOrgs:             0,
		NumIncidents:        0,
		CanonicalSummary:    inc.Summary,
		CreatedAt:           now,
	}

	campaign, created, err := s.store.CreateIncidentInCampaign(inc, org, func(c *db.Campaign) bool {
		return s.matcher.Matches(inc, c)
	}, blank)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create incident: %w", err)
	}

	if created {
		s.metrics.RecordCampaignCreated()
		s.logger.Info("Created campaign",
			zap.String("campaign_id", campaign.ID),
			zap.String("attack_vector", string(campaign.PrimaryAttackVector)),
		)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateCampaignList(ctx); err != nil {
			s.logger.Warn("failed to invalidate campaign cache", zap.Error(err))
		}
	}

	s.metrics.RecordSubmission(true)
	s.logger.Info("Created incident",
		zap.String("incident_id", inc.ID),
		zap.String("org_id", org.ID),
		zap.String("campaign_id", campaign.ID),
		zap.Int("campaign_orgs", campaign.NumOrgs),
		zap.Int("campaign_incidents", campaign.NumIncidents),
	)
	return inc, true, nil
}

// ListOwn returns an organization's own submissions, newest first.
func (s *Service) ListOwn(orgID string, limit, offset int) ([]*db.Incident, error) {
	return s.store.ListIncidentsByOrg(orgID, limit, offset)
}

func applyReport(inc *db.Incident, report Report) {
	inc.TimeStart = report.TimeStart
	inc.TimeEnd = report.TimeEnd
	inc.AttackVector = report.AttackVector
	inc.AIComponents = append(db.StringSlice{}, report.AIComponents...)
	inc.Techniques = append(db.StringSlice{}, report.Techniques...)
	inc.IOCs = append(db.IOCList{}, report.IOCs...)
	inc.ImpactLevel = report.ImpactLevel
	inc.Summary = report.Summary
}
