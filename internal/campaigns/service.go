package campaigns

import (
	"context"

	"go.uber.org/zap"

	"github.com/doomdagadiggiedahdah/SentinelNet/internal/db"
	"github.com/doomdagadiggiedahdah/SentinelNet/internal/storage/redis"
)

type Store interface {
	ListCampaigns() ([]*db.Campaign, error)
	GetCampaign(id string) (*db.Campaign, error)
}

type Service struct {
	store  Store
	cache  *redis.Cache
	logger *zap.Logger
}

// NewService builds the campaign read service. cache may be nil, in which
// case every read goes to the store.
func NewService(store Store, cache *redis.Cache, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// List returns all campaigns in creation order, each passed through the
// privacy filter. The filtered list is identical for every caller, so a
// short-TTL shared cache is safe.
func (s *Service) List(ctx context.Context) ([]View, error) {
	if s.cache != nil {
		var cached []View
		if err := s.cache.GetCachedCampaignList(ctx, &cached); err == nil {
			return cached, nil
		}
	}

	campaigns, err := s.store.ListCampaigns()
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(campaigns))
	for _, c := range campaigns {
		views = append(views, ApplyPrivacyRules(c))
	}

	if s.cache != nil {
		if err := s.cache.CacheCampaignList(ctx, views); err != nil {
			s.logger.Warn("failed to cache campaign list", zap.Error(err))
		}
	}

	return views, nil
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	c, err := s.store.GetCampaign(id)
	if err != nil {
		return View{}, err
	}
	return ApplyPrivacyRules(c), nil
}
