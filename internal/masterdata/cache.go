package masterdata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const profileCacheKey = "fieldline:company_profile"

// CachedRepository fronts a Repository with a Redis cache for the
// company profile, which is read on every document render. All other
// calls pass through.
type CachedRepository struct {
	Repository
	client *redis.Client
	ttl    time.Duration
}

func NewCachedRepository(repo Repository, client *redis.Client, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRepository{Repository: repo, client: client, ttl: ttl}
}

func (c *CachedRepository) GetCompanyProfile(ctx context.Context) (CompanyProfile, error) {
	if raw, err := c.client.Get(ctx, profileCacheKey).Bytes(); err == nil {
		var profile CompanyProfile
		if json.Unmarshal(raw, &profile) == nil {
			return profile, nil
		}
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return CompanyProfile{}, ctx.Err()
	}

	profile, err := c.Repository.GetCompanyProfile(ctx)
	if err != nil {
		return CompanyProfile{}, err
	}
	if raw, err := json.Marshal(profile); err == nil {
		c.client.Set(ctx, profileCacheKey, raw, c.ttl)
	}
	return profile, nil
}

func (c *CachedRepository) UpdateCompanyProfile(ctx context.Context, profile CompanyProfile) error {
	if err := c.Repository.UpdateCompanyProfile(ctx, profile); err != nil {
		return err
	}
	c.client.Del(ctx, profileCacheKey)
	return nil
}
