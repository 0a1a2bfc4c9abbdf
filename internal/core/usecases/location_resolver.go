package usecases

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/ports"
)

const locationCacheSize = 4096

// LocationResolver resolves location pointers for the map projector and
// serves location search. Resolved locations are kept in an in-process LRU.
type LocationResolver struct {
	locations ports.LocationRepository
	cache     *lru.Cache[string, domain.Location]
	lists     ports.CacheService
	publisher ports.EventPublisher
}

// NewLocationResolver creates a LocationResolver. lists is the shared cache
// holding job and event lists; it and publisher may be nil.
func NewLocationResolver(locations ports.LocationRepository, lists ports.CacheService, publisher ports.EventPublisher) (*LocationResolver, error) {
	cache, err := lru.New[string, domain.Location](locationCacheSize)
	if err != nil {
		return nil, fmt.Errorf("location cache: %w", err)
	}
	return &LocationResolver{locations: locations, cache: cache, lists: lists, publisher: publisher}, nil
}

// Lookup implements mapsync.LocationLookup. Only ids missing from the LRU hit
// the repository, in one batch; unknown ids are absent from the result.
func (r *LocationResolver) Lookup(ctx context.Context, ids []string) (map[string]*domain.Location, error) {
	out := make(map[string]*domain.Location, len(ids))
	var missing []string
	for _, id := range ids {
		if loc, ok := r.cache.Get(id); ok {
			l := loc
			out[id] = &l
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	locs, err := r.locations.GetByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("resolve locations: %w", err)
	}
	for i := range locs {
		r.cache.Add(locs[i].ID, locs[i])
		out[locs[i].ID] = &locs[i]
	}
	return out, nil
}

// Search finds locations by name.
func (r *LocationResolver) Search(ctx context.Context, name string, limit int) ([]domain.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	return r.locations.Search(ctx, name, clampLimit(limit, 20, 50))
}

// Save stores a location and refreshes its cached copy. Updating an existing
// location retires the cached job and event lists that join it and announces
// a change of both kinds so open maps re-project.
func (r *LocationResolver) Save(ctx context.Context, loc *domain.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	existing := loc.ID != ""
	if err := r.locations.Save(ctx, loc); err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	r.Forget(loc.ID)
	if !existing {
		return nil
	}

	retireLists(ctx, r.lists, jobsPrefix)
	retireLists(ctx, r.lists, eventsPrefix)
	publishChange(ctx, r.publisher, domain.FeatureKindJob, loc.ID, domain.ChangeSaved)
	publishChange(ctx, r.publisher, domain.FeatureKindEvent, loc.ID, domain.ChangeSaved)
	return nil
}

// Forget evicts id from the cache.
func (r *LocationResolver) Forget(id string) {
	r.cache.Remove(id)
}
