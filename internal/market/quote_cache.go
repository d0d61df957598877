package market

import (
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// PriceSource supplies current aggregates for a set of items.
type PriceSource interface {
	FetchAggregates(typeIDs []int64) (map[int64]Aggregate, error)
}

// CachedPriceSource wraps a PriceSource with a short TTL cache and
// singleflight so overlapping scopes within one run hit the upstream once
// per distinct ID set.
type CachedPriceSource struct {
	src   PriceSource
	cache *gocache.Cache
	group singleflight.Group
}

// NewCachedPriceSource caches upstream responses for ttl.
func NewCachedPriceSource(src PriceSource, ttl time.Duration) *CachedPriceSource {
	return &CachedPriceSource{
		src:   src,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// FetchAggregates returns cached aggregates when fresh, otherwise fetches
// from the upstream source exactly once per in-flight key.
func (c *CachedPriceSource) FetchAggregates(typeIDs []int64) (map[int64]Aggregate, error) {
	key := cacheKey(typeIDs)

	if v, ok := c.cache.Get(key); ok {
		return v.(map[int64]Aggregate), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
		aggs, err := c.src.FetchAggregates(typeIDs)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, aggs)
		return aggs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[int64]Aggregate), nil
}

func cacheKey(typeIDs []int64) string {
	var b strings.Builder
	for i, id := range typeIDs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}
