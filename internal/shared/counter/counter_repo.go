package counter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const regionCounterKeyPrefix = "grossnet:stats:region:"

func regionKey(region int) string {
	return regionCounterKeyPrefix + strconv.Itoa(region)
}

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	IncrementRegion(ctx context.Context, region int) (int64, error)
	RegionCounts(ctx context.Context, regions []int) (map[int]int64, error)
}

type repository struct {
	rdb *redis.Client
}

func NewRepository(rdb *redis.Client) Repository {
	return &repository{rdb: rdb}
}

// IncrementRegion bumps the per-region calculation counter. INCR is atomic
// so concurrent consumers never lose a count.
func (r *repository) IncrementRegion(ctx context.Context, region int) (int64, error) {
	val, err := r.rdb.Incr(ctx, regionKey(region)).Result()
	if err != nil {
		return 0, fmt.Errorf("increment region counter: %w", err)
	}
	return val, nil
}

func (r *repository) RegionCounts(ctx context.Context, regions []int) (map[int]int64, error) {
	counts := make(map[int]int64, len(regions))

	for _, region := range regions {
		val, err := r.rdb.Get(ctx, regionKey(region)).Int64()
		if err == redis.Nil {
			counts[region] = 0
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read region counter: %w", err)
		}
		counts[region] = val
	}

	return counts, nil
}
