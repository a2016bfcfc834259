package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bloodlink/pkg/domain"
	"bloodlink/pkg/logger"
	"bloodlink/pkg/metrics"
)

const rankPrefix = "rank:"

// RankMode различает точное совпадение группы и совместимость
type RankMode string

const (
	RankExact      RankMode = "exact"
	RankCompatible RankMode = "compatible"
)

// RankKey ключ превью. version меняется при любом изменении реестра
// доноров, поэтому устаревшие записи просто перестают читаться.
func RankKey(mode RankMode, bt domain.BloodType, locationID string, version uint64) string {
	return fmt.Sprintf("%s%s:%s:%s:v%d", rankPrefix, mode, bt, locationID, version)
}

// RankCache кэш превью ранжирования доноров
type RankCache struct {
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewRankCache оборачивает cache; m может быть nil
func NewRankCache(c Cache, ttl time.Duration, m *metrics.Metrics) *RankCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RankCache{cache: c, ttl: ttl, metrics: m}
}

// Get возвращает (nil, false) при промахе. Ошибки хранилища и битые
// записи считаются промахом.
func (rc *RankCache) Get(ctx context.Context, key string) ([]domain.Candidate, bool) {
	data, err := rc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			logger.WithContext(ctx).Warn("Rank cache read failed", "key", key, "error", err)
		}
		rc.record(false)
		return nil, false
	}

	var candidates []domain.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		_ = rc.cache.Delete(ctx, key)
		rc.record(false)
		return nil, false
	}

	rc.record(true)
	return candidates, true
}

// Put сохраняет превью; ошибка записи только логируется
func (rc *RankCache) Put(ctx context.Context, key string, candidates []domain.Candidate) {
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		logger.WithContext(ctx).Warn("Rank cache encode failed", "key", key, "error", err)
		return
	}
	if err := rc.cache.Set(ctx, key, data, rc.ttl); err != nil {
		logger.WithContext(ctx).Warn("Rank cache write failed", "key", key, "error", err)
	}
}

// GetOrCompute читает превью или вычисляет и сохраняет его
func (rc *RankCache) GetOrCompute(ctx context.Context, key string, compute func() ([]domain.Candidate, error)) ([]domain.Candidate, bool, error) {
	if cached, ok := rc.Get(ctx, key); ok {
		return cached, true, nil
	}

	candidates, err := compute()
	if err != nil {
		return nil, false, err
	}
	rc.Put(ctx, key, candidates)
	return candidates, false, nil
}

// InvalidateAll удаляет все превью
func (rc *RankCache) InvalidateAll(ctx context.Context) (int64, error) {
	return rc.cache.DeleteByPattern(ctx, rankPrefix+"*")
}

func (rc *RankCache) record(hit bool) {
	if rc.metrics != nil {
		rc.metrics.RecordCacheLookup(hit)
	}
}
