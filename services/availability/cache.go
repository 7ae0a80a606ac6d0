package availability

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hazqeelknight/events/models"
	"github.com/hazqeelknight/events/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	slotCacheKeyPrefix  = "availability:slots:"
	organizerSetPrefix  = "availability:organizer:"
	defaultCacheTTL     = time.Hour
	memoryStoreMaxItems = 512
)

// Fingerprint derives the deterministic cache key for a query. The invitee
// timezone set is normalized by sorting so equivalent requests coalesce.
func Fingerprint(query models.SlotQuery) string {
	timezones := append([]string(nil), query.InviteeTimezones...)
	sort.Strings(timezones)

	maxAttendees := "-"
	if query.MaxAttendees != nil {
		maxAttendees = fmt.Sprintf("%d", *query.MaxAttendees)
	}
	payload := strings.Join([]string{
		query.OrganizerID,
		query.EventTypeSlug,
		query.StartDate,
		query.EndDate,
		fmt.Sprintf("%d", query.DurationMinutes),
		strings.Join(timezones, ","),
		fmt.Sprintf("%d", query.AttendeeCount),
		maxAttendees,
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// ResultCache memoizes full computation results by request fingerprint.
// Backed by Redis; when Redis is unreachable it degrades to a process-local
// TTL store instead of failing requests. The cache is an optimization, never
// a source of truth.
type ResultCache struct {
	client *redis.Client // nil means in-process only
	ttl    time.Duration
	group  singleflight.Group
	memory *memoryStore
}

// NewResultCache builds a cache over the given Redis client. A nil client is
// allowed and keeps all entries in process memory.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ResultCache{
		client: client,
		ttl:    ttl,
		memory: newMemoryStore(ttl, memoryStoreMaxItems),
	}
}

// GetOrCompute returns the cached response for the query's fingerprint or
// runs compute exactly once per fingerprint, no matter how many callers ask
// concurrently: late callers attach to the in-flight computation and all
// receive the same result once it completes.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	query models.SlotQuery,
	compute func(ctx context.Context) (*models.CalculatedSlotsResponse, error),
) (*models.CalculatedSlotsResponse, bool, error) {
	fingerprint := Fingerprint(query)

	if cached, ok := c.lookup(ctx, fingerprint); ok {
		return cached, true, nil
	}

	result, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		// A racing caller may have filled the entry while we waited.
		if cached, ok := c.lookup(ctx, fingerprint); ok {
			return cached, nil
		}
		response, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, fingerprint, query.OrganizerID, response)
		return response, nil
	})
	if err != nil {
		return nil, false, err
	}
	return result.(*models.CalculatedSlotsResponse), false, nil
}

// Invalidate drops every cached entry belonging to the organizer. Called by
// the management layer on any rule/override/block/buffer write; TTL alone is
// only a staleness bound, never the correctness mechanism.
func (c *ResultCache) Invalidate(ctx context.Context, organizerID string) error {
	c.memory.invalidate(organizerID)

	if c.client == nil {
		return nil
	}
	setKey := organizerSetPrefix + organizerID
	fingerprints, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil {
		utils.GetLogger().Warn("availability cache: invalidation degraded, Redis unreachable",
			zap.String("organizerID", organizerID), zap.Error(err))
		return nil
	}
	keys := make([]string, 0, len(fingerprints)+1)
	for _, fp := range fingerprints {
		keys = append(keys, slotCacheKeyPrefix+fp)
	}
	keys = append(keys, setKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		utils.GetLogger().Warn("availability cache: failed to delete entries",
			zap.String("organizerID", organizerID), zap.Error(err))
	}
	return nil
}

// lookup fetches and decodes a cached envelope. A hit comes back with
// cache_hit set and zeroed computation time, per the response contract.
func (c *ResultCache) lookup(ctx context.Context, fingerprint string) (*models.CalculatedSlotsResponse, bool) {
	raw, ok := c.fetch(ctx, fingerprint)
	if !ok {
		return nil, false
	}
	var response models.CalculatedSlotsResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		utils.GetLogger().Warn("availability cache: dropping undecodable entry", zap.Error(err))
		return nil, false
	}
	response.CacheHit = true
	response.ComputationTimeMs = 0
	return &response, true
}

func (c *ResultCache) fetch(ctx context.Context, fingerprint string) ([]byte, bool) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, slotCacheKeyPrefix+fingerprint).Bytes()
		switch {
		case err == nil:
			return raw, true
		case err == redis.Nil:
			return nil, false
		default:
			utils.GetLogger().Warn("availability cache: Redis read failed, using in-process store", zap.Error(err))
		}
	}
	return c.memory.get(fingerprint)
}

func (c *ResultCache) store(ctx context.Context, fingerprint, organizerID string, response *models.CalculatedSlotsResponse) {
	raw, err := json.Marshal(response)
	if err != nil {
		utils.GetLogger().Error("availability cache: failed to encode response", zap.Error(err))
		return
	}

	if c.client != nil {
		pipe := c.client.TxPipeline()
		pipe.Set(ctx, slotCacheKeyPrefix+fingerprint, raw, c.ttl)
		pipe.SAdd(ctx, organizerSetPrefix+organizerID, fingerprint)
		pipe.Expire(ctx, organizerSetPrefix+organizerID, c.ttl)
		_, execErr := pipe.Exec(ctx)
		if execErr == nil {
			return
		}
		utils.GetLogger().Warn("availability cache: Redis write failed, using in-process store", zap.Error(execErr))
	}
	c.memory.set(fingerprint, organizerID, raw)
}

// memoryStore is the process-local fallback: a TTL map with a crude size
// bound, shared-nothing with Redis.
type memoryStore struct {
	mu          sync.Mutex
	ttl         time.Duration
	maxItems    int
	entries     map[string]memoryEntry
	byOrganizer map[string]map[string]struct{}
	now         func() time.Time
}

type memoryEntry struct {
	raw         []byte
	organizerID string
	expiresAt   time.Time
}

func newMemoryStore(ttl time.Duration, maxItems int) *memoryStore {
	return &memoryStore{
		ttl:         ttl,
		maxItems:    maxItems,
		entries:     make(map[string]memoryEntry),
		byOrganizer: make(map[string]map[string]struct{}),
		now:         time.Now,
	}
}

func (m *memoryStore) get(fingerprint string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[fingerprint]
	if !ok {
		return nil, false
	}
	if m.now().After(entry.expiresAt) {
		m.deleteLocked(fingerprint)
		return nil, false
	}
	return entry.raw, true
}

func (m *memoryStore) set(fingerprint, organizerID string, raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.maxItems {
		m.evictExpiredLocked()
	}
	if len(m.entries) >= m.maxItems {
		// Still full after sweeping: drop an arbitrary entry.
		for key := range m.entries {
			m.deleteLocked(key)
			break
		}
	}
	m.entries[fingerprint] = memoryEntry{
		raw:         raw,
		organizerID: organizerID,
		expiresAt:   m.now().Add(m.ttl),
	}
	if m.byOrganizer[organizerID] == nil {
		m.byOrganizer[organizerID] = make(map[string]struct{})
	}
	m.byOrganizer[organizerID][fingerprint] = struct{}{}
}

func (m *memoryStore) invalidate(organizerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for fingerprint := range m.byOrganizer[organizerID] {
		m.deleteLocked(fingerprint)
	}
}

func (m *memoryStore) deleteLocked(fingerprint string) {
	if entry, ok := m.entries[fingerprint]; ok {
		delete(m.entries, fingerprint)
		if set := m.byOrganizer[entry.organizerID]; set != nil {
			delete(set, fingerprint)
			if len(set) == 0 {
				delete(m.byOrganizer, entry.organizerID)
			}
		}
	}
}

func (m *memoryStore) evictExpiredLocked() {
	now := m.now()
	for fingerprint, entry := range m.entries {
		if now.After(entry.expiresAt) {
			m.deleteLocked(fingerprint)
		}
	}
}
