// Cardmarket - Trading Card Marketplace Inventory Availability
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cardmarket

package availability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cardmarket/internal/cache"
	"github.com/tomtom215/cardmarket/internal/commerce"
	"github.com/tomtom215/cardmarket/internal/config"
	"github.com/tomtom215/cardmarket/internal/models"
)

// spyUpstream is a programmable Upstream that records every call.
type spyUpstream struct {
	mu          sync.Mutex
	records     map[string]models.InventoryRecord
	errs        map[string]error
	calls       map[string]int
	delay       time.Duration
	inFlight    int
	maxInFlight int
	pingErr     error
	state       models.BreakerState
}

func newSpyUpstream() *spyUpstream {
	return &spyUpstream{
		records: make(map[string]models.InventoryRecord),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
		state:   models.BreakerClosed,
	}
}

func (u *spyUpstream) set(rec models.InventoryRecord) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records[rec.VariantID] = rec
	delete(u.errs, rec.VariantID)
}

func (u *spyUpstream) fail(variantID string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errs[variantID] = err
}

func (u *spyUpstream) FetchOne(ctx context.Context, variantID string) (*models.InventoryRecord, error) {
	u.mu.Lock()
	u.calls[variantID]++
	u.inFlight++
	if u.inFlight > u.maxInFlight {
		u.maxInFlight = u.inFlight
	}
	delay := u.delay
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.inFlight--
		u.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if err, ok := u.errs[variantID]; ok {
		return nil, err
	}
	rec, ok := u.records[variantID]
	if !ok {
		return nil, &commerce.UpstreamError{Endpoint: commerce.EndpointStore, Status: http.StatusNotFound, Message: "not found"}
	}
	rec.FetchedAt = time.Now().UTC()
	return &rec, nil
}

func (u *spyUpstream) Ping(context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.pingErr
}

func (u *spyUpstream) State() models.BreakerState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *spyUpstream) LastError() string { return "" }

func (u *spyUpstream) callsFor(variantID string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[variantID]
}

func (u *spyUpstream) totalCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, c := range u.calls {
		n += c
	}
	return n
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Backend:    config.CacheBackendMemory,
		KeyVersion: "v1",
		TTL:        30 * time.Second,
		BatchTTL:   15 * time.Second,
		StaleTTL:   10 * time.Minute,
	}
}

func newTestService(t *testing.T, upstream Upstream) (*Service, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, upstream, testCacheConfig(), config.BatchConfig{Concurrency: 5}), store
}

func stocked(id string, total, reserved int, backorder bool) models.InventoryRecord {
	return models.InventoryRecord{
		VariantID:        id,
		TotalQuantity:    total,
		ReservedQuantity: reserved,
		IsManaged:        true,
		AllowsBackorder:  backorder,
		LocationBreakdown: []models.LocationLevel{
			{LocationID: "loc_main", Stocked: total, Reserved: reserved},
		},
	}
}

var errTimeout = &commerce.UpstreamError{Endpoint: commerce.EndpointStore, Message: "request failed", Err: context.DeadlineExceeded}

func assertConservative(t *testing.T, res models.AvailabilityResult) {
	t.Helper()
	if res.Available || res.AvailableQuantity != 0 || res.CanBackorder || !res.IsManaged {
		t.Errorf("result = %+v, want conservative default", res)
	}
	if res.Source != models.SourceFallback {
		t.Errorf("Source = %q, want fallback", res.Source)
	}
}

func TestCheckOneScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		record        models.InventoryRecord
		wantAvailable bool
		wantQty       int
		wantBackorder bool
	}{
		{name: "ten stocked three reserved", record: stocked("v1", 10, 3, false), wantAvailable: true, wantQty: 7},
		{name: "empty but backorderable", record: stocked("v2", 0, 0, true), wantAvailable: true, wantQty: 0, wantBackorder: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			upstream := newSpyUpstream()
			upstream.set(tt.record)
			svc, _ := newTestService(t, upstream)

			res := svc.CheckOne(context.Background(), tt.record.VariantID, DefaultOptions())
			if res.Available != tt.wantAvailable || res.AvailableQuantity != tt.wantQty || res.CanBackorder != tt.wantBackorder {
				t.Errorf("result = %+v", res)
			}
			if res.Source != models.SourceUpstream {
				t.Errorf("Source = %q, want upstream", res.Source)
			}
			if res.LocationBreakdown != nil {
				t.Error("locations returned without being requested")
			}
		})
	}
}

func TestCheckOneTimeoutWithoutCache(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.fail("v1", errTimeout)
	svc, _ := newTestService(t, upstream)

	res := svc.CheckOne(context.Background(), "v1", DefaultOptions())
	assertConservative(t, res)
	if res.VariantID != "v1" {
		t.Errorf("VariantID = %q", res.VariantID)
	}
}

func TestCheckOneCacheHitSkipsUpstream(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 5, 1, false))
	svc, _ := newTestService(t, upstream)
	ctx := context.Background()

	first := svc.CheckOne(ctx, "v1", DefaultOptions())
	second := svc.CheckOne(ctx, "v1", DefaultOptions())

	if got := upstream.callsFor("v1"); got != 1 {
		t.Fatalf("upstream calls = %d, want 1", got)
	}
	if second.Source != models.SourceCache {
		t.Errorf("Source = %q, want cache", second.Source)
	}
	if first.AvailableQuantity != second.AvailableQuantity ||
		first.Available != second.Available ||
		!first.LastChecked.Equal(second.LastChecked) {
		t.Errorf("cached result %+v differs from fetched %+v", second, first)
	}
}

func TestCheckOneIncludeLocationsFromCache(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 5, 1, false))
	svc, _ := newTestService(t, upstream)
	ctx := context.Background()

	_ = svc.CheckOne(ctx, "v1", DefaultOptions())
	res := svc.CheckOne(ctx, "v1", Options{UseCache: true, IncludeLocations: true})

	if res.Source != models.SourceCache {
		t.Fatalf("Source = %q, want cache", res.Source)
	}
	if len(res.LocationBreakdown) != 1 {
		t.Errorf("LocationBreakdown = %+v, want one location", res.LocationBreakdown)
	}
}

func TestCheckOneBypassCache(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 5, 0, false))
	svc, _ := newTestService(t, upstream)
	ctx := context.Background()

	_ = svc.CheckOne(ctx, "v1", DefaultOptions())
	res := svc.CheckOne(ctx, "v1", Options{UseCache: false})

	if got := upstream.callsFor("v1"); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
	if res.Source != models.SourceUpstream {
		t.Errorf("Source = %q, want upstream", res.Source)
	}
}

func TestCheckOneServesStaleAfterExpiry(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 8, 2, false))

	store := cache.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	cfg := testCacheConfig()
	cfg.TTL = 20 * time.Millisecond
	svc := NewService(store, upstream, cfg, config.BatchConfig{Concurrency: 5})
	ctx := context.Background()

	_ = svc.CheckOne(ctx, "v1", DefaultOptions())
	time.Sleep(50 * time.Millisecond)

	upstream.fail("v1", errTimeout)
	res := svc.CheckOne(ctx, "v1", DefaultOptions())

	if res.Source != models.SourceStale {
		t.Fatalf("Source = %q, want stale", res.Source)
	}
	if res.AvailableQuantity != 6 || !res.Available {
		t.Errorf("stale result = %+v", res)
	}
}

func TestCheckOneFailureWithBypassUsesFreshEntry(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 3, 0, false))
	svc, _ := newTestService(t, upstream)
	ctx := context.Background()

	_ = svc.CheckOne(ctx, "v1", DefaultOptions())
	upstream.fail("v1", commerce.ErrBreakerOpen)

	res := svc.CheckOne(ctx, "v1", Options{UseCache: false})
	if res.Source != models.SourceStale || res.AvailableQuantity != 3 {
		t.Errorf("result = %+v, want previous answer served as stale", res)
	}
}

func TestInvalidateForcesFreshFetch(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 5, 0, false))
	svc, store := newTestService(t, upstream)
	ctx := context.Background()

	_ = svc.CheckOne(ctx, "v1", DefaultOptions())
	upstream.set(stocked("v1", 5, 5, false))

	n, err := svc.Invalidate(ctx, []string{"v1", "v1"})
	if err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Invalidate() = %d, want 1 distinct id", n)
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d keys after invalidate, want 0", store.Len())
	}

	res := svc.CheckOne(ctx, "v1", DefaultOptions())
	if res.Source != models.SourceUpstream {
		t.Errorf("Source = %q, want upstream", res.Source)
	}
	if res.Available || res.AvailableQuantity != 0 {
		t.Errorf("result = %+v, want reservation reflected", res)
	}
	if got := upstream.callsFor("v1"); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestInvalidateAfterFailureDoesNotServeOldValue(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 5, 0, false))
	svc, _ := newTestService(t, upstream)
	ctx := context.Background()

	_ = svc.CheckOne(ctx, "v1", DefaultOptions())
	if _, err := svc.Invalidate(ctx, []string{"v1"}); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	upstream.fail("v1", errTimeout)

	assertConservative(t, svc.CheckOne(ctx, "v1", DefaultOptions()))
}

func TestInvalidateCacheUnavailable(t *testing.T) {
	t.Parallel()

	svc := NewService(brokenStore{}, newSpyUpstream(), testCacheConfig(), config.BatchConfig{Concurrency: 5})
	n, err := svc.Invalidate(context.Background(), []string{"v1"})
	if !errors.Is(err, cache.ErrCacheUnavailable) {
		t.Errorf("error = %v, want ErrCacheUnavailable", err)
	}
	if n != 0 {
		t.Errorf("Invalidate() = %d on failure, want 0", n)
	}
	if n, err := svc.Invalidate(context.Background(), nil); err != nil || n != 0 {
		t.Errorf("empty Invalidate() = %d, %v", n, err)
	}
}

func TestCheckOneCacheUnavailable(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 2, 0, false))
	svc := NewService(brokenStore{}, upstream, testCacheConfig(), config.BatchConfig{Concurrency: 5})

	res := svc.CheckOne(context.Background(), "v1", DefaultOptions())
	if res.Source != models.SourceUpstream || res.AvailableQuantity != 2 {
		t.Errorf("result = %+v, want live answer despite cache outage", res)
	}

	upstream.fail("v1", errTimeout)
	assertConservative(t, svc.CheckOne(context.Background(), "v1", DefaultOptions()))
}

func TestCheckOneCollapsesConcurrentMisses(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 1, 0, false))
	upstream.delay = 100 * time.Millisecond
	svc, _ := newTestService(t, upstream)

	const callers = 10
	var wg sync.WaitGroup
	var available atomic.Int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.CheckOne(context.Background(), "v1", DefaultOptions()).Available {
				available.Add(1)
			}
		}()
	}
	wg.Wait()

	if available.Load() != callers {
		t.Errorf("available answers = %d, want %d", available.Load(), callers)
	}
	if got := upstream.callsFor("v1"); got >= callers {
		t.Errorf("upstream calls = %d, want fewer than %d", got, callers)
	}
}

func TestCheckOneWaiterSurvivesFirstCallerCancel(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 10, 0, false))
	upstream.delay = 100 * time.Millisecond
	svc, _ := newTestService(t, upstream)

	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first := make(chan models.AvailabilityResult, 1)
	go func() { first <- svc.CheckOne(firstCtx, "v1", DefaultOptions()) }()

	deadline := time.Now().Add(time.Second)
	for upstream.callsFor("v1") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("upstream call never started")
		}
		time.Sleep(time.Millisecond)
	}

	second := make(chan models.AvailabilityResult, 1)
	go func() { second <- svc.CheckOne(context.Background(), "v1", DefaultOptions()) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	assertConservative(t, <-first)

	res := <-second
	if !res.Available || res.AvailableQuantity != 10 || res.Source != models.SourceUpstream {
		t.Errorf("second caller = %+v, want live answer", res)
	}
	if got := upstream.callsFor("v1"); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}

	cached := svc.CheckOne(context.Background(), "v1", DefaultOptions())
	if cached.Source != models.SourceCache || cached.AvailableQuantity != 10 {
		t.Errorf("after shared call = %+v, want cached live answer", cached)
	}
}

func TestCheckOneCanceledBeforeMissSkipsUpstream(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 4, 0, false))
	svc, _ := newTestService(t, upstream)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assertConservative(t, svc.CheckOne(ctx, "v1", DefaultOptions()))
	if got := upstream.totalCalls(); got != 0 {
		t.Errorf("upstream calls = %d, want 0", got)
	}
}

func TestCheckOneEmptyID(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	svc, _ := newTestService(t, upstream)

	res := svc.CheckOne(context.Background(), "", DefaultOptions())
	assertConservative(t, res)
	if res.VariantID != "" {
		t.Errorf("VariantID = %q, want empty", res.VariantID)
	}
	if got := upstream.totalCalls(); got != 0 {
		t.Errorf("upstream calls = %d, want 0", got)
	}
}

func TestCheckOneBreakerOpenMakesNoNetworkCalls(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := commerce.NewClient(config.UpstreamConfig{BaseURL: server.URL, Timeout: 2 * time.Second})
	breaker := commerce.NewBreakerClient(client, config.BreakerConfig{
		FailureThreshold: 0.5,
		MinRequests:      3,
		Window:           time.Minute,
		Cooldown:         time.Hour,
	})
	svc, _ := newTestService(t, breaker)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assertConservative(t, svc.CheckOne(ctx, fmt.Sprintf("v%d", i), DefaultOptions()))
	}
	if breaker.State() != models.BreakerOpen {
		t.Fatalf("breaker state = %s, want open", breaker.State())
	}

	before := hits.Load()
	start := time.Now()
	res := svc.CheckOne(ctx, "v-next", DefaultOptions())
	elapsed := time.Since(start)

	assertConservative(t, res)
	if hits.Load() != before {
		t.Errorf("network calls while open = %d, want 0", hits.Load()-before)
	}
	if elapsed > 100*time.Millisecond {
		t.Errorf("open-circuit lookup took %v, want well under the upstream timeout", elapsed)
	}
}

func TestPreWarm(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 1, 0, false))
	upstream.set(stocked("v2", 2, 0, false))
	upstream.fail("v3", errTimeout)
	svc, _ := newTestService(t, upstream)
	ctx := context.Background()

	if warmed := svc.PreWarm(ctx, []string{"v1", "v2", "v3"}); warmed != 2 {
		t.Errorf("PreWarm() = %d, want 2", warmed)
	}

	for _, id := range []string{"v1", "v2"} {
		if res := svc.CheckOne(ctx, id, DefaultOptions()); res.Source != models.SourceCache {
			t.Errorf("%s Source = %q after pre-warm, want cache", id, res.Source)
		}
		if got := upstream.callsFor(id); got != 1 {
			t.Errorf("%s upstream calls = %d, want 1", id, got)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		store        cache.Store
		pingErr      error
		state        models.BreakerState
		wantHealthy  bool
		wantCache    bool
		wantUpstream bool
	}{
		{name: "all healthy", store: cache.NewMemoryStore(0), state: models.BreakerClosed, wantHealthy: true, wantCache: true, wantUpstream: true},
		{name: "upstream down", store: cache.NewMemoryStore(0), pingErr: commerce.ErrBreakerOpen, state: models.BreakerOpen, wantCache: true},
		{name: "cache down", store: brokenStore{}, state: models.BreakerClosed, wantUpstream: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			upstream := newSpyUpstream()
			upstream.pingErr = tt.pingErr
			upstream.state = tt.state
			svc := NewService(tt.store, upstream, testCacheConfig(), config.BatchConfig{Concurrency: 5})
			t.Cleanup(func() { _ = tt.store.Close() })

			health := svc.HealthCheck(context.Background())
			if health.Healthy != tt.wantHealthy {
				t.Errorf("Healthy = %v, want %v", health.Healthy, tt.wantHealthy)
			}
			if health.CacheConnected != tt.wantCache {
				t.Errorf("CacheConnected = %v, want %v", health.CacheConnected, tt.wantCache)
			}
			if health.UpstreamAccessible != tt.wantUpstream {
				t.Errorf("UpstreamAccessible = %v, want %v", health.UpstreamAccessible, tt.wantUpstream)
			}
			if health.BreakerState != tt.state {
				t.Errorf("BreakerState = %s, want %s", health.BreakerState, tt.state)
			}
			if !tt.wantHealthy && health.LastError == "" {
				t.Error("LastError should explain the failure")
			}
			if health.CheckedAt.IsZero() {
				t.Error("CheckedAt should be set")
			}
		})
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	upstream := newSpyUpstream()
	upstream.set(stocked("v1", 1, 0, false))
	upstream.fail("v2", errTimeout)
	svc, _ := newTestService(t, upstream)
	ctx := context.Background()

	_ = svc.CheckOne(ctx, "v1", DefaultOptions()) // miss, upstream ok
	_ = svc.CheckOne(ctx, "v1", DefaultOptions()) // hit
	_ = svc.CheckOne(ctx, "v2", DefaultOptions()) // miss, upstream failed

	stats := svc.GetStats(ctx)
	if stats.TotalCachedKeys != 1 {
		t.Errorf("TotalCachedKeys = %d, want 1 (stale shadows excluded)", stats.TotalCachedKeys)
	}
	if stats.UpstreamRequests != 2 {
		t.Errorf("UpstreamRequests = %d, want 2", stats.UpstreamRequests)
	}
	if want := 1.0 / 3.0; stats.CacheHitRate < want-0.001 || stats.CacheHitRate > want+0.001 {
		t.Errorf("CacheHitRate = %f, want %f", stats.CacheHitRate, want)
	}
	if stats.UpstreamSuccessRate != 0.5 {
		t.Errorf("UpstreamSuccessRate = %f, want 0.5", stats.UpstreamSuccessRate)
	}
	if stats.LastSyncAt == nil {
		t.Error("LastSyncAt should be set after a successful fetch")
	}
	if stats.AvgResponseTimeMs < 0 {
		t.Errorf("AvgResponseTimeMs = %f", stats.AvgResponseTimeMs)
	}
}

func TestGetStatsCacheUnavailable(t *testing.T) {
	t.Parallel()

	svc := NewService(brokenStore{}, newSpyUpstream(), testCacheConfig(), config.BatchConfig{Concurrency: 5})
	if got := svc.GetStats(context.Background()).TotalCachedKeys; got != -1 {
		t.Errorf("TotalCachedKeys = %d, want -1", got)
	}
}

// brokenStore fails every operation the way an unreachable backend does.
type brokenStore struct{}

var errBroken = fmt.Errorf("dial tcp: connection refused: %w", cache.ErrCacheUnavailable)

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errBroken
}

func (brokenStore) MultiGet(context.Context, []string) ([][]byte, error) {
	return nil, errBroken
}

func (brokenStore) SetWithTTL(context.Context, string, []byte, time.Duration) error {
	return errBroken
}

func (brokenStore) SetMany(context.Context, []cache.Entry) error {
	return errBroken
}

func (brokenStore) DeleteMany(context.Context, []string) error {
	return errBroken
}

func (brokenStore) CountKeys(context.Context, string) (int64, error) {
	return 0, errBroken
}

func (brokenStore) Ping(context.Context) error {
	return errBroken
}

func (brokenStore) Close() error {
	return nil
}
