package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	apperrors "reservation-api/core/errors"
	"reservation-api/core/params"
	"reservation-api/modules/reservation/dto"
	"reservation-api/modules/reservation/entity"
	"reservation-api/modules/reservation/repository"

	"github.com/google/uuid"
)

// fakeStore reproduces the store contract in memory. Insert emulates the
// database exclusion constraint: the overlap check and the append happen
// under one lock, like the single atomic INSERT against Postgres.
type fakeStore struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*entity.Reservation
	seq       int
	insertErr error
	storeErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uuid.UUID]*entity.Reservation)}
}

func (f *fakeStore) Insert(ctx context.Context, r *entity.Reservation) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return nil, f.insertErr
	}

	candidate := Interval{Start: r.StartTime, End: r.EndTime}
	for _, existing := range f.rows {
		if existing.ResourceID != r.ResourceID || existing.Status != entity.ReservationStatusPending {
			continue
		}
		if candidate.Overlaps(Interval{Start: existing.StartTime, End: existing.EndTime}) {
			return nil, repository.ErrSlotTaken
		}
	}

	f.seq++
	created := *r
	created.ID = uuid.New()
	created.Status = entity.ReservationStatusPending
	created.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Second)
	f.rows[created.ID] = &created

	out := created
	return &out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.storeErr != nil {
		return nil, f.storeErr
	}
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	out := *r
	return &out, nil
}

func (f *fakeStore) List(ctx context.Context, filter entity.ListFilter, p params.QueryParams) (*entity.PaginatedReservationEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []entity.Reservation
	for _, r := range f.rows {
		if filter.ResourceID != "" && r.ResourceID != filter.ResourceID {
			continue
		}
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		matched = append(matched, *r)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.PageSize
	if end > total {
		end = total
	}

	return &entity.PaginatedReservationEntity{
		Items:      matched[start:end],
		TotalItems: total,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}, nil
}

func (f *fakeStore) TransitionExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.storeErr != nil {
		return 0, f.storeErr
	}
	var affected int64
	for _, r := range f.rows {
		if r.Status == entity.ReservationStatusPending && !r.EndTime.After(now) {
			r.Status = entity.ReservationStatusComplete
			affected++
		}
	}
	return affected, nil
}

func (f *fakeStore) Cancel(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	if r.Status == entity.ReservationStatusPending {
		r.Status = entity.ReservationStatusCancelled
	}
	out := *r
	return &out, nil
}

func newTestService(store *fakeStore) *ReservationService {
	return NewReservationService(store, nil, nil)
}

func createReq(resource string, start, end string) *dto.CreateReservationRequest {
	return &dto.CreateReservationRequest{
		ResourceID: resource,
		UserID:     "user-1",
		StartTime:  start,
		EndTime:    end,
		Timezone:   "UTC",
	}
}

func TestCreate_PersistsNormalizedReservation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	resp, appErr := svc.Create(context.Background(), &dto.CreateReservationRequest{
		ResourceID: "R1",
		UserID:     "user-1",
		StartTime:  "2025-01-15T09:00:00Z",
		EndTime:    "2025-01-15T10:00:00Z",
		Timezone:   "America/New_York",
	})
	if appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	// 09:00 New York in January is 14:00 UTC.
	if !resp.StartTime.Equal(time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("start not normalized, got %v", resp.StartTime)
	}
	if !resp.EndTime.Equal(time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("end not normalized, got %v", resp.EndTime)
	}
	if resp.Status != string(entity.ReservationStatusPending) {
		t.Fatalf("status = %s, want PENDING", resp.Status)
	}
	if resp.Timezone != "America/New_York" {
		t.Fatalf("timezone not preserved, got %s", resp.Timezone)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected 1 persisted row, got %d", len(store.rows))
	}
}

func TestCreate_RejectsInvalidOrdering(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	for _, req := range []*dto.CreateReservationRequest{
		createReq("R1", "2025-01-15T11:00:00Z", "2025-01-15T10:00:00Z"),
		createReq("R1", "2025-01-15T10:00:00Z", "2025-01-15T10:00:00Z"),
	} {
		_, appErr := svc.Create(context.Background(), req)
		if appErr == nil {
			t.Fatalf("expected error for %s..%s", req.StartTime, req.EndTime)
		}
		if appErr.Code != apperrors.ErrInvalidInput {
			t.Fatalf("code = %s, want %s", appErr.Code, apperrors.ErrInvalidInput)
		}
	}
	if len(store.rows) != 0 {
		t.Fatalf("invalid request persisted %d rows", len(store.rows))
	}
}

func TestCreate_RejectsUnknownTimezone(t *testing.T) {
	svc := newTestService(newFakeStore())

	req := createReq("R1", "2025-01-15T10:00:00Z", "2025-01-15T11:00:00Z")
	req.Timezone = "Not/AZone"

	_, appErr := svc.Create(context.Background(), req)
	if appErr == nil || appErr.Code != apperrors.ErrInvalidInput {
		t.Fatalf("got %v, want %s", appErr, apperrors.ErrInvalidInput)
	}
}

func TestCreate_OverlapIsConflict(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	if _, appErr := svc.Create(ctx, createReq("R1", "2025-01-01T10:00:00Z", "2025-01-01T11:00:00Z")); appErr != nil {
		t.Fatalf("seed create: %v", appErr)
	}

	_, appErr := svc.Create(ctx, createReq("R1", "2025-01-01T10:30:00Z", "2025-01-01T11:30:00Z"))
	if appErr == nil {
		t.Fatal("expected conflict")
	}
	if appErr.Code != apperrors.ErrConflict {
		t.Fatalf("code = %s, want %s", appErr.Code, apperrors.ErrConflict)
	}
	if appErr.Message != slotConflictMessage {
		t.Fatalf("message = %q, want %q", appErr.Message, slotConflictMessage)
	}

	// Back-to-back windows touch at one instant and must not conflict.
	if _, appErr := svc.Create(ctx, createReq("R1", "2025-01-01T11:00:00Z", "2025-01-01T12:00:00Z")); appErr != nil {
		t.Fatalf("adjacent create rejected: %v", appErr)
	}

	// A different resource is free to book the same window.
	if _, appErr := svc.Create(ctx, createReq("R2", "2025-01-01T10:00:00Z", "2025-01-01T11:00:00Z")); appErr != nil {
		t.Fatalf("other resource rejected: %v", appErr)
	}
}

func TestCreate_EquivalentInstantsAcrossZonesConflict(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	first := &dto.CreateReservationRequest{
		ResourceID: "R1",
		UserID:     "user-1",
		StartTime:  "2025-01-15T09:00:00Z",
		EndTime:    "2025-01-15T10:00:00Z",
		Timezone:   "America/New_York",
	}
	if _, appErr := svc.Create(ctx, first); appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	// The same window expressed directly in UTC.
	second := createReq("R1", "2025-01-15T14:00:00Z", "2025-01-15T15:00:00Z")
	_, appErr := svc.Create(ctx, second)
	if appErr == nil || appErr.Code != apperrors.ErrConflict {
		t.Fatalf("equivalent interval not detected as conflict, got %v", appErr)
	}
}

func TestCreate_ConcurrentSameSlotSingleWinner(t *testing.T) {
	svc := newTestService(newFakeStore())

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan *apperrors.AppError, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := createReq("R1", "2025-01-01T10:00:00Z", "2025-01-01T11:00:00Z")
			req.UserID = fmt.Sprintf("user-%d", n)
			_, appErr := svc.Create(context.Background(), req)
			results <- appErr
		}(i)
	}
	wg.Wait()
	close(results)

	var won, conflicted int
	for appErr := range results {
		switch {
		case appErr == nil:
			won++
		case appErr.Code == apperrors.ErrConflict:
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", appErr)
		}
	}

	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}
	if conflicted != attempts-1 {
		t.Fatalf("conflicts = %d, want %d", conflicted, attempts-1)
	}
}

func TestGet(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	created, appErr := svc.Create(ctx, createReq("R1", "2025-01-01T10:00:00Z", "2025-01-01T11:00:00Z"))
	if appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	got, appErr := svc.Get(ctx, created.ID)
	if appErr != nil {
		t.Fatalf("get: %v", appErr)
	}
	if got.ID != created.ID {
		t.Fatalf("got id %s, want %s", got.ID, created.ID)
	}

	if _, appErr := svc.Get(ctx, "not-a-uuid"); appErr == nil || appErr.Code != apperrors.ErrInvalidInput {
		t.Fatalf("malformed id: got %v, want %s", appErr, apperrors.ErrInvalidInput)
	}

	if _, appErr := svc.Get(ctx, uuid.NewString()); appErr == nil || appErr.Code != apperrors.ErrNotFound {
		t.Fatalf("unknown id: got %v, want %s", appErr, apperrors.ErrNotFound)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	created, appErr := svc.Create(ctx, createReq("R1", "2025-01-01T10:00:00Z", "2025-01-01T11:00:00Z"))
	if appErr != nil {
		t.Fatalf("create: %v", appErr)
	}

	first, appErr := svc.Cancel(ctx, created.ID)
	if appErr != nil {
		t.Fatalf("first cancel: %v", appErr)
	}
	if first.Status != string(entity.ReservationStatusCancelled) {
		t.Fatalf("status after cancel = %s", first.Status)
	}

	second, appErr := svc.Cancel(ctx, created.ID)
	if appErr != nil {
		t.Fatalf("second cancel must not error: %v", appErr)
	}
	if second.Status != first.Status {
		t.Fatalf("second cancel changed status: %s -> %s", first.Status, second.Status)
	}
}

func TestCancel_CompleteStaysComplete(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	created, appErr := svc.Create(ctx, createReq("R1", "2025-01-01T10:00:00Z", "2025-01-01T11:00:00Z"))
	if appErr != nil {
		t.Fatalf("create: %v", appErr)
	}
	if _, appErr := svc.CompleteExpired(ctx, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)); appErr != nil {
		t.Fatalf("sweep: %v", appErr)
	}

	resp, appErr := svc.Cancel(ctx, created.ID)
	if appErr != nil {
		t.Fatalf("cancel of completed reservation errored: %v", appErr)
	}
	if resp.Status != string(entity.ReservationStatusComplete) {
		t.Fatalf("terminal status rewritten to %s", resp.Status)
	}
}

func TestCancel_UnknownID(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, appErr := svc.Cancel(context.Background(), uuid.NewString())
	if appErr == nil || appErr.Code != apperrors.ErrNotFound {
		t.Fatalf("got %v, want %s", appErr, apperrors.ErrNotFound)
	}
}

func TestCompleteExpired_TransitionsOnlyExpiredPending(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	past, appErr := svc.Create(ctx, createReq("R1", "2025-01-01T10:00:00Z", "2025-01-01T11:00:00Z"))
	if appErr != nil {
		t.Fatalf("create past: %v", appErr)
	}
	cancelled, appErr := svc.Create(ctx, createReq("R1", "2025-01-01T12:00:00Z", "2025-01-01T13:00:00Z"))
	if appErr != nil {
		t.Fatalf("create cancelled: %v", appErr)
	}
	if _, appErr := svc.Cancel(ctx, cancelled.ID); appErr != nil {
		t.Fatalf("cancel: %v", appErr)
	}
	future, appErr := svc.Create(ctx, createReq("R1", "2025-06-01T10:00:00Z", "2025-06-01T11:00:00Z"))
	if appErr != nil {
		t.Fatalf("create future: %v", appErr)
	}

	affected, appErr := svc.CompleteExpired(ctx, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	if appErr != nil {
		t.Fatalf("sweep: %v", appErr)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	assertStatus := func(id string, want entity.ReservationStatus) {
		t.Helper()
		got, appErr := svc.Get(ctx, id)
		if appErr != nil {
			t.Fatalf("get %s: %v", id, appErr)
		}
		if got.Status != string(want) {
			t.Fatalf("reservation %s status = %s, want %s", id, got.Status, want)
		}
	}
	assertStatus(past.ID, entity.ReservationStatusComplete)
	assertStatus(cancelled.ID, entity.ReservationStatusCancelled)
	assertStatus(future.ID, entity.ReservationStatusPending)
}

func TestList_Pagination(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	// 25 sequential hour-long windows on one resource.
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		s := start.Add(time.Duration(i) * time.Hour)
		req := createReq("R1", s.Format(time.RFC3339), s.Add(time.Hour).Format(time.RFC3339))
		if _, appErr := svc.Create(ctx, req); appErr != nil {
			t.Fatalf("create %d: %v", i, appErr)
		}
	}

	page1, appErr := svc.List(ctx, entity.ListFilter{ResourceID: "R1"}, params.QueryParams{PageNumber: 1, PageSize: 10})
	if appErr != nil {
		t.Fatalf("list page 1: %v", appErr)
	}
	if len(page1.Items) != 10 {
		t.Fatalf("page 1 items = %d, want 10", len(page1.Items))
	}
	if page1.TotalItems != 25 || page1.TotalPages != 3 {
		t.Fatalf("total = %d pages = %d, want 25/3", page1.TotalItems, page1.TotalPages)
	}
	for i := 1; i < len(page1.Items); i++ {
		if page1.Items[i].CreatedAt.After(page1.Items[i-1].CreatedAt) {
			t.Fatalf("page not ordered by created_at descending at index %d", i)
		}
	}

	page3, appErr := svc.List(ctx, entity.ListFilter{ResourceID: "R1"}, params.QueryParams{PageNumber: 3, PageSize: 10})
	if appErr != nil {
		t.Fatalf("list page 3: %v", appErr)
	}
	if len(page3.Items) != 5 {
		t.Fatalf("page 3 items = %d, want 5", len(page3.Items))
	}
}

func TestList_ConjunctiveFilters(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	reqA := createReq("R1", "2025-01-01T10:00:00Z", "2025-01-01T11:00:00Z")
	reqA.UserID = "alice"
	reqB := createReq("R1", "2025-01-01T12:00:00Z", "2025-01-01T13:00:00Z")
	reqB.UserID = "bob"
	reqC := createReq("R2", "2025-01-01T10:00:00Z", "2025-01-01T11:00:00Z")
	reqC.UserID = "alice"
	for _, req := range []*dto.CreateReservationRequest{reqA, reqB, reqC} {
		if _, appErr := svc.Create(ctx, req); appErr != nil {
			t.Fatalf("create: %v", appErr)
		}
	}

	got, appErr := svc.List(ctx, entity.ListFilter{ResourceID: "R1", UserID: "alice"}, params.QueryParams{PageNumber: 1, PageSize: 10})
	if appErr != nil {
		t.Fatalf("list: %v", appErr)
	}
	if got.TotalItems != 1 || len(got.Items) != 1 {
		t.Fatalf("filtered list = %d items (total %d), want 1", len(got.Items), got.TotalItems)
	}
	if got.Items[0].ResourceID != "R1" || got.Items[0].UserID != "alice" {
		t.Fatalf("wrong row matched: %+v", got.Items[0])
	}
}
