package request

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/org-calendar/internal/domain"
)

// --- Mocks & Helpers ---

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type mockCache struct {
	store   map[string]any
	deletes int
}

func newMockCache() *mockCache { return &mockCache{store: make(map[string]any)} }

func (m *mockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	return false, nil
}
func (m *mockCache) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	m.store[key] = val
	return nil
}
func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	m.deletes += len(keys)
	for _, k := range keys {
		delete(m.store, k)
	}
	return nil
}

type capturePublisher struct {
	keys   []string
	bodies [][]byte
}

func (p *capturePublisher) PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error {
	p.keys = append(p.keys, routingKey)
	p.bodies = append(p.bodies, body)
	return nil
}

type memRepo struct {
	byID        map[int64]*domain.EventRequest
	nextID      int64
	nextEventID int64

	// materialized tracks which event ids were created by approval flows
	materialized []int64
	removed      []int64
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[int64]*domain.EventRequest{}, nextID: 1, nextEventID: 100}
}

func (m *memRepo) Create(ctx context.Context, r *domain.EventRequest) error {
	r.ID = m.nextID
	m.nextID++
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memRepo) CreateApproved(ctx context.Context, r *domain.EventRequest) (int64, error) {
	r.ID = m.nextID
	m.nextID++
	eventID := m.nextEventID
	m.nextEventID++
	r.EventID = &eventID
	cp := *r
	m.byID[r.ID] = &cp
	m.materialized = append(m.materialized, eventID)
	return eventID, nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*domain.EventRequest, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("request not found")
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) Head(ctx context.Context, id int64) (*domain.RequestHead, error) {
	r, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("request not found")
	}
	return &domain.RequestHead{ID: r.ID, OrganizerID: r.OrganizerID, Status: r.Status, EventID: r.EventID}, nil
}

func (m *memRepo) Save(ctx context.Context, r *domain.EventRequest) error {
	if _, ok := m.byID[r.ID]; !ok {
		return domain.ErrNotFound("request not found")
	}
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memRepo) SetStatus(ctx context.Context, id int64, status domain.RequestStatus, comments *string, snapshot json.RawMessage) error {
	r, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound("request not found")
	}
	r.Status = status
	if comments != nil {
		r.Comments = comments
	}
	if snapshot != nil {
		r.RevisionSnapshot = snapshot
	}
	return nil
}

func (m *memRepo) ApproveAndMaterialize(ctx context.Context, id int64, comments *string, f domain.EventFields) (int64, error) {
	r, ok := m.byID[id]
	if !ok {
		return 0, domain.ErrNotFound("request not found")
	}
	r.Status = domain.RequestApproved
	if comments != nil {
		r.Comments = comments
	}
	if r.EventID != nil {
		return *r.EventID, nil
	}
	eventID := m.nextEventID
	m.nextEventID++
	r.EventID = &eventID
	m.materialized = append(m.materialized, eventID)
	return eventID, nil
}

func (m *memRepo) RemoveCascade(ctx context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound("request not found")
	}
	delete(m.byID, id)
	m.removed = append(m.removed, id)
	return nil
}

func (m *memRepo) List(ctx context.Context, organizerID *int64) ([]*domain.EventRequest, error) {
	var out []*domain.EventRequest
	for _, r := range m.byID {
		if organizerID != nil && r.OrganizerID != *organizerID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) PendingCount(ctx context.Context) (int, error) {
	n := 0
	for _, r := range m.byID {
		if r.Status == domain.RequestPending {
			n++
		}
	}
	return n, nil
}

type fakeEventStore struct {
	conflicts    []*domain.Event
	lastExclude  *int64
	updatedIDs   []int64
	updateFields []domain.EventFields
}

func (f *fakeEventStore) GetConflictingEvents(ctx context.Context, dateStart, dateEnd time.Time, timeStart, timeEnd string, excludeEventID *int64) ([]*domain.Event, error) {
	f.lastExclude = excludeEventID
	return f.conflicts, nil
}

func (f *fakeEventStore) UpdateFromRequest(ctx context.Context, eventID int64, fields domain.EventFields) (*domain.Event, error) {
	f.updatedIDs = append(f.updatedIDs, eventID)
	f.updateFields = append(f.updateFields, fields)
	return &domain.Event{ID: eventID, EventFields: fields, Status: domain.EventPlanned}, nil
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func validFields(t *testing.T) domain.EventFields {
	return domain.EventFields{
		Title:     "Hackathon",
		DateStart: mustDate(t, "2026-03-10"),
		DateEnd:   mustDate(t, "2026-03-10"),
		TimeStart: "10:00",
		TimeEnd:   "12:00",
		Place:     "Main hall",
	}
}

func newTestService(repo *memRepo, events *fakeEventStore, pub *capturePublisher, cache *mockCache) *Service {
	now, _ := time.Parse(time.RFC3339, "2026-03-01T09:00:00Z")
	var p Publisher
	if pub != nil {
		p = pub
	}
	var c Cache
	if cache != nil {
		c = cache
	}
	return New(repo, events, fakeClock{t: now}, p, c, 0)
}

// --- Test Cases ---

func TestService_Create(t *testing.T) {
	t.Run("draft_without_conflicts", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo, &fakeEventStore{}, nil, nil)

		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
		require.NoError(t, err)
		assert.Equal(t, domain.RequestDraft, res.Request.Status)
		assert.False(t, res.Request.HasConflict)
		assert.Nil(t, res.Request.EventID)
		assert.Empty(t, res.ConflictingEvents)
	})

	t.Run("conflict_flag_set_from_detector", func(t *testing.T) {
		repo := newMemRepo()
		events := &fakeEventStore{conflicts: []*domain.Event{{ID: 55, Status: domain.EventPlanned}}}
		svc := newTestService(repo, events, nil, nil)

		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
		require.NoError(t, err)
		assert.True(t, res.Request.HasConflict)
		assert.Len(t, res.ConflictingEvents, 1)
		assert.Equal(t, domain.RequestDraft, res.Request.Status)
	})

	t.Run("auto_approve_materializes_event", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo, &fakeEventStore{}, nil, nil)

		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t), AutoApprove: true})
		require.NoError(t, err)
		assert.Equal(t, domain.RequestApproved, res.Request.Status)
		require.NotNil(t, res.Request.EventID)
		assert.Contains(t, repo.materialized, *res.Request.EventID)
	})

	t.Run("missing_title_rejected", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo, &fakeEventStore{}, nil, nil)

		f := validFields(t)
		f.Title = ""
		_, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: f})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "title")
	})

	t.Run("primary_department_is_first_of_list", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo, &fakeEventStore{}, nil, nil)

		f := validFields(t)
		f.DepartmentIDs = []int64{4, 9}
		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: f})
		require.NoError(t, err)
		require.NotNil(t, res.Request.DepartmentID)
		assert.Equal(t, int64(4), *res.Request.DepartmentID)
	})
}

func TestService_Submit(t *testing.T) {
	seed := func(t *testing.T, status domain.RequestStatus) (*memRepo, *Service, *capturePublisher, int64) {
		repo := newMemRepo()
		pub := &capturePublisher{}
		svc := newTestService(repo, &fakeEventStore{}, pub, nil)
		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
		require.NoError(t, err)
		repo.byID[res.Request.ID].Status = status
		return repo, svc, pub, res.Request.ID
	}

	t.Run("draft_to_pending", func(t *testing.T) {
		repo, svc, pub, id := seed(t, domain.RequestDraft)
		detail, err := svc.Submit(context.Background(), id, 7)
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, domain.RequestPending, detail.Status)
		assert.Equal(t, domain.RequestPending, repo.byID[id].Status)
		assert.Equal(t, []string{RoutingKeyRequestSubmitted}, pub.keys)
	})

	t.Run("needs_work_to_pending", func(t *testing.T) {
		_, svc, _, id := seed(t, domain.RequestNeedsWork)
		detail, err := svc.Submit(context.Background(), id, 7)
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, domain.RequestPending, detail.Status)
	})

	t.Run("wrong_owner_silent_nil", func(t *testing.T) {
		repo, svc, pub, id := seed(t, domain.RequestDraft)
		detail, err := svc.Submit(context.Background(), id, 999)
		assert.NoError(t, err)
		assert.Nil(t, detail)
		assert.Equal(t, domain.RequestDraft, repo.byID[id].Status)
		assert.Empty(t, pub.keys)
	})

	t.Run("missing_request_silent_nil", func(t *testing.T) {
		_, svc, _, _ := seed(t, domain.RequestDraft)
		detail, err := svc.Submit(context.Background(), 424242, 7)
		assert.NoError(t, err)
		assert.Nil(t, detail)
	})

	t.Run("already_pending_is_noop", func(t *testing.T) {
		repo, svc, pub, id := seed(t, domain.RequestPending)
		detail, err := svc.Submit(context.Background(), id, 7)
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, domain.RequestPending, detail.Status)
		assert.Equal(t, domain.RequestPending, repo.byID[id].Status)
		assert.Empty(t, pub.keys)
	})
}

func TestService_Moderate(t *testing.T) {
	seedPending := func(t *testing.T) (*memRepo, *Service, *capturePublisher, int64) {
		repo := newMemRepo()
		pub := &capturePublisher{}
		svc := newTestService(repo, &fakeEventStore{}, pub, nil)
		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
		require.NoError(t, err)
		repo.byID[res.Request.ID].Status = domain.RequestPending
		return repo, svc, pub, res.Request.ID
	}

	t.Run("approve_creates_event_and_backfills", func(t *testing.T) {
		repo, svc, pub, id := seedPending(t)
		res, err := svc.Moderate(context.Background(), id, domain.RequestApproved, nil)
		require.NoError(t, err)
		require.NotNil(t, res.EventID)
		assert.Equal(t, res.EventID, repo.byID[id].EventID)
		assert.Len(t, repo.materialized, 1)
		assert.Equal(t, []string{RoutingKeyRequestApproved}, pub.keys)
	})

	t.Run("second_approval_reuses_linked_event", func(t *testing.T) {
		repo, svc, _, id := seedPending(t)
		first, err := svc.Moderate(context.Background(), id, domain.RequestApproved, nil)
		require.NoError(t, err)

		repo.byID[id].Status = domain.RequestPending
		second, err := svc.Moderate(context.Background(), id, domain.RequestApproved, nil)
		require.NoError(t, err)
		assert.Equal(t, *first.EventID, *second.EventID)
		assert.Len(t, repo.materialized, 1, "no second event row")
	})

	t.Run("reject_requires_reason", func(t *testing.T) {
		_, svc, pub, id := seedPending(t)
		_, err := svc.Moderate(context.Background(), id, domain.RequestRejected, nil)
		assert.Error(t, err)

		empty := "   "
		_, err = svc.Moderate(context.Background(), id, domain.RequestRejected, &empty)
		assert.Error(t, err)
		assert.Empty(t, pub.keys)
	})

	t.Run("reject_with_reason_keeps_event_untouched", func(t *testing.T) {
		repo, svc, pub, id := seedPending(t)
		reason := "clashes with exam week"
		res, err := svc.Moderate(context.Background(), id, domain.RequestRejected, &reason)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestRejected, res.Status)
		assert.Empty(t, repo.materialized)
		require.NotNil(t, repo.byID[id].Comments)
		assert.Equal(t, reason, *repo.byID[id].Comments)
		assert.Equal(t, []string{RoutingKeyRequestRejected}, pub.keys)
	})

	t.Run("needs_work_freezes_snapshot", func(t *testing.T) {
		repo, svc, pub, id := seedPending(t)
		note := "shorten to two hours"
		_, err := svc.Moderate(context.Background(), id, domain.RequestNeedsWork, &note)
		require.NoError(t, err)

		stored := repo.byID[id]
		assert.Equal(t, domain.RequestNeedsWork, stored.Status)
		require.NotEmpty(t, stored.RevisionSnapshot)
		var snap map[string]any
		require.NoError(t, json.Unmarshal(stored.RevisionSnapshot, &snap))
		assert.Equal(t, "Hackathon", snap["title"])
		assert.Equal(t, "2026-03-10", snap["dateStart"])
		assert.Equal(t, []string{RoutingKeyRequestNeedsWork}, pub.keys)
	})

	t.Run("invalid_outcome_rejected", func(t *testing.T) {
		_, svc, _, id := seedPending(t)
		_, err := svc.Moderate(context.Background(), id, domain.RequestDraft, nil)
		assert.Error(t, err)
	})

	t.Run("missing_request_not_found", func(t *testing.T) {
		_, svc, _, _ := seedPending(t)
		_, err := svc.Moderate(context.Background(), 424242, domain.RequestApproved, nil)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestService_Update(t *testing.T) {
	t.Run("plain_edit_keeps_status", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo, &fakeEventStore{}, nil, nil)
		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
		require.NoError(t, err)

		title := "Hackathon v2"
		detail, err := svc.Update(context.Background(), UpdateCmd{RequestID: res.Request.ID, Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Hackathon v2", detail.Title)
		assert.Equal(t, domain.RequestDraft, detail.Status)
	})

	t.Run("explicit_empty_departments_clears_primary", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo, &fakeEventStore{}, nil, nil)
		f := validFields(t)
		f.DepartmentIDs = []int64{4, 9}
		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: f})
		require.NoError(t, err)

		empty := []int64{}
		detail, err := svc.Update(context.Background(), UpdateCmd{RequestID: res.Request.ID, DepartmentIDs: &empty})
		require.NoError(t, err)
		assert.Nil(t, detail.DepartmentID)
		assert.Empty(t, detail.DepartmentIDs)
	})

	t.Run("approved_edit_to_pending_syncs_event", func(t *testing.T) {
		repo := newMemRepo()
		events := &fakeEventStore{}
		pub := &capturePublisher{}
		svc := newTestService(repo, events, pub, nil)
		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t), AutoApprove: true})
		require.NoError(t, err)
		eventID := *res.Request.EventID

		title := "Rescheduled hackathon"
		pending := domain.RequestPending
		detail, err := svc.Update(context.Background(), UpdateCmd{
			RequestID: res.Request.ID,
			Title:     &title,
			Status:    &pending,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RequestPending, detail.Status)
		require.Len(t, events.updatedIDs, 1)
		assert.Equal(t, eventID, events.updatedIDs[0])
		assert.Equal(t, "Rescheduled hackathon", events.updateFields[0].Title)
		assert.Contains(t, pub.keys, RoutingKeyEventUpdated)
	})

	t.Run("draft_edit_to_pending_does_not_touch_events", func(t *testing.T) {
		repo := newMemRepo()
		events := &fakeEventStore{}
		svc := newTestService(repo, events, nil, nil)
		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
		require.NoError(t, err)

		pending := domain.RequestPending
		_, err = svc.Update(context.Background(), UpdateCmd{RequestID: res.Request.ID, Status: &pending})
		require.NoError(t, err)
		assert.Empty(t, events.updatedIDs)
	})

	t.Run("invalid_status_rejected", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo, &fakeEventStore{}, nil, nil)
		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
		require.NoError(t, err)

		bogus := domain.RequestStatus("archived")
		_, err = svc.Update(context.Background(), UpdateCmd{RequestID: res.Request.ID, Status: &bogus})
		assert.Error(t, err)
	})
}

func TestService_Remove(t *testing.T) {
	t.Run("cascades_through_repo", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo, &fakeEventStore{}, nil, nil)
		res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
		require.NoError(t, err)

		require.NoError(t, svc.Remove(context.Background(), res.Request.ID))
		assert.Equal(t, []int64{res.Request.ID}, repo.removed)
	})

	t.Run("missing_request_not_found", func(t *testing.T) {
		repo := newMemRepo()
		svc := newTestService(repo, &fakeEventStore{}, nil, nil)
		err := svc.Remove(context.Background(), 424242)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestService_FindOne_ConflictRecompute(t *testing.T) {
	repo := newMemRepo()
	events := &fakeEventStore{conflicts: []*domain.Event{{ID: 55, Status: domain.EventPlanned}}}
	svc := newTestService(repo, events, nil, nil)

	res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
	require.NoError(t, err)
	require.True(t, res.Request.HasConflict)

	detail, err := svc.FindOne(context.Background(), res.Request.ID)
	require.NoError(t, err)
	require.Len(t, detail.ConflictingEvents, 1)
	assert.Equal(t, int64(55), detail.ConflictingEvents[0].ID)
}

func TestService_CheckConflict_ExcludesLinkedEvent(t *testing.T) {
	repo := newMemRepo()
	events := &fakeEventStore{}
	svc := newTestService(repo, events, nil, nil)

	res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t), AutoApprove: true})
	require.NoError(t, err)
	eventID := *res.Request.EventID

	reqID := res.Request.ID
	_, err = svc.CheckConflict(context.Background(), mustDate(t, "2026-03-10"), mustDate(t, "2026-03-10"), "10:00", "12:00", &reqID)
	require.NoError(t, err)
	require.NotNil(t, events.lastExclude)
	assert.Equal(t, eventID, *events.lastExclude)
}

func TestService_PendingCount_CacheInvalidation(t *testing.T) {
	repo := newMemRepo()
	cache := newMockCache()
	svc := newTestService(repo, &fakeEventStore{}, nil, cache)

	res, err := svc.Create(context.Background(), CreateCmd{OrganizerID: 7, Fields: validFields(t)})
	require.NoError(t, err)
	deletesAfterCreate := cache.deletes
	assert.Positive(t, deletesAfterCreate)

	_, err = svc.Submit(context.Background(), res.Request.ID, 7)
	require.NoError(t, err)
	assert.Greater(t, cache.deletes, deletesAfterCreate)

	n, err := svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, cache.store, cacheKeyPendingCount)
}
