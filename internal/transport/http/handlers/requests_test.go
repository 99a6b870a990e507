package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/org-calendar/internal/application/request"
	"github.com/baechuer/org-calendar/internal/domain"
	"github.com/baechuer/org-calendar/internal/transport/http/middleware"
)

// --- Fakes ---

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type stubRepo struct {
	byID   map[int64]*domain.EventRequest
	nextID int64
}

func newStubRepo() *stubRepo { return &stubRepo{byID: map[int64]*domain.EventRequest{}, nextID: 1} }

func (s *stubRepo) Create(ctx context.Context, r *domain.EventRequest) error {
	r.ID = s.nextID
	s.nextID++
	cp := *r
	s.byID[r.ID] = &cp
	return nil
}

func (s *stubRepo) CreateApproved(ctx context.Context, r *domain.EventRequest) (int64, error) {
	if err := s.Create(ctx, r); err != nil {
		return 0, err
	}
	eventID := r.ID + 1000
	s.byID[r.ID].EventID = &eventID
	r.EventID = &eventID
	return eventID, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id int64) (*domain.EventRequest, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("request not found")
	}
	cp := *r
	return &cp, nil
}

func (s *stubRepo) Head(ctx context.Context, id int64) (*domain.RequestHead, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("request not found")
	}
	return &domain.RequestHead{ID: r.ID, OrganizerID: r.OrganizerID, Status: r.Status, EventID: r.EventID}, nil
}

func (s *stubRepo) Save(ctx context.Context, r *domain.EventRequest) error {
	cp := *r
	s.byID[r.ID] = &cp
	return nil
}

func (s *stubRepo) SetStatus(ctx context.Context, id int64, status domain.RequestStatus, comments *string, snapshot json.RawMessage) error {
	r, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound("request not found")
	}
	r.Status = status
	return nil
}

func (s *stubRepo) ApproveAndMaterialize(ctx context.Context, id int64, comments *string, f domain.EventFields) (int64, error) {
	r := s.byID[id]
	r.Status = domain.RequestApproved
	if r.EventID == nil {
		eventID := id + 1000
		r.EventID = &eventID
	}
	return *r.EventID, nil
}

func (s *stubRepo) RemoveCascade(ctx context.Context, id int64) error {
	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound("request not found")
	}
	delete(s.byID, id)
	return nil
}

func (s *stubRepo) List(ctx context.Context, organizerID *int64) ([]*domain.EventRequest, error) {
	var out []*domain.EventRequest
	for _, r := range s.byID {
		if organizerID != nil && r.OrganizerID != *organizerID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *stubRepo) PendingCount(ctx context.Context) (int, error) { return 0, nil }

type stubEvents struct {
	updatedIDs []int64
	lastFields domain.EventFields
}

func (s *stubEvents) GetConflictingEvents(ctx context.Context, dateStart, dateEnd time.Time, timeStart, timeEnd string, excludeEventID *int64) ([]*domain.Event, error) {
	return nil, nil
}

func (s *stubEvents) UpdateFromRequest(ctx context.Context, eventID int64, f domain.EventFields) (*domain.Event, error) {
	s.updatedIDs = append(s.updatedIDs, eventID)
	s.lastFields = f
	return &domain.Event{ID: eventID, EventFields: f, Status: domain.EventPlanned}, nil
}

// --- Helpers ---

func newHandler(repo *stubRepo) *RequestsHandler {
	h, _ := newHandlerWithEvents(repo)
	return h
}

func newHandlerWithEvents(repo *stubRepo) (*RequestsHandler, *stubEvents) {
	now, _ := time.Parse(time.RFC3339, "2026-03-01T09:00:00Z")
	events := &stubEvents{}
	svc := request.New(repo, events, fakeClock{t: now}, nil, nil, 0)
	return NewRequestsHandler(svc), events
}

// asUser simulates the auth middleware having already run.
func asUser(r *http.Request, uid int64, role string) *http.Request {
	return middleware.WithIdentity(r, uid, role)
}

func withRequestID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("request_id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedRequest(repo *stubRepo, organizerID int64, status domain.RequestStatus, eventID *int64) int64 {
	r := &domain.EventRequest{
		OrganizerID: organizerID,
		EventFields: domain.EventFields{
			Title:     "Seeded",
			DateStart: mustDate("2026-03-10"),
			DateEnd:   mustDate("2026-03-10"),
			TimeStart: "10:00",
			TimeEnd:   "12:00",
		},
		Status:  status,
		EventID: eventID,
	}
	_ = repo.Create(context.Background(), r)
	repo.byID[r.ID].EventID = eventID
	return r.ID
}

// --- Tests ---

func TestRequestsHandler_Create(t *testing.T) {
	repo := newStubRepo()
	h := newHandler(repo)

	body := `{"title":"Hackathon","dateStart":"2026-03-10","timeStart":"10:00","timeEnd":"12:00"}`
	r := asUser(httptest.NewRequest(http.MethodPost, "/event-requests", bytes.NewBufferString(body)), 7, "user")
	w := httptest.NewRecorder()

	h.Create(w, r)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "draft", resp.Data.Status)
	assert.Equal(t, int64(7), repo.byID[resp.Data.ID].OrganizerID)
}

func TestRequestsHandler_Create_AdminAutoApproves(t *testing.T) {
	repo := newStubRepo()
	h := newHandler(repo)

	body := `{"title":"Town hall","dateStart":"2026-03-10"}`
	r := asUser(httptest.NewRequest(http.MethodPost, "/event-requests", bytes.NewBufferString(body)), 1, "admin")
	w := httptest.NewRecorder()

	h.Create(w, r)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			Status  string `json:"status"`
			EventID *int64 `json:"eventId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "approved", resp.Data.Status)
	assert.NotNil(t, resp.Data.EventID)
}

func TestRequestsHandler_Get_Policy(t *testing.T) {
	repo := newStubRepo()
	h := newHandler(repo)
	id := seedRequest(repo, 7, domain.RequestDraft, nil)

	get := func(uid int64, role string) int {
		r := asUser(withRequestID(httptest.NewRequest(http.MethodGet, "/event-requests/1", nil), "1"), uid, role)
		w := httptest.NewRecorder()
		h.Get(w, r)
		return w.Code
	}
	_ = id

	assert.Equal(t, http.StatusOK, get(7, "user"))
	assert.Equal(t, http.StatusForbidden, get(9, "user"))
	assert.Equal(t, http.StatusOK, get(1, "admin"))
}

func TestRequestsHandler_Update_ApprovedRequeues(t *testing.T) {
	repo := newStubRepo()
	h, events := newHandlerWithEvents(repo)
	eventID := int64(1001)
	id := seedRequest(repo, 7, domain.RequestApproved, &eventID)
	_ = id

	body := `{"place":"New hall"}`
	r := asUser(withRequestID(httptest.NewRequest(http.MethodPatch, "/event-requests/1", bytes.NewBufferString(body)), "1"), 7, "user")
	w := httptest.NewRecorder()

	h.Update(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.RequestPending, repo.byID[1].Status)

	// the linked event picks up the edit in the same pass
	require.Equal(t, []int64{eventID}, events.updatedIDs)
	assert.Equal(t, "New hall", events.lastFields.Place)
}

func TestRequestsHandler_Update_NonAdminStatusForbidden(t *testing.T) {
	repo := newStubRepo()
	h := newHandler(repo)
	seedRequest(repo, 7, domain.RequestDraft, nil)

	body := `{"status":"approved"}`
	r := asUser(withRequestID(httptest.NewRequest(http.MethodPatch, "/event-requests/1", bytes.NewBufferString(body)), "1"), 7, "user")
	w := httptest.NewRecorder()

	h.Update(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestsHandler_Delete_Policy(t *testing.T) {
	del := func(uid int64, role string, eventID *int64) int {
		repo := newStubRepo()
		h := newHandler(repo)
		seedRequest(repo, 7, domain.RequestDraft, eventID)

		r := asUser(withRequestID(httptest.NewRequest(http.MethodDelete, "/event-requests/1", nil), "1"), uid, role)
		w := httptest.NewRecorder()
		h.Delete(w, r)
		return w.Code
	}

	linked := int64(1001)
	assert.Equal(t, http.StatusNoContent, del(7, "user", nil))
	assert.Equal(t, http.StatusForbidden, del(7, "user", &linked), "owner cannot delete once materialized")
	assert.Equal(t, http.StatusForbidden, del(9, "user", nil))
	assert.Equal(t, http.StatusNoContent, del(1, "admin", &linked))
}

func TestRequestsHandler_Submit_SilentNoOp(t *testing.T) {
	repo := newStubRepo()
	h := newHandler(repo)
	seedRequest(repo, 7, domain.RequestDraft, nil)

	// wrong owner gets an empty 200, not an error
	r := asUser(withRequestID(httptest.NewRequest(http.MethodPost, "/event-requests/1/submit", nil), "1"), 9, "user")
	w := httptest.NewRecorder()
	h.Submit(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
	assert.Equal(t, domain.RequestDraft, repo.byID[1].Status)
}

func TestRequestsHandler_Moderate_RejectNeedsReason(t *testing.T) {
	repo := newStubRepo()
	h := newHandler(repo)
	seedRequest(repo, 7, domain.RequestPending, nil)

	body := `{"status":"rejected"}`
	r := asUser(withRequestID(httptest.NewRequest(http.MethodPatch, "/event-requests/1/moderate", bytes.NewBufferString(body)), "1"), 1, "admin")
	w := httptest.NewRecorder()

	h.Moderate(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestsHandler_BadID(t *testing.T) {
	h := newHandler(newStubRepo())
	r := asUser(withRequestID(httptest.NewRequest(http.MethodGet, "/event-requests/abc", nil), "abc"), 7, "user")
	w := httptest.NewRecorder()
	h.Get(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
