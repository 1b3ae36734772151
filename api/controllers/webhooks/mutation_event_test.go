package webhooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	hasurawebhook "github.com/chirpy-dev/chirpy-backend/internal/webhooks/hasura"
	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
)

const (
	testSecret = "event-secret"
	insertBody = `{"id":"evt-1","created_at":"2022-05-01T10:00:00.000","event":{"op":"INSERT","data":{"old":null,"new":{"id":"6a0e2f36-0d6c-4bd2-9d49-2f0d6b1f7f11","content":{"type":"doc"}}}},"delivery_info":{"max_retries":3,"current_retry":0},"trigger":{"name":"comment_inserted"},"table":{"schema":"public","name":"Comment"},"unknown":"tolerated"}`
)

type fakeDispatcher struct {
	calls   int
	err     error
	payload *mutationevent.EventPayload
}

func (f *fakeDispatcher) Handle(ctx context.Context, payload *mutationevent.EventPayload) error {
	f.calls++
	f.payload = payload
	return f.err
}

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: map[string]string{}}
}

func (s *inMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = "1"
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func newGuard(t *testing.T) *hasurawebhook.IdempotencyGuard {
	t.Helper()
	guard, err := hasurawebhook.NewIdempotencyGuard(newInMemoryStore(), time.Hour, hasurawebhook.Scope)
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	return guard
}

func postEvent(handler http.Handler, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/mutation", strings.NewReader(body))
	if secret != "" {
		req.Header.Set(EventSecretHeader, secret)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMutationEvent_DispatchesAuthorizedEvent(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := MutationEvent(dispatcher, testSecret, nil, nil)

	rec := postEvent(handler, testSecret, insertBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected one dispatch, got %d", dispatcher.calls)
	}
	if dispatcher.payload.Table.Name != "Comment" || dispatcher.payload.DeliveryInfo.MaxRetries != 3 {
		t.Fatalf("payload not decoded: %+v", dispatcher.payload)
	}
}

func TestMutationEvent_RejectsBadSecret(t *testing.T) {
	for name, secret := range map[string]string{"missing": "", "wrong": "nope"} {
		t.Run(name, func(t *testing.T) {
			dispatcher := &fakeDispatcher{}
			rec := postEvent(MutationEvent(dispatcher, testSecret, nil, nil), secret, insertBody)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if dispatcher.calls != 0 {
				t.Fatalf("dispatcher must not run on auth failure")
			}
		})
	}
}

func TestMutationEvent_EmptyConfiguredSecretRejectsEverything(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/mutation", strings.NewReader(insertBody))
	req.Header.Set(EventSecretHeader, "")
	rec := httptest.NewRecorder()
	MutationEvent(dispatcher, "", nil, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || dispatcher.calls != 0 {
		t.Fatalf("expected 401 without dispatch, got %d calls=%d", rec.Code, dispatcher.calls)
	}
}

func TestMutationEvent_MalformedBody(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	rec := postEvent(MutationEvent(dispatcher, testSecret, nil, nil), testSecret, `{"event":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if dispatcher.calls != 0 {
		t.Fatalf("dispatcher must not run on malformed body")
	}
}

func TestMutationEvent_MapsDispatchErrors(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"not found":  {pkgerrors.New(pkgerrors.CodeNotFound, "comment not found"), http.StatusNotFound},
		"downstream": {pkgerrors.New(pkgerrors.CodeDependency, "insert failed"), http.StatusServiceUnavailable},
		"untyped":    {errors.New("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := postEvent(MutationEvent(&fakeDispatcher{err: tc.err}, testSecret, nil, nil), testSecret, insertBody)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestMutationEvent_GuardSkipsDuplicates(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := MutationEvent(dispatcher, testSecret, newGuard(t), nil)

	for i := 0; i < 2; i++ {
		if rec := postEvent(handler, testSecret, insertBody); rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d", i, rec.Code)
		}
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected duplicate to be skipped, got %d dispatches", dispatcher.calls)
	}
}

func TestMutationEvent_GuardReleasedOnFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{err: pkgerrors.New(pkgerrors.CodeDependency, "push failed")}
	handler := MutationEvent(dispatcher, testSecret, newGuard(t), nil)

	if rec := postEvent(handler, testSecret, insertBody); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	dispatcher.err = nil
	if rec := postEvent(handler, testSecret, insertBody); rec.Code != http.StatusOK {
		t.Fatalf("expected retry to succeed, got %d", rec.Code)
	}
	if dispatcher.calls != 2 {
		t.Fatalf("expected retry to be dispatched, got %d calls", dispatcher.calls)
	}
}

func TestMutationEvent_GuardKeepsClaimForPermanentFailures(t *testing.T) {
	dispatcher := &fakeDispatcher{err: pkgerrors.New(pkgerrors.CodeNotFound, "site owner not found")}
	handler := MutationEvent(dispatcher, testSecret, newGuard(t), nil)

	if rec := postEvent(handler, testSecret, insertBody); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := postEvent(handler, testSecret, insertBody); rec.Code != http.StatusOK {
		t.Fatalf("expected redelivery to be acked, got %d", rec.Code)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected redelivery to skip dispatch, got %d calls", dispatcher.calls)
	}
}

func TestMutationEvent_GuardIgnoresFilteredEvents(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	handler := MutationEvent(dispatcher, testSecret, newGuard(t), nil)
	update := strings.Replace(insertBody, `"op":"INSERT"`, `"op":"UPDATE"`, 1)

	for i := 0; i < 2; i++ {
		postEvent(handler, testSecret, update)
	}
	if dispatcher.calls != 2 {
		t.Fatalf("filtered events bypass the guard, expected 2 calls, got %d", dispatcher.calls)
	}
}
