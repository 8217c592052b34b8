package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePassesRequests(t *testing.T) {
	qm := NewQueueMiddleware(QueueConfig{MaxSize: 10})
	handler := qm.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// Every entry was released after its request finished
	assert.Equal(t, 0, qm.Length())
}

func TestQueueRejectsWhenFull(t *testing.T) {
	qm := NewQueueMiddleware(QueueConfig{MaxSize: 1})

	entered := make(chan struct{})
	release := make(chan struct{})
	handler := qm.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	}))

	go func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	}()
	<-entered

	// The queue holds one inflight request; the next must be turned away.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "queue is full")

	close(release)
}

func TestQueueServesInOrder(t *testing.T) {
	qm := NewQueueMiddleware(QueueConfig{MaxSize: 10})

	var mu sync.Mutex
	var order []int
	firstEntered := make(chan struct{})
	release := make(chan struct{})

	first := qm.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(firstEntered)
		<-release
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
	}))
	second := qm.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		first.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}()
	<-firstEntered
	go func() {
		defer wg.Done()
		second.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	}()

	// Let the second request park behind the first before releasing it.
	require.Eventually(t, func() bool { return qm.Length() == 2 }, time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, qm.Length())
}

func TestQueueSetMaxSize(t *testing.T) {
	qm := NewQueueMiddleware(QueueConfig{MaxSize: 0})
	handler := qm.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	qm.SetMaxSize(5)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
