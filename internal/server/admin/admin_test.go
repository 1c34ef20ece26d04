package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/hireledger/internal/kv"
	"github.com/dmitrijs2005/hireledger/internal/logging"
	"github.com/dmitrijs2005/hireledger/internal/signals"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okPing(context.Context) error { return nil }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	h := NewRouter(okPing, prometheus.NewRegistry(), nil)
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	down := NewRouter(func(context.Context) error { return errors.New("db down") }, prometheus.NewRegistry(), nil)
	rec = get(t, down, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	bus := signals.NewBus(reg, nil, logging.Nop{})
	defer bus.Stop()
	bus.Publish(context.Background(), signals.AdvertCreated, signals.AdvertCreatedData{AdvertID: 1})

	rec := get(t, NewRouter(okPing, reg, nil), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hireledger_signals_published_total{type="advert.created"} 1`)
}

func TestSignals(t *testing.T) {
	db, err := kv.Open("", nil)
	require.NoError(t, err)
	defer db.Close()
	journal := signals.NewJournal(db)

	at := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 3; i++ {
		_, err := journal.Append(signals.Signal{Type: signals.AdvertCreated, Timestamp: at, Data: signals.AdvertCreatedData{AdvertID: i}})
		require.NoError(t, err)
	}

	h := NewRouter(okPing, prometheus.NewRegistry(), journal)

	rec := get(t, h, "/signals?after=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var page []struct {
		Seq  uint64
		Type string
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page, 2)
	assert.Equal(t, uint64(2), page[0].Seq)
	assert.Equal(t, "advert.created", page[1].Type)

	rec = get(t, h, "/signals?after=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, NewRouter(okPing, prometheus.NewRegistry(), nil), "/signals")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewRouter(okPing, prometheus.NewRegistry(), nil), logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("admin server did not stop")
	}
}

func TestServer_BadAddress(t *testing.T) {
	srv := NewServer("127.0.0.1:99999", http.NotFoundHandler(), logging.Nop{})
	require.Error(t, srv.Run(context.Background()))
}
