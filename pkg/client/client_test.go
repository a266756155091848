package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/arrendando-api/pkg/finance"
)

type apiServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
	auth []string
}

// newAPIServer counts requests per "METHOD path" and serves handler
func newAPIServer(t *testing.T, handler http.HandlerFunc) *apiServer {
	t.Helper()
	s := &apiServer{hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		s.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *apiServer) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func date(t *testing.T, s string) finance.Date {
	t.Helper()
	d, err := finance.ParseDate(s)
	require.NoError(t, err)
	return d
}

func tenantPage() map[string]interface{} {
	return map[string]interface{}{
		"data":       []map[string]interface{}{{"id": uuid.NewString(), "cedula": "0102030405", "nombres": "Ana"}},
		"total":      1,
		"page":       1,
		"limit":      10,
		"totalPages": 1,
	}
}

func TestClient_SendsExplicitToken(t *testing.T) {
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, tenantPage())
	})

	anon := New(Config{BaseURL: srv.URL + "/"})
	_, err := anon.Tenants.List(context.Background(), ListParams{})
	require.NoError(t, err)

	authed := anon.WithToken("abc")
	assert.Equal(t, "abc", authed.Token())
	assert.Empty(t, anon.Token())
	page, err := authed.Tenants.List(context.Background(), ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "0102030405", page.Data[0].Cedula)

	assert.Equal(t, []string{"", "Bearer abc"}, srv.auth)
}

func TestClient_StaleWindowAndInvalidation(t *testing.T) {
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, tenantPage())
		default:
			writeJSON(w, http.StatusCreated, map[string]interface{}{"id": uuid.NewString(), "cedula": "1"})
		}
	})
	c := New(Config{BaseURL: srv.URL, Token: "t"})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.cache.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.Tenants.List(ctx, ListParams{Page: 1})
	require.NoError(t, err)
	_, err = c.Tenants.List(ctx, ListParams{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, srv.count("GET /tenants"), "second call is served from cache")

	_, err = c.Tenants.List(ctx, ListParams{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, srv.count("GET /tenants"), "different query is a different entry")

	now = now.Add(DefaultStaleTime + time.Second)
	_, err = c.Tenants.List(ctx, ListParams{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, srv.count("GET /tenants"), "stale entry is refetched")

	_, err = c.Tenants.Create(ctx, Tenant{Cedula: "1"})
	require.NoError(t, err)
	_, err = c.Tenants.List(ctx, ListParams{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, srv.count("GET /tenants"), "mutation drops cached listings")
}

func TestClient_DeduplicatesConcurrentGets(t *testing.T) {
	release := make(chan struct{})
	var inFlight atomic.Int32
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		inFlight.Add(1)
		<-release
		writeJSON(w, http.StatusOK, map[string]interface{}{"totalUsers": 3})
	})
	c := New(Config{BaseURL: srv.URL})

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Dashboard.Stats(context.Background())
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return inFlight.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, srv.count("GET /dashboard/stats"))
}

func TestClient_GetAfterMutationDoesNotJoinEarlierRequest(t *testing.T) {
	release := make(chan struct{})
	releaseAll := sync.OnceFunc(func() { close(release) })
	var version, inFlight atomic.Int32
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			version.Add(1)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		seen := version.Load()
		inFlight.Add(1)
		<-release
		page := tenantPage()
		page["total"] = seen
		writeJSON(w, http.StatusOK, page)
	})
	t.Cleanup(releaseAll)
	c := New(Config{BaseURL: srv.URL})
	ctx := context.Background()

	list := func(out chan<- *Page[Tenant]) {
		page, err := c.Tenants.List(ctx, ListParams{})
		assert.NoError(t, err)
		out <- page
	}

	before := make(chan *Page[Tenant], 1)
	go list(before)
	require.Eventually(t, func() bool { return inFlight.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Tenants.Delete(ctx, uuid.New()))

	after := make(chan *Page[Tenant], 1)
	go list(after)
	require.Eventually(t, func() bool { return inFlight.Load() == 2 }, time.Second, 5*time.Millisecond,
		"a GET issued after the mutation reaches the server")
	releaseAll()

	first, second := <-before, <-after
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.EqualValues(t, 0, first.Total)
	assert.EqualValues(t, 1, second.Total)

	_, err := c.Tenants.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, srv.count("GET /tenants"), "only the post-mutation response is cached")
}

func TestClient_CanceledCallerDoesNotFailSharedGet(t *testing.T) {
	release := make(chan struct{})
	releaseAll := sync.OnceFunc(func() { close(release) })
	var inFlight atomic.Int32
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		inFlight.Add(1)
		<-release
		writeJSON(w, http.StatusOK, tenantPage())
	})
	t.Cleanup(releaseAll)
	c := New(Config{BaseURL: srv.URL})

	short, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	shortErr := make(chan error, 1)
	go func() {
		_, err := c.Tenants.List(short, ListParams{})
		shortErr <- err
	}()
	require.Eventually(t, func() bool { return inFlight.Load() == 1 }, time.Second, 5*time.Millisecond)

	patientErr := make(chan error, 1)
	go func() {
		_, err := c.Tenants.List(context.Background(), ListParams{})
		patientErr <- err
	}()

	err := <-shortErr
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	time.Sleep(20 * time.Millisecond)
	releaseAll()
	assert.NoError(t, <-patientErr)
	assert.Equal(t, 1, srv.count("GET /tenants"), "both callers share one request")
}

func TestClient_ContractDatesValidatedBeforeRequest(t *testing.T) {
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": uuid.NewString(), "estado": "BORRADOR"})
	})
	c := New(Config{BaseURL: srv.URL, Token: "t"})
	ctx := context.Background()

	tests := []struct {
		name   string
		inicio string
		fin    string
	}{
		{"same day", "2025-03-01", "2025-03-01"},
		{"inverted", "2025-06-01", "2025-03-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Contracts.Create(ctx, ContractInput{
				FechaInicio:  date(t, tt.inicio),
				FechaFin:     date(t, tt.fin),
				CanonMensual: decimal.NewFromInt(500),
			})
			assert.ErrorIs(t, err, ErrInvalidDateRange)
		})
	}

	inicio, fin := date(t, "2025-06-01"), date(t, "2025-03-01")
	_, err := c.Contracts.Update(ctx, uuid.New(), ContractUpdate{FechaInicio: &inicio, FechaFin: &fin})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = c.Reports.Comparison(ctx, inicio, fin)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	assert.Empty(t, srv.hits, "no request is sent for an invalid range")

	created, err := c.Contracts.Create(ctx, ContractInput{
		FechaInicio:  date(t, "2025-01-01"),
		FechaFin:     date(t, "2025-12-31"),
		CanonMensual: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.Equal(t, "BORRADOR", created.Estado)
	assert.Equal(t, 1, srv.count("POST /contratos"))
}

func TestClient_ErrorCategories(t *testing.T) {
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pagos/" + uuid.Nil.String():
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "registro no encontrado"})
		case "/auth/profile":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token expirado"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	c := New(Config{BaseURL: srv.URL})
	ctx := context.Background()

	_, err := c.Payments.Get(ctx, uuid.Nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindValidation, apiErr.Kind)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "registro no encontrado", apiErr.UserMessage())
	assert.True(t, IsNotFound(err))

	_, err = c.Auth.Profile(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Tu sesión ha expirado. Inicia sesión nuevamente.", apiErr.UserMessage())

	_, err = c.Dashboard.Stats(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, "Ocurrió un error en el servidor. Inténtalo más tarde.", apiErr.UserMessage())

	down := New(Config{BaseURL: "http://127.0.0.1:1"})
	_, err = down.Dashboard.Stats(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.Zero(t, apiErr.StatusCode)
	assert.Contains(t, apiErr.UserMessage(), "No se pudo conectar")
}

func TestClient_ErrorsAreNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "mantenimiento"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": 2})
	})
	c := New(Config{BaseURL: srv.URL})
	ctx := context.Background()

	_, err := c.Notifications.UnreadCount(ctx)
	require.Error(t, err)

	fail.Store(false)
	count, err := c.Notifications.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 2, srv.count("GET /notifications/unread-count"))
}

func TestPayments_StatsComputedLocally(t *testing.T) {
	contrato := uuid.New()
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PAGADO", r.URL.Query().Get("estado"))
		assert.Equal(t, contrato.String(), r.URL.Query().Get("contratoId"))
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": uuid.NewString(), "montoTotal": "1000", "montoAbonado": "1000", "estado": "PAGADO", "fechaPagoEsperada": "2025-01-05"},
			{"id": uuid.NewString(), "montoTotal": "2000", "montoAbonado": "1500", "estado": "PARCIAL", "fechaPagoEsperada": "2025-02-05"},
		})
	})
	c := New(Config{BaseURL: srv.URL})

	stats, err := c.Payments.Stats(context.Background(), PaymentFilter{Estado: "PAGADO", ContratoID: &contrato})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPagos)
	assert.Equal(t, "3000.00", stats.MontoTotalEsperado)
	assert.Equal(t, "2500.00", stats.MontoTotalRecaudado)
	assert.Equal(t, 83.33, stats.PorcentajePagado)
	assert.Equal(t, 1, stats.PagosCompletados)
	assert.Equal(t, 1, stats.PagosParciales)
}

func TestPayments_AbonarInvalidatesReports(t *testing.T) {
	id := uuid.New()
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reports/income/annual":
			writeJSON(w, http.StatusOK, map[string]interface{}{"year": 2025})
		default:
			writeJSON(w, http.StatusOK, map[string]interface{}{"id": id.String(), "estado": "PARCIAL", "montoAbonado": "100"})
		}
	})
	c := New(Config{BaseURL: srv.URL})
	ctx := context.Background()

	_, err := c.Reports.Annual(ctx, 2025)
	require.NoError(t, err)
	p, err := c.Payments.Abonar(ctx, id, Abono{Monto: decimal.NewFromInt(100)})
	require.NoError(t, err)
	require.NotNil(t, p.Payment)
	assert.Equal(t, "PARCIAL", p.Estado)
	_, err = c.Reports.Annual(ctx, 2025)
	require.NoError(t, err)

	assert.Equal(t, 2, srv.count("GET /reports/income/annual"))
}

func TestReports_ExportFilename(t *testing.T) {
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="reporte_ingresos_2025.csv"`)
		_, _ = w.Write([]byte("Mes,Esperado\n"))
	})
	c := New(Config{BaseURL: srv.URL})

	export, err := c.Reports.ExportAnnual(context.Background(), 2025, "csv")
	require.NoError(t, err)
	assert.Equal(t, "reporte_ingresos_2025.csv", export.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", export.ContentType)
	assert.Equal(t, "Mes,Esperado\n", string(export.Data))
}

func TestResource_SetActive(t *testing.T) {
	id := uuid.New()
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]bool
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		disponible, ok := body["disponible"]
		assert.True(t, ok)
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": id.String(), "disponible": disponible})
	})
	c := New(Config{BaseURL: srv.URL})
	ctx := context.Background()

	p, err := c.Properties.SetActive(ctx, id, false)
	require.NoError(t, err)
	assert.False(t, p.Disponible)
	assert.Equal(t, 1, srv.count("PATCH /properties/"+id.String()+"/activate"))

	_, err = c.Contracts.SetActive(ctx, id, true)
	assert.True(t, errors.Is(err, ErrNotActivatable))
}
