package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockTenantRepo struct {
	repository.TenantRepository
	tenants    map[uuid.UUID]*models.Tenant
	mockCreate func(tenant *models.Tenant) error
	lastQuery  *repository.ListQuery
}

func newMockTenantRepo(tenants ...*models.Tenant) *mockTenantRepo {
	m := &mockTenantRepo{tenants: map[uuid.UUID]*models.Tenant{}}
	for _, t := range tenants {
		m.tenants[t.ID] = t
	}
	return m
}

func (m *mockTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockTenantRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Tenant, int64, error) {
	m.lastQuery = query
	var out []models.Tenant
	for _, t := range m.tenants {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (m *mockTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	if m.mockCreate != nil {
		if err := m.mockCreate(tenant); err != nil {
			return err
		}
	}
	tenant.ID = uuid.New()
	m.tenants[tenant.ID] = tenant
	return nil
}

func (m *mockTenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	m.tenants[tenant.ID] = tenant
	return nil
}

func (m *mockTenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.tenants[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.tenants, id)
	return nil
}

func (m *mockTenantRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	t, ok := m.tenants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.IsActive = active
	return nil
}

func (m *mockTenantRepo) FindByCedula(ctx context.Context, cedula string) (*models.Tenant, error) {
	for _, t := range m.tenants {
		if t.Cedula == cedula {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type mockContractRepo struct {
	repository.ContractRepository
	contracts map[uuid.UUID]*models.Contract
	deleted   []uuid.UUID
}

func (m *mockContractRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockContractRepo) DeleteWithPayments(ctx context.Context, contract *models.Contract) error {
	m.deleted = append(m.deleted, contract.ID)
	delete(m.contracts, contract.ID)
	return nil
}

type mockPaymentRepo struct {
	repository.PaymentRepository
	payments   map[uuid.UUID]*models.Payment
	lastFilter repository.PaymentFilter
	updated    int
}

func newMockPaymentRepo(payments ...*models.Payment) *mockPaymentRepo {
	m := &mockPaymentRepo{payments: map[uuid.UUID]*models.Payment{}}
	for _, p := range payments {
		m.payments[p.ID] = p
	}
	return m
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) List(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, error) {
	m.lastFilter = filter
	var out []models.Payment
	for _, p := range m.payments {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPaymentRepo) FindDueBetween(ctx context.Context, from, to finance.Date) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if !p.FechaPagoEsperada.Before(from) && !p.FechaPagoEsperada.After(to) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	m.updated++
	m.payments[payment.ID] = payment
	return nil
}

func date(s string) finance.Date {
	d, err := finance.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// perform runs one request against r and returns the recorder
func perform(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
