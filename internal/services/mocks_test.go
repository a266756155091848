package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

type mockUserRepo struct {
	repository.UserRepository
	mockFindByEmail     func(ctx context.Context, email string) (*models.User, error)
	mockFindByID        func(ctx context.Context, id uuid.UUID) (*models.User, error)
	mockUpdatePassword  func(ctx context.Context, userID uuid.UUID, hash string) error
	mockTouchLastLogin  func(ctx context.Context, userID uuid.UUID, at time.Time) error
	mockSetRecoveryCode func(ctx context.Context, userID uuid.UUID, code string, sentAt time.Time) error
	created             []*models.User
	cleared             []uuid.UUID
	expired             chan string
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) ClearRecoveryCode(ctx context.Context, userID uuid.UUID) error {
	m.cleared = append(m.cleared, userID)
	return nil
}

func (m *mockUserRepo) ExpireRecoveryCode(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	if m.expired != nil {
		m.expired <- code
	}
	return true, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.mockFindByEmail(ctx, email)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	if m.mockUpdatePassword != nil {
		return m.mockUpdatePassword(ctx, userID, hash)
	}
	return nil
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if m.mockTouchLastLogin != nil {
		return m.mockTouchLastLogin(ctx, userID, at)
	}
	return nil
}

func (m *mockUserRepo) SetRecoveryCode(ctx context.Context, userID uuid.UUID, code string, sentAt time.Time) error {
	if m.mockSetRecoveryCode != nil {
		return m.mockSetRecoveryCode(ctx, userID, code, sentAt)
	}
	return nil
}

type mockRTRepo struct {
	repository.RefreshTokenRepository
	mockFindByToken func(ctx context.Context, token string) (*models.RefreshToken, error)
	mockDelete      func(ctx context.Context, token string) error
	created         []*models.RefreshToken
}

func (m *mockRTRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return m.mockFindByToken(ctx, token)
}

func (m *mockRTRepo) Create(ctx context.Context, rt *models.RefreshToken) error {
	m.created = append(m.created, rt)
	return nil
}

func (m *mockRTRepo) Delete(ctx context.Context, token string) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, token)
	}
	return nil
}

type mockTenantRepo struct {
	repository.TenantRepository
	mockFindByID func(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	created      []*models.Tenant
	deleted      []uuid.UUID
}

func (m *mockTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	tenant.ID = uuid.New()
	m.created = append(m.created, tenant)
	return nil
}

func (m *mockTenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	return nil
}

func (m *mockTenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockTenantRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return nil
}

func (m *mockTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return &models.Tenant{Base: models.Base{ID: id}}, nil
}

type mockPropertyRepo struct {
	repository.PropertyRepository
	properties map[uuid.UUID]*models.Property
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, ok := m.properties[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

type mockContractRepo struct {
	repository.ContractRepository
	contracts    map[uuid.UUID]*models.Contract
	availability []*bool
	deleted      []uuid.UUID
	updated      []models.Contract
	toWarn       []models.Contract
	ended        []models.Contract
}

func newMockContractRepo(contracts ...*models.Contract) *mockContractRepo {
	m := &mockContractRepo{contracts: map[uuid.UUID]*models.Contract{}}
	for _, c := range contracts {
		m.contracts[c.ID] = c
	}
	return m
}

func (m *mockContractRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockContractRepo) CreateWithAvailability(ctx context.Context, contract *models.Contract) error {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	cp := *contract
	m.contracts[contract.ID] = &cp
	return nil
}

func (m *mockContractRepo) UpdateWithAvailability(ctx context.Context, contract *models.Contract, disponible *bool) error {
	m.availability = append(m.availability, disponible)
	cp := *contract
	m.contracts[contract.ID] = &cp
	return nil
}

func (m *mockContractRepo) Update(ctx context.Context, contract *models.Contract) error {
	m.updated = append(m.updated, *contract)
	return nil
}

func (m *mockContractRepo) DeleteWithPayments(ctx context.Context, contract *models.Contract) error {
	m.deleted = append(m.deleted, contract.ID)
	delete(m.contracts, contract.ID)
	return nil
}

func (m *mockContractRepo) FindToWarn(ctx context.Context, today finance.Date, days int) ([]models.Contract, error) {
	return m.toWarn, nil
}

func (m *mockContractRepo) FindEnded(ctx context.Context, today finance.Date) ([]models.Contract, error) {
	return m.ended, nil
}

type mockPaymentRepo struct {
	repository.PaymentRepository
	payments   map[uuid.UUID]*models.Payment
	batch      []models.Payment
	updated    []models.Payment
	overdue    []models.Payment
	dueBetween func(ctx context.Context, from, to finance.Date) ([]models.Payment, error)
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

func (m *mockPaymentRepo) FindByContract(ctx context.Context, contractID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.ContratoID == contractID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *mockPaymentRepo) CreateBatch(ctx context.Context, payments []models.Payment) error {
	m.batch = append(m.batch, payments...)
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	m.updated = append(m.updated, *payment)
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *mockPaymentRepo) FindOverdueCandidates(ctx context.Context, today finance.Date) ([]models.Payment, error) {
	return m.overdue, nil
}

func (m *mockPaymentRepo) FindDueBetween(ctx context.Context, from, to finance.Date) ([]models.Payment, error) {
	return m.dueBetween(ctx, from, to)
}

// memStore is an in-memory cache.Store
type memStore struct {
	data map[string][]byte
	sets int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.sets++
	m.data[key] = raw
	return nil
}

func (m *memStore) InvalidatePrefix(ctx context.Context, prefix string) error {
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *memStore) CleanExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *memStore) Backend() string {
	return "memory"
}

func date(s string) finance.Date {
	d, err := finance.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixedNow(s string) func() time.Time {
	t := date(s).Time
	return func() time.Time { return t }
}
