package client

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/finance"
)

// Records exchanged with the API
type (
	Tenant         = models.Tenant
	Property       = models.Property
	Contract       = models.Contract
	User           = models.User
	Payment        = models.PaymentResponse
	DashboardStats = models.DashboardStats
	Notification   = models.NotificationResponse
)

// Contracts, payments and reports change the derived listings of each other
var (
	contractTouches = []string{"/pagos", "/reports", "/dashboard", "/properties"}
	paymentTouches  = []string{"/pagos", "/contratos", "/reports", "/dashboard"}
)

type TenantsAPI struct {
	*Resource[Tenant, Tenant, Tenant]
}

func newTenantsAPI(c *Client) *TenantsAPI {
	return &TenantsAPI{Resource: &Resource[Tenant, Tenant, Tenant]{
		c:           c,
		path:        "/tenants",
		searchPath:  "/tenants/search",
		activeField: "isActive",
		touches:     []string{"/dashboard"},
	}}
}

func (a *TenantsAPI) ByCedula(ctx context.Context, cedula string) (*Tenant, error) {
	var out Tenant
	if err := a.c.get(ctx, "/tenants/cedula/"+url.PathEscape(cedula), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *TenantsAPI) ByCorreo(ctx context.Context, correo string) (*Tenant, error) {
	var out Tenant
	if err := a.c.get(ctx, "/tenants/email/"+url.PathEscape(correo), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type PropertiesAPI struct {
	*Resource[Property, Property, Property]
}

func newPropertiesAPI(c *Client) *PropertiesAPI {
	return &PropertiesAPI{Resource: &Resource[Property, Property, Property]{
		c:           c,
		path:        "/properties",
		searchPath:  "/properties/search",
		activeField: "disponible",
		touches:     []string{"/dashboard"},
	}}
}

// ByAddress lists the properties whose direccion contains direccion
func (a *PropertiesAPI) ByAddress(ctx context.Context, direccion string, params ListParams) (*Page[Property], error) {
	var page Page[Property]
	if err := a.c.get(ctx, "/properties/address/"+url.PathEscape(direccion), params.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ContractInput is the body of POST /contratos
type ContractInput struct {
	FechaInicio  finance.Date    `json:"fechaInicio"`
	FechaFin     finance.Date    `json:"fechaFin"`
	CanonMensual decimal.Decimal `json:"canonMensual"`
	Estado       string          `json:"estado,omitempty"`
	InquilinoID  uuid.UUID       `json:"inquilinoId"`
	InmuebleID   uuid.UUID       `json:"inmuebleId"`
}

// ContractUpdate is the body of PATCH /contratos/:id. Nil fields are left unchanged.
type ContractUpdate struct {
	FechaInicio  *finance.Date    `json:"fechaInicio,omitempty"`
	FechaFin     *finance.Date    `json:"fechaFin,omitempty"`
	CanonMensual *decimal.Decimal `json:"canonMensual,omitempty"`
	Estado       *string          `json:"estado,omitempty"`
	InquilinoID  *uuid.UUID       `json:"inquilinoId,omitempty"`
	InmuebleID   *uuid.UUID       `json:"inmuebleId,omitempty"`
}

// ValidateContractDates requires fechaInicio strictly before fechaFin
func ValidateContractDates(fechaInicio, fechaFin finance.Date) error {
	if fechaInicio.IsZero() || fechaFin.IsZero() || !fechaInicio.Before(fechaFin) {
		return ErrInvalidDateRange
	}
	return nil
}

type ContractsAPI struct {
	*Resource[Contract, ContractInput, ContractUpdate]
}

func newContractsAPI(c *Client) *ContractsAPI {
	return &ContractsAPI{Resource: &Resource[Contract, ContractInput, ContractUpdate]{
		c:       c,
		path:    "/contratos",
		touches: contractTouches,
		beforeCreate: func(in *ContractInput) error {
			return ValidateContractDates(in.FechaInicio, in.FechaFin)
		},
		beforeUpdate: func(in *ContractUpdate) error {
			// A single date is checked by the server against the stored one
			if in.FechaInicio != nil && in.FechaFin != nil {
				return ValidateContractDates(*in.FechaInicio, *in.FechaFin)
			}
			return nil
		},
	}}
}

// Active lists ACTIVO contracts
func (a *ContractsAPI) Active(ctx context.Context) ([]Contract, error) {
	var out []Contract
	if err := a.c.get(ctx, "/contratos/activos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Expiring lists running contracts ending within days
func (a *ContractsAPI) Expiring(ctx context.Context, days int) ([]Contract, error) {
	var out []Contract
	if err := a.c.get(ctx, "/contratos/proximos-vencer/"+strconv.Itoa(days), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GeneratePayments creates the monthly payments the contract is still missing
func (a *ContractsAPI) GeneratePayments(ctx context.Context, id uuid.UUID) ([]Payment, error) {
	var out []Payment
	if err := a.c.send(ctx, http.MethodPost, "/contratos/"+id.String()+"/pagos/generar", nil, &out, a.prefixes()...); err != nil {
		return nil, err
	}
	return out, nil
}

// HasActiveContract reports whether an ACTIVO contract references the tenant or property id
func (a *ContractsAPI) HasActiveContract(ctx context.Context, id uuid.UUID) (bool, error) {
	contracts, err := a.Active(ctx)
	if err != nil {
		return false, err
	}
	for _, ct := range contracts {
		if ct.InquilinoID == id || ct.InmuebleID == id {
			return true, nil
		}
	}
	return false, nil
}

// PaymentFilter narrows GET /pagos
type PaymentFilter struct {
	Estado     string
	ContratoID *uuid.UUID
	FechaDesde *finance.Date
	FechaHasta *finance.Date
}

func (f PaymentFilter) values() url.Values {
	v := url.Values{}
	if f.Estado != "" {
		v.Set("estado", f.Estado)
	}
	if f.ContratoID != nil {
		v.Set("contratoId", f.ContratoID.String())
	}
	if f.FechaDesde != nil {
		v.Set("fechaDesde", f.FechaDesde.String())
	}
	if f.FechaHasta != nil {
		v.Set("fechaHasta", f.FechaHasta.String())
	}
	return v
}

// PaymentInput is the body of POST /pagos
type PaymentInput struct {
	ContratoID        uuid.UUID        `json:"contratoId"`
	MontoTotal        decimal.Decimal  `json:"montoTotal"`
	MontoAbonado      *decimal.Decimal `json:"montoAbonado,omitempty"`
	FechaPagoEsperada finance.Date     `json:"fechaPagoEsperada"`
}

// PaymentUpdate is the body of PATCH /pagos/:id
type PaymentUpdate struct {
	FechaPagoEsperada *finance.Date    `json:"fechaPagoEsperada,omitempty"`
	MontoTotal        *decimal.Decimal `json:"montoTotal,omitempty"`
}

// Abono is the body of PATCH /pagos/:id/abono
type Abono struct {
	Monto     decimal.Decimal `json:"monto"`
	FechaPago *finance.Date   `json:"fechaPago,omitempty"`
}

type PaymentsAPI struct {
	c *Client
}

// List returns the payments matching filter. The endpoint is not paginated.
func (a *PaymentsAPI) List(ctx context.Context, filter PaymentFilter) ([]Payment, error) {
	var out []Payment
	if err := a.c.get(ctx, "/pagos", filter.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats lists the payments matching filter and aggregates them locally
func (a *PaymentsAPI) Stats(ctx context.Context, filter PaymentFilter) (finance.Stats, error) {
	payments, err := a.List(ctx, filter)
	if err != nil {
		return finance.Stats{}, err
	}
	in := make([]finance.Payment, 0, len(payments))
	for _, p := range payments {
		if p.Payment != nil {
			in = append(in, p.Payment.Finance())
		}
	}
	return finance.ComputeStats(in), nil
}

// ServerStats is GET /pagos/estadisticas
func (a *PaymentsAPI) ServerStats(ctx context.Context, filter PaymentFilter) (finance.Stats, error) {
	var out finance.Stats
	err := a.c.get(ctx, "/pagos/estadisticas", filter.values(), &out)
	return out, err
}

func (a *PaymentsAPI) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var out Payment
	if err := a.c.get(ctx, "/pagos/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *PaymentsAPI) ByContract(ctx context.Context, contratoID uuid.UUID) ([]Payment, error) {
	var out []Payment
	if err := a.c.get(ctx, "/pagos/contrato/"+contratoID.String(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *PaymentsAPI) Create(ctx context.Context, in PaymentInput) (*Payment, error) {
	var out Payment
	if err := a.c.send(ctx, http.MethodPost, "/pagos", in, &out, paymentTouches...); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *PaymentsAPI) Update(ctx context.Context, id uuid.UUID, in PaymentUpdate) (*Payment, error) {
	var out Payment
	if err := a.c.send(ctx, http.MethodPatch, "/pagos/"+id.String(), in, &out, paymentTouches...); err != nil {
		return nil, err
	}
	return &out, nil
}

// Abonar records an abono; the server completes the payment when it reaches montoTotal
func (a *PaymentsAPI) Abonar(ctx context.Context, id uuid.UUID, in Abono) (*Payment, error) {
	var out Payment
	if err := a.c.send(ctx, http.MethodPatch, "/pagos/"+id.String()+"/abono", in, &out, paymentTouches...); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *PaymentsAPI) Delete(ctx context.Context, id uuid.UUID) error {
	return a.c.send(ctx, http.MethodDelete, "/pagos/"+id.String(), nil, nil, paymentTouches...)
}

// Export is a downloaded report file
type Export struct {
	Data        []byte
	Filename    string
	ContentType string
}

type ReportsAPI struct {
	c *Client
}

func (a *ReportsAPI) Monthly(ctx context.Context, year int, month time.Month) (*finance.MonthlyIncome, error) {
	q := url.Values{"year": {strconv.Itoa(year)}, "month": {strconv.Itoa(int(month))}}
	var out finance.MonthlyIncome
	if err := a.c.get(ctx, "/reports/income/monthly", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ReportsAPI) Annual(ctx context.Context, year int) (*finance.AnnualIncome, error) {
	var out finance.AnnualIncome
	if err := a.c.get(ctx, "/reports/income/annual", url.Values{"year": {strconv.Itoa(year)}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Comparison covers from..to inclusive. An inverted range fails without a request.
func (a *ReportsAPI) Comparison(ctx context.Context, from, to finance.Date) (*finance.Comparison, error) {
	q, err := rangeQuery(from, to)
	if err != nil {
		return nil, err
	}
	var out finance.Comparison
	if err := a.c.get(ctx, "/reports/income/comparison", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportAnnual downloads the annual report as xlsx, pdf or csv
func (a *ReportsAPI) ExportAnnual(ctx context.Context, year int, format string) (*Export, error) {
	q := url.Values{"year": {strconv.Itoa(year)}}
	if format != "" {
		q.Set("format", format)
	}
	return a.export(ctx, "/reports/income/annual/export", q)
}

func (a *ReportsAPI) ExportComparison(ctx context.Context, from, to finance.Date, format string) (*Export, error) {
	q, err := rangeQuery(from, to)
	if err != nil {
		return nil, err
	}
	if format != "" {
		q.Set("format", format)
	}
	return a.export(ctx, "/reports/income/comparison/export", q)
}

func (a *ReportsAPI) export(ctx context.Context, path string, q url.Values) (*Export, error) {
	data, header, err := a.c.download(ctx, path, q)
	if err != nil {
		return nil, err
	}
	out := &Export{Data: data, ContentType: header.Get("Content-Type")}
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		out.Filename = params["filename"]
	}
	return out, nil
}

func rangeQuery(from, to finance.Date) (url.Values, error) {
	q := url.Values{}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidDateRange
	}
	if !from.IsZero() {
		q.Set("fechaInicio", from.String())
	}
	if !to.IsZero() {
		q.Set("fechaFin", to.String())
	}
	return q, nil
}

type DashboardAPI struct {
	c *Client
}

func (a *DashboardAPI) Stats(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	if err := a.c.get(ctx, "/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type NotificationsAPI struct {
	c *Client
}

// List fetches the current user's notifications; status is "read", "unread" or empty
func (a *NotificationsAPI) List(ctx context.Context, page, limit int, status string) (*Page[Notification], error) {
	params := ListParams{Page: page, Limit: limit}
	if status != "" {
		params.Filters = map[string]string{"status": status}
	}
	var out Page[Notification]
	if err := a.c.get(ctx, "/notifications", params.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *NotificationsAPI) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	err := a.c.get(ctx, "/notifications/unread-count", nil, &out)
	return out.Count, err
}

func (a *NotificationsAPI) MarkAsRead(ctx context.Context, id uint) (*Notification, error) {
	var out Notification
	if err := a.c.send(ctx, http.MethodPatch, fmt.Sprintf("/notifications/%d/read", id), nil, &out, "/notifications"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *NotificationsAPI) MarkAllAsRead(ctx context.Context) error {
	return a.c.send(ctx, http.MethodPost, "/notifications/read-all", nil, nil, "/notifications")
}

func (a *NotificationsAPI) Delete(ctx context.Context, id uint) error {
	return a.c.send(ctx, http.MethodDelete, fmt.Sprintf("/notifications/%d", id), nil, nil, "/notifications")
}

// LoginResult is the answer of login, refresh and register
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user"`
}

// CreateUserInput is the body of POST /auth/users and /auth/register
type CreateUserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
}

type AuthAPI struct {
	c *Client
}

// Login authenticates and returns the token pair. Use Client.WithToken to
// issue requests as the user.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	var out LoginResult
	if err := a.c.send(ctx, http.MethodPost, "/auth/login", body, &out, "/auth"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	var out LoginResult
	if err := a.c.send(ctx, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": refreshToken}, &out, "/auth"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Logout(ctx context.Context, refreshToken string) error {
	return a.c.send(ctx, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": refreshToken}, nil, "/")
}

// Register creates a user (admin only)
func (a *AuthAPI) Register(ctx context.Context, in CreateUserInput) (*LoginResult, error) {
	var out LoginResult
	if err := a.c.send(ctx, http.MethodPost, "/auth/register", in, &out, "/auth/users", "/dashboard"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) Profile(ctx context.Context) (*User, error) {
	var out User
	if err := a.c.get(ctx, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AuthAPI) ChangePassword(ctx context.Context, current, next, confirm string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next, "confirmPassword": confirm}
	return a.c.send(ctx, http.MethodPatch, "/auth/change-password", body, nil, "/auth/profile")
}

func (a *AuthAPI) RecoverPassword(ctx context.Context, email string) error {
	return a.c.send(ctx, http.MethodPost, "/auth/recover-password", map[string]string{"email": email}, nil, "/auth/recover-password")
}

func (a *AuthAPI) VerifyRecoveryCode(ctx context.Context, email, code string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	err := a.c.send(ctx, http.MethodPost, "/auth/verify-recovery-code", map[string]string{"email": email, "code": code}, &out, "/auth/verify-recovery-code")
	return out.Valid, err
}

func (a *AuthAPI) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	body := map[string]string{"email": email, "code": code, "newPassword": newPassword}
	return a.c.send(ctx, http.MethodPost, "/auth/reset-password", body, nil, "/auth/reset-password")
}
