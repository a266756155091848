package repository

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrDuplicate is matched by every unique-constraint violation
	ErrDuplicate = errors.New("registro duplicado")
	// ErrInUse is returned when a delete is blocked by a foreign key
	ErrInUse = errors.New("el registro tiene contratos u otros registros asociados")
)

// DuplicateKeyError carries the Spanish message for a violated unique constraint
type DuplicateKeyError struct {
	Constraint string
	Message    string
}

func (e *DuplicateKeyError) Error() string { return e.Message }

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicate }

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 10,
		Filters: make(map[string]string),
	}
}

// TotalPages for a total row count
func (q *ListQuery) TotalPages(total int64) int {
	if q.PerPage <= 0 {
		return 1
	}
	return int((total + int64(q.PerPage) - 1) / int64(q.PerPage))
}

// CrudOptions describes how one entity is searched, filtered and sorted
type CrudOptions struct {
	// SearchColumns are matched with ILIKE against ListQuery.Search
	SearchColumns []string
	// FilterColumns maps a query filter key to an exact-match column
	FilterColumns map[string]string
	// BoolFilters maps a query filter key to a boolean column
	BoolFilters map[string]string
	// ActiveColumn is toggled by SetActive
	ActiveColumn    string
	SortableColumns []string
	// Table qualifies sort columns when a Scope joins other tables
	Table        string
	DefaultOrder string
	Preloads     []string
	// UniqueMessages maps a constraint name to the message returned on violation
	UniqueMessages map[string]string
	// Scope applies entity-specific list conditions
	Scope func(db *gorm.DB, q *ListQuery) *gorm.DB
}

// CrudRepository is the data access shared by tenants, properties, users and contracts
type CrudRepository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindOneBy(ctx context.Context, column string, value any) (*T, error)
	List(ctx context.Context, query *ListQuery) ([]T, int64, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Count(ctx context.Context, where map[string]any) (int64, error)
}

type crudRepository[T any] struct {
	db   *gorm.DB
	opts CrudOptions
}

// NewCrudRepository creates a generic repository for T
func NewCrudRepository[T any](db *gorm.DB, opts CrudOptions) CrudRepository[T] {
	return &crudRepository[T]{db: db, opts: opts}
}

func (r *crudRepository[T]) preload(db *gorm.DB) *gorm.DB {
	for _, p := range r.opts.Preloads {
		db = db.Preload(p)
	}
	return db
}

func (r *crudRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	err := r.preload(r.db.WithContext(ctx)).First(&entity, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *crudRepository[T]) FindOneBy(ctx context.Context, column string, value any) (*T, error) {
	var entity T
	err := r.preload(r.db.WithContext(ctx)).
		Where(column+" = ?", value).
		First(&entity).Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *crudRepository[T]) List(ctx context.Context, query *ListQuery) ([]T, int64, error) {
	var items []T
	var total int64

	db := r.db.WithContext(ctx).Model(new(T))

	if query.Search != "" && len(r.opts.SearchColumns) > 0 {
		search := "%" + query.Search + "%"
		conds := make([]string, len(r.opts.SearchColumns))
		args := make([]any, len(r.opts.SearchColumns))
		for i, col := range r.opts.SearchColumns {
			conds[i] = col + " ILIKE ?"
			args[i] = search
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	for key, col := range r.opts.FilterColumns {
		if val := query.Filters[key]; val != "" {
			db = db.Where(col+" = ?", val)
		}
	}
	for key, col := range r.opts.BoolFilters {
		if val, err := strconv.ParseBool(query.Filters[key]); err == nil {
			db = db.Where(col+" = ?", val)
		}
	}

	if r.opts.Scope != nil {
		db = r.opts.Scope(db, query)
	}

	// Count on a separate session so the main query is not altered
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order(r.order(query))

	if query.PerPage > 0 {
		page := max(query.Page, 1)
		db = db.Offset((page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := r.preload(db).Find(&items).Error
	return items, total, err
}

func (r *crudRepository[T]) order(query *ListQuery) string {
	if query.SortBy == "" || !slices.Contains(r.opts.SortableColumns, query.SortBy) {
		if r.opts.DefaultOrder != "" {
			return r.opts.DefaultOrder
		}
		return "created_at DESC"
	}
	col := query.SortBy
	if r.opts.Table != "" {
		col = r.opts.Table + "." + col
	}
	if strings.EqualFold(query.SortDir, "desc") {
		return col + " DESC"
	}
	return col + " ASC"
}

func (r *crudRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.translate(r.db.WithContext(ctx).Omit(r.opts.Preloads...).Create(entity).Error)
}

func (r *crudRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.translate(r.db.WithContext(ctx).Omit(r.opts.Preloads...).Save(entity).Error)
}

func (r *crudRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		if isPgError(result.Error, "23503") {
			return ErrInUse
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *crudRepository[T]) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if r.opts.ActiveColumn == "" {
		return errors.New("entity has no active column")
	}
	result := r.db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Update(r.opts.ActiveColumn, active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *crudRepository[T]) Count(ctx context.Context, where map[string]any) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(new(T))
	if len(where) > 0 {
		db = db.Where(where)
	}
	err := db.Count(&count).Error
	return count, err
}

func (r *crudRepository[T]) translate(err error) error {
	if err == nil {
		return nil
	}
	for constraint, msg := range r.opts.UniqueMessages {
		if isDuplicateKeyError(err, constraint) {
			return &DuplicateKeyError{Constraint: constraint, Message: msg}
		}
	}
	if isDuplicateKeyError(err, "") {
		return &DuplicateKeyError{Message: "Ya existe un registro con estos datos"}
	}
	return err
}

// isDuplicateKeyError matches a unique violation, on any constraint when constraintName is empty
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraintName == "" || pgErr.ConstraintName == constraintName)
	}
	return false
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
