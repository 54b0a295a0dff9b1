package crud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-supply-api/internal/platform/sqlbuilder"
	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

const tracerName = "github.com/Apurer/go-gin-supply-api/internal/shared/crud"

// Store is the persistence contract handlers depend on.
type Store[T any] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id int64) (T, bool, error)
	FindBy(ctx context.Context, field string, value any) ([]T, error)
	Create(ctx context.Context, fields sqlbuilder.Fields) (T, error)
	Update(ctx context.Context, id int64, fields sqlbuilder.Fields) (T, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// Repository persists one entity through hand-built SQL on a shared pool.
type Repository[T any] struct {
	db      *gorm.DB
	entity  Entity[T]
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics repoMetrics
}

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter
}

// Option configures a Repository.
type Option func(*options)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer injects an OpenTelemetry tracer.
func WithTracer(tr trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tr
	}
}

// WithMeter injects an OpenTelemetry meter.
func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// NewRepository binds entity to db. The caller owns the pool.
func NewRepository[T any](db *gorm.DB, entity Entity[T], opts ...Option) *Repository[T] {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.tracer == nil {
		o.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return &Repository[T]{
		db:      db,
		entity:  entity,
		tracer:  o.tracer,
		logger:  o.logger,
		metrics: newRepoMetrics(o.meter),
	}
}

// Entity returns the configuration the repository was built with.
func (r *Repository[T]) Entity() Entity[T] {
	return r.entity
}

// FindAll lists every row ordered by identifier.
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	ctx, span := r.start(ctx, "FindAll")
	defer span.End()

	query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s ASC", r.entity.Table, r.entity.IDColumn())
	items, err := r.query(ctx, query)
	if err != nil {
		return nil, r.fail(ctx, span, "FindAll", err, nil)
	}
	span.SetAttributes(attribute.Int("crud.rows", len(items)))
	r.metrics.record(ctx, r.entity.Name, "FindAll", nil)
	return items, nil
}

// FindByID returns the entity and whether it exists. Absence is not an error.
func (r *Repository[T]) FindByID(ctx context.Context, id int64) (T, bool, error) {
	ctx, span := r.start(ctx, "FindByID", attribute.Int64("crud.id", id))
	defer span.End()

	item, ok, err := r.findByID(ctx, id)
	if err != nil {
		var zero T
		return zero, false, r.fail(ctx, span, "FindByID", err, id)
	}
	r.metrics.record(ctx, r.entity.Name, "FindByID", nil)
	return item, ok, nil
}

// FindBy lists rows whose field equals value. field must be one of the
// entity's columns.
func (r *Repository[T]) FindBy(ctx context.Context, field string, value any) ([]T, error) {
	ctx, span := r.start(ctx, "FindBy", attribute.String("crud.field", field))
	defer span.End()

	if _, ok := r.entity.column(field); !ok {
		return nil, r.fail(ctx, span, "FindBy", apperrors.NewValidation(field, "unknown field"), nil)
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ? ORDER BY %s ASC",
		r.entity.Table, sqlbuilder.ToSnakeCase(field), r.entity.IDColumn())
	items, err := r.query(ctx, query, value)
	if err != nil {
		return nil, r.fail(ctx, span, "FindBy", err, nil)
	}
	span.SetAttributes(attribute.Int("crud.rows", len(items)))
	r.metrics.record(ctx, r.entity.Name, "FindBy", nil)
	return items, nil
}

// Create inserts fields and returns the stored row as read back.
func (r *Repository[T]) Create(ctx context.Context, fields sqlbuilder.Fields) (T, error) {
	var zero T
	ctx, span := r.start(ctx, "Create")
	defer span.End()

	stmt, err := sqlbuilder.BuildInsertSQL(r.entity.Table, fields)
	if err != nil {
		return zero, r.fail(ctx, span, "Create", toValidation(err), nil)
	}
	var ids []int64
	err = r.db.WithContext(ctx).
		Raw(stmt.SQL+" RETURNING "+r.entity.IDColumn(), stmt.Values...).
		Scan(&ids).Error
	if err != nil {
		return zero, r.fail(ctx, span, "Create", err, nil)
	}
	if len(ids) == 0 {
		return zero, r.fail(ctx, span, "Create", apperrors.NewDatabase(r.entity.Name, nil,
			fmt.Errorf("insert into %s returned no identifier", r.entity.Table)), nil)
	}
	id := ids[0]
	span.SetAttributes(attribute.Int64("crud.id", id))

	item, ok, err := r.findByID(ctx, id)
	if err != nil {
		return zero, r.fail(ctx, span, "Create", err, id)
	}
	if !ok {
		return zero, r.fail(ctx, span, "Create", apperrors.NewDatabase(r.entity.Name, id,
			fmt.Errorf("failed to retrieve created %s", r.entity.Label())), id)
	}
	r.metrics.record(ctx, r.entity.Name, "Create", nil)
	r.logInfo(ctx, r.entity.Label()+" created", slog.Int64("id", id))
	return item, nil
}

// Update assigns only the supplied fields and returns the row as read back.
func (r *Repository[T]) Update(ctx context.Context, id int64, fields sqlbuilder.Fields) (T, error) {
	var zero T
	ctx, span := r.start(ctx, "Update", attribute.Int64("crud.id", id))
	defer span.End()

	stmt, err := sqlbuilder.BuildUpdateSQL(r.entity.Table, fields, r.entity.IDColumn()+" = ?")
	if err != nil {
		return zero, r.fail(ctx, span, "Update", toValidation(err), id)
	}
	stmt = stmt.With(id)
	result := r.db.WithContext(ctx).Exec(stmt.SQL, stmt.Values...)
	if result.Error != nil {
		return zero, r.fail(ctx, span, "Update", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return zero, r.fail(ctx, span, "Update", apperrors.NewNotFound(r.entity.Name, id), id)
	}
	item, ok, err := r.findByID(ctx, id)
	if err != nil {
		return zero, r.fail(ctx, span, "Update", err, id)
	}
	if !ok {
		return zero, r.fail(ctx, span, "Update", apperrors.NewDatabase(r.entity.Name, id,
			fmt.Errorf("failed to retrieve updated %s", r.entity.Label())), id)
	}
	r.metrics.record(ctx, r.entity.Name, "Update", nil)
	r.logInfo(ctx, r.entity.Label()+" updated", slog.Int64("id", id), slog.Any("fields", fields.Names()))
	return item, nil
}

// Delete removes the row. A missing row is a NotFoundError.
func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	ctx, span := r.start(ctx, "Delete", attribute.Int64("crud.id", id))
	defer span.End()

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.entity.Table, r.entity.IDColumn())
	result := r.db.WithContext(ctx).Exec(query, id)
	if result.Error != nil {
		return r.fail(ctx, span, "Delete", result.Error, id)
	}
	if result.RowsAffected == 0 {
		return r.fail(ctx, span, "Delete", apperrors.NewNotFound(r.entity.Name, id), id)
	}
	r.metrics.record(ctx, r.entity.Name, "Delete", nil)
	r.logInfo(ctx, r.entity.Label()+" deleted", slog.Int64("id", id))
	return nil
}

// Exists reports whether a row with id is stored.
func (r *Repository[T]) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, span := r.start(ctx, "Exists", attribute.Int64("crud.id", id))
	defer span.End()

	query := fmt.Sprintf("SELECT COUNT(*) AS count FROM %s WHERE %s = ?", r.entity.Table, r.entity.IDColumn())
	var rows []sqlbuilder.Row
	if err := r.db.WithContext(ctx).Raw(query, id).Scan(&rows).Error; err != nil {
		return false, r.fail(ctx, span, "Exists", err, id)
	}
	r.metrics.record(ctx, r.entity.Name, "Exists", nil)
	return existsFromCount(rows), nil
}

func (r *Repository[T]) findByID(ctx context.Context, id int64) (T, bool, error) {
	var zero T
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", r.entity.Table, r.entity.IDColumn())
	items, err := r.query(ctx, query, id)
	if err != nil || len(items) == 0 {
		return zero, false, err
	}
	return items[0], true, nil
}

func (r *Repository[T]) query(ctx context.Context, query string, args ...any) ([]T, error) {
	if r.db == nil {
		return nil, errors.New("crud repository not configured")
	}
	var rows []sqlbuilder.Row
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return r.entity.decodeRows(rows)
}

func (r *Repository[T]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("crud.entity", r.entity.Name))
	return r.tracer.Start(ctx, r.entity.Name+"Repository."+op, trace.WithAttributes(attrs...))
}

// fail classifies err, records it on the span and logs it. Not-found is an
// expected outcome and is logged at info.
func (r *Repository[T]) fail(ctx context.Context, span trace.Span, op string, err error, id any) error {
	err = apperrors.HandleDatabaseError(err, r.entity.Name, id)
	r.metrics.record(ctx, r.entity.Name, op, err)
	attrs := []slog.Attr{slog.String("op", op), slog.String("error", err.Error())}
	if id != nil {
		attrs = append(attrs, slog.Any("id", id))
	}
	if apperrors.IsNotFound(err) {
		r.logInfo(ctx, r.entity.Label()+" not found", attrs...)
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if r.logger != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, r.entity.Label()+" operation failed", attrs...)
	}
	return err
}

func (r *Repository[T]) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if r.logger == nil {
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func toValidation(err error) error {
	if errors.Is(err, sqlbuilder.ErrNoFields) {
		return apperrors.NewValidation("", "no fields provided")
	}
	return err
}

type repoMetrics struct {
	operations metric.Int64Counter
	failures   metric.Int64Counter
}

func newRepoMetrics(m metric.Meter) repoMetrics {
	if m == nil {
		return repoMetrics{}
	}
	operations, _ := m.Int64Counter("crud.repository.operations", metric.WithDescription("Number of repository operations"))
	failures, _ := m.Int64Counter("crud.repository.failures", metric.WithDescription("Number of failed repository operations"))
	return repoMetrics{operations: operations, failures: failures}
}

func (m repoMetrics) record(ctx context.Context, entity, op string, err error) {
	attrs := metric.WithAttributes(attribute.String("entity", entity), attribute.String("op", op))
	if m.operations != nil {
		m.operations.Add(ctx, 1, attrs)
	}
	if err != nil && m.failures != nil && !apperrors.IsNotFound(err) {
		m.failures.Add(ctx, 1, attrs)
	}
}

var _ Store[struct{}] = (*Repository[struct{}])(nil)
