package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/go-gin-supply-api/internal/platform/database/dbtest"
	"github.com/Apurer/go-gin-supply-api/internal/platform/sqlbuilder"
	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

func newSupplierRepo(t *testing.T, opts ...Option) *Repository[testSupplier] {
	t.Helper()
	return NewRepository(dbtest.Open(t), supplierEntity(), opts...)
}

func createSupplier(t *testing.T, repo *Repository[testSupplier], name string) testSupplier {
	t.Helper()
	s, err := repo.Create(context.Background(), sqlbuilder.Fields{{Name: "name", Value: name}})
	require.NoError(t, err)
	return s
}

func TestRepository_CreateReadsBackStoredRow(t *testing.T) {
	repo := newSupplierRepo(t)
	email := "ops@acme.test"

	created, err := repo.Create(context.Background(), sqlbuilder.Fields{
		{Name: "name", Value: "Acme"},
		{Name: "email", Value: email},
		{Name: "verified", Value: true},
	})
	require.NoError(t, err)

	assert.Positive(t, created.SupplierID)
	assert.Equal(t, "Acme", created.Name)
	require.NotNil(t, created.Email)
	assert.Equal(t, email, *created.Email)
	assert.True(t, created.Active, "store default applies")
	assert.True(t, created.Verified)
	assert.Nil(t, created.Phone)
}

func TestRepository_FindByIDAbsentIsNotAnError(t *testing.T) {
	repo := newSupplierRepo(t)

	_, ok, err := repo.FindByID(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)

	created := createSupplier(t, repo, "Acme")
	got, ok, err := repo.FindByID(context.Background(), created.SupplierID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, got)
}

func TestRepository_FindAllOrdersByID(t *testing.T) {
	repo := newSupplierRepo(t)

	items, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	a := createSupplier(t, repo, "A")
	b := createSupplier(t, repo, "B")
	c := createSupplier(t, repo, "C")

	items, err = repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int64{a.SupplierID, b.SupplierID, c.SupplierID},
		[]int64{items[0].SupplierID, items[1].SupplierID, items[2].SupplierID})
}

func TestRepository_UpdateTouchesOnlySuppliedFields(t *testing.T) {
	db := dbtest.Open(t)
	suppliers := NewRepository(db, supplierEntity())
	vehicles := NewRepository(db, vehicleEntity())
	ctx := context.Background()

	s := createSupplier(t, suppliers, "Acme")
	v, err := vehicles.Create(ctx, sqlbuilder.Fields{
		{Name: "supplierId", Value: s.SupplierID},
		{Name: "vehicleType", Value: "van"},
		{Name: "licensePlate", Value: "KR-1"},
		{Name: "capacity", Value: 900.0},
	})
	require.NoError(t, err)
	assert.Equal(t, "available", v.Status)

	updated, err := vehicles.Update(ctx, v.DeliveryVehicleID, sqlbuilder.Fields{{Name: "status", Value: "maintenance"}})
	require.NoError(t, err)
	assert.Equal(t, "maintenance", updated.Status)
	assert.Equal(t, v.LicensePlate, updated.LicensePlate)
	assert.Equal(t, v.Capacity, updated.Capacity)
	assert.Equal(t, v.VehicleType, updated.VehicleType)
}

func TestRepository_UpdateMissingIsNotFound(t *testing.T) {
	repo := newSupplierRepo(t)

	_, err := repo.Update(context.Background(), 42, sqlbuilder.Fields{{Name: "name", Value: "x"}})
	require.True(t, apperrors.IsNotFound(err))
}

func TestRepository_UpdateWithoutFieldsIsValidation(t *testing.T) {
	repo := newSupplierRepo(t)
	s := createSupplier(t, repo, "Acme")

	_, err := repo.Update(context.Background(), s.SupplierID, nil)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRepository_DeleteThenMissing(t *testing.T) {
	repo := newSupplierRepo(t)
	ctx := context.Background()
	s := createSupplier(t, repo, "Acme")

	require.NoError(t, repo.Delete(ctx, s.SupplierID))

	_, ok, err := repo.FindByID(ctx, s.SupplierID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = repo.Delete(ctx, s.SupplierID)
	require.True(t, apperrors.IsNotFound(err))
}

func TestRepository_Exists(t *testing.T) {
	repo := newSupplierRepo(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	s := createSupplier(t, repo, "Acme")
	ok, err = repo.Exists(ctx, s.SupplierID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, found, err := repo.FindByID(ctx, s.SupplierID)
	require.NoError(t, err)
	assert.Equal(t, found, ok, "Exists agrees with FindByID")

	require.NoError(t, repo.Delete(ctx, s.SupplierID))
	ok, err = repo.Exists(ctx, s.SupplierID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_FindByForeignKey(t *testing.T) {
	db := dbtest.Open(t)
	suppliers := NewRepository(db, supplierEntity())
	vehicles := NewRepository(db, vehicleEntity())
	ctx := context.Background()

	a := createSupplier(t, suppliers, "A")
	b := createSupplier(t, suppliers, "B")
	for i, owner := range []int64{a.SupplierID, b.SupplierID, a.SupplierID} {
		_, err := vehicles.Create(ctx, sqlbuilder.Fields{
			{Name: "supplierId", Value: owner},
			{Name: "vehicleType", Value: "van"},
			{Name: "licensePlate", Value: []string{"P-1", "P-2", "P-3"}[i]},
			{Name: "capacity", Value: 10.0},
		})
		require.NoError(t, err)
	}

	items, err := vehicles.FindBy(ctx, "supplierId", a.SupplierID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "P-1", items[0].LicensePlate)
	assert.Equal(t, "P-3", items[1].LicensePlate)

	_, err = vehicles.FindBy(ctx, "nonsense", 1)
	require.Error(t, err)
}

func TestRepository_ConstraintViolationsAreValidation(t *testing.T) {
	db := dbtest.Open(t)
	suppliers := NewRepository(db, supplierEntity())
	vehicles := NewRepository(db, vehicleEntity())
	ctx := context.Background()
	s := createSupplier(t, suppliers, "Acme")

	base := func(plate string) sqlbuilder.Fields {
		return sqlbuilder.Fields{
			{Name: "supplierId", Value: s.SupplierID},
			{Name: "vehicleType", Value: "van"},
			{Name: "licensePlate", Value: plate},
			{Name: "capacity", Value: 1.0},
		}
	}
	v, err := vehicles.Create(ctx, base("UNIQ-1"))
	require.NoError(t, err)

	var ve *apperrors.ValidationError

	_, err = vehicles.Update(ctx, v.DeliveryVehicleID, sqlbuilder.Fields{{Name: "status", Value: "flying"}})
	require.ErrorAs(t, err, &ve, "check constraint")

	_, err = vehicles.Create(ctx, base("UNIQ-1"))
	require.ErrorAs(t, err, &ve, "unique constraint")

	orphan := base("UNIQ-2")
	orphan[0].Value = int64(999)
	_, err = vehicles.Create(ctx, orphan)
	require.ErrorAs(t, err, &ve, "foreign key")

	err = suppliers.Delete(ctx, s.SupplierID)
	require.ErrorAs(t, err, &ve, "referenced row")
}

func TestRepository_RecordsSpansAndMetrics(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	ctx := context.Background()

	repo := newSupplierRepo(t, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")), WithLogger(nil))
	createSupplier(t, repo, "Acme")
	require.Error(t, repo.Delete(ctx, 77))
	_, err := repo.Update(ctx, 1, sqlbuilder.Fields{{Name: "name", Value: nil}})
	require.Error(t, err)

	ended := spans.Ended()
	require.NotEmpty(t, ended)
	names := make([]string, 0, len(ended))
	var failed int
	for _, s := range ended {
		names = append(names, s.Name())
		if s.Status().Code == codes.Error {
			failed++
		}
	}
	assert.Contains(t, names, "SupplierRepository.Create")
	assert.Contains(t, names, "SupplierRepository.Delete")
	assert.Equal(t, 1, failed, "not-found is not a span error, the NOT NULL violation is")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
		}
	}
	assert.True(t, found["crud.repository.operations"])
	assert.True(t, found["crud.repository.failures"])
}
