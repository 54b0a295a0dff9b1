// Package organization serves headquarters and their branches.
package organization

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-supply-api/internal/domains/organization/adapters/persistence"
	orgdomain "github.com/Apurer/go-gin-supply-api/internal/domains/organization/domain"
	"github.com/Apurer/go-gin-supply-api/internal/shared/crud"
)

// ActivitySource supplies the counts headquarters metrics derive from.
type ActivitySource interface {
	Counts(ctx context.Context, headquartersID int64) (branches, orders int64, err error)
}

// HeadquartersEntity configures the headquarters resource with its metrics
// and label sub-resources.
func HeadquartersEntity(activity ActivitySource) crud.Entity[orgdomain.Headquarters] {
	metrics := func(ctx context.Context, hq orgdomain.Headquarters) (orgdomain.Metrics, error) {
		branches, orders, err := activity.Counts(ctx, hq.HeadquartersID)
		if err != nil {
			return orgdomain.Metrics{}, err
		}
		return orgdomain.ComputeMetrics(branches, orders), nil
	}
	return crud.Entity[orgdomain.Headquarters]{
		Name:    "Headquarters",
		Path:    "headquarters",
		Table:   "headquarters",
		IDField: "headquartersId",
		Columns: []crud.Column{
			{Field: "name", Kind: crud.KindString, Required: true, Rules: "min=1,max=255"},
			{Field: "description", Kind: crud.KindString},
			{Field: "address", Kind: crud.KindString},
			{Field: "contactPerson", Kind: crud.KindString},
			{Field: "email", Kind: crud.KindString, Rules: "email"},
			{Field: "phone", Kind: crud.KindString},
		},
		Derived: []crud.Derived[orgdomain.Headquarters]{
			{
				Name: "metrics",
				Compute: func(ctx context.Context, hq orgdomain.Headquarters) (any, error) {
					return metrics(ctx, hq)
				},
			},
			{
				Name: "label",
				Compute: func(ctx context.Context, hq orgdomain.Headquarters) (any, error) {
					m, err := metrics(ctx, hq)
					if err != nil {
						return nil, err
					}
					return gin.H{"label": orgdomain.Label(m.Score)}, nil
				},
			},
		},
	}
}

// BranchEntity configures the branches resource.
func BranchEntity() crud.Entity[orgdomain.Branch] {
	return crud.Entity[orgdomain.Branch]{
		Name:    "Branch",
		Path:    "branches",
		Table:   "branches",
		IDField: "branchId",
		Columns: []crud.Column{
			{Field: "headquartersId", Kind: crud.KindInt, Required: true, Rules: "gt=0"},
			{Field: "name", Kind: crud.KindString, Required: true, Rules: "min=1,max=255"},
			{Field: "description", Kind: crud.KindString},
			{Field: "address", Kind: crud.KindString},
			{Field: "contactPerson", Kind: crud.KindString},
			{Field: "email", Kind: crud.KindString, Rules: "email"},
			{Field: "phone", Kind: crud.KindString},
		},
		ForeignKeys: []crud.ForeignKey{{Route: "headquarters", Field: "headquartersId"}},
	}
}

type Module struct {
	headquarters crud.Entity[orgdomain.Headquarters]
	Headquarters *crud.Repository[orgdomain.Headquarters]
	Branches     *crud.Repository[orgdomain.Branch]
}

func New(db *gorm.DB, opts ...crud.Option) *Module {
	hq := HeadquartersEntity(persistence.NewActivityCounter(db))
	return &Module{
		headquarters: hq,
		Headquarters: crud.NewRepository(db, hq, opts...),
		Branches:     crud.NewRepository(db, BranchEntity(), opts...),
	}
}

func (m *Module) Register(router gin.IRouter) {
	crud.NewHandler[orgdomain.Headquarters](m.Headquarters, m.headquarters).Register(router)
	crud.NewHandler[orgdomain.Branch](m.Branches, BranchEntity()).Register(router)
}
