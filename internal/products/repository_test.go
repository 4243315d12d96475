package product

import (
	"context"
	"testing"

	"github.com/angelmondragon/crm-backend/pkg/db/dbtest"
	"github.com/angelmondragon/crm-backend/pkg/db/models"
	"github.com/angelmondragon/crm-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestListProductsFiltersAndOrdering(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for _, p := range []models.Product{
		{Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: 10},
		{Name: "Phone", Price: decimal.RequireFromString("699.00"), Stock: 15},
		{Name: "Headphones", Price: decimal.RequireFromString("149.99"), Stock: 25},
		{Name: "Keyboard", Price: decimal.RequireFromString("89.50"), Stock: 30},
	} {
		p := p
		_, err := repo.CreateProduct(ctx, &p)
		require.NoError(t, err)
	}

	minPrice := decimal.RequireFromString("100")
	maxPrice := decimal.RequireFromString("700")
	res, err := repo.ListProducts(ctx, ListQuery{Filter: Filter{PriceGte: &minPrice, PriceLte: &maxPrice}, OrderBy: []string{"-price"}})
	require.NoError(t, err)
	require.Equal(t, []string{"Phone", "Headphones"}, productNames(res.Page.Items))
	require.EqualValues(t, 2, res.TotalCount)

	stockMin, stockMax := 15, 25
	res, err = repo.ListProducts(ctx, ListQuery{Filter: Filter{StockGte: &stockMin, StockLte: &stockMax}, OrderBy: []string{"stock"}})
	require.NoError(t, err)
	require.Equal(t, []string{"Phone", "Headphones"}, productNames(res.Page.Items))

	name := "PHONE"
	res, err = repo.ListProducts(ctx, ListQuery{Filter: Filter{Name: &name}, OrderBy: []string{"name"}})
	require.NoError(t, err)
	require.Equal(t, []string{"Headphones", "Phone"}, productNames(res.Page.Items))

	res, err = repo.ListProducts(ctx, ListQuery{Pagination: pagination.Params{Limit: 3}})
	require.NoError(t, err)
	require.Equal(t, []string{"Laptop", "Phone", "Headphones"}, productNames(res.Page.Items))
	require.True(t, res.Page.PageInfo.HasNextPage)

	res, err = repo.ListProducts(ctx, ListQuery{Pagination: pagination.Params{Limit: 3, Cursor: res.Page.PageInfo.EndCursor}})
	require.NoError(t, err)
	require.Equal(t, []string{"Keyboard"}, productNames(res.Page.Items))
	require.False(t, res.Page.PageInfo.HasNextPage)
}

func TestFindByIDs(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	p := &models.Product{Name: "Laptop", Price: decimal.RequireFromString("999.99")}
	_, err := repo.CreateProduct(ctx, p)
	require.NoError(t, err)

	found, err := repo.FindByIDs(ctx, []uuid.UUID{p.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, p.ID, found[0].ID)

	found, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, found)
}

func productNames(rows []models.Product) []string {
	out := make([]string, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.Name)
	}
	return out
}
