package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	seedCatalog(f)
	ctx := context.Background()

	category, err := f.cats.CreateCategory(ctx, NewCategoryReq("Sale", "Discounted", []int64{3, 1}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, category.ProductIDs())

	product, err := f.products.GetProduct(ctx, 3)
	require.NoError(t, err)
	assert.Contains(t, product.CategoryIDs(), category.ID)
}

func TestCreateCategoryValidation(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	ctx := context.Background()

	_, err := f.cats.CreateCategory(ctx, NewCategoryReq("", "", []int64{1}))
	require.ErrorIs(t, err, e.ErrCategoryNameRequired)

	_, err = f.cats.CreateCategory(ctx, NewCategoryReq("Sale", "", nil))
	require.ErrorIs(t, err, e.ErrNoProducts)
	require.ErrorIs(t, err, e.ErrInvalidRequest)
}

func TestCreateCategoryMissingProducts(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	seedCatalog(f)

	_, err := f.cats.CreateCategory(context.Background(), NewCategoryReq("Sale", "", []int64{1, 50, 51}))

	var missing *e.MissingReferencesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "product", missing.Kind)
	assert.Equal(t, []int64{50, 51}, missing.IDs)

	categories, err := f.cats.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestUpdateCategoryReplacesProducts(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	seedCatalog(f)
	ctx := context.Background()

	updated, err := f.cats.UpdateCategory(ctx, 1, NewCategoryReq("Tech", "All tech", []int64{3}))
	require.NoError(t, err)
	assert.Equal(t, "Tech", updated.Name)
	assert.Equal(t, []int64{3}, updated.ProductIDs())

	laptop, err := f.products.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, laptop.Categories)
}

func TestUpdateCategoryErrors(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	seedCatalog(f)
	ctx := context.Background()

	_, err := f.cats.UpdateCategory(ctx, 404, NewCategoryReq("X", "", nil))
	require.ErrorIs(t, err, e.ErrCategoryNotFound)

	_, err = f.cats.UpdateCategory(ctx, 1, NewCategoryReq(" ", "", nil))
	require.ErrorIs(t, err, e.ErrCategoryNameRequired)

	_, err = f.cats.UpdateCategory(ctx, 1, NewCategoryReq("X", "", []int64{1, 500}))
	require.ErrorIs(t, err, e.ErrUnresolvedReferences)

	category, err := f.cats.GetCategory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Electronics", category.Name)
	assert.ElementsMatch(t, []int64{1, 2}, category.ProductIDs())
}

func TestDeleteCategory(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	seedCatalog(f)
	ctx := context.Background()

	deleted, err := f.cats.DeleteCategory(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, deleted.Products, 2)

	_, err = f.cats.GetCategory(ctx, 1)
	require.ErrorIs(t, err, e.ErrNotFound)

	laptop, err := f.products.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, laptop.Categories)
}
