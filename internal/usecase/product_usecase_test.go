package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	f.store.seedCategory(1, "Electronics")
	f.store.seedCategory(2, "Books")

	product, err := f.products.CreateProduct(context.Background(),
		NewProductReq("E-reader", "6 inch", dec("129.90"), 10, []int64{2, 1, 2}))
	require.NoError(t, err)

	assert.NotZero(t, product.ID)
	assert.Equal(t, "E-reader", product.Name)
	assert.ElementsMatch(t, []int64{1, 2}, product.CategoryIDs())
	assert.True(t, dec("129.9").Equal(product.Price))
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name string
		req  *ProductReq
		want error
	}{
		{"blank name", NewProductReq(" ", "", dec("1"), 1, []int64{1}), e.ErrProductNameRequired},
		{"negative price", NewProductReq("A", "", dec("-0.01"), 1, []int64{1}), e.ErrInvalidPrice},
		{"too precise price", NewProductReq("A", "", dec("9.999"), 1, []int64{1}), e.ErrPricePrecision},
		{"negative stock", NewProductReq("A", "", dec("1"), -1, []int64{1}), e.ErrNegativeStock},
		{"no categories", NewProductReq("A", "", dec("1"), 1, nil), e.ErrNoCategories},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(StockPolicyCumulative)
			f.store.seedCategory(1, "Electronics")

			_, err := f.products.CreateProduct(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, err, e.ErrInvalidRequest)
		})
	}
}

func TestCreateProductMissingCategories(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	f.store.seedCategory(1, "Electronics")

	_, err := f.products.CreateProduct(context.Background(),
		NewProductReq("Laptop", "", dec("10"), 1, []int64{9, 1, 7, 9}))

	var missing *e.MissingReferencesError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "category", missing.Kind)
	assert.Equal(t, []int64{9, 7}, missing.IDs)

	products, err := f.products.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestUpdateProductReplacesCategories(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	seedCatalog(f)
	f.store.seedCategory(2, "Gadgets")
	ctx := context.Background()

	updated, err := f.products.UpdateProduct(ctx, 1, NewProductReq("Laptop Pro", "16 inch", dec("1999.00"), 7, []int64{2}))
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, updated.CategoryIDs())
	assert.Equal(t, 7, updated.StockQuantity)

	// Пустой набор категорий при изменении допустим
	updated, err = f.products.UpdateProduct(ctx, 1, NewProductReq("Laptop Pro", "", dec("1999.00"), 7, nil))
	require.NoError(t, err)
	assert.Empty(t, updated.Categories)

	inElectronics, err := f.products.ProductsByCategory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, inElectronics, 1)
	assert.Equal(t, int64(2), inElectronics[0].ID)

	assert.Equal(t, 2, f.cache.invalidated())
}

func TestUpdateProductNotFound(t *testing.T) {
	f := newFixture(StockPolicyCumulative)

	_, err := f.products.UpdateProduct(context.Background(), 42, NewProductReq("A", "", dec("1"), 1, nil))
	require.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestProductsByUnknownCategoryIsEmpty(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	seedCatalog(f)

	products, err := f.products.ProductsByCategory(context.Background(), 404)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(StockPolicyCumulative)
	seedCatalog(f)
	ctx := context.Background()

	deleted, err := f.products.DeleteProduct(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "T-shirt", deleted.Name)

	_, err = f.products.GetProduct(ctx, 3)
	require.ErrorIs(t, err, e.ErrProductNotFound)

	_, err = f.products.DeleteProduct(ctx, 3)
	require.ErrorIs(t, err, e.ErrNotFound)
}
