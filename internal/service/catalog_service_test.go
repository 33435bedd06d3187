package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/entity"
)

func TestGetProduct_PopulatesCacheOnMiss(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{ID: 10, Name: "Keyboard", Price: 1000, Stock: 5})
	orders := newFakeOrderRepo(products, nil)
	cache := newFakeProductCache()
	svc := NewCatalogService(products, newFakeReviewRepo(orders), cache)

	p, _, err := svc.GetProduct(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", p.Name)
	assert.Equal(t, 0, cache.hits)
	assert.Contains(t, cache.entries, int64(10), "miss must populate the cache")

	_, _, err = svc.GetProduct(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestGetProduct_NotFound(t *testing.T) {
	products := newFakeProductRepo()
	orders := newFakeOrderRepo(products, nil)
	svc := NewCatalogService(products, newFakeReviewRepo(orders), nil)

	_, _, err := svc.GetProduct(context.Background(), 99)
	var notFound *entity.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(99), notFound.ID)
}

func TestListProducts_EmptyIsNotFound(t *testing.T) {
	products := newFakeProductRepo()
	orders := newFakeOrderRepo(products, nil)
	svc := NewCatalogService(products, newFakeReviewRepo(orders), nil)

	_, _, err := svc.ListProducts(context.Background(), 1, 10)
	var notFound *entity.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no products available", err.Error())
}

func TestCreateProduct_Validation(t *testing.T) {
	products := newFakeProductRepo()
	orders := newFakeOrderRepo(products, nil)
	svc := NewCatalogService(products, newFakeReviewRepo(orders), nil)

	var precondition *entity.PreconditionError
	err := svc.CreateProduct(context.Background(), 1, &entity.Product{Price: 10})
	require.ErrorAs(t, err, &precondition)

	err = svc.CreateProduct(context.Background(), 1, &entity.Product{Name: "Keyboard", Price: -1})
	require.ErrorAs(t, err, &precondition)

	err = svc.CreateProduct(context.Background(), 1, &entity.Product{Name: "Keyboard", Price: 10, Stock: 3})
	require.NoError(t, err)
}
