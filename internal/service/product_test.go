package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"
	"github.com/daffodeal/marketplace/pkg/middleware"
	"github.com/daffodeal/marketplace/pkg/pagination"
	"github.com/daffodeal/marketplace/pkg/validator"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/storage"
)

type productFixture struct {
	svc      *ProductService
	products *mockProductRepository
	shops    *mockShopRepository
	uploader *mockUploader
	pub      *mockPublisher
}

func newProductFixture(opts ...ProductServiceOption) productFixture {
	f := productFixture{
		products: new(mockProductRepository),
		shops:    new(mockShopRepository),
		uploader: new(mockUploader),
		pub:      new(mockPublisher),
	}
	f.svc = NewProductService(f.products, f.shops, f.uploader, f.pub, newTestLogger(), opts...)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func createInput(images ...string) *CreateProductInput {
	return &CreateProductInput{
		ShopID:        sampleShop().ID,
		Name:          "Shirt",
		Description:   "Cotton shirt",
		Category:      "Apparel",
		OriginalPrice: 99900,
		DiscountPrice: 79900,
		Stock:         5,
		Images:        images,
	}
}

func TestCreateProduct_UploadsInOrder(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	shop := sampleShop()

	f.shops.On("GetByID", ctx, shop.ID).Return(shop, nil)
	f.uploader.On("Upload", ctx, "data:image/png;base64,AAA").
		Return(&storage.UploadResult{PublicID: "products/a", URL: "http://cdn/a"}, nil).Once()
	f.uploader.On("Upload", ctx, "data:image/png;base64,BBB").
		Return(&storage.UploadResult{PublicID: "products/b", URL: "http://cdn/b"}, nil).Once()
	f.products.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)
	f.pub.On("PublishProductCreated", ctx, mock.Anything).Return(nil)

	product, err := f.svc.CreateProduct(ctx, createInput("data:image/png;base64,AAA", "data:image/png;base64,BBB"))
	require.NoError(t, err)

	assert.NotEmpty(t, product.ID)
	assert.Equal(t, []domain.Image{
		{PublicID: "products/a", URL: "http://cdn/a"},
		{PublicID: "products/b", URL: "http://cdn/b"},
	}, product.Images)
	assert.Equal(t, shop.Snapshot(), product.Shop)
	assert.Equal(t, []string{}, product.Tags)
	assert.Equal(t, fixedNow, product.CreatedAt)

	calls := f.uploader.Calls
	require.Len(t, calls, 2)
	assert.Equal(t, "data:image/png;base64,AAA", calls[0].Arguments.String(1))
	f.products.AssertExpectations(t)
}

func TestCreateProduct_ShopWithoutAvatar(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	shop := sampleShop()
	shop.Avatar = domain.Avatar{}

	f.shops.On("GetByID", ctx, shop.ID).Return(shop, nil)
	f.uploader.On("Upload", ctx, "one").Return(&storage.UploadResult{PublicID: "products/1", URL: "u1"}, nil)
	f.products.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)
	f.pub.On("PublishProductCreated", ctx, mock.Anything).Return(nil)

	product, err := f.svc.CreateProduct(ctx, createInput("one"))
	require.NoError(t, err)
	assert.Equal(t, domain.Avatar{}, product.Shop.Avatar)
	f.products.AssertExpectations(t)
}

func TestCreateProduct_UploadFailureAborts(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	shop := sampleShop()
	uploadErr := apperrors.Upstream("image upload failed: bad payload", errors.New("400"))

	f.shops.On("GetByID", ctx, shop.ID).Return(shop, nil)
	f.uploader.On("Upload", ctx, "one").Return(&storage.UploadResult{PublicID: "products/1", URL: "u1"}, nil)
	f.uploader.On("Upload", ctx, "two").Return(nil, uploadErr)
	f.uploader.On("Destroy", ctx, "products/1").Return(nil)

	_, err := f.svc.CreateProduct(ctx, createInput("one", "two", "three"))
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
	assert.Contains(t, err.Error(), "upload image 2 of 3")

	f.uploader.AssertNotCalled(t, "Upload", mock.Anything, "three")
	f.uploader.AssertCalled(t, "Destroy", ctx, "products/1")
	f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProduct_ShopNotFound(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	input := createInput("one")

	f.shops.On("GetByID", ctx, input.ShopID).Return(nil, apperrors.NotFound("shop", input.ShopID))

	_, err := f.svc.CreateProduct(ctx, input)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
	f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestCreateProduct_MissingShopID(t *testing.T) {
	f := newProductFixture()
	input := createInput("one")
	input.ShopID = ""

	_, err := f.svc.CreateProduct(context.Background(), input)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
}

func TestCreateProduct_InvalidInputSkipsUploads(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	shop := sampleShop()
	f.shops.On("GetByID", ctx, shop.ID).Return(shop, nil)

	input := createInput()
	input.DiscountPrice = 0

	_, err := f.svc.CreateProduct(ctx, input)
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "images")
	assert.Contains(t, valErr.Fields(), "discountPrice")
	f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestCreateProduct_PublishFailureIsTolerated(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	shop := sampleShop()

	f.shops.On("GetByID", ctx, shop.ID).Return(shop, nil)
	f.uploader.On("Upload", ctx, "one").Return(&storage.UploadResult{PublicID: "products/1", URL: "u1"}, nil)
	f.products.On("Create", ctx, mock.Anything).Return(nil)
	f.pub.On("PublishProductCreated", ctx, mock.Anything).Return(errors.New("broker down"))

	_, err := f.svc.CreateProduct(ctx, createInput("one"))
	assert.NoError(t, err)
}

func TestListProducts_Paginates(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	params := pagination.New(2, 10)

	f.products.On("List", ctx, domain.ProductFilter{Page: 2, PerPage: 10}).
		Return([]domain.Product{{ID: "p-11"}}, 11, nil)

	res, err := f.svc.ListProducts(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 11, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
	assert.True(t, res.HasPrev)
	assert.False(t, res.HasNext)

	admin, err := f.svc.ListAllForAdmin(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, res, admin)
}

func TestListShopProducts_And_GetProduct(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.products.On("ListByShop", ctx, "s-1").Return([]domain.Product{{ID: "p-1"}}, nil)
	f.products.On("GetByID", ctx, "p-9").Return(nil, apperrors.NotFound("product", "p-9"))

	list, err := f.svc.ListShopProducts(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.GetProduct(ctx, "p-9")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteProduct_Authorization(t *testing.T) {
	product := &domain.Product{ID: "p-1", ShopID: "s-1"}

	tests := []struct {
		name    string
		actor   Actor
		allowed bool
	}{
		{name: "owning seller", actor: Actor{ID: "s-1", Role: middleware.RoleSeller}, allowed: true},
		{name: "admin", actor: Actor{ID: "u-admin", Role: middleware.RoleAdmin}, allowed: true},
		{name: "other seller", actor: Actor{ID: "s-2", Role: middleware.RoleSeller}},
		{name: "buyer", actor: Actor{ID: "u-1", Role: middleware.RoleUser}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture()
			ctx := context.Background()
			f.products.On("GetByID", ctx, "p-1").Return(product, nil)
			f.products.On("Delete", ctx, "p-1").Return(nil).Maybe()
			f.pub.On("PublishProductDeleted", ctx, product, tt.actor.ID).Return(nil).Maybe()

			err := f.svc.DeleteProduct(ctx, "p-1", tt.actor)
			if tt.allowed {
				require.NoError(t, err)
				f.products.AssertCalled(t, "Delete", ctx, "p-1")
				return
			}
			assert.Equal(t, http.StatusForbidden, apperrors.HTTPStatus(err))
			f.products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		})
	}
}

func TestDeleteProduct_KeepsImagesByDefault(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	product := &domain.Product{ID: "p-1", ShopID: "s-1", Images: []domain.Image{{PublicID: "products/1", URL: "u"}}}

	f.products.On("GetByID", ctx, "p-1").Return(product, nil)
	f.products.On("Delete", ctx, "p-1").Return(nil)
	f.pub.On("PublishProductDeleted", ctx, product, "s-1").Return(nil)

	require.NoError(t, f.svc.DeleteProduct(ctx, "p-1", Actor{ID: "s-1", Role: middleware.RoleSeller}))
	f.uploader.AssertNotCalled(t, "Destroy", mock.Anything, mock.Anything)
}

func TestDeleteProduct_PurgesUploadedImages(t *testing.T) {
	f := newProductFixture(WithImagePurge(true))
	ctx := context.Background()
	product := &domain.Product{ID: "p-1", ShopID: "s-1", Images: []domain.Image{
		{PublicID: "products/1", URL: "u1"},
		{PublicID: "image-2", URL: "http://a/2.png"},
		{PublicID: "products/3", URL: "u3"},
	}}

	f.products.On("GetByID", ctx, "p-1").Return(product, nil)
	f.products.On("Delete", ctx, "p-1").Return(nil)
	f.uploader.On("Destroy", ctx, "products/1").Return(errors.New("timeout"))
	f.uploader.On("Destroy", ctx, "products/3").Return(nil)
	f.pub.On("PublishProductDeleted", ctx, product, "u-admin").Return(nil)

	require.NoError(t, f.svc.DeleteProduct(ctx, "p-1", Actor{ID: "u-admin", Role: middleware.RoleAdmin}))
	f.uploader.AssertNumberOfCalls(t, "Destroy", 2)
	f.uploader.AssertNotCalled(t, "Destroy", mock.Anything, "image-2")
}

func TestDeleteProduct_NotFound(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()
	f.products.On("GetByID", ctx, "p-x").Return(nil, apperrors.NotFound("product", "p-x"))

	err := f.svc.DeleteProduct(ctx, "p-x", Actor{ID: "u", Role: middleware.RoleAdmin})
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
}
