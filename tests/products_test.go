package tests

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/dto"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProductSvc() (service.ProductService, *stubProductRepo, *stubCategoryRepo, *stubHistoryRepo, *stubAudit) {
	productRepo := newStubProductRepo()
	categoryRepo := newStubCategoryRepo()
	historyRepo := &stubHistoryRepo{}
	audit := &stubAudit{}
	svc := service.NewProductService(productRepo, categoryRepo, historyRepo, audit)
	return svc, productRepo, categoryRepo, historyRepo, audit
}

func TestCreateProduct_HappyPath(t *testing.T) {
	svc, _, categoryRepo, _, audit := buildProductSvc()
	cat := categoryRepo.add(&model.Category{Name: "Coffee"})

	resp, err := svc.Create(context.Background(), staffActor(), dto.CreateProductRequest{
		Name:       "Espresso",
		Price:      decimal.NewFromFloat(2.50),
		CostPrice:  decimal.NewFromFloat(0.80),
		CategoryID: cat.ID.String(),
		Remaining:  12,
	})
	require.NoError(t, err)

	assert.Equal(t, "Espresso", resp.Name)
	assert.Equal(t, cat.ID, resp.CategoryID)
	assert.Equal(t, 12, resp.Remaining)
	assert.Equal(t, []string{model.AuditCreate}, audit.actions())
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	svc, _, _, _, _ := buildProductSvc()

	_, err := svc.Create(context.Background(), staffActor(), dto.CreateProductRequest{
		Name:       "Orphan",
		Price:      decimal.NewFromInt(1),
		CategoryID: uuid.New().String(),
	})
	var nf *service.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestCreateProduct_UnknownSubcategory(t *testing.T) {
	svc, _, categoryRepo, _, _ := buildProductSvc()
	cat := categoryRepo.add(&model.Category{Name: "Coffee"})
	ghost := uuid.New().String()

	_, err := svc.Create(context.Background(), staffActor(), dto.CreateProductRequest{
		Name:          "Espresso",
		Price:         decimal.NewFromInt(2),
		CategoryID:    cat.ID.String(),
		SubcategoryID: &ghost,
	})
	var nf *service.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestAdjustStock_AppliesDeltaAndRecordsLedger(t *testing.T) {
	svc, productRepo, _, historyRepo, audit := buildProductSvc()
	p := productRepo.add(&model.Product{Name: "Beans", Price: decimal.NewFromInt(9), Remaining: 5})

	resp, err := svc.AdjustStock(context.Background(), staffActor(), p.ID, dto.AdjustStockRequest{
		Delta:  -3,
		Reason: "spoilage",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Remaining)

	require.Len(t, historyRepo.rows, 1)
	h := historyRepo.rows[0]
	assert.Equal(t, model.HistoryInventoryAdjust, h.Operation)
	assert.Equal(t, -3, h.Quantity)
	assert.Equal(t, 5, h.StockBefore)
	assert.Equal(t, 2, h.StockAfter)
	assert.Equal(t, "spoilage", h.Reason)

	assert.Equal(t, []string{model.AuditInventoryAdjust}, audit.actions())
}

func TestAdjustStock_CannotGoNegative(t *testing.T) {
	svc, productRepo, _, historyRepo, _ := buildProductSvc()
	p := productRepo.add(&model.Product{Name: "Beans", Price: decimal.NewFromInt(9), Remaining: 5})

	_, err := svc.AdjustStock(context.Background(), staffActor(), p.ID, dto.AdjustStockRequest{
		Delta:  -6,
		Reason: "typo",
	})
	var be *service.BusinessError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, 5, p.Remaining)
	assert.Empty(t, historyRepo.rows)
}

func TestDeleteProduct_SoftDeleteHidesFromReads(t *testing.T) {
	svc, productRepo, _, _, audit := buildProductSvc()
	p := productRepo.add(&model.Product{Name: "Retired", Price: decimal.NewFromInt(3)})

	require.NoError(t, svc.Delete(context.Background(), staffActor(), p.ID))

	_, err := svc.Get(context.Background(), p.ID)
	var nf *service.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []string{model.AuditDelete}, audit.actions())
}

func TestRestoreProduct_RoundTrip(t *testing.T) {
	svc, productRepo, _, _, audit := buildProductSvc()
	p := productRepo.add(&model.Product{Name: "Seasonal", Price: decimal.NewFromInt(3)})

	require.NoError(t, svc.Delete(context.Background(), staffActor(), p.ID))

	resp, err := svc.Restore(context.Background(), staffActor(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, resp.DeletedAt)

	_, err = svc.Get(context.Background(), p.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{model.AuditDelete, model.AuditRestore}, audit.actions())
}

func TestRestoreProduct_NotDeleted(t *testing.T) {
	svc, productRepo, _, _, _ := buildProductSvc()
	p := productRepo.add(&model.Product{Name: "Live", Price: decimal.NewFromInt(3)})

	_, err := svc.Restore(context.Background(), staffActor(), p.ID)
	var be *service.BusinessError
	require.True(t, errors.As(err, &be))
}

func TestSetImage_UpdatesURLAndAudits(t *testing.T) {
	svc, productRepo, _, _, audit := buildProductSvc()
	p := productRepo.add(&model.Product{Name: "Latte", Price: decimal.NewFromInt(4)})

	resp, err := svc.SetImage(context.Background(), staffActor(), p.ID, "/uploads/latte.jpg")
	require.NoError(t, err)
	require.NotNil(t, resp.ImageURL)
	assert.Equal(t, "/uploads/latte.jpg", *resp.ImageURL)
	require.NotNil(t, p.ImageURL)
	assert.Equal(t, "/uploads/latte.jpg", *p.ImageURL)
	assert.Equal(t, []string{model.AuditUpdate}, audit.actions())
}

func TestSetImage_FailsWhenAuditCannotBeRecorded(t *testing.T) {
	productRepo := newStubProductRepo()
	svc := service.NewProductService(productRepo, newStubCategoryRepo(), &stubHistoryRepo{}, &failingAudit{})
	p := productRepo.add(&model.Product{Name: "Latte", Price: decimal.NewFromInt(4)})

	_, err := svc.SetImage(context.Background(), staffActor(), p.ID, "/uploads/latte.jpg")
	require.Error(t, err)
}

func TestProductHistory_UnknownProduct(t *testing.T) {
	svc, _, _, _, _ := buildProductSvc()
	_, _, err := svc.History(context.Background(), uuid.New(), 1, 50)
	var nf *service.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestProductHistory_SurvivesSoftDelete(t *testing.T) {
	svc, productRepo, _, historyRepo, _ := buildProductSvc()
	p := productRepo.add(&model.Product{Name: "Archived", Price: decimal.NewFromInt(3), Remaining: 1})
	historyRepo.rows = append(historyRepo.rows, model.ProductHistory{
		ProductID: p.ID,
		Operation: model.HistoryInventoryRemove,
		Quantity:  1,
	})

	require.NoError(t, svc.Delete(context.Background(), staffActor(), p.ID))

	rows, total, err := svc.History(context.Background(), p.ID, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, model.HistoryInventoryRemove, rows[0].Operation)
}
