package orders

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vivaarte/vivaarte/app/models"
	"github.com/vivaarte/vivaarte/app/repository"
	"github.com/vivaarte/vivaarte/internal/pkg/mercadopago"
)

// fakeOrderRepo implements repository.OrderRepository in memory.
type fakeOrderRepo struct {
	orders map[string]*models.Order
	nextID uint

	createErr error
	saveErr   error
	saves     int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*models.Order{}}
}

func (f *fakeOrderRepo) Create(order *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	order.ID = f.nextID
	f.orders[order.OrderNumber] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(id uint) (*models.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) GetByOrderNumber(number string) (*models.Order, error) {
	o, ok := f.orders[number]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) GetByUserID(userID uint, offset, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) Save(order *models.Order) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.orders[order.OrderNumber] = order
	return nil
}

func (f *fakeOrderRepo) List(offset, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrderRepo) ListByStatus(status string, offset, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) Count() (int64, error) {
	return int64(len(f.orders)), nil
}

func (f *fakeOrderRepo) CountByStatus(status string) (int64, error) {
	var n int64
	for _, o := range f.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

// fakeProductRepo implements repository.ProductRepository with a stock
// map and the same conditional-decrement behavior as the real one.
type fakeProductRepo struct {
	products map[uint]*models.Product

	decrementCalls int
	incrementCalls int
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: map[uint]*models.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) Create(product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) GetByID(id uint) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProductRepo) GetBySlug(slug string) (*models.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProductRepo) Update(product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Delete(id uint) error {
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) List(offset, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepo) ListActive(offset, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Count() (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeProductRepo) Search(query string) ([]models.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) DecrementStock(id uint, quantity int) error {
	f.decrementCalls++
	p, ok := f.products[id]
	if !ok || p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (f *fakeProductRepo) IncrementStock(id uint, quantity int) error {
	f.incrementCalls++
	p, ok := f.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += quantity
	return nil
}

// fakePreferenceGateway implements PreferenceCreator.
type fakePreferenceGateway struct {
	err   error
	calls int
	last  mercadopago.PreferenceRequest
}

func (f *fakePreferenceGateway) CreatePreference(ctx context.Context, pref mercadopago.PreferenceRequest) (*mercadopago.PreferenceResponse, error) {
	f.calls++
	f.last = pref
	if f.err != nil {
		return nil, f.err
	}
	return &mercadopago.PreferenceResponse{
		ID:        fmt.Sprintf("pref-%d", f.calls),
		InitPoint: "https://gateway.example/checkout/pref",
	}, nil
}

func testProduct(id uint, name string, price float64, stock int) *models.Product {
	return &models.Product{
		ID:       id,
		Name:     name,
		Slug:     fmt.Sprintf("product-%d", id),
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
}
