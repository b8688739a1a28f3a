package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/luestilo/estilo-backend/internal/products"
	"github.com/luestilo/estilo-backend/pkg/db"
	"github.com/luestilo/estilo-backend/pkg/db/models"
	"github.com/luestilo/estilo-backend/pkg/enums"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
	"github.com/luestilo/estilo-backend/pkg/pagination"
)

// Caller identifies the authenticated user behind a request. Regular users
// may only touch their own orders; superusers may touch any order.
type Caller struct {
	UserID      uuid.UUID
	IsSuperuser bool
}

func (c Caller) mayAccess(order *OrderDTO) bool {
	return c.IsSuperuser || order.UserID == c.UserID
}

// Service owns the transactional order logic. Order creation and deletion run
// inside a single unit of work so stock mutations and order rows commit or
// roll back together.
type Service struct {
	client   *db.Client
	orders   *Repository
	products *products.Repository
}

// NewService constructs an order service over the shared database client.
func NewService(client *db.Client) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &Service{
		client:   client,
		orders:   NewRepository(client.DB()),
		products: products.NewRepository(client.DB()),
	}, nil
}

// Create places an order for the user. Each line snapshots the product's
// current price, decrements its stock, and accumulates into the order total.
// Any missing product or stock shortage aborts the whole operation.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be greater than zero")
		}
	}

	var orderID uuid.UUID
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		productsRepo := s.products.WithTx(tx)

		order, err := ordersRepo.Create(ctx, &models.Order{
			UserID:      userID,
			Status:      enums.OrderStatusPending,
			TotalAmount: decimal.Zero,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		orderID = order.ID

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			product, err := productsRepo.FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeDomain,
						fmt.Sprintf("product %s not found", line.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
			}
			if product.Stock < line.Quantity {
				return pkgerrors.New(pkgerrors.CodeDomain,
					fmt.Sprintf("insufficient stock for product %s", product.Name))
			}

			unitPrice := product.Price
			totalPrice := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(totalPrice)

			items = append(items, models.OrderItem{
				OrderID:    order.ID,
				ProductID:  product.ID,
				Quantity:   line.Quantity,
				UnitPrice:  unitPrice,
				TotalPrice: totalPrice,
			})

			if err := productsRepo.AdjustStock(ctx, product.ID, -line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
		}

		if err := ordersRepo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order items")
		}
		if err := ordersRepo.SetTotal(ctx, order.ID, total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set order total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, orderID)
}

// Get returns a single order with its items. Orders belonging to someone else
// are off limits unless the caller is a superuser.
func (s *Service) Get(ctx context.Context, caller Caller, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.mayAccess(order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to access this order")
	}
	return order, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}
	return FromModel(order), nil
}

// List returns a paginated envelope of the user's orders.
func (s *Service) List(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) (*pagination.Envelope, error) {
	params = params.Normalize()
	rows, total, err := s.orders.ListByUser(ctx, userID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	envelope := pagination.NewEnvelope(FromModels(rows), total, params)
	return &envelope, nil
}

// Update applies a partial update. Status changes carry no stock side effects
// and any valid status may overwrite any other.
func (s *Service) Update(ctx context.Context, caller Caller, id uuid.UUID, req UpdateOrderRequest) (*OrderDTO, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("invalid order status %q", *req.Status))
		}
		if err := s.orders.UpdateStatus(ctx, id, *req.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
	}

	return s.load(ctx, id)
}

// Delete removes an order, restoring each referenced product's stock by the
// line quantity before deleting the lines and the order itself.
func (s *Service) Delete(ctx context.Context, caller Caller, id uuid.UUID) (*OrderDTO, error) {
	removed, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		productsRepo := s.products.WithTx(tx)

		order, err := ordersRepo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
		}

		for _, item := range order.Items {
			if err := productsRepo.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
			}
		}

		if err := ordersRepo.DeleteItems(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order items")
		}
		if err := ordersRepo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
