package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"storefront/internal/entity"
)

func TestCreate_CommitsOrderLinesStockAndWishlist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewOrderRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	mock.ExpectQuery("INSERT INTO order_lines").
		WithArgs(int64(42), int64(10), 2, 1000.0, entity.LineStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectExec("UPDATE products SET stock").
		WithArgs(2, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery("INSERT INTO order_lines").
		WithArgs(int64(42), int64(11), 1, 500.0, entity.LineStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectExec("UPDATE products SET stock").
		WithArgs(1, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec("DELETE FROM wishlist_entries").
		WithArgs(int64(7), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM wishlist_entries").
		WithArgs(int64(7), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectCommit()

	order := &entity.Order{CustomerID: 7, AddressID: 3}
	lines := []entity.OrderLine{
		{ProductID: 10, ProductName: "Keyboard", Price: 1000, Quantity: 2},
		{ProductID: 11, ProductName: "Mouse", Price: 500, Quantity: 1},
	}

	if err := repo.Create(context.Background(), order, lines); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if order.ID != 42 {
		t.Fatalf("order.ID = %d, want 42", order.ID)
	}
	if len(order.Lines) != 2 || order.Lines[0].ID != 100 || order.Lines[1].ID != 101 {
		t.Fatalf("unexpected order lines: %+v", order.Lines)
	}
	if order.Lines[0].Status != entity.LineStatusPending {
		t.Fatalf("line status = %s, want PENDING", order.Lines[0].Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_RacedDecrementRollsBackEverything(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := NewOrderRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))
	mock.ExpectQuery("INSERT INTO order_lines").
		WithArgs(int64(42), int64(10), 2, 1000.0, entity.LineStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))

	// Another placement took the last unit between the pre-check and here.
	mock.ExpectExec("UPDATE products SET stock").
		WithArgs(2, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	order := &entity.Order{CustomerID: 7, AddressID: 3}
	lines := []entity.OrderLine{
		{ProductID: 10, ProductName: "Keyboard", Price: 1000, Quantity: 2},
	}

	err := repo.Create(context.Background(), order, lines)
	var insufficient *entity.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Name != "Keyboard" || insufficient.ProductID != 10 {
		t.Fatalf("error does not name the offending product: %+v", insufficient)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetLineStatus(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := NewOrderRepository(db)

	// PENDING -> DELIVERED applies.
	mock.ExpectExec("UPDATE order_lines SET status").
		WithArgs(entity.LineStatusDelivered, int64(100), entity.LineStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.SetLineStatus(context.Background(), 100, entity.LineStatusPending, entity.LineStatusDelivered)
	if err != nil || !applied {
		t.Fatalf("SetLineStatus = (%v, %v), want (true, nil)", applied, err)
	}

	// A line not in the source state is left untouched.
	mock.ExpectExec("UPDATE order_lines SET status").
		WithArgs(entity.LineStatusDelivered, int64(100), entity.LineStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err = repo.SetLineStatus(context.Background(), 100, entity.LineStatusPending, entity.LineStatusDelivered)
	if err != nil || applied {
		t.Fatalf("SetLineStatus = (%v, %v), want (false, nil)", applied, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := NewOrderRepository(db)

	mock.ExpectQuery("SELECT id, customer_id, address_id").
		WithArgs(int64(99), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "address_id", "created_at", "updated_at"}))

	order, err := repo.FindByID(context.Background(), 7, 99)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if order != nil {
		t.Fatalf("expected nil order, got %+v", order)
	}
}
