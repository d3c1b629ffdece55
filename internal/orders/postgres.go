package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/m3rciful/grocerybot/core/logger"
)

const orderColumns = `id, user_id, customer_name, phone, address, instructions, payment_method,
	items, subtotal, delivery_fee, total, status, note, created_at, updated_at`

type orderRow struct {
	ID            string          `db:"id"`
	UserID        int64           `db:"user_id"`
	CustomerName  string          `db:"customer_name"`
	Phone         string          `db:"phone"`
	Address       string          `db:"address"`
	Instructions  string          `db:"instructions"`
	PaymentMethod string          `db:"payment_method"`
	Items         string          `db:"items"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	DeliveryFee   decimal.Decimal `db:"delivery_fee"`
	Total         decimal.Decimal `db:"total"`
	Status        string          `db:"status"`
	Note          string          `db:"note"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func toRow(o Order) (orderRow, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return orderRow{}, fmt.Errorf("encode items: %w", err)
	}
	return orderRow{
		ID:            o.ID,
		UserID:        o.UserID,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		Instructions:  o.Instructions,
		PaymentMethod: o.PaymentMethod,
		Items:         string(items),
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		Total:         o.Total,
		Status:        string(o.Status),
		Note:          o.Note,
		CreatedAt:     o.CreatedAt.UTC(),
		UpdatedAt:     o.UpdatedAt.UTC(),
	}, nil
}

func (r orderRow) toOrder() (Order, error) {
	var items []Item
	if len(r.Items) > 0 {
		if err := json.Unmarshal([]byte(r.Items), &items); err != nil {
			return Order{}, fmt.Errorf("decode items of %s: %w", r.ID, err)
		}
	}
	return Order{
		ID:            r.ID,
		UserID:        r.UserID,
		CustomerName:  r.CustomerName,
		Phone:         r.Phone,
		Address:       r.Address,
		Instructions:  r.Instructions,
		PaymentMethod: r.PaymentMethod,
		Items:         items,
		Subtotal:      r.Subtotal,
		DeliveryFee:   r.DeliveryFee,
		Total:         r.Total,
		Status:        Status(r.Status),
		Note:          r.Note,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func toOrders(rows []orderRow) ([]Order, error) {
	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		o, err := r.toOrder()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// PostgresLedger stores orders in the orders and order_status_history tables.
type PostgresLedger struct {
	db *sqlx.DB
}

// NewPostgresLedger wraps an open connection; the schema comes from migrations/.
func NewPostgresLedger(db *sqlx.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Insert implements Ledger.
func (p *PostgresLedger) Insert(ctx context.Context, o Order) error {
	row, err := toRow(o)
	if err != nil {
		return fmt.Errorf("orders: insert %s: %w", o.ID, err)
	}
	start := time.Now()
	_, err = p.db.NamedExecContext(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES (:id, :user_id, :customer_name, :phone, :address, :instructions, :payment_method,
			:items, :subtotal, :delivery_fee, :total, :status, :note, :created_at, :updated_at)`, row)
	logger.Debug(ctx, "db", "orders.insert",
		slog.String("status", logger.Status(err)),
		slog.String("order_id", o.ID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
		}
		return fmt.Errorf("orders: insert %s: %w", o.ID, err)
	}
	return nil
}

// Get implements Ledger.
func (p *PostgresLedger) Get(ctx context.Context, id string) (Order, error) {
	var row orderRow
	err := p.db.GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if err != nil {
		return Order{}, fmt.Errorf("orders: get %s: %w", id, err)
	}
	return row.toOrder()
}

// UpdateStatus implements Ledger as a conditional UPDATE plus a history row in one transaction.
func (p *PostgresLedger) UpdateStatus(ctx context.Context, id string, from, to Status, note string, at time.Time) (Order, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return Order{}, fmt.Errorf("orders: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row orderRow
	err = tx.GetContext(ctx, &row, `UPDATE orders SET status = $1, note = $2, updated_at = $3
		WHERE id = $4 AND status = $5 RETURNING `+orderColumns,
		string(to), note, at.UTC(), id, string(from))
	if errors.Is(err, sql.ErrNoRows) {
		var current string
		lookupErr := tx.GetContext(ctx, &current, `SELECT status FROM orders WHERE id = $1`, id)
		if errors.Is(lookupErr, sql.ErrNoRows) {
			return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		if lookupErr != nil {
			return Order{}, fmt.Errorf("orders: lookup %s: %w", id, lookupErr)
		}
		return Order{}, fmt.Errorf("%w: %s is %s, expected %s", ErrConflict, id, current, from)
	}
	if err != nil {
		return Order{}, fmt.Errorf("orders: update %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO order_status_history (order_id, from_status, to_status, note, changed_at)
		VALUES ($1, $2, $3, $4, $5)`, id, string(from), string(to), note, at.UTC()); err != nil {
		return Order{}, fmt.Errorf("orders: history %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return Order{}, fmt.Errorf("orders: commit %s: %w", id, err)
	}
	return row.toOrder()
}

// ListByUser implements Ledger.
func (p *PostgresLedger) ListByUser(ctx context.Context, userID int64, limit int) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	var rows []orderRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("orders: list user %d: %w", userID, err)
	}
	return toOrders(rows)
}

// ListByStatus implements Ledger.
func (p *PostgresLedger) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	var rows []orderRow
	if err := p.db.SelectContext(ctx, &rows,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at, id`, string(status)); err != nil {
		return nil, fmt.Errorf("orders: list status %s: %w", status, err)
	}
	return toOrders(rows)
}

type historyRow struct {
	OrderID   string    `db:"order_id"`
	From      string    `db:"from_status"`
	To        string    `db:"to_status"`
	Note      string    `db:"note"`
	ChangedAt time.Time `db:"changed_at"`
}

// History implements Ledger.
func (p *PostgresLedger) History(ctx context.Context, id string) ([]StatusChange, error) {
	if _, err := p.Get(ctx, id); err != nil {
		return nil, err
	}
	var rows []historyRow
	if err := p.db.SelectContext(ctx, &rows, `SELECT order_id, from_status, to_status, note, changed_at
		FROM order_status_history WHERE order_id = $1 ORDER BY id`, id); err != nil {
		return nil, fmt.Errorf("orders: history %s: %w", id, err)
	}
	out := make([]StatusChange, 0, len(rows))
	for _, r := range rows {
		out = append(out, StatusChange{OrderID: r.OrderID, From: Status(r.From), To: Status(r.To), Note: r.Note, At: r.ChangedAt})
	}
	return out, nil
}
