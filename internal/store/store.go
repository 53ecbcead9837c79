package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"psylink/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDuplicateOrder    = errors.New("duplicate out_trade_no")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientQuota = errors.New("insufficient quota")
)

const uniqueViolation = "23505"

type Store struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO orders (
			id, out_trade_no, amount, amount_cents,
			package_id, package_name, user_id, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		order.ID,
		order.OutTradeNo,
		order.Amount,
		order.AmountCents,
		order.PackageID,
		order.PackageName,
		order.UserID,
		order.Status,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateOrder
		}
		return err
	}
	return nil
}

const orderColumns = `
	id, out_trade_no, amount, amount_cents,
	package_id, package_name, user_id, status,
	paid_at, buyer, created_at, updated_at`

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	row := s.Pool.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id=$1`, id)
	return scanOrder(row)
}

func (s *Store) GetOrderByOutTradeNo(ctx context.Context, outTradeNo string) (*models.Order, error) {
	row := s.Pool.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE out_trade_no=$1`, outTradeNo)
	return scanOrder(row)
}

// ListOrders returns all orders when userID is empty, newest first.
func (s *Store) ListOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	args := []any{}
	if userID != "" {
		query = `SELECT` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
		args = append(args, userID)
	}

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// MarkOrderPaid transitions an order from pending to paid. The status
// predicate makes the transition a compare-and-swap: under concurrent
// callback deliveries exactly one caller observes true, and only that
// caller may credit quota.
func (s *Store) MarkOrderPaid(ctx context.Context, outTradeNo string, paidAt time.Time, buyer string) (bool, error) {
	res, err := s.Pool.Exec(ctx, `
		UPDATE orders
		SET status='paid', paid_at=$2, buyer=$3, updated_at=now()
		WHERE out_trade_no=$1 AND status='pending'
	`, outTradeNo, paidAt, buyer)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, email, role, remaining_quota, created_at
		FROM users WHERE id=$1
	`, id)

	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Role, &user.RemainingQuota, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreditQuota adds amount to the user's balance in a single statement
// and returns the new balance.
func (s *Store) CreditQuota(ctx context.Context, userID string, amount int64) (int64, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE users
		SET remaining_quota = remaining_quota + $2
		WHERE id=$1
		RETURNING remaining_quota
	`, userID, amount)

	var balance int64
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}

// DebitQuota spends amount units, guarded so the balance never goes
// negative.
func (s *Store) DebitQuota(ctx context.Context, userID string, amount int64) (int64, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE users
		SET remaining_quota = remaining_quota - $2
		WHERE id=$1 AND remaining_quota >= $2
		RETURNING remaining_quota
	`, userID, amount)

	var balance int64
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, uerr := s.GetUser(ctx, userID); uerr != nil {
				return 0, uerr
			}
			return 0, ErrInsufficientQuota
		}
		return 0, err
	}
	return balance, nil
}

func (s *Store) CreateLink(ctx context.Context, link *models.Link) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO links (id, token, user_id, questionnaire_id, used)
		VALUES ($1,$2,$3,$4,$5)
	`, link.ID, link.Token, link.UserID, link.QuestionnaireID, link.Used)
	return err
}

func (s *Store) ListLinksByUser(ctx context.Context, userID string) ([]*models.Link, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, token, user_id, questionnaire_id, used, created_at
		FROM links WHERE user_id=$1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*models.Link
	for rows.Next() {
		var link models.Link
		if err := rows.Scan(&link.ID, &link.Token, &link.UserID, &link.QuestionnaireID, &link.Used, &link.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var paidAt sql.NullTime
	var buyer sql.NullString

	err := row.Scan(
		&order.ID,
		&order.OutTradeNo,
		&order.Amount,
		&order.AmountCents,
		&order.PackageID,
		&order.PackageName,
		&order.UserID,
		&order.Status,
		&paidAt,
		&buyer,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}
	if buyer.Valid {
		order.Buyer = &buyer.String
	}
	return &order, nil
}
