package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auction-house/internal/domain"

	gomysql "github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

type MySQLBidRepository struct {
	db *sql.DB
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db}
}

// CreateBid appends an immutable bid record; the primary key is the
// authoritative duplicate check.
func (r *MySQLBidRepository) CreateBid(ctx context.Context, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, auction_id, user_id, amount, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		bid.ID, bid.AuctionID, bid.UserID, bid.Amount, bid.CreatedAt)
	if err != nil {
		var mysqlErr *gomysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return domain.ErrDuplicateBid
		}
		return fmt.Errorf("%w: insert bid: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *MySQLBidRepository) BidExists(ctx context.Context, bidID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM bids WHERE id = ?`, bidID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: bid lookup: %v", domain.ErrUnavailable, err)
	}
	return true, nil
}

func (r *MySQLBidRepository) GetBidsByAuction(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, user_id, amount, created_at
        FROM bids
        WHERE auction_id = ?
        ORDER BY created_at ASC
    `

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("%w: query bids: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var bid domain.Bid
		err := rows.Scan(&bid.ID, &bid.AuctionID, &bid.UserID, &bid.Amount, &bid.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scan bid: %v", domain.ErrUnavailable, err)
		}
		bids = append(bids, &bid)
	}

	return bids, rows.Err()
}
