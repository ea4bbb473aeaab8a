package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLAuctionRepository struct {
	db *sql.DB
}

func NewMySQLAuctionRepository(db *sql.DB) *MySQLAuctionRepository {
	return &MySQLAuctionRepository{db: db}
}

func (r *MySQLAuctionRepository) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	winningBid, err := marshalWinningBid(auction.WinningBid)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO auctions (id, title, description, image_ref, owner_id, end_time,
                              min_price, status, winning_bid, version, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = r.db.ExecContext(ctx, query,
		auction.ID, auction.Title, auction.Description, auction.ImageRef,
		auction.OwnerID, auction.EndTime, auction.MinPrice, int(auction.Status),
		winningBid, auction.Version, auction.CreatedAt, auction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert auction: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *MySQLAuctionRepository) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `
        SELECT id, title, description, image_ref, owner_id, end_time,
               min_price, status, winning_bid, version, created_at, updated_at
        FROM auctions WHERE id = ?
    `

	auction, err := scanAuction(r.db.QueryRowContext(ctx, query, auctionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotExists
		}
		return nil, fmt.Errorf("%w: get auction: %v", domain.ErrUnavailable, err)
	}
	return auction, nil
}

// UpdateAuction is the optimistic write: the row is only touched when its
// version still matches what the caller read.
func (r *MySQLAuctionRepository) UpdateAuction(ctx context.Context, auction *domain.Auction, expectedVersion int64) error {
	winningBid, err := marshalWinningBid(auction.WinningBid)
	if err != nil {
		return err
	}

	query := `
        UPDATE auctions
        SET title = ?, description = ?, image_ref = ?, end_time = ?, min_price = ?,
            status = ?, winning_bid = ?, version = version + 1, updated_at = ?
        WHERE id = ? AND version = ?
    `
	res, err := r.db.ExecContext(ctx, query,
		auction.Title, auction.Description, auction.ImageRef, auction.EndTime,
		auction.MinPrice, int(auction.Status), winningBid, time.Now(),
		auction.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("%w: update auction: %v", domain.ErrUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update auction: %v", domain.ErrUnavailable, err)
	}
	if affected == 0 {
		if _, err := r.GetAuction(ctx, auction.ID); err != nil {
			return err
		}
		return domain.ErrConflict
	}

	auction.Version = expectedVersion + 1
	return nil
}

// UpdateAuctionStatus only moves the status forward; re-closing a closed
// auction matches no row and is a no-op.
func (r *MySQLAuctionRepository) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	query := `UPDATE auctions SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND status < ?`
	_, err := r.db.ExecContext(ctx, query, int(status), time.Now(), auctionID, int(status))
	if err != nil {
		return fmt.Errorf("%w: update auction status: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *MySQLAuctionRepository) GetExpiredAuctions(ctx context.Context, now time.Time) ([]*domain.Auction, error) {
	query := `
        SELECT id, title, description, image_ref, owner_id, end_time,
               min_price, status, winning_bid, version, created_at, updated_at
        FROM auctions WHERE status = ? AND end_time <= ?
    `

	rows, err := r.db.QueryContext(ctx, query, int(domain.StatusOpen), now)
	if err != nil {
		return nil, fmt.Errorf("%w: query expired auctions: %v", domain.ErrUnavailable, err)
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan expired auction: %v", domain.ErrUnavailable, err)
		}
		auctions = append(auctions, auction)
	}

	return auctions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuction(row rowScanner) (*domain.Auction, error) {
	var auction domain.Auction
	var status int
	var winningBid sql.NullString

	err := row.Scan(&auction.ID, &auction.Title, &auction.Description,
		&auction.ImageRef, &auction.OwnerID, &auction.EndTime, &auction.MinPrice,
		&status, &winningBid, &auction.Version, &auction.CreatedAt, &auction.UpdatedAt)
	if err != nil {
		return nil, err
	}

	auction.Status = domain.AuctionStatus(status)
	if winningBid.Valid && winningBid.String != "" {
		var bid domain.Bid
		if err := json.Unmarshal([]byte(winningBid.String), &bid); err != nil {
			return nil, err
		}
		auction.WinningBid = &bid
	}
	return &auction, nil
}

func marshalWinningBid(bid *domain.Bid) (sql.NullString, error) {
	if bid == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(bid)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
