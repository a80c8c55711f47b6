package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"handyman_bids/internal/models/bid"
	"handyman_bids/internal/models/customer"
	"handyman_bids/internal/pricing"

	_ "github.com/lib/pq"
)

var (
	ErrNotFound         = errors.New("bid not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrBadRequest       = errors.New("bad request")
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stmt, err := db.Prepare(`
	CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	);
	`)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = stmt.Exec()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stmt, err = db.Prepare(`
	CREATE TABLE IF NOT EXISTS bids (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		project_name TEXT NOT NULL,
		date_created DATE NOT NULL DEFAULT CURRENT_DATE,
		subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
		markup_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		tax_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		total DOUBLE PRECISION NOT NULL DEFAULT 0,
		status VARCHAR(50) NOT NULL DEFAULT 'Draft'
	);
	`)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = stmt.Exec()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stmt, err = db.Prepare(`
	CREATE TABLE IF NOT EXISTS bid_items (
		bid_id BIGINT NOT NULL REFERENCES bids(id) ON DELETE CASCADE,
		position INT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		material_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
		labor_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		hourly_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY(bid_id, position)
	);
	`)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = stmt.Exec()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) SaveCustomer(req customer.CustomerRequest) (customer.Customer, error) {
	const op = "storage.postgres.SaveCustomer"
	var result customer.Customer

	stmt, err := s.db.Prepare(`
	INSERT INTO customers(name, email, phone, address)
	VALUES ($1, $2, $3, $4)
	RETURNING id, name, email, phone, address
	`)

	if err != nil {
		return customer.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	err = stmt.QueryRow(
		req.Name,
		req.Email,
		req.Phone,
		req.Address,
	).Scan(&result.Id, &result.Name, &result.Email, &result.Phone, &result.Address)

	if err != nil {
		return customer.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) ReadCustomers() ([]customer.Customer, error) {
	const op = "storage.postgres.ReadCustomers"
	result := make([]customer.Customer, 0)

	stmt, err := s.db.Prepare(`
	SELECT id, name, email, phone, address
	FROM customers
	ORDER BY id
	`)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cus customer.Customer

		err := rows.Scan(&cus.Id, &cus.Name, &cus.Email, &cus.Phone, &cus.Address)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, cus)
	}

	return result, nil
}

// SaveBid stores a priced bid as an immutable snapshot with status
// 'Draft'. The bid row and its line items are written in one
// transaction; line item order is preserved through the position
// column.
func (s *Storage) SaveBid(req bid.BidRequest, totals pricing.Totals) (bid.BidRecord, error) {
	const op = "storage.postgres.SaveBid"
	var result bid.BidRecord

	tx, err := s.db.Begin()
	if err != nil {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
	SELECT name, email
	FROM customers
	WHERE id = $1
	`, req.CustomerId).Scan(&result.CustomerName, &result.CustomerEmail)

	if errors.Is(err, sql.ErrNoRows) {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, ErrCustomerNotFound)
	}
	if err != nil {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	err = tx.QueryRow(`
	INSERT INTO bids(customer_id, project_name, subtotal, markup_pct, tax_pct, total)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, customer_id, project_name, date_created, subtotal, markup_pct, tax_pct, total, status
	`,
		req.CustomerId,
		req.ProjectName,
		totals.Subtotal,
		totals.MarkupPct,
		totals.TaxPct,
		totals.Total,
	).Scan(&result.Id, &result.CustomerId, &result.ProjectName, &result.DateCreated,
		&result.Subtotal, &result.MarkupPct, &result.TaxPct, &result.Total, &result.Status)

	if err != nil {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	for i, it := range req.Items {
		_, err = tx.Exec(`
		INSERT INTO bid_items(bid_id, position, description, material_cost, labor_hours, hourly_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		`, result.Id, i, it.Description, it.MaterialCost, it.LaborHours, it.HourlyRate)

		if err != nil {
			return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	result.Items = req.Items
	return result, nil
}

func (s *Storage) ReadBids(status string) ([]bid.BidListing, error) {
	const op = "storage.postgres.ReadBids"
	result := make([]bid.BidListing, 0)

	query := `
	SELECT bids.id, bids.date_created, customers.name, bids.project_name, bids.total, bids.status
	FROM bids
	INNER JOIN customers
	ON bids.customer_id = customers.id
	`

	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.Query(query + "ORDER BY bids.id DESC")
	} else {
		rows, err = s.db.Query(query+"WHERE bids.status = $1 ORDER BY bids.id DESC", status)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var b bid.BidListing

		err := rows.Scan(&b.Id, &b.DateCreated, &b.CustomerName, &b.ProjectName, &b.Total, &b.Status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		result = append(result, b)
	}

	return result, nil
}

func (s *Storage) ReadBid(bidId int64) (bid.BidRecord, error) {
	const op = "storage.postgres.ReadBid"
	var result bid.BidRecord

	stmt, err := s.db.Prepare(`
	SELECT bids.id, bids.customer_id, customers.name, customers.email, bids.project_name,
	       bids.date_created, bids.subtotal, bids.markup_pct, bids.tax_pct, bids.total, bids.status
	FROM bids
	INNER JOIN customers
	ON bids.customer_id = customers.id
	WHERE bids.id = $1
	`)

	if err != nil {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	err = stmt.QueryRow(bidId).Scan(&result.Id, &result.CustomerId, &result.CustomerName,
		&result.CustomerEmail, &result.ProjectName, &result.DateCreated, &result.Subtotal,
		&result.MarkupPct, &result.TaxPct, &result.Total, &result.Status)

	if errors.Is(err, sql.ErrNoRows) {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	stmt, err = s.db.Prepare(`
	SELECT description, material_cost, labor_hours, hourly_rate
	FROM bid_items
	WHERE bid_id = $1
	ORDER BY position
	`)

	if err != nil {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := stmt.Query(bidId)
	if err != nil {
		return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result.Items = make([]bid.LineItem, 0)
	for rows.Next() {
		var it bid.LineItem

		err := rows.Scan(&it.Description, &it.MaterialCost, &it.LaborHours, &it.HourlyRate)
		if err != nil {
			return bid.BidRecord{}, fmt.Errorf("%s: %w", op, err)
		}

		result.Items = append(result.Items, it)
	}

	return result, nil
}

// UpdateBidStatus overwrites the status field of one bid. Every other
// field is left untouched; statuses carry no transition rules.
func (s *Storage) UpdateBidStatus(bidId int64, status string) (bid.BidListing, error) {
	const op = "storage.postgres.UpdateBidStatus"
	var result bid.BidListing

	stmt, err := s.db.Prepare(`
	UPDATE bids
	SET status = $1
	FROM customers
	WHERE bids.id = $2 AND customers.id = bids.customer_id
	RETURNING bids.id, bids.date_created, customers.name, bids.project_name, bids.total, bids.status
	`)

	if err != nil {
		return bid.BidListing{}, fmt.Errorf("%s: %w", op, err)
	}

	err = stmt.QueryRow(status, bidId).Scan(&result.Id, &result.DateCreated, &result.CustomerName,
		&result.ProjectName, &result.Total, &result.Status)

	if errors.Is(err, sql.ErrNoRows) {
		return bid.BidListing{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return bid.BidListing{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
