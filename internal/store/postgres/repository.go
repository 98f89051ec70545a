package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meridianpay/sagelink/internal/domain"
)

const recordColumns = `id, tx_id, vendor_tx_code, tx_type, tx_auth_num, security_key,
	related_tx_id, status, status_detail, amount_cents, currency,
	raw_request, raw_response, created_at`

// TransactionRepository is the append-only log of gateway calls. A record
// is a single-row INSERT, so concurrent readers see either the whole record
// or none of it; there is no UPDATE or DELETE anywhere in this package.
type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Append(ctx context.Context, rec *domain.TransactionRecord) error {
	query := `
		INSERT INTO transactions (
			id, tx_id, vendor_tx_code, tx_type, tx_auth_num, security_key,
			related_tx_id, status, status_detail, amount_cents, currency,
			raw_request, raw_response, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	m, err := toDBModel(rec)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query,
		m.ID,
		m.TxID,
		m.VendorTxCode,
		m.TxType,
		m.TxAuthNum,
		m.SecurityKey,
		m.RelatedTxID,
		m.Status,
		m.StatusDetail,
		m.AmountCents,
		m.Currency,
		m.RawRequest,
		m.RawResponse,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append transaction record: %w", err)
	}
	return nil
}

// FindByTxID returns the newest record carrying the gateway tx id,
// optionally restricted to the given types.
func (r *TransactionRepository) FindByTxID(ctx context.Context, txID string, types ...domain.TxType) (*domain.TransactionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE tx_id = $1 AND tx_id <> ''
	`, recordColumns)

	args := []any{txID}
	if len(types) > 0 {
		typeNames := make([]string, len(types))
		for i, t := range types {
			typeNames[i] = string(t)
		}
		query += " AND tx_type = ANY($2)"
		args = append(args, typeNames)
	}
	query += " ORDER BY created_at DESC LIMIT 1"

	row := r.db.QueryRow(ctx, query, args...)
	return scanRecord(row)
}

// FindRelated returns the newest record of the given type and status acting
// on relatedTxID.
func (r *TransactionRepository) FindRelated(ctx context.Context, relatedTxID string, txType domain.TxType, status string) (*domain.TransactionRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE related_tx_id = $1 AND tx_type = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, recordColumns)

	row := r.db.QueryRow(ctx, query, relatedTxID, string(txType), status)
	return scanRecord(row)
}

// FindChain walks the lineage from a tx id: the record itself plus every
// record transitively acting on it, oldest first.
func (r *TransactionRepository) FindChain(ctx context.Context, txID string) ([]*domain.TransactionRecord, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE chain AS (
			SELECT %s FROM transactions WHERE tx_id = $1 AND tx_id <> ''
			UNION
			SELECT %s FROM transactions t
			JOIN chain c ON t.related_tx_id = c.tx_id AND c.tx_id <> ''
		)
		SELECT * FROM chain ORDER BY created_at ASC
	`, recordColumns, prefixedColumns("t"))

	rows, err := r.db.Query(ctx, query, txID)
	if err != nil {
		return nil, fmt.Errorf("query transaction chain: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.TransactionRecord, error) {
		var m transactionModel
		if err := scanInto(row, &m); err != nil {
			return nil, err
		}
		return toDomainModel(&m)
	})
	if err != nil {
		return nil, fmt.Errorf("scan transaction chain: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*domain.TransactionRecord, error) {
	var m transactionModel
	if err := scanInto(row, &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoRecord
		}
		return nil, fmt.Errorf("scan transaction record: %w", err)
	}
	return toDomainModel(&m)
}

func scanInto(row pgx.Row, m *transactionModel) error {
	return row.Scan(
		&m.ID, &m.TxID, &m.VendorTxCode, &m.TxType, &m.TxAuthNum, &m.SecurityKey,
		&m.RelatedTxID, &m.Status, &m.StatusDetail, &m.AmountCents, &m.Currency,
		&m.RawRequest, &m.RawResponse, &m.CreatedAt,
	)
}

func prefixedColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.tx_id, %[1]s.vendor_tx_code, %[1]s.tx_type, %[1]s.tx_auth_num, %[1]s.security_key,
	%[1]s.related_tx_id, %[1]s.status, %[1]s.status_detail, %[1]s.amount_cents, %[1]s.currency,
	%[1]s.raw_request, %[1]s.raw_response, %[1]s.created_at`, alias)
}
