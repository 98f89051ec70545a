package ports

import (
	"context"

	"github.com/meridianpay/sagelink/internal/domain"
)

// TransactionStore is the append-only log of gateway calls. There is
// deliberately no update or delete: a record is written exactly once,
// immediately after the gateway answers, and Append must be atomic with
// respect to concurrent lookups.
type TransactionStore interface {
	// FindByTxID returns the most recent record carrying the gateway tx id,
	// optionally restricted to the given types. Returns domain.ErrNoRecord
	// when nothing matches.
	FindByTxID(ctx context.Context, txID string, types ...domain.TxType) (*domain.TransactionRecord, error)

	// FindRelated returns the most recent record of the given type and status
	// whose related_tx_id is relatedTxID. Returns domain.ErrNoRecord when
	// nothing matches.
	FindRelated(ctx context.Context, relatedTxID string, txType domain.TxType, status string) (*domain.TransactionRecord, error)

	// FindChain returns the record with the given tx id together with every
	// record transitively chained off it, oldest first.
	FindChain(ctx context.Context, txID string) ([]*domain.TransactionRecord, error)

	Append(ctx context.Context, rec *domain.TransactionRecord) error
}
