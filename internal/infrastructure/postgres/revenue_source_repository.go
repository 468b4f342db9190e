package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Comisiones-api/internal/domain/entity"
	"github.com/jhoicas/Comisiones-api/internal/domain/repository"
)

var _ repository.RevenueSourceRepository = (*RevenueSourceRepo)(nil)

// RevenueSourceRepo lee contratos y pagos conciliados (tablas propiedad de otros módulos).
type RevenueSourceRepo struct {
	q Querier
}

// NewRevenueSourceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRevenueSourceRepository(q Querier) *RevenueSourceRepo {
	return &RevenueSourceRepo{q: q}
}

// ListByUserAndPeriod contratos del vendedor creados en el período con estado reconocido,
// cada uno con sus transacciones en estado conciliado. Dos consultas, sin N+1.
func (r *RevenueSourceRepo) ListByUserAndPeriod(ctx context.Context, q repository.RevenueSourceQuery) ([]entity.RevenueSource, error) {
	statuses := lowerAll(q.RecognizedStatuses)
	if len(statuses) == 0 {
		return nil, nil
	}

	contractsQuery := `
		SELECT id, code, created_by, status, total_amount, created_at
		FROM contracts
		WHERE created_by = $1
		  AND created_at >= $2 AND created_at < $3
		  AND lower(status) = ANY($4)
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, contractsQuery, q.UserID, q.Period.Start(), q.Period.End(), statuses)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	var (
		sources []entity.RevenueSource
		ids     []string
	)
	index := make(map[string]int)
	for rows.Next() {
		var c entity.Contract
		if err := rows.Scan(&c.ID, &c.Code, &c.UserID, &c.Status, &c.TotalAmount, &c.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		index[c.ID] = len(sources)
		ids = append(ids, c.ID)
		sources = append(sources, entity.RevenueSource{Contract: c})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	if len(ids) == 0 {
		return sources, nil
	}

	txQuery := `
		SELECT id, contract_id, amount, status, paid_at
		FROM payment_transactions
		WHERE contract_id = ANY($1) AND lower(status) = lower($2)
		ORDER BY paid_at, id`
	txRows, err := r.q.Query(ctx, txQuery, ids, q.MatchedStatus)
	if err != nil {
		return nil, fmt.Errorf("list payment transactions: %w", err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var tx entity.PaymentTransaction
		if err := txRows.Scan(&tx.ID, &tx.ContractID, &tx.Amount, &tx.Status, &tx.PaidAt); err != nil {
			return nil, fmt.Errorf("scan payment transaction: %w", err)
		}
		if i, ok := index[tx.ContractID]; ok {
			sources[i].MatchedTransactions = append(sources[i].MatchedTransactions, tx)
		}
	}
	return sources, txRows.Err()
}
