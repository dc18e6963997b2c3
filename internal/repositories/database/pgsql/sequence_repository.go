package pgsql

import (
	"context"

	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSequenceRepository struct {
	BaseRepository
}

func newPgxSequenceRepository(pool *pgxpool.Pool) *PgxSequenceRepository {
	return &PgxSequenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

// NextValue increments the (tenant, prefix) counter atomically. The upsert
// commits on its own, so numbers taken by a failed caller are not reused.
func (r *PgxSequenceRepository) NextValue(ctx context.Context, tenantID, prefix string) (int64, error) {
	var value int64
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO entry_sequences (tenant_id, prefix, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, prefix) DO UPDATE SET last_value = entry_sequences.last_value + 1
		RETURNING last_value;`, tenantID, prefix).Scan(&value)
	if err != nil {
		return 0, mapPgError(err, "failed to advance entry sequence "+prefix, nil)
	}
	return value, nil
}
