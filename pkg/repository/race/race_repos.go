//nolint:whitespace //can't make both the linter and editor happy :(
package race

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/furyracing/race-engine/pkg/model"
	"github.com/furyracing/race-engine/pkg/repository"
)

func Create(ctx context.Context, conn repository.Querier, r *model.RaceResult) error {
	_, err := conn.Exec(ctx, `
insert into race_result (
	id, circuit_index, weather_score, player1, player2,
	player1_time, player2_time, player1_laps, player2_laps,
	packed, packed_hex, created_at
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		r.ID, r.CircuitIndex, r.WeatherScore, r.Player1, r.Player2,
		r.Player1Time, r.Player2Time, lapsOrEmpty(r.Player1Laps), lapsOrEmpty(r.Player2Laps),
		r.Packed, r.PackedHex, r.CreatedAt)
	if err != nil {
		return err
	}
	return nil
}

func LoadByID(
	ctx context.Context,
	conn repository.Querier,
	id uuid.UUID,
) (*model.RaceResult, error) {
	row := conn.QueryRow(ctx, fmt.Sprintf("%s where id=$1", selector), id)
	var item model.RaceResult
	if err := scan(&item, row); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByCircuit returns the latest results for a circuit, newest first.
func ListByCircuit(
	ctx context.Context,
	conn repository.Querier,
	circuitIndex, limit int,
) ([]*model.RaceResult, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s where circuit_index=$1 order by created_at desc limit $2", selector),
		circuitIndex, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := make([]*model.RaceResult, 0)
	for rows.Next() {
		var item model.RaceResult
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, &item)
	}
	return ret, rows.Err()
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByID(ctx context.Context, conn repository.Querier, id uuid.UUID) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from race_result where id=$1", id)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// Archive stores results in a single transaction per result.
type Archive struct {
	pool *pgxpool.Pool
}

func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

func (a *Archive) Store(ctx context.Context, r *model.RaceResult) error {
	return pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		return Create(ctx, tx, r)
	})
}

// little helper
const selector = string(`select id, circuit_index, weather_score, player1, player2,
player1_time, player2_time, player1_laps, player2_laps, packed, packed_hex, created_at
from race_result`)

func scan(e *model.RaceResult, row pgx.Row) error {
	return row.Scan(&e.ID, &e.CircuitIndex, &e.WeatherScore, &e.Player1, &e.Player2,
		&e.Player1Time, &e.Player2Time, &e.Player1Laps, &e.Player2Laps,
		&e.Packed, &e.PackedHex, &e.CreatedAt)
}

func lapsOrEmpty(laps []int) []int {
	if laps == nil {
		return []int{}
	}
	return laps
}
