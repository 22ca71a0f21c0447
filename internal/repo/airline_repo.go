package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Aerodata/internal/domain"
)

// AirlineRepo — репозиторий авиакомпаний.
type AirlineRepo struct {
	pool *pgxpool.Pool
}

// NewAirlineRepo создаёт новый AirlineRepo.
func NewAirlineRepo(pool *pgxpool.Pool) *AirlineRepo {
	return &AirlineRepo{pool: pool}
}

// Create добавляет авиакомпанию.
func (r *AirlineRepo) Create(ctx context.Context, a *domain.Airline) error {
	query := `
		INSERT INTO airlines (iata_code, airline)
		VALUES ($1, $2)
	`
	if _, err := r.pool.Exec(ctx, query, a.IATACode, a.Airline); err != nil {
		return mapWriteError("insert airline", err)
	}
	return nil
}

// List возвращает все авиакомпании по возрастанию кода.
func (r *AirlineRepo) List(ctx context.Context) ([]domain.Airline, error) {
	query := `
		SELECT iata_code, airline
		FROM airlines
		ORDER BY iata_code
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list airlines: %w", err)
	}
	defer rows.Close()

	var airlines []domain.Airline
	for rows.Next() {
		var a domain.Airline
		if err := rows.Scan(&a.IATACode, &a.Airline); err != nil {
			return nil, fmt.Errorf("scan airline: %w", err)
		}
		airlines = append(airlines, a)
	}
	return airlines, rows.Err()
}
