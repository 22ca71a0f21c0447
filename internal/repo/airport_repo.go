package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Aerodata/internal/domain"
)

// AirportRepo — репозиторий аэропортов.
type AirportRepo struct {
	pool *pgxpool.Pool
}

// NewAirportRepo создаёт новый AirportRepo.
func NewAirportRepo(pool *pgxpool.Pool) *AirportRepo {
	return &AirportRepo{pool: pool}
}

// Create добавляет аэропорт.
func (r *AirportRepo) Create(ctx context.Context, a *domain.Airport) error {
	query := `
		INSERT INTO airports (iata_code, airport, city, state, country, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		a.IATACode,
		a.Airport,
		a.City,
		a.State,
		a.Country,
		a.Latitude,
		a.Longitude,
	)
	if err != nil {
		return mapWriteError("insert airport", err)
	}
	return nil
}

// List возвращает все аэропорты по возрастанию кода.
func (r *AirportRepo) List(ctx context.Context) ([]domain.Airport, error) {
	query := `
		SELECT iata_code, airport, city, state, country, latitude, longitude
		FROM airports
		ORDER BY iata_code
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list airports: %w", err)
	}
	defer rows.Close()

	var airports []domain.Airport
	for rows.Next() {
		var a domain.Airport
		if err := rows.Scan(
			&a.IATACode,
			&a.Airport,
			&a.City,
			&a.State,
			&a.Country,
			&a.Latitude,
			&a.Longitude,
		); err != nil {
			return nil, fmt.Errorf("scan airport: %w", err)
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}
