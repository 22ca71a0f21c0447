package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Aerodata/internal/domain"
)

// flightColumns — колонки flights в порядке scanFlight и Create.
const flightColumns = `
	year, month, day, day_of_week, airline, flight_number, tail_number,
	origin_airport, destination_airport, scheduled_departure, departure_time, departure_delay,
	taxi_out, wheels_off, scheduled_time, elapsed_time, air_time, distance, wheels_on, taxi_in,
	scheduled_arrival, arrival_time, arrival_delay, diverted, cancelled, cancellation_reason,
	air_system_delay, security_delay, airline_delay, late_aircraft_delay, weather_delay`

// FlightRepo — репозиторий рейсов.
type FlightRepo struct {
	pool *pgxpool.Pool
}

// NewFlightRepo создаёт новый FlightRepo.
func NewFlightRepo(pool *pgxpool.Pool) *FlightRepo {
	return &FlightRepo{pool: pool}
}

// Create добавляет рейс и заполняет f.ID сгенерированным ключом.
func (r *FlightRepo) Create(ctx context.Context, f *domain.Flight) error {
	query := `
		INSERT INTO flights (` + flightColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		f.Year, f.Month, f.Day, f.DayOfWeek,
		f.Airline, f.FlightNumber, f.TailNumber,
		f.OriginAirport, f.DestinationAirport,
		f.ScheduledDeparture, f.DepartureTime, f.DepartureDelay,
		f.TaxiOut, f.WheelsOff, f.ScheduledTime, f.ElapsedTime, f.AirTime,
		f.Distance, f.WheelsOn, f.TaxiIn,
		f.ScheduledArrival, f.ArrivalTime, f.ArrivalDelay,
		f.Diverted, f.Cancelled, f.CancellationReason,
		f.AirSystemDelay, f.SecurityDelay, f.AirlineDelay, f.LateAircraftDelay, f.WeatherDelay,
	).Scan(&f.ID)
	if err != nil {
		return mapWriteError("insert flight", err)
	}
	return nil
}

// List возвращает все рейсы по возрастанию id.
func (r *FlightRepo) List(ctx context.Context) ([]domain.Flight, error) {
	query := `SELECT id,` + flightColumns + ` FROM flights ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer rows.Close()

	var flights []domain.Flight
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(
			&f.ID,
			&f.Year, &f.Month, &f.Day, &f.DayOfWeek,
			&f.Airline, &f.FlightNumber, &f.TailNumber,
			&f.OriginAirport, &f.DestinationAirport,
			&f.ScheduledDeparture, &f.DepartureTime, &f.DepartureDelay,
			&f.TaxiOut, &f.WheelsOff, &f.ScheduledTime, &f.ElapsedTime, &f.AirTime,
			&f.Distance, &f.WheelsOn, &f.TaxiIn,
			&f.ScheduledArrival, &f.ArrivalTime, &f.ArrivalDelay,
			&f.Diverted, &f.Cancelled, &f.CancellationReason,
			&f.AirSystemDelay, &f.SecurityDelay, &f.AirlineDelay, &f.LateAircraftDelay, &f.WeatherDelay,
		); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}
