package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shaiso/Aerodata/internal/domain"
)

// maxBodyBytes — предел тела POST запроса.
const maxBodyBytes = 1 << 20

// Airline DTOs

// CreateAirlineRequest — запрос на создание авиакомпании.
type CreateAirlineRequest struct {
	IATACode string `json:"iata_code"`
	Airline  string `json:"airline"`
}

// ToDomain конвертирует запрос в domain.Airline.
func (req CreateAirlineRequest) ToDomain() domain.Airline {
	return domain.Airline{IATACode: req.IATACode, Airline: req.Airline}
}

// Airport DTOs

// CreateAirportRequest — запрос на создание аэропорта.
type CreateAirportRequest struct {
	IATACode  string  `json:"iata_code"`
	Airport   string  `json:"airport"`
	City      string  `json:"city"`
	State     *string `json:"state"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ToDomain конвертирует запрос в domain.Airport.
func (req CreateAirportRequest) ToDomain() domain.Airport {
	return domain.Airport{
		IATACode:  req.IATACode,
		Airport:   req.Airport,
		City:      req.City,
		State:     req.State,
		Country:   req.Country,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
}

// Flight DTOs

// CreateFlightRequest — запрос на создание рейса.
// Метки времени приходят строками в ISO форме.
type CreateFlightRequest struct {
	Year               int      `json:"year"`
	Month              int      `json:"month"`
	Day                int      `json:"day"`
	DayOfWeek          int      `json:"day_of_week"`
	Airline            string   `json:"airline"`
	FlightNumber       string   `json:"flight_number"`
	TailNumber         *string  `json:"tail_number"`
	OriginAirport      string   `json:"origin_airport"`
	DestinationAirport string   `json:"destination_airport"`
	ScheduledDeparture int      `json:"scheduled_departure"`
	DepartureTime      int      `json:"departure_time"`
	DepartureDelay     int      `json:"departure_delay"`
	TaxiOut            *int     `json:"taxi_out"`
	WheelsOff          *string  `json:"wheels_off"`
	ScheduledTime      *int     `json:"scheduled_time"`
	ElapsedTime        *int     `json:"elapsed_time"`
	AirTime            *int     `json:"air_time"`
	Distance           *float64 `json:"distance"`
	WheelsOn           *string  `json:"wheels_on"`
	TaxiIn             *int     `json:"taxi_in"`
	ScheduledArrival   *string  `json:"scheduled_arrival"`
	ArrivalTime        *string  `json:"arrival_time"`
	ArrivalDelay       *int     `json:"arrival_delay"`
	Diverted           bool     `json:"diverted"`
	Cancelled          bool     `json:"cancelled"`
	CancellationReason *string  `json:"cancellation_reason"`
	AirSystemDelay     *int     `json:"air_system_delay"`
	SecurityDelay      *int     `json:"security_delay"`
	AirlineDelay       *int     `json:"airline_delay"`
	LateAircraftDelay  *int     `json:"late_aircraft_delay"`
	WeatherDelay       *int     `json:"weather_delay"`
}

// ToDomain конвертирует запрос в domain.Flight, разбирая метки времени.
func (req CreateFlightRequest) ToDomain() (domain.Flight, error) {
	f := domain.Flight{
		Year:               req.Year,
		Month:              req.Month,
		Day:                req.Day,
		DayOfWeek:          req.DayOfWeek,
		Airline:            req.Airline,
		FlightNumber:       req.FlightNumber,
		TailNumber:         req.TailNumber,
		OriginAirport:      req.OriginAirport,
		DestinationAirport: req.DestinationAirport,
		ScheduledDeparture: req.ScheduledDeparture,
		DepartureTime:      req.DepartureTime,
		DepartureDelay:     req.DepartureDelay,
		TaxiOut:            req.TaxiOut,
		ScheduledTime:      req.ScheduledTime,
		ElapsedTime:        req.ElapsedTime,
		AirTime:            req.AirTime,
		Distance:           req.Distance,
		TaxiIn:             req.TaxiIn,
		ArrivalDelay:       req.ArrivalDelay,
		Diverted:           req.Diverted,
		Cancelled:          req.Cancelled,
		CancellationReason: req.CancellationReason,
		AirSystemDelay:     req.AirSystemDelay,
		SecurityDelay:      req.SecurityDelay,
		AirlineDelay:       req.AirlineDelay,
		LateAircraftDelay:  req.LateAircraftDelay,
		WeatherDelay:       req.WeatherDelay,
	}

	var err error
	if f.WheelsOff, err = domain.ParseTimestampField("wheels_off", req.WheelsOff); err != nil {
		return f, err
	}
	if f.WheelsOn, err = domain.ParseTimestampField("wheels_on", req.WheelsOn); err != nil {
		return f, err
	}
	if f.ScheduledArrival, err = domain.ParseTimestampField("scheduled_arrival", req.ScheduledArrival); err != nil {
		return f, err
	}
	if f.ArrivalTime, err = domain.ParseTimestampField("arrival_time", req.ArrivalTime); err != nil {
		return f, err
	}
	return f, nil
}

// Export DTOs

// ExportColumnResponse — колонка экспортируемой таблицы.
type ExportColumnResponse struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// ExportTableResponse — экспортируемая таблица.
type ExportTableResponse struct {
	Table   string                 `json:"table"`
	URL     string                 `json:"url"`
	Columns []ExportColumnResponse `json:"columns"`
}

// SnapshotResponse — ответ на запрос снапшота.
type SnapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
	Table      string `json:"table"`
	Status     string `json:"status"`
}

// decodeCreate читает тело POST запроса: проверяет наличие обязательных
// полей и разбирает его в dst.
//
// Возвращает *domain.ValidationError для отсутствующих полей и полей не того типа.
func decodeCreate(w http.ResponseWriter, r *http.Request, required []string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return domain.NewValidationError("", "request body too large or unreadable", domain.ErrInvalidField)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return domain.NewValidationError("", "request body must be a JSON object", domain.ErrInvalidField)
	}
	if err := domain.RequireFields(fields, required); err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return domain.NewValidationError(typeErr.Field,
				fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value), domain.ErrInvalidField)
		}
		return domain.NewValidationError("", "invalid request body", domain.ErrInvalidField)
	}
	return nil
}
