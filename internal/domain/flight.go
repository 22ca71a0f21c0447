package domain

import "time"

// Flight — запись о рейсе.
//
// Указатели — nullable колонки. scheduled_departure и departure_time хранятся
// как целые HHMM, а wheels_off, wheels_on, scheduled_arrival и arrival_time —
// как полноценные метки времени.
type Flight struct {
	ID                 int64      `json:"id"`
	Year               int        `json:"year"`
	Month              int        `json:"month"`
	Day                int        `json:"day"`
	DayOfWeek          int        `json:"day_of_week"`
	Airline            string     `json:"airline"`
	FlightNumber       string     `json:"flight_number"`
	TailNumber         *string    `json:"tail_number"`
	OriginAirport      string     `json:"origin_airport"`
	DestinationAirport string     `json:"destination_airport"`
	ScheduledDeparture int        `json:"scheduled_departure"`
	DepartureTime      int        `json:"departure_time"`
	DepartureDelay     int        `json:"departure_delay"`
	TaxiOut            *int       `json:"taxi_out"`
	WheelsOff          *time.Time `json:"wheels_off"`
	ScheduledTime      *int       `json:"scheduled_time"`
	ElapsedTime        *int       `json:"elapsed_time"`
	AirTime            *int       `json:"air_time"`
	Distance           *float64   `json:"distance"`
	WheelsOn           *time.Time `json:"wheels_on"`
	TaxiIn             *int       `json:"taxi_in"`
	ScheduledArrival   *time.Time `json:"scheduled_arrival"`
	ArrivalTime        *time.Time `json:"arrival_time"`
	ArrivalDelay       *int       `json:"arrival_delay"`
	Diverted           bool       `json:"diverted"`
	Cancelled          bool       `json:"cancelled"`
	CancellationReason *string    `json:"cancellation_reason"`
	AirSystemDelay     *int       `json:"air_system_delay"`
	SecurityDelay      *int       `json:"security_delay"`
	AirlineDelay       *int       `json:"airline_delay"`
	LateAircraftDelay  *int       `json:"late_aircraft_delay"`
	WeatherDelay       *int       `json:"weather_delay"`
}

// FlightRequiredFields — поля, без которых рейс не создаётся.
var FlightRequiredFields = []string{
	"year", "month", "day", "day_of_week",
	"airline", "flight_number",
	"origin_airport", "destination_airport",
	"scheduled_departure", "departure_time", "departure_delay",
}
