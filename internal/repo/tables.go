package repo

import (
	"fmt"
	"strings"

	"github.com/shaiso/Aerodata/internal/export"
)

// Table — экспортируемая таблица: имя, схема колонок и порядок обхода.
type Table struct {
	Name    string
	Schema  export.Schema
	OrderBy string // первичный ключ, задаёт естественный порядок строк
}

// Tables — все экспортируемые таблицы в порядке их зависимостей.
var Tables = []Table{
	{
		Name:    "airlines",
		OrderBy: "iata_code",
		Schema: export.Schema{
			{Name: "iata_code", Label: "IATA Code", Type: export.TypeString},
			{Name: "airline", Label: "Airline", Type: export.TypeString},
		},
	},
	{
		Name:    "airports",
		OrderBy: "iata_code",
		Schema: export.Schema{
			{Name: "iata_code", Label: "IATA Code", Type: export.TypeString},
			{Name: "airport", Label: "Airport", Type: export.TypeString},
			{Name: "city", Label: "City", Type: export.TypeString},
			{Name: "state", Label: "State", Type: export.TypeString},
			{Name: "country", Label: "Country", Type: export.TypeString},
			{Name: "latitude", Label: "Latitude", Type: export.TypeFloat},
			{Name: "longitude", Label: "Longitude", Type: export.TypeFloat},
		},
	},
	{
		Name:    "flights",
		OrderBy: "id",
		Schema: export.Schema{
			{Name: "id", Label: "ID", Type: export.TypeInteger},
			{Name: "year", Label: "Year", Type: export.TypeInteger},
			{Name: "month", Label: "Month", Type: export.TypeInteger},
			{Name: "day", Label: "Day", Type: export.TypeInteger},
			{Name: "day_of_week", Label: "Day of Week", Type: export.TypeInteger},
			{Name: "airline", Label: "Airline", Type: export.TypeString},
			{Name: "flight_number", Label: "Flight Number", Type: export.TypeString},
			{Name: "tail_number", Label: "Tail Number", Type: export.TypeString},
			{Name: "origin_airport", Label: "Origin Airport", Type: export.TypeString},
			{Name: "destination_airport", Label: "Destination Airport", Type: export.TypeString},
			{Name: "scheduled_departure", Label: "Scheduled Departure", Type: export.TypeInteger},
			{Name: "departure_time", Label: "Departure Time", Type: export.TypeInteger},
			{Name: "departure_delay", Label: "Departure Delay", Type: export.TypeInteger},
			{Name: "taxi_out", Label: "Taxi Out", Type: export.TypeInteger},
			{Name: "wheels_off", Label: "Wheels Off", Type: export.TypeTimestamp},
			{Name: "scheduled_time", Label: "Scheduled Time", Type: export.TypeInteger},
			{Name: "elapsed_time", Label: "Elapsed Time", Type: export.TypeInteger},
			{Name: "air_time", Label: "Air Time", Type: export.TypeInteger},
			{Name: "distance", Label: "Distance", Type: export.TypeFloat},
			{Name: "wheels_on", Label: "Wheels On", Type: export.TypeTimestamp},
			{Name: "taxi_in", Label: "Taxi In", Type: export.TypeInteger},
			{Name: "scheduled_arrival", Label: "Scheduled Arrival", Type: export.TypeTimestamp},
			{Name: "arrival_time", Label: "Arrival Time", Type: export.TypeTimestamp},
			{Name: "arrival_delay", Label: "Arrival Delay", Type: export.TypeInteger},
			{Name: "diverted", Label: "Diverted", Type: export.TypeBoolean},
			{Name: "cancelled", Label: "Cancelled", Type: export.TypeBoolean},
			{Name: "cancellation_reason", Label: "Cancellation Reason", Type: export.TypeString},
			{Name: "air_system_delay", Label: "Air System Delay", Type: export.TypeInteger},
			{Name: "security_delay", Label: "Security Delay", Type: export.TypeInteger},
			{Name: "airline_delay", Label: "Airline Delay", Type: export.TypeInteger},
			{Name: "late_aircraft_delay", Label: "Late Aircraft Delay", Type: export.TypeInteger},
			{Name: "weather_delay", Label: "Weather Delay", Type: export.TypeInteger},
		},
	},
}

// LookupTable возвращает экспортируемую таблицу по имени.
func LookupTable(name string) (Table, error) {
	for _, t := range Tables {
		if t.Name == name {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
}

// TableNames возвращает имена всех экспортируемых таблиц.
func TableNames() []string {
	names := make([]string, len(Tables))
	for i, t := range Tables {
		names[i] = t.Name
	}
	return names
}

// SelectSQL возвращает переносимый запрос полного обхода таблицы.
func (t Table) SelectSQL() string {
	return "SELECT " + strings.Join(t.Schema.Names(), ", ") +
		" FROM " + t.Name + " ORDER BY " + t.OrderBy
}

// pgSelectSQL — SelectSQL с приведением типов, чтобы pgx отдавал значения
// тех Go-типов, которые понимает кодировщик (NUMERIC → float64 и т.п.).
func (t Table) pgSelectSQL() string {
	cols := make([]string, len(t.Schema))
	for i, c := range t.Schema {
		cols[i] = c.Name + "::" + pgCast(c.Type) + " AS " + c.Name
	}
	return "SELECT " + strings.Join(cols, ", ") +
		" FROM " + t.Name + " ORDER BY " + t.OrderBy
}

func pgCast(typ export.Type) string {
	switch typ {
	case export.TypeInteger:
		return "bigint"
	case export.TypeFloat:
		return "double precision"
	case export.TypeBoolean:
		return "boolean"
	case export.TypeTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}
