package domain

// Airport — аэропорт, ключ — трёхбуквенный IATA код.
type Airport struct {
	IATACode  string  `json:"iata_code"`
	Airport   string  `json:"airport"`
	City      string  `json:"city"`
	State     *string `json:"state"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AirportRequiredFields — поля, без которых аэропорт не создаётся.
//
// Все NOT NULL колонки, кроме state.
var AirportRequiredFields = []string{"iata_code", "airport", "city", "country", "latitude", "longitude"}
