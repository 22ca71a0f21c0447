package domain

// Airline — авиакомпания, ключ — двухбуквенный IATA код.
type Airline struct {
	IATACode string `json:"iata_code"`
	Airline  string `json:"airline"`
}

// AirlineRequiredFields — поля, без которых авиакомпания не создаётся.
var AirlineRequiredFields = []string{"iata_code", "airline"}
