package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// AirlineResponse — авиакомпания из API.
type AirlineResponse struct {
	IATACode string `json:"iata_code"`
	Airline  string `json:"airline"`
}

// AirportResponse — аэропорт из API.
type AirportResponse struct {
	IATACode  string  `json:"iata_code"`
	Airport   string  `json:"airport"`
	City      string  `json:"city"`
	State     *string `json:"state"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FlightResponse — рейс из API: поля, которые показывает таблица CLI.
type FlightResponse struct {
	ID                 int64  `json:"id"`
	Year               int    `json:"year"`
	Month              int    `json:"month"`
	Day                int    `json:"day"`
	Airline            string `json:"airline"`
	FlightNumber       string `json:"flight_number"`
	OriginAirport      string `json:"origin_airport"`
	DestinationAirport string `json:"destination_airport"`
	DepartureDelay     int    `json:"departure_delay"`
	Cancelled          bool   `json:"cancelled"`
}

// ExportTableResponse — экспортируемая таблица из API.
type ExportTableResponse struct {
	Table   string `json:"table"`
	URL     string `json:"url"`
	Columns []struct {
		Name  string `json:"name"`
		Label string `json:"label"`
		Type  string `json:"type"`
	} `json:"columns"`
}

// SnapshotResponse — принятый запрос снапшота.
type SnapshotResponse struct {
	SnapshotID string `json:"snapshot_id"`
	Table      string `json:"table"`
	Status     string `json:"status"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Aerodata API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// streamClient без общего таймаута: выгрузка может идти долго,
	// её ограничивает контекст команды.
	streamClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{},
	}
}

// --- Airlines ---

// ListAirlines возвращает все авиакомпании.
func (c *Client) ListAirlines() ([]AirlineResponse, error) {
	var airlines []AirlineResponse
	err := c.list("/api/v1/airlines", nil, &airlines)
	return airlines, err
}

// CreateAirline создаёт авиакомпанию.
func (c *Client) CreateAirline(req AirlineResponse) (*AirlineResponse, error) {
	var airline AirlineResponse
	err := c.post("/api/v1/airlines", req, &airline)
	return &airline, err
}

// --- Airports ---

// ListAirports возвращает все аэропорты.
func (c *Client) ListAirports() ([]AirportResponse, error) {
	var airports []AirportResponse
	err := c.list("/api/v1/airports", nil, &airports)
	return airports, err
}

// CreateAirport создаёт аэропорт.
func (c *Client) CreateAirport(req AirportResponse) (*AirportResponse, error) {
	var airport AirportResponse
	err := c.post("/api/v1/airports", req, &airport)
	return &airport, err
}

// --- Flights ---

// ListFlights возвращает все рейсы.
func (c *Client) ListFlights() ([]FlightResponse, error) {
	var flights []FlightResponse
	err := c.list("/api/v1/flights", nil, &flights)
	return flights, err
}

// CreateFlight создаёт рейс из произвольного JSON объекта.
func (c *Client) CreateFlight(body json.RawMessage) (*FlightResponse, error) {
	var flight FlightResponse
	err := c.post("/api/v1/flights", body, &flight)
	return &flight, err
}

// --- Exports ---

// ListExports возвращает экспортируемые таблицы.
func (c *Client) ListExports() ([]ExportTableResponse, error) {
	var tables []ExportTableResponse
	err := c.list("/api/v1/exports", nil, &tables)
	return tables, err
}

// Export скачивает CSV выгрузку таблицы в w и возвращает число байт.
//
// Сервер обрывает поток при ошибке посреди выгрузки, поэтому
// неполный ответ возвращается ошибкой, даже если часть байт записана.
func (c *Client) Export(ctx context.Context, table string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/exports/"+url.PathEscape(table), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return 0, err
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("export truncated after %d bytes: %w", n, err)
	}
	return n, nil
}

// RequestSnapshot ставит снапшот таблицы в очередь.
func (c *Client) RequestSnapshot(table string) (*SnapshotResponse, error) {
	var snap SnapshotResponse
	err := c.post("/api/v1/exports/"+url.PathEscape(table)+"/snapshots", nil, &snap)
	return &snap, err
}

// --- HTTP helpers ---

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if er.Error.Field != "" {
		return fmt.Errorf("%s: %s (field %s)", er.Error.Code, er.Error.Message, er.Error.Field)
	}
	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
