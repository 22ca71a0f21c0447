package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewAirportCmd создаёт группу команд для аэропортов.
func NewAirportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airport",
		Short: "Manage airports",
	}

	cmd.AddCommand(
		newAirportListCmd(clientFn, outputFn),
		newAirportCreateCmd(clientFn, outputFn),
	)

	return cmd
}

var airportHeaders = []string{"IATA", "AIRPORT", "CITY", "STATE", "COUNTRY", "LAT", "LON"}

func airportRow(a AirportResponse) []string {
	state := ""
	if a.State != nil {
		state = *a.State
	}
	return []string{
		a.IATACode,
		a.Airport,
		a.City,
		state,
		a.Country,
		strconv.FormatFloat(a.Latitude, 'f', -1, 64),
		strconv.FormatFloat(a.Longitude, 'f', -1, 64),
	}
}

func newAirportListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all airports",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			airports, err := client.ListAirports()
			if err != nil {
				return err
			}

			rows := make([][]string, len(airports))
			for i, a := range airports {
				rows[i] = airportRow(a)
			}

			out.Print(airportHeaders, rows, airports)
			return nil
		},
	}
}

func newAirportCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req AirportResponse
	var state string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an airport",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			// Без --state поле уходит как null.
			if cmd.Flags().Changed("state") {
				req.State = &state
			}

			airport, err := client.CreateAirport(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Airport created: %s", airport.IATACode))
			out.Print(airportHeaders, [][]string{airportRow(*airport)}, airport)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.IATACode, "iata", "", "IATA code (required)")
	cmd.Flags().StringVar(&req.Airport, "name", "", "Airport name (required)")
	cmd.Flags().StringVar(&req.City, "city", "", "City (required)")
	cmd.Flags().StringVar(&state, "state", "", "State")
	cmd.Flags().StringVar(&req.Country, "country", "", "Country (required)")
	cmd.Flags().Float64Var(&req.Latitude, "lat", 0, "Latitude (required)")
	cmd.Flags().Float64Var(&req.Longitude, "lon", 0, "Longitude (required)")
	for _, f := range []string{"iata", "name", "city", "country", "lat", "lon"} {
		cmd.MarkFlagRequired(f)
	}

	return cmd
}
