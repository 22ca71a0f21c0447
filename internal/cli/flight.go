package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewFlightCmd создаёт группу команд для рейсов.
func NewFlightCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flight",
		Short: "Manage flights",
	}

	cmd.AddCommand(
		newFlightListCmd(clientFn, outputFn),
		newFlightCreateCmd(clientFn, outputFn),
	)

	return cmd
}

var flightHeaders = []string{"ID", "DATE", "AIRLINE", "FLIGHT", "FROM", "TO", "DEP DELAY", "CANCELLED"}

func flightRow(f FlightResponse) []string {
	return []string{
		strconv.FormatInt(f.ID, 10),
		fmt.Sprintf("%04d-%02d-%02d", f.Year, f.Month, f.Day),
		f.Airline,
		f.FlightNumber,
		f.OriginAirport,
		f.DestinationAirport,
		strconv.Itoa(f.DepartureDelay),
		strconv.FormatBool(f.Cancelled),
	}
}

func newFlightListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all flights",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			flights, err := client.ListFlights()
			if err != nil {
				return err
			}

			rows := make([][]string, len(flights))
			for i, f := range flights {
				rows[i] = flightRow(f)
			}

			out.Print(flightHeaders, rows, flights)
			return nil
		},
	}
}

func newFlightCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var dataFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a flight from a JSON file",
		Long:  "Create a flight from a JSON object. Use --data-file - to read it from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			data, err := readDataFile(dataFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			flight, err := client.CreateFlight(data)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Flight created: %d", flight.ID))
			out.Print(flightHeaders, [][]string{flightRow(*flight)}, flight)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data-file", "", "Path to flight JSON file, - for stdin (required)")
	cmd.MarkFlagRequired("data-file")

	return cmd
}

// readDataFile читает JSON объект из файла или stdin ("-").
func readDataFile(path string, stdin io.Reader) (json.RawMessage, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("data file is not a JSON object")
	}

	return json.RawMessage(data), nil
}
