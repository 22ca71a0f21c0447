package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAirlineCmd создаёт группу команд для авиакомпаний.
func NewAirlineCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airline",
		Short: "Manage airlines",
	}

	cmd.AddCommand(
		newAirlineListCmd(clientFn, outputFn),
		newAirlineCreateCmd(clientFn, outputFn),
	)

	return cmd
}

func newAirlineListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all airlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			airlines, err := client.ListAirlines()
			if err != nil {
				return err
			}

			rows := make([][]string, len(airlines))
			for i, a := range airlines {
				rows[i] = []string{a.IATACode, a.Airline}
			}

			out.Print([]string{"IATA", "AIRLINE"}, rows, airlines)
			return nil
		},
	}
}

func newAirlineCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req AirlineResponse

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an airline",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			airline, err := client.CreateAirline(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Airline created: %s", airline.IATACode))
			out.Print(
				[]string{"IATA", "AIRLINE"},
				[][]string{{airline.IATACode, airline.Airline}},
				airline,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.IATACode, "iata", "", "IATA code (required)")
	cmd.Flags().StringVar(&req.Airline, "name", "", "Airline name (required)")
	cmd.MarkFlagRequired("iata")
	cmd.MarkFlagRequired("name")

	return cmd
}
