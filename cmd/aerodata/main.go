// Aerodata CLI — инструмент командной строки для работы со справочниками,
// рейсами и CSV выгрузками через HTTP API.
//
// Использование:
//
//	aerodata [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	airline   Управление авиакомпаниями
//	airport   Управление аэропортами
//	flight    Управление рейсами
//	export    CSV выгрузки и снапшоты
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/Aerodata/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "aerodata",
		Short:         "Aerodata CLI — flight data and CSV exports",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := "http://localhost:8080"
	if v := os.Getenv("AERODATA_API_URL"); v != "" {
		defaultURL = v
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewAirlineCmd(clientFn, outputFn),
		cli.NewAirportCmd(clientFn, outputFn),
		cli.NewFlightCmd(clientFn, outputFn),
		cli.NewExportCmd(clientFn, outputFn),
	)

	// Ctrl+C прерывает выгрузку, а не оставляет полуфайл
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
