package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shaiso/Aerodata/internal/export"
	"github.com/shaiso/Aerodata/internal/repo"
)

// NewExportCmd создаёт группу команд для CSV выгрузок.
func NewExportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tables as CSV",
	}

	cmd.AddCommand(
		newExportListCmd(clientFn, outputFn),
		newExportGetCmd(clientFn, outputFn),
		newExportSnapshotCmd(clientFn, outputFn),
	)

	return cmd
}

func newExportListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List exportable tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			tables, err := client.ListExports()
			if err != nil {
				return err
			}

			rows := make([][]string, len(tables))
			for i, t := range tables {
				rows[i] = []string{t.Table, fmt.Sprintf("%d", len(t.Columns)), t.URL}
			}

			out.Print([]string{"TABLE", "COLUMNS", "URL"}, rows, tables)
			return nil
		},
	}
}

func newExportGetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var outFile string
	var sqlitePath string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "get TABLE",
		Short: "Download a table as CSV",
		Long: "Download a table as CSV from the API, or with --sqlite read it " +
			"directly from a local SQLite database.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			table := args[0]

			var run func(ctx context.Context, w io.Writer) (int64, error)
			if sqlitePath != "" {
				run = func(ctx context.Context, w io.Writer) (int64, error) {
					stats, err := ExportSQLite(ctx, sqlitePath, table, batchSize, w)
					return stats.Bytes, err
				}
			} else {
				client := clientFn()
				run = func(ctx context.Context, w io.Writer) (int64, error) {
					return client.Export(ctx, table, w)
				}
			}

			if outFile == "" || outFile == "-" {
				_, err := run(cmd.Context(), out.Writer())
				return err
			}

			n, err := writeFileAtomic(outFile, func(w io.Writer) (int64, error) {
				return run(cmd.Context(), w)
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Exported %s: %d bytes to %s", table, n, outFile))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Export from a local SQLite database instead of the API")
	cmd.Flags().IntVar(&batchSize, "batch-size", export.DefaultBatchSize, "Rows per chunk for --sqlite")

	return cmd
}

func newExportSnapshotCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot TABLE",
		Short: "Request a server-side snapshot of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			snap, err := client.RequestSnapshot(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Snapshot requested: %s", snap.SnapshotID))
			out.Print(
				[]string{"SNAPSHOT", "TABLE", "STATUS"},
				[][]string{{snap.SnapshotID, snap.Table, snap.Status}},
				snap,
			)
			return nil
		},
	}
}

// ExportSQLite выгружает таблицу из SQLite базы в w через export.Stream.
func ExportSQLite(ctx context.Context, path, table string, batchSize int, w io.Writer) (export.Stats, error) {
	t, err := repo.LookupTable(table)
	if err != nil {
		return export.Stats{}, err
	}

	db, err := repo.OpenSQLite(ctx, path)
	if err != nil {
		return export.Stats{}, err
	}
	defer db.Close()

	cursor, err := repo.OpenSQLiteCursor(ctx, db, t)
	if err != nil {
		return export.Stats{}, err
	}

	session, err := export.Open(t.Schema, cursor, export.WithBatchSize(batchSize))
	if err != nil {
		cursor.Close()
		return export.Stats{}, err
	}
	defer session.Close()

	return export.Stream(ctx, session, w)
}

// writeFileAtomic пишет во временный файл рядом с path и переименовывает его
// только при успехе. При ошибке файл по пути path не появляется.
func writeFileAtomic(path string, write func(w io.Writer) (int64, error)) (n int64, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if n, err = write(bw); err != nil {
		return n, err
	}
	if err = bw.Flush(); err != nil {
		return n, fmt.Errorf("flush: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return n, fmt.Errorf("close: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return n, fmt.Errorf("rename: %w", err)
	}
	return n, nil
}
