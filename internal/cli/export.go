package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mahasiswa/internal/config"
	"github.com/roach88/mahasiswa/internal/export"
)

// ExportOptions holds flags shared by the export subcommands.
type ExportOptions struct {
	*RootOptions
	QueryFlags
	Output string
}

// NewExportCommand creates the export command group.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export students to a file",
		Long: `Export student records as CSV or as a paginated HTML document.

Both formats accept the same --where/--param/--columns/--order-by selection
flags as list.`,
	}

	cmd.AddCommand(NewExportCSVCommand(rootOpts))
	cmd.AddCommand(NewExportDocCommand(rootOpts))

	return cmd
}

// CSVExportOptions holds flags for export csv.
type CSVExportOptions struct {
	ExportOptions
	Delimiter  string
	BufferSize int
	NoHeader   bool
}

// NewExportCSVCommand creates the export csv command.
func NewExportCSVCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CSVExportOptions{ExportOptions: ExportOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export students as CSV",
		Long: `Export student records as UTF-8 CSV with a header row.

Example:
  mahasiswa export csv --out students.csv
  mahasiswa export csv --out students.csv --delimiter ";" --where "kelas = :k" --param k=A`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportCSV(opts, cmd)
		},
	}

	opts.QueryFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "output file (required)")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", "", "field delimiter (default from config)")
	cmd.Flags().IntVar(&opts.BufferSize, "buffer-size", -1, "buffer size in bytes; 0 sizes from the data (default from config)")
	cmd.Flags().BoolVar(&opts.NoHeader, "no-header", false, "omit the header row")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func exportCSV(opts *CSVExportOptions, cmd *cobra.Command) error {
	spec, err := opts.spec(opts.table())
	if err != nil {
		return err
	}

	csvCfg := opts.Config.Export.CSV
	if cmd.Flags().Changed("delimiter") {
		csvCfg.Delimiter = opts.Delimiter
	}
	if cmd.Flags().Changed("buffer-size") {
		csvCfg.BufferSize = opts.BufferSize
	}
	if cmd.Flags().Changed("no-header") {
		csvCfg.NoHeader = opts.NoHeader
	}
	checked := *opts.Config
	checked.Export.CSV = csvCfg
	if err := config.Validate(&checked); err != nil {
		return invalidFlags(err)
	}

	ctx := cmd.Context()
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.SelectValues(ctx, spec)
	if err != nil {
		return wrapFailure("failed to read students", err)
	}

	exporter := export.NewCSVExporter(
		export.WithLogger(opts.Logger),
		export.WithMetrics(opts.Metrics),
	)
	exporter.Delimiter = csvCfg.DelimiterRune()
	exporter.BufferSize = csvCfg.BufferSize

	if csvCfg.NoHeader {
		err = exporter.ExportData(opts.Output, rows)
	} else {
		err = exporter.ExportDataWithHeaders(opts.Output, upperAll(headers(spec)), rows)
	}
	if err != nil {
		return wrapFailure("failed to export CSV", err)
	}

	return opts.formatter(cmd).Success(
		map[string]any{"path": opts.Output, "rows": len(rows)},
		fmt.Sprintf("Exported %d students to %s", len(rows), opts.Output),
	)
}

// DocExportOptions holds flags for export doc.
type DocExportOptions struct {
	ExportOptions
	Title     string
	Label     string
	ChunkSize int
}

// NewExportDocCommand creates the export doc command.
func NewExportDocCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DocExportOptions{ExportOptions: ExportOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Export students as a paginated HTML document",
		Long: `Export student records as a paginated HTML document. Rows are written
in chunks; each chunk becomes one printed page section with its own header
row, so memory use does not grow with the number of students.

Example:
  mahasiswa export doc --out students.html --title "Data Mahasiswa" --chunk-size 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportDoc(opts, cmd)
		},
	}

	opts.QueryFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "output file (required)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title (default from config)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label printed before the timestamp (default from config)")
	cmd.Flags().IntVar(&opts.ChunkSize, "chunk-size", 0, "rows per page section (default from config)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func exportDoc(opts *DocExportOptions, cmd *cobra.Command) error {
	spec, err := opts.spec(opts.table())
	if err != nil {
		return err
	}

	docCfg := opts.Config.Export.Document
	if cmd.Flags().Changed("title") {
		docCfg.Title = opts.Title
	}
	if cmd.Flags().Changed("label") {
		docCfg.Label = opts.Label
	}
	if cmd.Flags().Changed("chunk-size") {
		docCfg.ChunkSize = opts.ChunkSize
	}
	checked := *opts.Config
	checked.Export.Document = docCfg
	if err := config.Validate(&checked); err != nil {
		return invalidFlags(err)
	}

	cols := headers(spec)
	pagedCfg := export.PagedConfig{
		Title:            docCfg.Title,
		Label:            docCfg.Label,
		Headers:          cols,
		ChunkSize:        docCfg.ChunkSize,
		DateFormat:       docCfg.DateFormat,
		OmitTimestamp:    docCfg.OmitTimestamp,
		PageSize:         docCfg.PageSize,
		Orientation:      docCfg.Orientation,
		HeaderColor:      docCfg.HeaderColor,
		ZebraEven:        docCfg.ZebraEven,
		ZebraOdd:         docCfg.ZebraOdd,
		UppercaseHeaders: docCfg.UppercaseHeaders,
		PrefixHTML:       docCfg.PrefixHTML,
		SuffixHTML:       docCfg.SuffixHTML,
	}
	exporter, err := export.NewPagedExporter(pagedCfg,
		export.WithLogger(opts.Logger),
		export.WithMetrics(opts.Metrics),
	)
	if err != nil {
		return wrapFailure("invalid document settings", err)
	}

	ctx := cmd.Context()
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := exporter.Open(opts.Output); err != nil {
		return wrapFailure("failed to open document", err)
	}
	// Rows go straight from the cursor into the current chunk.
	if _, err := st.StreamValues(ctx, spec, exporter.WriteRow); err != nil {
		if exporter.IsOpen() {
			_ = exporter.Close()
		}
		_ = os.Remove(opts.Output)
		return wrapFailure("failed to export document", err)
	}
	if err := exporter.Close(); err != nil {
		return wrapFailure("failed to finish document", err)
	}

	stats := exporter.Stats()
	return opts.formatter(cmd).Success(
		map[string]any{"path": opts.Output, "rows": stats.RowsWritten, "sections": stats.Sections},
		fmt.Sprintf("Exported %d students to %s (%d sections)", stats.RowsWritten, opts.Output, stats.Sections),
	)
}

func upperAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}
