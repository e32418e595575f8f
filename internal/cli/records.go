package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/mahasiswa/internal/querysql"
	"github.com/roach88/mahasiswa/internal/store"
)

// targetParam is the filter placeholder update and delete bind the row id to.
const targetParam = "target_id"

// StudentFlags are the editable student fields.
type StudentFlags struct {
	Nama  string
	NPM   string
	Kelas string
}

func (s *StudentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.Nama, "nama", "", "student name (unique)")
	cmd.Flags().StringVar(&s.NPM, "npm", "", "student number")
	cmd.Flags().StringVar(&s.Kelas, "kelas", "", "class")
}

// fields returns the flags the user set, in column order.
func (s *StudentFlags) fields(cmd *cobra.Command) querysql.Fields {
	var fields querysql.Fields
	if cmd.Flags().Changed("nama") {
		fields = append(fields, querysql.F(store.ColumnNama, s.Nama))
	}
	if cmd.Flags().Changed("npm") {
		fields = append(fields, querysql.F(store.ColumnNPM, s.NPM))
	}
	if cmd.Flags().Changed("kelas") {
		fields = append(fields, querysql.F(store.ColumnKelas, s.Kelas))
	}
	return fields
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	student := &StudentFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Long: `Add one student record and print its new id.

Example:
  mahasiswa add --nama "Ann" --npm 001 --kelas A`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return addStudent(rootOpts, student, cmd)
		},
	}

	student.register(cmd)
	_ = cmd.MarkFlagRequired("nama")

	return cmd
}

func addStudent(opts *RootOptions, student *StudentFlags, cmd *cobra.Command) error {
	ctx := cmd.Context()
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Insert(ctx, opts.table(), student.fields(cmd))
	if err != nil {
		return wrapFailure("failed to add student", err)
	}

	return opts.formatter(cmd).Success(
		map[string]int64{"id": id},
		fmt.Sprintf("Added student %q with id %d", student.Nama, id),
	)
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	query := &QueryFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students",
		Long: `List student records, optionally filtered.

The filter is a SQL predicate with named placeholders; values are passed
separately with --param and are always bound, never spliced into the query.

Example:
  mahasiswa list
  mahasiswa list --where "kelas = :kelas" --param kelas=A --columns nama,npm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listStudents(rootOpts, query, cmd)
		},
	}

	query.register(cmd)

	return cmd
}

func (q *QueryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.Where, "where", "", "filter predicate with :name placeholders")
	cmd.Flags().StringArrayVar(&q.Params, "param", nil, "placeholder value as name=value (repeatable)")
	cmd.Flags().StringVar(&q.Columns, "columns", "", "comma-separated columns (default all)")
	cmd.Flags().StringVar(&q.OrderBy, "order-by", "", "column to sort by, ascending")
}

func listStudents(opts *RootOptions, query *QueryFlags, cmd *cobra.Command) error {
	ctx := cmd.Context()
	spec, err := query.spec(opts.table())
	if err != nil {
		return err
	}

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.SelectValues(ctx, spec)
	if err != nil {
		return wrapFailure("failed to list students", err)
	}

	opts.formatter(cmd).VerboseLog("%d rows", len(rows))
	return opts.formatter(cmd).Table(headers(spec), rows)
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	student := &StudentFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a student",
		Long: `Update the given fields of the student with this id. Only flags that
are passed are changed.

Example:
  mahasiswa update 3 --kelas B`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateStudent(rootOpts, student, args[0], cmd)
		},
	}

	student.register(cmd)

	return cmd
}

func updateStudent(opts *RootOptions, student *StudentFlags, rawID string, cmd *cobra.Command) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	fields := student.fields(cmd)
	if len(fields) == 0 {
		return NewExitError(ExitCommandError, "nothing to update: pass at least one of --nama, --npm, --kelas")
	}

	ctx := cmd.Context()
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ok, err := st.Update(ctx, opts.table(), fields, "id = :"+targetParam, querysql.Params{targetParam: id})
	if err != nil {
		return wrapFailure("failed to update student", err)
	}
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("no student with id %d", id))
	}

	return opts.formatter(cmd).Success(
		map[string]any{"id": id, "updated": true},
		fmt.Sprintf("Updated student %d", id),
	)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student",
		Long: `Delete the student with this id.

Example:
  mahasiswa delete 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteStudent(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func deleteStudent(opts *RootOptions, rawID string, cmd *cobra.Command) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ok, err := st.Delete(ctx, opts.table(), "id = :"+targetParam, querysql.Params{targetParam: id})
	if err != nil {
		return wrapFailure("failed to delete student", err)
	}
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("no student with id %d", id))
	}

	return opts.formatter(cmd).Success(
		map[string]any{"id": id, "deleted": true},
		fmt.Sprintf("Deleted student %d", id),
	)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q: must be a positive integer", raw))
	}
	return id, nil
}
