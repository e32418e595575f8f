// Mahasiswa manages student records in a local SQLite database and exports
// them as CSV or as a paginated HTML document.
//
// Usage:
//
//	# Add a student
//	mahasiswa add --nama "Ann" --npm 001 --kelas A
//
//	# List students in one class
//	mahasiswa list --where "kelas = :k" --param k=A
//
//	# Change a student's class
//	mahasiswa update 3 --kelas B
//
//	# Export everything as CSV, then as a printable document
//	mahasiswa export csv --out students.csv
//	mahasiswa export doc --out students.html --chunk-size 200
//
// Settings are read from --config, then MAHASISWA_* environment variables
// (a .env file in the working directory is loaded first), then flags.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/roach88/mahasiswa/internal/cli"
)

func main() {
	// Load .env if present; variables already set in the environment win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
