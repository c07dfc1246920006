// Command lux infers column metadata (data types and measure/dimension
// roles) for a table read from a file, a URL or a database query.
//
// Usage:
//
//	lux infer cars.csv
//	lux infer --schema schema.json --format json cars.csv
//	lux infer --kind sqlite --dsn app.db --query 'SELECT * FROM orders'
//	lux infer --intent '?:measure' --intent origin cars.csv
//	lux validate --config lux.yaml
//	lux version
//
// Settings come from flags, LUX_* environment variables and an optional
// lux.yaml (see internal/config). Exit status is 1 on any failure, and on
// metadata errors when --strict is set.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
