// Package all registers every database source backend.
package all

import (
	_ "lux/internal/source/mssql"
	_ "lux/internal/source/postgres"
	_ "lux/internal/source/sqlite"
)
