// Command atlas prints the Postgres DDL for every model so Atlas can diff it
// against a live database. See atlas.hcl at the repository root.
package main

import (
	"fmt"
	"io"
	"os"
	"taskflow/src/models"

	"ariga.io/atlas-provider-gorm/gormschema"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(models.All()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
}
