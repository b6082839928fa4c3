// Command fieldnorm adds normalized ratio fields to a dataset.
//
// Usage:
//
//	fieldnorm [flags] <dataset> <fields> <norm_field> [suffix]
//	fieldnorm --config job.json [flags] [<dataset> <fields> <norm_field> [suffix]]
//
// <dataset> is a table name with the connection from --dsn, or <dsn>#<table>
// (the file path for --storage csv). <fields> is
// one field name, a semicolon-delimited list, or @path to a file with one
// field per line. Each input field F gets a new double field F<suffix>
// (numbered on collision) holding F / <norm_field>, null where the reference
// is zero or missing.
package main

import "os"

func main() {
	os.Exit(Execute())
}
