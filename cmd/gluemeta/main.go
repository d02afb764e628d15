// Package main implements gluemeta, an inspection CLI over the Glue-backed
// Hive metastore.
package main

import (
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}
