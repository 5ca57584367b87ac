// dbsanitize - sanitization coverage CLI
//
// dbsanitize reports which database tables are not covered by
// database.sanitize.yml rule files and generates starter entries for them.
package main

import (
	"github.com/enunezf/dbsanitize/internal/cli"
)

func main() {
	cli.Execute()
}
