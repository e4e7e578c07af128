// Command jobtrack tracks job applications in a local SQLite database.
package main

import "github.com/roach88/jobtrack/internal/cli"

func main() {
	cli.Main()
}
