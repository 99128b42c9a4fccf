// Command sqlast renders, validates and executes SQL statements described
// in YAML or JSON documents.
//
// Usage:
//
//	sqlast [flags] <command>
//
// Commands:
//   - render: print the compiled SQL and bound arguments for each document
//   - validate: build and compile every document without printing SQL
//   - exec: run each document against the configured PostgreSQL database
//   - config show: print the effective configuration
//   - version: print build information
package main

func main() {
	Execute()
}
