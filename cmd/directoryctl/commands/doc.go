// Package commands defines the directoryctl CLI, an offline tool over a
// catalog file or the embedded seed.
//
// Commands
//
//   - search     Run a query against the catalog under a scope
//   - domains    List the business domains
//   - screens    Print the screens a role may reach
//   - validate   Check a catalog JSON file
//
// # Implementation
//
// The root command loads the catalog before any subcommand runs and serves it
// through the simulated backend with latency removed, so queries take the
// same path as the server's.
package commands
