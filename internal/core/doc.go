// Package core runs the bronze to silver pipeline.
//
// It knows nothing about HTTP or the command line. The web server, the CLI
// and tests all drive the same [Service].
//
// # Table Registry
//
// Each silver table registers a [TableDefinition] at init time (see package
// tables). A definition names its bronze and silver columns and supplies a
// [ConformFunc] that reads bronze rows and returns load-ready silver rows:
//
//	core.Register(core.TableDefinition{
//	    Info:    core.TableInfo{Key: "crm_cust_info", Group: "CRM", Label: "Customers"},
//	    Conform: conformCustomers,
//	})
//
// # Runs
//
// [Service.Run] rebuilds every selected table. Tables are independent, so
// they run concurrently up to the configured limit. Each table is replaced in
// its own transaction: a failed table keeps its previous contents and the
// others still load. With fail-fast set, the first failure cancels the rest.
//
// Only one run executes at a time by default; see [RunLimiter].
//
// # Error Handling
//
// Failures are wrapped in [TableError] and mapped to operator-facing codes
// by [MapError]:
//
//   - DB001-DB006: database errors
//   - SRC001-SRC004: extract errors
//   - RUN001-RUN004: run control errors
//   - TBL001: unknown table
package core
