package main

import "fmt"

const version = "0.3.0"

// PrintVersion prints version information
func PrintVersion() {
	fmt.Printf("recordctl version %s\n", version)
	fmt.Println("recordkit - lightweight relational persistence layer")
}

// PrintHelp prints help information
func PrintHelp() {
	fmt.Println("recordctl - command line client for recordkit")
	fmt.Printf("Version: %s\n\n", version)

	fmt.Println("USAGE:")
	fmt.Println("  recordctl [command] [options]")
	fmt.Println()

	fmt.Println("RECORD COMMANDS:")
	fmt.Println("  --select <table>       Select rows (--where, --key)")
	fmt.Println("  --insert <table>       Insert row (--set)")
	fmt.Println("  --update <table>       Update row (--key, --set)")
	fmt.Println("  --remove <table>       Soft-delete row (--key)")
	fmt.Println("  --restore <table>      Restore row (--key)")
	fmt.Println("  --activate <table>     Set IsActive = 1 (--key)")
	fmt.Println("  --deactivate <table>   Set IsActive = 0 (--key)")
	fmt.Println("  --exec <sql>           Execute raw SQL")
	fmt.Println()

	fmt.Println("SCHEMA COMMANDS:")
	fmt.Println("  --schema <table>       Read table definition (--db, --format)")
	fmt.Println("  --new-schema <table>   Print CREATE TABLE with default fields (--fields, --db)")
	fmt.Println()

	fmt.Println("HTTP API:")
	fmt.Println("  --serve                Serve /healthz, /readyz, /metrics, /api/querylog, /api/tables")
	fmt.Println("  --addr <host:port>     Listen address (default: server.addr)")
	fmt.Println()

	fmt.Println("OPTIONS:")
	fmt.Println("  --config <file>        Configuration file (default: recordkit.yaml)")
	fmt.Println("  --querylog             Print query log on exit")
	fmt.Println("  --create-config <drv>  Create sample config (mysql, postgres, mssql, sqlite)")
	fmt.Println("  --version              Show version")
	fmt.Println("  --help                 Show this help")
	fmt.Println()

	fmt.Println("EXAMPLES:")
	fmt.Println("  recordctl --insert Room --set \"Name=Sea view,Beds=2\"")
	fmt.Println("  recordctl --select Room --where \"Beds=2\"")
	fmt.Println("  recordctl --remove Room --key 7")
	fmt.Println("  recordctl --new-schema Room --fields \"Name:varchar(64),Beds:int(11)\"")
}
