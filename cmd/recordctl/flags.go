package main

import "flag"

// Flags holds all command-line flags
type Flags struct {
	// Commands
	Select     *string
	Insert     *string
	Update     *string
	Remove     *string
	Restore    *string
	Activate   *string
	Deactivate *string
	Schema     *string
	NewSchema  *string
	Exec       *string

	// Record selection
	Key   *int64
	Where *string
	Set   *string

	// Schema options
	DB     *string
	Fields *string
	Format *string

	// Options
	Config   *string
	QueryLog *bool

	// HTTP API
	Serve *bool
	Addr  *string

	// Config Creation
	CreateConfig *string

	// Info
	Version *bool
	Help    *bool
}

// ParseFlags parses command-line flags
func ParseFlags() *Flags {
	f := &Flags{
		Select:     flag.String("select", "", "Select rows from table (soft-deleted rows hidden)"),
		Insert:     flag.String("insert", "", "Insert a row into table (use --set)"),
		Update:     flag.String("update", "", "Update row by --key (use --set)"),
		Remove:     flag.String("remove", "", "Soft-delete row by --key"),
		Restore:    flag.String("restore", "", "Restore soft-deleted row by --key"),
		Activate:   flag.String("activate", "", "Set IsActive = 1 for row by --key"),
		Deactivate: flag.String("deactivate", "", "Set IsActive = 0 for row by --key"),
		Schema:     flag.String("schema", "", "Read table definition from information_schema"),
		NewSchema:  flag.String("new-schema", "", "Print CREATE TABLE for a new table with default fields"),
		Exec:       flag.String("exec", "", "Execute raw SQL text"),

		Key:   flag.Int64("key", 0, "Primary key value (<Table>Id)"),
		Where: flag.String("where", "", "Filter as name=value pairs separated by commas"),
		Set:   flag.String("set", "", "Values as name=value pairs separated by commas"),

		DB:     flag.String("db", "", "Database name for --schema and --new-schema (default: config database)"),
		Fields: flag.String("fields", "", "Columns for --new-schema as name:type pairs separated by commas"),
		Format: flag.String("format", "sql", "Schema output format: sql or json"),

		Config:   flag.String("config", "recordkit.yaml", "Configuration file"),
		QueryLog: flag.Bool("querylog", false, "Print query log and summary on exit"),

		Serve: flag.Bool("serve", false, "Run HTTP API (health, metrics, query log, read-only rows)"),
		Addr:  flag.String("addr", "", "Listen address for --serve (default: server.addr from config)"),

		CreateConfig: flag.String("create-config", "", "Create sample config for driver (mysql, postgres, mssql, sqlite)"),

		Version: flag.Bool("version", false, "Show version"),
		Help:    flag.Bool("help", false, "Show help"),
	}

	flag.Parse()
	return f
}

// command returns the first specified command and its table
func (f *Flags) command() (string, string) {
	commands := []struct {
		name  string
		table *string
	}{
		{"select", f.Select},
		{"insert", f.Insert},
		{"update", f.Update},
		{"remove", f.Remove},
		{"restore", f.Restore},
		{"activate", f.Activate},
		{"deactivate", f.Deactivate},
		{"schema", f.Schema},
		{"new-schema", f.NewSchema},
		{"exec", f.Exec},
	}
	for _, c := range commands {
		if *c.table != "" {
			return c.name, *c.table
		}
	}
	return "", ""
}

// options collects command arguments
func (f *Flags) options() Options {
	return Options{
		Key:    *f.Key,
		Where:  *f.Where,
		Set:    *f.Set,
		DB:     *f.DB,
		Fields: *f.Fields,
		Format: *f.Format,
	}
}
