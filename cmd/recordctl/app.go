package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ruslano69/recordkit/pkg/config"
	"github.com/ruslano69/recordkit/pkg/conn"
	"github.com/ruslano69/recordkit/pkg/crud"
	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/metrics"
	"github.com/ruslano69/recordkit/pkg/model"
	"github.com/ruslano69/recordkit/pkg/query"
	"github.com/ruslano69/recordkit/pkg/schema"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// App wires the connection manager, executor and CRUD facade
type App struct {
	cfg     *config.Config
	manager *conn.Manager
	exec    *query.Executor
	facade  *crud.Facade
	metrics *metrics.Metrics
	logger  zerolog.Logger
	out     io.Writer
}

// NewApp creates an App from configuration. No connection is opened yet.
func NewApp(cfg *config.Config, logger zerolog.Logger, out io.Writer) (*App, error) {
	drv, err := driver.New(cfg.Driver, cfg.DB)
	if err != nil {
		return nil, err
	}

	qlog, err := cfg.QueryLog.OpenQueryLog(func(err error) {
		logger.Warn().Err(err).Msg("query log appender failed")
	})
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	manager, err := conn.NewManager(drv, cfg.Conn(),
		conn.WithLogger(logger),
		conn.WithObserver(m),
		conn.WithProgress(func(failed int) {
			logger.Info().Int("failed", failed).Msg("waiting for connection")
		}),
	)
	if err != nil {
		qlog.Close()
		return nil, err
	}

	exec := query.NewExecutor(manager,
		query.WithLogger(logger),
		query.WithQueryLog(qlog),
		query.WithObserver(m),
	)

	return &App{
		cfg:     cfg,
		manager: manager,
		exec:    exec,
		facade:  crud.New(exec, crud.WithLogger(logger)),
		metrics: m,
		logger:  logger,
		out:     out,
	}, nil
}

// Close closes the connection and the query log
func (a *App) Close() error {
	err := a.manager.Close()
	if logErr := a.exec.Log().Close(); err == nil {
		err = logErr
	}
	return err
}

// Options holds command arguments
type Options struct {
	Key    int64
	Where  string
	Set    string
	DB     string
	Fields string
	Format string
}

// Run executes a command against a table
func (a *App) Run(ctx context.Context, command, table string, opts Options) error {
	switch command {
	case "select":
		return a.selectRows(ctx, table, opts.Key, opts.Where)
	case "insert":
		return a.insert(ctx, table, opts.Set)
	case "update":
		return a.update(ctx, table, opts.Key, opts.Set)
	case "remove", "restore", "activate", "deactivate":
		return a.setFlag(ctx, command, table, opts.Key)
	case "schema":
		return a.readSchema(ctx, a.database(opts.DB), table, opts.Format)
	case "new-schema":
		return a.newSchema(a.database(opts.DB), table, opts.Fields, opts.Format)
	case "exec":
		return a.execSQL(ctx, table)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *App) database(db string) string {
	if db != "" {
		return db
	}
	return a.cfg.DB.Database
}

func (a *App) selectRows(ctx context.Context, table string, key int64, where string) error {
	var (
		rows []*stmt.FieldMap
		err  error
	)
	if key > 0 {
		rows, err = a.facade.SelectKey(ctx, table, key)
	} else {
		var cond *stmt.FieldMap
		cond, err = ParseFields(where)
		if err != nil {
			return err
		}
		rows, err = a.facade.Select(ctx, table, cond)
	}
	if err != nil {
		return err
	}

	for _, row := range rows {
		fmt.Fprintln(a.out, row)
	}
	fmt.Fprintf(a.out, "%d row(s)\n", len(rows))
	return nil
}

func (a *App) insert(ctx context.Context, table, set string) error {
	values, err := ParseFields(set)
	if err != nil {
		return err
	}

	r := model.New(a.facade, table)
	r.SetFields(values)
	if err := r.Save(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "inserted %s = %s\n", r.PrimaryKey(), r.Key())
	return nil
}

func (a *App) update(ctx context.Context, table string, key int64, set string) error {
	if key <= 0 {
		return fmt.Errorf("--key is required for update")
	}
	values, err := ParseFields(set)
	if err != nil {
		return err
	}

	r, err := model.Load(ctx, a.facade, table, stmt.Int(key))
	if err != nil {
		return err
	}
	r.SetFields(values)
	if err := r.Save(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, r.Data())
	return nil
}

func (a *App) setFlag(ctx context.Context, command, table string, key int64) error {
	if key <= 0 {
		return fmt.Errorf("--key is required for %s", command)
	}
	where := crud.ByKey(table, stmt.Int(key))

	var (
		res *driver.Result
		err error
	)
	switch command {
	case "remove":
		res, err = a.facade.Remove(ctx, table, where)
	case "restore":
		res, err = a.facade.Restore(ctx, table, where)
	case "activate":
		res, err = a.facade.Activate(ctx, table, where)
	case "deactivate":
		res, err = a.facade.Deactivate(ctx, table, where)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %d row(s) affected\n", command, res.RowsAffected)
	return nil
}

func (a *App) readSchema(ctx context.Context, db, table, format string) error {
	t, err := schema.NewReader(a.exec).FromDatabase(ctx, db, table)
	if err != nil {
		return err
	}
	return a.printSchema(t, format)
}

func (a *App) newSchema(db, table, fields, format string) error {
	cols, err := ParseColumns(fields)
	if err != nil {
		return err
	}
	t := schema.NewStrictTable(db, table, cols...)
	if err := schema.Validate(t); err != nil {
		return err
	}
	return a.printSchema(t, format)
}

func (a *App) printSchema(t *schema.Table, format string) error {
	if format == "json" {
		data, err := t.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, string(data))
		return nil
	}
	fmt.Fprintln(a.out, schema.CreateSQL(t))
	return nil
}

func (a *App) execSQL(ctx context.Context, sql string) error {
	res, err := a.exec.Query(ctx, sql)
	if err != nil {
		return err
	}
	for _, row := range res.Rows {
		fmt.Fprintln(a.out, row)
	}
	fmt.Fprintf(a.out, "%d row(s) affected\n", res.RowsAffected)
	return nil
}

// PrintQueryLog prints the query log followed by a per-shape summary
func (a *App) PrintQueryLog() {
	log := a.exec.Log()
	log.Print(a.out)

	fmt.Fprintln(a.out, "Summary")
	for _, s := range log.Summary() {
		fmt.Fprintf(a.out, "  %5d x %-10v errors=%d  %s\n", s.Count, s.Total, s.Errors, s.Example)
	}
}

// ParseFields parses "name=value,name2=value2" into a FieldMap.
// Values: null, true/false, integers and floats keep their type; the rest is text.
func ParseFields(s string) (*stmt.FieldMap, error) {
	m := stmt.NewFieldMap()
	if strings.TrimSpace(s) == "" {
		return m, nil
	}

	for _, pair := range strings.Split(s, ",") {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field %q: expected name=value", pair)
		}
		m.Set(name, parseValue(strings.TrimSpace(raw)))
	}
	return m, nil
}

func parseValue(raw string) stmt.Value {
	switch strings.ToLower(raw) {
	case "null":
		return stmt.Null()
	case "true":
		return stmt.Bool(true)
	case "false":
		return stmt.Bool(false)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return stmt.Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return stmt.Float(f)
	}
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		raw = raw[1 : len(raw)-1]
	}
	return stmt.Text(raw)
}

// ParseColumns parses "Name:varchar(64),Beds:int(11)" into schema fields.
// Columns are nullable.
func ParseColumns(s string) ([]schema.Field, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var fields []schema.Field
	for _, pair := range splitColumns(s) {
		name, typ, ok := strings.Cut(pair, ":")
		name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("invalid column %q: expected name:type", pair)
		}
		fields = append(fields, schema.Field{Name: name, TypeString: typ, IsNull: true})
	}
	return fields, nil
}

// splitColumns splits on commas outside parentheses: decimal(10,2)
func splitColumns(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
