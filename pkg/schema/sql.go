package schema

import (
	"strconv"
	"strings"
)

// CreateSQL строит CREATE TABLE IF NOT EXISTS для MySQL
func CreateSQL(t *Table) string {
	cols := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		cols = append(cols, columnSQL(f))
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	if t.DB != "" {
		sb.WriteString(t.DB)
		sb.WriteByte('.')
	}
	sb.WriteString(t.Name)
	sb.WriteString(" (\n")
	sb.WriteString(strings.Join(cols, ",\n"))
	if t.PrimaryKey != "" {
		sb.WriteString(",\n PRIMARY KEY(")
		sb.WriteString(t.PrimaryKey)
		sb.WriteString(")")
	}
	sb.WriteString("\n) ENGINE=")
	sb.WriteString(orDefault(t.Engine, DefaultEngine))
	sb.WriteString(" AUTO_INCREMENT=")
	sb.WriteString(strconv.FormatInt(t.AutoIncrement, 10))
	sb.WriteString(" DEFAULT CHARSET ")
	sb.WriteString(orDefault(t.DefaultCharset, DefaultCharset))
	return sb.String()
}

func columnSQL(f Field) string {
	var sb strings.Builder
	sb.WriteString(f.Name)
	sb.WriteByte(' ')
	sb.WriteString(f.ColumnType())

	if f.Charset != "" {
		sb.WriteString(" CHARACTER SET ")
		sb.WriteString(f.Charset)
	}
	if f.Collate != "" {
		sb.WriteString(" COLLATE ")
		sb.WriteString(f.Collate)
	}

	hasDefault := f.Default != nil && *f.Default != ""
	if f.IsNull {
		sb.WriteString(" NULL DEFAULT ")
		if hasDefault {
			sb.WriteString(*f.Default)
		} else {
			sb.WriteString("NULL")
		}
	} else {
		sb.WriteString(" NOT NULL")
		if hasDefault {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(*f.Default)
		}
	}

	if f.Extra != "" {
		sb.WriteByte(' ')
		sb.WriteString(f.Extra)
	}
	return sb.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
