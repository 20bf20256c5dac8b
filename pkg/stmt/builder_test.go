package stmt

import (
	"errors"
	"testing"
)

func TestBuildSetOrWhere_Delimiters(t *testing.T) {
	fields := NewFieldMap(
		F("Name", "x"),
		F("Count", 3),
		F("Ratio", 1.5),
		F("IsActive", true),
		F("IsDeleted", false),
	)

	tests := []struct {
		delim    Delimiter
		expected string
	}{
		{DelimComma, "Name = 'x' , Count = 3 , Ratio = 1.5 , IsActive = 1 , IsDeleted = 0"},
		{DelimAnd, "Name = 'x' and Count = 3 and Ratio = 1.5 and IsActive = 1 and IsDeleted = 0"},
		{DelimOr, "Name = 'x' or Count = 3 or Ratio = 1.5 or IsActive = 1 or IsDeleted = 0"},
	}

	for _, tt := range tests {
		t.Run(string(tt.delim), func(t *testing.T) {
			got, err := BuildSetOrWhere("Template", fields, tt.delim, false)
			if err != nil {
				t.Fatalf("BuildSetOrWhere failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, got)
			}
		})
	}
}

func TestBuildSetOrWhere_InvalidDelimiter(t *testing.T) {
	_, err := BuildSetOrWhere("Template", NewFieldMap(F("a", 1)), Delimiter("xor"), false)
	if !errors.Is(err, ErrInvalidDelimiter) {
		t.Errorf("Expected ErrInvalidDelimiter, got %v", err)
	}
}

func TestBuildSetOrWhere_Identity(t *testing.T) {
	fields := NewFieldMap(F("TemplateId", 7), F("ident", 8), F("TemplateData", "foo"))

	got, _ := BuildSetOrWhere("Template", fields, DelimComma, false)
	if got != "TemplateData = 'foo'" {
		t.Errorf("identity fields must be skipped, got %q", got)
	}

	got, _ = BuildSetOrWhere("Template", fields, DelimAnd, true)
	if got != "TemplateId = 7 and ident = 8 and TemplateData = 'foo'" {
		t.Errorf("identity fields must be kept with allowIdentity, got %q", got)
	}
}

func TestBuildSetOrWhere_KeyOrderAfterOverwrite(t *testing.T) {
	fields := NewFieldMap(F("a", 1), F("b", 2))
	fields.Set("a", Int(3))

	got, _ := BuildSetOrWhere("T", fields, DelimComma, false)
	if got != "a = 3 , b = 2" {
		t.Errorf("Expected key order a, b; got %q", got)
	}
}

func TestBuildSetOrWhere_Null(t *testing.T) {
	fields := NewFieldMap(Field{Name: "Note", Value: Null()})

	set, _ := BuildSetOrWhere("T", fields, DelimComma, false)
	if set != "Note = NULL" {
		t.Errorf("SET: got %q", set)
	}
	where, _ := BuildSetOrWhere("T", fields, DelimAnd, true)
	if where != "Note IS NULL" {
		t.Errorf("WHERE: got %q", where)
	}
}

func TestBuildSetOrWhere_Empty(t *testing.T) {
	got, err := BuildSetOrWhere("T", nil, DelimAnd, true)
	if err != nil || got != "" {
		t.Errorf("Expected empty fragment, got %q, %v", got, err)
	}
}

func TestInsert_Dialects(t *testing.T) {
	fields := NewFieldMap(F("TemplateId", 1), F("TemplateData", "foo"), F("IsActive", true))

	tests := []struct {
		dialect  Dialect
		expected string
	}{
		{DialectMySQL, "INSERT INTO Template (TemplateData, IsActive) VALUES ('foo', 1)"},
		{DialectSQLite, "INSERT INTO Template (TemplateData, IsActive) VALUES ('foo', 1)"},
		{DialectPostgres, "INSERT INTO Template (TemplateData, IsActive) VALUES ('foo', 1) RETURNING TemplateId"},
		{DialectMSSQL, "INSERT INTO Template (TemplateData, IsActive) OUTPUT INSERTED.TemplateId VALUES ('foo', 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name, func(t *testing.T) {
			got, err := Insert(tt.dialect, "Template", fields)
			if err != nil {
				t.Fatalf("Insert failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, got)
			}
		})
	}
}

func TestInsert_OnlyIdentity(t *testing.T) {
	_, err := Insert(DialectMySQL, "Template", NewFieldMap(F("TemplateId", 1)))
	if !errors.Is(err, ErrEmptyFieldSet) {
		t.Errorf("Expected ErrEmptyFieldSet, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	got, _ := Select("Room", nil)
	if got != "SELECT * FROM Room" {
		t.Errorf("got %q", got)
	}

	got, _ = Select("Room", NewFieldMap(F("RoomId", 2), F("IsDeleted", 0)))
	if got != "SELECT * FROM Room WHERE RoomId = 2 and IsDeleted = 0" {
		t.Errorf("got %q", got)
	}

	if got := SelectKey("Room", 5); got != "SELECT * FROM Room WHERE RoomId = 5" {
		t.Errorf("got %q", got)
	}
}

func TestUpdate(t *testing.T) {
	got, err := Update("Room",
		NewFieldMap(F("RoomId", 9), F("Name", "Lobby")),
		NewFieldMap(F("RoomId", 2)),
	)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got != "UPDATE Room SET Name = 'Lobby' WHERE RoomId = 2" {
		t.Errorf("got %q", got)
	}

	if _, err := Update("Room", NewFieldMap(F("Name", "x")), NewFieldMap()); !errors.Is(err, ErrEmptyPredicate) {
		t.Errorf("Expected ErrEmptyPredicate, got %v", err)
	}
	if _, err := Update("Room", NewFieldMap(F("RoomId", 1)), NewFieldMap(F("RoomId", 1))); !errors.Is(err, ErrEmptyFieldSet) {
		t.Errorf("Expected ErrEmptyFieldSet, got %v", err)
	}
}
