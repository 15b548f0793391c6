package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttribute_EmptyAsNull(t *testing.T) {
	tests := []struct {
		name     string
		attr     Attribute
		nullable bool
		textual  bool
		want     bool
	}{
		{name: "nullable int", attr: NewAttribute("price_id", "INT"), nullable: true, want: true},
		{name: "nullable date", attr: NewAttribute("return_date", "DATE"), nullable: true, want: true},
		{name: "nullable varchar", attr: NewAttribute("genre", "VARCHAR(255)"), nullable: true, textual: true},
		{name: "lower case text", attr: NewAttribute("notes", "text"), nullable: true, textual: true},
		{name: "not null int", attr: NewAttribute("member_id", "INT", "NOT NULL")},
		{name: "primary key", attr: NewAttribute("id", "INT", "PRIMARY KEY")},
		{name: "not null varchar", attr: NewAttribute("title", "VARCHAR(255)", "not null"), textual: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.nullable, tt.attr.Nullable())
			assert.Equal(t, tt.textual, tt.attr.Textual())
			assert.Equal(t, tt.want, tt.attr.EmptyAsNull())
		})
	}
}

func TestTable_Columns(t *testing.T) {
	table := NewTable("Books",
		NewAttribute("book_id", "INT", "NOT NULL PRIMARY KEY AUTO_INCREMENT"),
		NewAttribute("title", "VARCHAR(255)", "NOT NULL"),
		NewAttribute("price_id", "INT"),
	)

	cols := table.Columns("book_id")
	assert.Len(t, cols, 2)
	assert.Equal(t, "title", cols[0].Name)
	assert.Equal(t, []string{"title", "price_id"}, table.ColumnNames("book_id"))
	assert.Equal(t, []string{"book_id", "title", "price_id"}, table.ColumnNames())
}
