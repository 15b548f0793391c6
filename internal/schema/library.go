// Package schema declares the library database: the Prices, Books and
// Rentals tables, the CSV file each one is loaded from, and the fixed
// reports run after loading.
package schema

import (
	"library-loader/internal/models"
	"library-loader/internal/query"
)

const (
	PricesTable  = "Prices"
	BooksTable   = "Books"
	RentalsTable = "Rentals"

	referentialActions = "ON UPDATE CASCADE ON DELETE SET NULL"
	autoIncrementKey   = "NOT NULL PRIMARY KEY AUTO_INCREMENT"
)

// Source pairs a table with the CSV it is loaded from and the columns the
// database fills in itself.
type Source struct {
	Table    models.Table
	File     string
	Excluded []string
}

func Prices() models.Table {
	return models.NewTable(PricesTable,
		models.NewAttribute("price_id", "INT", autoIncrementKey),
		models.NewAttribute("rental_price", "DECIMAL(5,2)", "NOT NULL CHECK (rental_price >= 0)"),
	)
}

func Books() models.Table {
	return models.NewTable(BooksTable,
		models.NewAttribute("book_id", "INT", autoIncrementKey),
		models.NewAttribute("title", "VARCHAR(255)", "NOT NULL"),
		models.NewAttribute("author", "VARCHAR(255)", "NOT NULL"),
		models.NewAttribute("genre", "VARCHAR(255)"),
		models.NewAttribute("publication_year", "YEAR"),
		models.NewAttribute("price_id", "INT"),
	).WithForeignKeys(
		models.NewForeignKey("price_id", PricesTable, "price_id", referentialActions),
	)
}

func Rentals() models.Table {
	return models.NewTable(RentalsTable,
		models.NewAttribute("rental_id", "INT", autoIncrementKey),
		models.NewAttribute("book_id", "INT"),
		models.NewAttribute("member_id", "INT", "NOT NULL"),
		models.NewAttribute("rental_date", "DATE", "NOT NULL"),
		models.NewAttribute("due_date", "DATE", "NOT NULL"),
		models.NewAttribute("return_date", "DATE"),
	).WithForeignKeys(
		models.NewForeignKey("book_id", BooksTable, "book_id", referentialActions),
	).WithOther(
		"CONSTRAINT Chk_rental_date CHECK (return_date IS NULL OR return_date > rental_date)",
	)
}

// Tables returns the library tables in declaration order.
func Tables() []models.Table {
	return []models.Table{Prices(), Books(), Rentals()}
}

// Sources returns the CSV source of every table in declaration order.
func Sources() []Source {
	return []Source{
		{Table: Prices(), File: "Prices.csv", Excluded: []string{"price_id"}},
		{Table: Books(), File: "Books.csv", Excluded: []string{"book_id"}},
		{Table: Rentals(), File: "Rentals.csv", Excluded: []string{"rental_id"}},
	}
}

type Report struct {
	Title string
	Query *query.Select
}

// premiumPriceIDs selects prices above the premium threshold.
func premiumPriceIDs(column string) *query.Select {
	return query.From(PricesTable).Select(column).Filter(query.Gt("rental_price", 50))
}

// Reports returns the fixed read queries. rentalBookID picks the book whose
// rental history the last report lists.
func Reports(rentalBookID int) []Report {
	return []Report{
		{
			Title: "Select All Book titles released between 1999 and 2005 (Limit 10)",
			Query: query.From(BooksTable).
				Select("title", "publication_year").
				Filter(query.And(query.Gt("publication_year", 1999), query.Lt("publication_year", 2005))).
				WithLimit(10),
		},
		{
			Title: "Select all books where the price is greater than 50 (Limit 10)",
			Query: query.From(BooksTable).
				Filter(query.InSubquery("price_id", premiumPriceIDs("price_id"))).
				WithLimit(10),
		},
		{
			Title: "Books with their rental prices where the price is greater than 50 (Limit 10)",
			Query: query.From(BooksTable).
				Select("Books.*", "Prices.rental_price").
				Join(PricesTable, query.ColumnsEqual("Books.price_id", "Prices.price_id")).
				Filter(query.InSubquery("Prices.price_id", premiumPriceIDs("Prices.price_id"))).
				WithLimit(10),
		},
		{
			Title: "Return all rental records of a certain book",
			Query: query.From(RentalsTable).Filter(query.Eq("book_id", rentalBookID)),
		},
	}
}
