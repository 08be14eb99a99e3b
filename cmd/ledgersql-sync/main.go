// Command ledgersql-sync exercises a full round trip: build a small book in
// memory, save it to a database, reload it into a fresh book and print what
// came back. Point it at a YAML config file to run against MySQL; without
// one it runs against an in-memory SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/finbooks/ledgersql/pkg/ledgersql"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	config := ledgersql.DefaultConfig()
	if *configPath != "" {
		loaded, err := ledgersql.LoadConfigFile(*configPath)
		if err != nil {
			log.Printf("Failed to load config: %v", err)
			os.Exit(1)
		}
		config = loaded
	}

	session, err := ledgersql.NewSession(config, func(pct float64) {
		if pct < 0 {
			log.Printf("operation finished")
		}
	})
	if err != nil {
		log.Printf("Failed to open session: %v", err)
		os.Exit(1)
	}
	defer session.Close()

	ctx := context.Background()

	book := buildSampleBook()
	if err := session.SaveAll(ctx, book); err != nil {
		log.Printf("Failed to save book: %v", err)
		os.Exit(1)
	}
	log.Printf("Saved book with %d transactions", book.CountTransactions())

	reloaded := ledgersql.NewBook()
	if err := session.Load(ctx, reloaded); err != nil {
		log.Printf("Failed to reload book: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Reloaded %d commodities, %d transactions\n",
		len(reloaded.Commodities().All()), reloaded.CountTransactions())
	for _, a := range reloaded.RootAccount().Descendants() {
		fmt.Printf("  account %-20s type %-8s %s\n", a.Name, a.AccountType, a.GUID())
	}
}

func buildSampleBook() *ledgersql.Book {
	book := ledgersql.NewBook()

	usd := ledgersql.NewCommodity("CURRENCY", "USD")
	usd.FullName = "US Dollar"
	currency := book.Commodities().Insert(usd)

	checking := ledgersql.NewAccount("Checking", "BANK")
	checking.Commodity = currency
	salary := ledgersql.NewAccount("Salary", "INCOME")
	salary.Commodity = currency
	book.RootAccount().Append(checking)
	book.RootAccount().Append(salary)

	tx := ledgersql.NewTransaction(currency)
	tx.Description = "Paycheck"
	amount := ledgersql.NewNumeric(250000, 100)
	negated := ledgersql.NewNumeric(-250000, 100)
	tx.AppendSplit(checking, amount, amount)
	tx.AppendSplit(salary, negated, negated)
	book.Transactions = append(book.Transactions, tx)

	return book
}
