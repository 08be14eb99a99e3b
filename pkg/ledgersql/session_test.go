package ledgersql

import (
	"context"
	"testing"
	"time"
)

func newMemorySession(t *testing.T) *Session {
	t.Helper()
	config := DefaultConfig()
	session, err := NewSession(config, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func buildBook(t *testing.T) *Book {
	t.Helper()
	book := NewBook()

	usd := NewCommodity("CURRENCY", "USD")
	usd.FullName = "US Dollar"
	currency := book.Commodities().Insert(usd)

	checking := NewAccount("Checking", "BANK")
	checking.Commodity = currency
	checking.Description = "Main checking account"
	savings := NewAccount("Savings", "BANK")
	savings.Commodity = currency
	savings.Hidden = true
	income := NewAccount("Salary", "INCOME")
	income.Commodity = currency
	book.RootAccount().Append(checking)
	book.RootAccount().Append(income)
	checking.Append(savings)

	tx := NewTransaction(currency)
	tx.Description = "Paycheck"
	tx.Num = "1001"
	tx.PostDate = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tx.EnterDate = time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC)
	tx.AppendSplit(checking, NewNumeric(250000, 100), NewNumeric(250000, 100))
	tx.AppendSplit(income, NewNumeric(-250000, 100), NewNumeric(-250000, 100))
	book.Transactions = append(book.Transactions, tx)

	lot := NewLot(checking)
	lot.IsClosed = true
	book.Lots = append(book.Lots, lot)

	templateAcct := NewAccount("Rent Template", "BANK")
	templateAcct.Commodity = currency
	book.TemplateRoot().Append(templateAcct)

	sched := NewScheduledTransaction("Monthly Rent")
	sched.StartDate = Date{Year: 2024, Month: time.January, Day: 1}
	sched.LastOccur = Date{Year: 2024, Month: time.June, Day: 1}
	sched.TemplateAccount = templateAcct
	book.Scheduled = append(book.Scheduled, sched)

	return book
}

func TestSaveAllLoadRoundTrip(t *testing.T) {
	session := newMemorySession(t)
	ctx := context.Background()

	book := buildBook(t)
	if err := session.SaveAll(ctx, book); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	reloaded := NewBook()
	if err := session.Load(ctx, reloaded); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if reloaded.RootAccount().GUID() != book.RootAccount().GUID() {
		t.Error("root account identity not preserved")
	}

	commodities := reloaded.Commodities().All()
	if len(commodities) != 1 {
		t.Fatalf("commodities = %d, want 1", len(commodities))
	}
	usd := commodities[0]
	if usd.Namespace != "CURRENCY" || usd.Mnemonic != "USD" || usd.FullName != "US Dollar" {
		t.Errorf("commodity = %+v", usd)
	}
	if usd.Fraction != 100 {
		t.Errorf("fraction = %d, want 100", usd.Fraction)
	}

	accounts := reloaded.RootAccount().Descendants()
	if len(accounts) != 3 {
		t.Fatalf("accounts = %d, want 3", len(accounts))
	}
	byName := make(map[string]*Account)
	for _, a := range accounts {
		byName[a.Name] = a
		if a.IsDirty() {
			t.Errorf("account %s dirty after load", a.Name)
		}
	}
	checking := byName["Checking"]
	if checking == nil || checking.AccountType != "BANK" || checking.Description != "Main checking account" {
		t.Fatalf("checking = %+v", checking)
	}
	if checking.Commodity == nil || checking.Commodity != usd {
		t.Error("account commodity reference not resolved")
	}
	savings := byName["Savings"]
	if savings == nil || savings.Parent() != checking {
		t.Error("account tree shape not preserved")
	}
	if !savings.Hidden {
		t.Error("hidden flag lost")
	}

	if len(reloaded.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(reloaded.Transactions))
	}
	tx := reloaded.Transactions[0]
	if tx.Description != "Paycheck" || tx.Num != "1001" {
		t.Errorf("transaction = %+v", tx)
	}
	if !tx.PostDate.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("post date = %v", tx.PostDate)
	}
	if tx.Currency != usd {
		t.Error("transaction currency reference not resolved")
	}
	if len(tx.Splits) != 2 {
		t.Fatalf("splits = %d, want 2", len(tx.Splits))
	}
	var total Numeric
	for _, s := range tx.Splits {
		if s.Account == nil {
			t.Fatal("split account reference not resolved")
		}
		if s.Value.Denom != 100 {
			t.Errorf("split value = %v", s.Value)
		}
		total.Num += s.Value.Num
	}
	if total.Num != 0 {
		t.Errorf("splits do not balance: %d", total.Num)
	}

	if len(reloaded.Lots) != 1 || !reloaded.Lots[0].IsClosed {
		t.Errorf("lots = %+v", reloaded.Lots)
	}
	if reloaded.Lots[0].Account != checking {
		t.Error("lot account reference not resolved")
	}

	if len(reloaded.Scheduled) != 1 {
		t.Fatalf("scheduled = %d, want 1", len(reloaded.Scheduled))
	}
	sched := reloaded.Scheduled[0]
	if sched.Name != "Monthly Rent" || !sched.Enabled {
		t.Errorf("scheduled = %+v", sched)
	}
	if sched.StartDate != (Date{Year: 2024, Month: time.January, Day: 1}) {
		t.Errorf("start date = %v", sched.StartDate)
	}
	if sched.TemplateAccount == nil || sched.TemplateAccount.Name != "Rent Template" {
		t.Error("template account reference not resolved")
	}

	if len(reloaded.TemplateTransactions) != 0 {
		t.Errorf("template transactions = %d, want 0", len(reloaded.TemplateTransactions))
	}
	if reloaded.IsDirty() {
		t.Error("book dirty after load")
	}
}

func TestEmptyBookRoundTrip(t *testing.T) {
	session := newMemorySession(t)
	ctx := context.Background()

	if err := session.SaveAll(ctx, NewBook()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	reloaded := NewBook()
	if err := session.Load(ctx, reloaded); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(reloaded.RootAccount().Descendants()); got != 0 {
		t.Errorf("accounts = %d, want 0", got)
	}
	if got := len(reloaded.TemplateRoot().Descendants()); got != 0 {
		t.Errorf("template accounts = %d, want 0", got)
	}
	if got := len(reloaded.Commodities().All()); got != 0 {
		t.Errorf("commodities = %d, want 0", got)
	}
	if len(reloaded.Transactions) != 0 || len(reloaded.TemplateTransactions) != 0 {
		t.Errorf("transactions = %d/%d, want 0/0",
			len(reloaded.Transactions), len(reloaded.TemplateTransactions))
	}
	if len(reloaded.Lots) != 0 || len(reloaded.Scheduled) != 0 {
		t.Errorf("lots/scheduled = %d/%d, want 0/0",
			len(reloaded.Lots), len(reloaded.Scheduled))
	}
	if reloaded.IsDirty() {
		t.Error("book dirty after load")
	}
}

func TestConfiguredTimestampFormatRoundTrip(t *testing.T) {
	config := DefaultConfig()
	config.TimestampFormat = "2006-01-02 15:04:05"
	session, err := NewSession(config, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	ctx := context.Background()

	book := buildBook(t)
	if err := session.SaveAll(ctx, book); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	reloaded := NewBook()
	if err := session.Load(ctx, reloaded); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reloaded.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(reloaded.Transactions))
	}
	tx := reloaded.Transactions[0]
	if !tx.PostDate.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("post date = %v", tx.PostDate)
	}
	if !tx.EnterDate.Equal(time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC)) {
		t.Errorf("enter date = %v", tx.EnterDate)
	}
}

func TestCommitLifecycle(t *testing.T) {
	session := newMemorySession(t)
	ctx := context.Background()

	book := buildBook(t)
	if err := session.SaveAll(ctx, book); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	// Insert: a brand-new account commits as a row.
	cash := NewAccount("Cash", "CASH")
	book.RootAccount().Append(cash)
	if err := session.Commit(ctx, cash); err != nil {
		t.Fatalf("Commit(insert): %v", err)
	}

	// Update: an existing account changed in place.
	cash.Description = "Wallet"
	cash.MarkDirty()
	if err := session.Commit(ctx, cash); err != nil {
		t.Fatalf("Commit(update): %v", err)
	}

	reloaded := NewBook()
	if err := session.Load(ctx, reloaded); err != nil {
		t.Fatalf("Load: %v", err)
	}
	var found *Account
	for _, a := range reloaded.RootAccount().Descendants() {
		if a.Name == "Cash" {
			found = a
		}
	}
	if found == nil {
		t.Fatal("committed account not present after reload")
	}
	if found.Description != "Wallet" {
		t.Errorf("description = %q, want the updated value", found.Description)
	}

	// Delete: destroying removes the row.
	found.Destroy()
	if err := session.Commit(ctx, found); err != nil {
		t.Fatalf("Commit(delete): %v", err)
	}
	final := NewBook()
	if err := session.Load(ctx, final); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, a := range final.RootAccount().Descendants() {
		if a.Name == "Cash" {
			t.Error("destroyed account still present")
		}
	}
}

func TestTransactionUpdateRewritesSplits(t *testing.T) {
	session := newMemorySession(t)
	ctx := context.Background()

	book := buildBook(t)
	if err := session.SaveAll(ctx, book); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	tx := book.Transactions[0]
	tx.Description = "Corrected paycheck"
	tx.Splits[0].Memo = "take-home"
	tx.MarkDirty()
	if err := session.Commit(ctx, tx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	reloaded := NewBook()
	if err := session.Load(ctx, reloaded); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reloaded.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(reloaded.Transactions))
	}
	got := reloaded.Transactions[0]
	if got.Description != "Corrected paycheck" {
		t.Errorf("description = %q", got.Description)
	}
	if len(got.Splits) != 2 {
		t.Fatalf("splits = %d, want 2 after rewrite", len(got.Splits))
	}
	memos := map[string]bool{}
	for _, s := range got.Splits {
		memos[s.Memo] = true
	}
	if !memos["take-home"] {
		t.Errorf("split memo lost: %v", memos)
	}
}

func TestRunQueryDoesNotDuplicateLoadedTransactions(t *testing.T) {
	session := newMemorySession(t)
	ctx := context.Background()

	book := buildBook(t)
	if err := session.SaveAll(ctx, book); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	reloaded := NewBook()
	if err := session.Load(ctx, reloaded); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var checking *Account
	for _, a := range reloaded.RootAccount().Descendants() {
		if a.Name == "Checking" {
			checking = a
		}
	}
	if err := session.RunQuery(ctx, AccountFilter{Accounts: []*Account{checking}}); err != nil {
		t.Fatalf("RunQuery: %v", err)
	}
	if len(reloaded.Transactions) != 1 {
		t.Errorf("query duplicated transactions: %d", len(reloaded.Transactions))
	}
}

func TestSaveAllTwiceReplacesContents(t *testing.T) {
	session := newMemorySession(t)
	ctx := context.Background()

	book := buildBook(t)
	if err := session.SaveAll(ctx, book); err != nil {
		t.Fatalf("first SaveAll: %v", err)
	}
	if err := session.SaveAll(ctx, book); err != nil {
		t.Fatalf("second SaveAll: %v", err)
	}

	reloaded := NewBook()
	if err := session.Load(ctx, reloaded); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reloaded.Transactions) != 1 {
		t.Errorf("transactions = %d after resave, want 1", len(reloaded.Transactions))
	}
	if len(reloaded.Commodities().All()) != 1 {
		t.Errorf("commodities = %d after resave, want 1", len(reloaded.Commodities().All()))
	}
}

func TestConfigValidation(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	config.Database.Type = "oracle"
	if err := config.Validate(); err == nil {
		t.Error("unsupported database type must fail validation")
	}

	config = DefaultConfig()
	config.Database.Type = "mysql"
	if err := config.Validate(); err == nil {
		t.Error("mysql config without host must fail validation")
	}
}
