package service

import (
	"github.com/Rhymond/go-money"
	"github.com/samber/lo"
	"github.com/zanledger/server/internal/models"
)

// Stored amounts are whole toman, so the ledger currency carries no minor unit
const ledgerCurrency = "TMN"

func init() {
	money.AddCurrency(ledgerCurrency, "تومان", "1 $", ".", ",", 0)
}

// sumAmounts is the single place where amounts are added up
func sumAmounts[T any](items []T, amount func(T) int64) int64 {
	total := money.New(0, ledgerCurrency)
	for _, item := range items {
		// Same currency on both sides, Add cannot fail
		total, _ = total.Add(money.New(amount(item), ledgerCurrency))
	}
	return total.Amount()
}

func difference(a, b int64) int64 {
	d, _ := money.New(a, ledgerCurrency).Subtract(money.New(b, ledgerCurrency))
	return d.Amount()
}

func sumReceipts(receipts []models.Receipt, keep func(models.Receipt) bool) int64 {
	kept := lo.Filter(receipts, func(r models.Receipt, _ int) bool { return keep(r) })
	return sumAmounts(kept, func(r models.Receipt) int64 { return r.Amount })
}

func withStatus(status string) func(models.Receipt) bool {
	return func(r models.Receipt) bool {
		if status == models.ReceiptPending {
			return r.Status == "" || r.Status == models.ReceiptPending
		}
		return r.Status == status
	}
}

func progress(approved, declared int64) float64 {
	if declared <= 0 {
		return 0
	}
	return 100 * float64(approved) / float64(declared)
}

func accountState(s models.Summary) string {
	switch {
	case s.PaidApproved > 0 && s.RemainingApproved <= 0:
		return models.AccountPaid
	case s.PaidApproved > 0:
		return models.AccountInProgress
	default:
		return models.AccountAwaiting
	}
}

// SummarizeAccount derives the reconciliation figures of one account from its receipts.
// Every view of an account goes through here.
func SummarizeAccount(account models.BankAccount) models.Summary {
	s := models.Summary{
		DeclaredAmount: account.DeclaredAmount,
		PaidApproved:   sumReceipts(account.Receipts, withStatus(models.ReceiptApproved)),
		PaidTotal:      sumReceipts(account.Receipts, func(models.Receipt) bool { return true }),
		PendingTotal:   sumReceipts(account.Receipts, withStatus(models.ReceiptPending)),
		FollowUpTotal:  sumReceipts(account.Receipts, withStatus(models.ReceiptNeedsFollowUp)),
	}
	s.Remaining = difference(s.DeclaredAmount, s.PaidTotal)
	s.RemainingApproved = difference(s.DeclaredAmount, s.PaidApproved)
	s.ProgressPercent = progress(s.PaidApproved, s.DeclaredAmount)
	s.State = accountState(s)
	return s
}

// SummarizeTransaction folds the account summaries of a transaction
func SummarizeTransaction(summaries []models.Summary) models.Summary {
	total := models.Summary{
		DeclaredAmount: sumAmounts(summaries, func(s models.Summary) int64 { return s.DeclaredAmount }),
		PaidApproved:   sumAmounts(summaries, func(s models.Summary) int64 { return s.PaidApproved }),
		PaidTotal:      sumAmounts(summaries, func(s models.Summary) int64 { return s.PaidTotal }),
		PendingTotal:   sumAmounts(summaries, func(s models.Summary) int64 { return s.PendingTotal }),
		FollowUpTotal:  sumAmounts(summaries, func(s models.Summary) int64 { return s.FollowUpTotal }),
	}
	total.Remaining = difference(total.DeclaredAmount, total.PaidTotal)
	total.RemainingApproved = difference(total.DeclaredAmount, total.PaidApproved)
	total.ProgressPercent = progress(total.PaidApproved, total.DeclaredAmount)
	total.State = accountState(total)
	return total
}

// BuildTransactionView attaches the derived read model to a loaded transaction
func BuildTransactionView(t models.CustomerTransaction) models.TransactionView {
	accounts := lo.Map(t.Accounts, func(a models.BankAccount, _ int) models.AccountView {
		if a.Receipts == nil {
			a.Receipts = []models.Receipt{}
		}
		return models.AccountView{BankAccount: a, Summary: SummarizeAccount(a)}
	})
	t.Accounts = nil
	return models.TransactionView{
		CustomerTransaction: t,
		Accounts:            accounts,
		Summary: SummarizeTransaction(lo.Map(accounts, func(a models.AccountView, _ int) models.Summary {
			return a.Summary
		})),
	}
}
