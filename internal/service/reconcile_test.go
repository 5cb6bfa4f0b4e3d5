package service

import (
	"testing"

	"github.com/Rhymond/go-money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zanledger/server/internal/models"
)

func receipt(amount int64, status string) models.Receipt {
	return models.Receipt{Amount: amount, Status: status}
}

func TestLedgerCurrency(t *testing.T) {
	currency := money.GetCurrency(ledgerCurrency)
	require.NotNil(t, currency)
	assert.Zero(t, currency.Fraction)

	// Large toman amounts keep their exact value through both folds
	amounts := []int64{9_000_000_000_001, 1, 250_000}
	assert.Equal(t, int64(9_000_000_250_002), sumAmounts(amounts, func(v int64) int64 { return v }))
	assert.Equal(t, int64(-50), difference(100, 150))
}

func TestSummarizeTransactionMatchesAccountSums(t *testing.T) {
	accounts := []models.BankAccount{
		{DeclaredAmount: 700, Receipts: []models.Receipt{receipt(300, models.ReceiptApproved), receipt(500, models.ReceiptPending)}},
		{DeclaredAmount: 300, Receipts: []models.Receipt{receipt(300, models.ReceiptApproved)}},
	}

	var summaries []models.Summary
	var approved, paid int64
	for _, a := range accounts {
		s := SummarizeAccount(a)
		summaries = append(summaries, s)
		approved += s.PaidApproved
		paid += s.PaidTotal
	}

	total := SummarizeTransaction(summaries)
	assert.Equal(t, int64(1_000), total.DeclaredAmount)
	assert.Equal(t, approved, total.PaidApproved)
	assert.Equal(t, paid, total.PaidTotal)
	assert.Equal(t, int64(-100), total.Remaining)
	assert.Equal(t, int64(400), total.RemainingApproved)
	assert.Equal(t, models.AccountInProgress, total.State)
}

func TestSummarizeAccount(t *testing.T) {
	t.Run("NoReceipts", func(t *testing.T) {
		s := SummarizeAccount(models.BankAccount{DeclaredAmount: 1_000_000})
		assert.Equal(t, int64(1_000_000), s.Remaining)
		assert.Equal(t, int64(1_000_000), s.RemainingApproved)
		assert.Zero(t, s.ProgressPercent)
		assert.Equal(t, models.AccountAwaiting, s.State)
	})

	t.Run("PendingCountsTowardsPaidTotalOnly", func(t *testing.T) {
		s := SummarizeAccount(models.BankAccount{
			DeclaredAmount: 1_000_000,
			Receipts:       []models.Receipt{receipt(400_000, models.ReceiptPending)},
		})
		assert.Equal(t, int64(400_000), s.PaidTotal)
		assert.Equal(t, int64(400_000), s.PendingTotal)
		assert.Zero(t, s.PaidApproved)
		assert.Equal(t, int64(600_000), s.Remaining)
		assert.Equal(t, int64(1_000_000), s.RemainingApproved)
		assert.Equal(t, models.AccountAwaiting, s.State)
	})

	t.Run("MixedStatuses", func(t *testing.T) {
		s := SummarizeAccount(models.BankAccount{
			DeclaredAmount: 1_000_000,
			Receipts: []models.Receipt{
				receipt(400_000, models.ReceiptApproved),
				receipt(100_000, models.ReceiptPending),
				receipt(50_000, models.ReceiptNeedsFollowUp),
				receipt(25_000, ""),
			},
		})
		assert.Equal(t, int64(400_000), s.PaidApproved)
		assert.Equal(t, int64(575_000), s.PaidTotal)
		assert.Equal(t, int64(125_000), s.PendingTotal)
		assert.Equal(t, int64(50_000), s.FollowUpTotal)
		assert.Equal(t, int64(425_000), s.Remaining)
		assert.Equal(t, int64(600_000), s.RemainingApproved)
		assert.InDelta(t, 40.0, s.ProgressPercent, 0.0001)
		assert.Equal(t, models.AccountInProgress, s.State)
	})

	t.Run("OverpaidIsPaid", func(t *testing.T) {
		s := SummarizeAccount(models.BankAccount{
			DeclaredAmount: 100,
			Receipts:       []models.Receipt{receipt(150, models.ReceiptApproved)},
		})
		assert.Equal(t, int64(-50), s.Remaining)
		assert.Equal(t, int64(-50), s.RemainingApproved)
		assert.InDelta(t, 150.0, s.ProgressPercent, 0.0001)
		assert.Equal(t, models.AccountPaid, s.State)
	})

	t.Run("ZeroDeclared", func(t *testing.T) {
		s := SummarizeAccount(models.BankAccount{})
		assert.Zero(t, s.ProgressPercent)
		assert.Equal(t, models.AccountAwaiting, s.State)
	})
}

func TestBuildTransactionView(t *testing.T) {
	txn := models.CustomerTransaction{
		ID: "txn-1",
		Accounts: []models.BankAccount{
			{
				ID:             "a",
				DeclaredAmount: 600_000,
				Receipts:       []models.Receipt{receipt(600_000, models.ReceiptApproved)},
			},
			{
				ID:             "b",
				DeclaredAmount: 400_000,
				Receipts:       []models.Receipt{receipt(100_000, models.ReceiptNeedsFollowUp)},
			},
			{ID: "c", DeclaredAmount: 0},
		},
	}

	view := BuildTransactionView(txn)

	assert.Len(t, view.Accounts, 3)
	assert.Equal(t, models.AccountPaid, view.Accounts[0].Summary.State)
	assert.Equal(t, models.AccountAwaiting, view.Accounts[1].Summary.State)
	assert.NotNil(t, view.Accounts[2].Receipts)

	assert.Equal(t, int64(1_000_000), view.Summary.DeclaredAmount)
	assert.Equal(t, int64(600_000), view.Summary.PaidApproved)
	assert.Equal(t, int64(700_000), view.Summary.PaidTotal)
	assert.Equal(t, int64(100_000), view.Summary.FollowUpTotal)
	assert.Equal(t, int64(300_000), view.Summary.Remaining)
	assert.InDelta(t, 60.0, view.Summary.ProgressPercent, 0.0001)
	assert.Equal(t, models.AccountInProgress, view.Summary.State)
	assert.Nil(t, view.CustomerTransaction.Accounts)
}
