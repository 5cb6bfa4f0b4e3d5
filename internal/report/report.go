// Package report renders the reconciliation read model for Persian readers.
package report

import (
	"github.com/samber/lo"
	"github.com/zanledger/server/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// rialPerToman converts stored toman amounts for readers who prefer rial
const rialPerToman = 10

var stateLabels = map[string]string{
	models.AccountPaid:       "تسویه شده",
	models.AccountInProgress: "در حال پرداخت",
	models.AccountAwaiting:   "در انتظار پرداخت",
}

// Formatter prints amounts with Persian digits and grouping in one currency
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter returns a formatter for the given display currency.
// Anything other than rial is shown in toman.
func NewFormatter(currency string) *Formatter {
	if currency != models.CurrencyRial {
		currency = models.CurrencyToman
	}
	return &Formatter{
		printer:  message.NewPrinter(language.Persian),
		currency: currency,
	}
}

func (f *Formatter) Currency() string {
	return f.currency
}

// Amount formats a toman amount, e.g. "۱٬۰۰۰٬۰۰۰ تومان"
func (f *Formatter) Amount(toman int64) string {
	value := toman
	if f.currency == models.CurrencyRial {
		value *= rialPerToman
	}
	return f.printer.Sprintf("%d", value) + " " + f.currency
}

func (f *Formatter) Percent(p float64) string {
	return f.printer.Sprintf("%.1f", p) + "٪"
}

// StateLabel returns the Persian label of an account state
func StateLabel(state string) string {
	if label, ok := stateLabels[state]; ok {
		return label
	}
	return state
}

func (f *Formatter) Summary(s models.Summary) models.FormattedSummary {
	return models.FormattedSummary{
		Currency:          f.currency,
		DeclaredAmount:    f.Amount(s.DeclaredAmount),
		PaidApproved:      f.Amount(s.PaidApproved),
		PaidTotal:         f.Amount(s.PaidTotal),
		PendingTotal:      f.Amount(s.PendingTotal),
		FollowUpTotal:     f.Amount(s.FollowUpTotal),
		Remaining:         f.Amount(s.Remaining),
		RemainingApproved: f.Amount(s.RemainingApproved),
		ProgressPercent:   f.Percent(s.ProgressPercent),
		State:             StateLabel(s.State),
	}
}

// BuildTransactionReport formats a transaction view for display
func BuildTransactionReport(view models.TransactionView, currency string) *models.TransactionReport {
	f := NewFormatter(currency)

	return &models.TransactionReport{
		TransactionID:    view.ID,
		FromCustomerName: view.FromCustomerName,
		ToCustomerName:   view.ToCustomerName,
		Description:      view.Description,
		Accounts: lo.Map(view.Accounts, func(a models.AccountView, _ int) models.AccountReport {
			return models.AccountReport{
				AccountID:         a.ID,
				AccountHolderName: a.AccountHolderName,
				BankName:          a.BankName,
				Summary:           f.Summary(a.Summary),
			}
		}),
		Summary: f.Summary(view.Summary),
	}
}
