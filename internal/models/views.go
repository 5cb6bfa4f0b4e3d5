package models

// Account payment states derived from approved receipts
const (
	AccountAwaiting   = "awaiting"
	AccountInProgress = "in_progress"
	AccountPaid       = "paid"
)

// Summary is the reconciliation read model of an account or a whole
// transaction. It is never stored.
type Summary struct {
	DeclaredAmount    int64   `json:"declaredAmount,string"`
	PaidApproved      int64   `json:"paidApproved,string"`
	PaidTotal         int64   `json:"paidTotal,string"`
	PendingTotal      int64   `json:"pendingTotal,string"`
	FollowUpTotal     int64   `json:"followUpTotal,string"`
	Remaining         int64   `json:"remaining,string"`
	RemainingApproved int64   `json:"remainingApproved,string"`
	ProgressPercent   float64 `json:"progressPercent"`
	State             string  `json:"state"`
}

type AccountView struct {
	BankAccount
	Summary Summary `json:"summary"`
}

type TransactionView struct {
	CustomerTransaction
	Accounts []AccountView `json:"accounts"`
	Summary  Summary       `json:"summary"`
}

// FormattedSummary is a Summary rendered for display in a given currency
type FormattedSummary struct {
	Currency          string `json:"currency"`
	DeclaredAmount    string `json:"declaredAmount"`
	PaidApproved      string `json:"paidApproved"`
	PaidTotal         string `json:"paidTotal"`
	PendingTotal      string `json:"pendingTotal"`
	FollowUpTotal     string `json:"followUpTotal"`
	Remaining         string `json:"remaining"`
	RemainingApproved string `json:"remainingApproved"`
	ProgressPercent   string `json:"progressPercent"`
	State             string `json:"state"`
}

type AccountReport struct {
	AccountID         string           `json:"accountId"`
	AccountHolderName string           `json:"accountHolderName"`
	BankName          string           `json:"bankName"`
	Summary           FormattedSummary `json:"summary"`
}

type TransactionReport struct {
	TransactionID    string           `json:"transactionId"`
	FromCustomerName string           `json:"fromCustomerName"`
	ToCustomerName   string           `json:"toCustomerName"`
	Description      string           `json:"description"`
	Accounts         []AccountReport  `json:"accounts"`
	Summary          FormattedSummary `json:"summary"`
}

type TransactionReportResponse struct {
	Report *TransactionReport `json:"report"`
}
