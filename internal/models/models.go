package models

import (
	"time"

	"github.com/lib/pq"
)

// Roles carried in the session token
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Preferred display currencies. Amounts are always stored in toman.
const (
	CurrencyRial  = "ریال"
	CurrencyToman = "تومان"
)

// Request statuses
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// Transaction statuses and types
const (
	TransactionPending  = "pending"
	TransactionAccepted = "accepted"
	TransactionRejected = "rejected"

	DepositToCustomer   = "deposit_to_customer"
	DepositFromCustomer = "deposit_from_customer"
)

// Receipt statuses
const (
	ReceiptPending       = "pending"
	ReceiptApproved      = "approved"
	ReceiptNeedsFollowUp = "needs_follow_up"
)

// Admin is a back-office operator, seeded at bootstrap
type Admin struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Password  string    `db:"password" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Customer is a directory entry. Offline customers have no username,
// password or unique code and can never log in.
type Customer struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Username          *string   `db:"username" json:"username,omitempty"`
	Password          string    `db:"password" json:"-"` // Password hash, not returned in JSON
	Phone             string    `db:"phone" json:"phone"`
	Address           string    `db:"address" json:"address"`
	UniqueCode        *string   `db:"unique_code" json:"uniqueCode,omitempty"`
	PreferredCurrency string    `db:"preferred_currency" json:"preferredCurrency"`
	Offline           bool      `db:"offline" json:"offline"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// CustomerConnection is a directed edge: Owner has Connected in their list under CustomName
type CustomerConnection struct {
	ID                  string    `db:"id" json:"id"`
	OwnerID             string    `db:"owner_id" json:"ownerId"`
	ConnectedCustomerID string    `db:"connected_customer_id" json:"connectedCustomerId"`
	CustomName          string    `db:"custom_name" json:"customName"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
}

// ConnectedCustomer is the public projection of the peer of a connection
type ConnectedCustomer struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Username   *string `json:"username,omitempty"`
	UniqueCode *string `json:"uniqueCode,omitempty"`
	Offline    bool    `json:"offline"`
}

// ConnectionWithCustomer is a connection joined with its peer
type ConnectionWithCustomer struct {
	CustomerConnection
	ConnectedCustomer ConnectedCustomer `db:"-" json:"connectedCustomer"`
}

// CustomerRequest asks ToCustomer to link with FromCustomer
type CustomerRequest struct {
	ID               string    `db:"id" json:"id"`
	FromCustomerID   string    `db:"from_customer_id" json:"fromCustomerId"`
	FromCustomerName string    `db:"from_customer_name" json:"fromCustomerName"`
	ToCustomerID     string    `db:"to_customer_id" json:"toCustomerId"`
	ToCustomerName   string    `db:"to_customer_name" json:"toCustomerName"`
	CustomName       string    `db:"custom_name" json:"customName"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// CustomerTransaction is a declared multi-account transfer between two customers
type CustomerTransaction struct {
	ID                  string        `db:"id" json:"id"`
	FromCustomerID      string        `db:"from_customer_id" json:"fromCustomerId"`
	FromCustomerName    string        `db:"from_customer_name" json:"fromCustomerName"`
	ToCustomerID        string        `db:"to_customer_id" json:"toCustomerId"`
	ToCustomerName      string        `db:"to_customer_name" json:"toCustomerName"`
	Description         string        `db:"description" json:"description"`
	DeclaredTotalAmount int64         `db:"declared_total_amount" json:"declaredTotalAmount,string"`
	Type                string        `db:"type" json:"type"`
	Status              string        `db:"status" json:"status"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
	Accounts            []BankAccount `db:"-" json:"-"`
}

// IsParty reports whether the customer is either side of the transaction
func (t *CustomerTransaction) IsParty(customerID string) bool {
	return t.FromCustomerID == customerID || t.ToCustomerID == customerID
}

// Counterparty returns the other side of the transaction for a party
func (t *CustomerTransaction) Counterparty(customerID string) string {
	if t.FromCustomerID == customerID {
		return t.ToCustomerID
	}
	return t.FromCustomerID
}

// BankAccount is one destination account declared on a transaction
type BankAccount struct {
	ID                string    `db:"id" json:"id"`
	TransactionID     string    `db:"transaction_id" json:"transactionId"`
	AccountHolderName string    `db:"account_holder_name" json:"accountHolderName"`
	AccountNumber     string    `db:"account_number" json:"accountNumber,omitempty"`
	Sheba             string    `db:"sheba" json:"sheba"`
	CardNumber        string    `db:"card_number" json:"cardNumber"`
	BankName          string    `db:"bank_name" json:"bankName"`
	DeclaredAmount    int64     `db:"declared_amount" json:"declaredAmount,string"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
	Receipts          []Receipt `db:"-" json:"receipts"`
}

// Receipt is one claimed deposit against a bank account
type Receipt struct {
	ID              string         `db:"id" json:"id"`
	AccountID       string         `db:"account_id" json:"accountId"`
	Amount          int64          `db:"amount" json:"amount,string"`
	TrackingCode    string         `db:"tracking_code" json:"trackingCode"`
	DepositID       string         `db:"deposit_id" json:"depositId"`
	Description     string         `db:"description" json:"description"`
	DepositorName   string         `db:"depositor_name" json:"depositorName"`
	ReceiptDate     time.Time      `db:"receipt_date" json:"receiptDate"`
	SubmittedBy     string         `db:"submitted_by" json:"submittedBy"`
	SubmittedByName string         `db:"submitted_by_name" json:"submittedByName"`
	Status          string         `db:"status" json:"status"`
	ApprovedBy      pq.StringArray `db:"approved_by" json:"approvedBy"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// ReceiptRecord is a receipt with the account it was filed against,
// used when scanning a customer's receipts for duplicate claims
type ReceiptRecord struct {
	Receipt
	TransactionID     string `db:"transaction_id" json:"transactionId"`
	AccountHolderName string `db:"account_holder_name" json:"accountHolderName"`
	BankName          string `db:"bank_name" json:"bankName"`
}
