package models

import "time"

// Request models
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterCustomerRequest struct {
	Name              string `json:"name" binding:"required,min=2"`
	Username          string `json:"username" binding:"required,min=3"`
	Password          string `json:"password" binding:"required,min=6"`
	Phone             string `json:"phone" binding:"required,min=10"`
	Address           string `json:"address" binding:"required,min=5"`
	UniqueCode        string `json:"uniqueCode" binding:"omitempty,min=3"`
	PreferredCurrency string `json:"preferredCurrency" binding:"omitempty,oneof=ریال تومان"`
}

// UpdateCustomerRequest carries a partial update; nil fields are left unchanged
type UpdateCustomerRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=2"`
	Username          *string `json:"username" binding:"omitempty,min=3"`
	Password          *string `json:"password" binding:"omitempty,min=6"`
	Phone             *string `json:"phone" binding:"omitempty,min=10"`
	Address           *string `json:"address" binding:"omitempty,min=5"`
	UniqueCode        *string `json:"uniqueCode" binding:"omitempty,min=3"`
	PreferredCurrency *string `json:"preferredCurrency" binding:"omitempty,oneof=ریال تومان"`
}

type CreateConnectionRequest struct {
	UniqueCode string `json:"uniqueCode" binding:"required,min=3"`
	CustomName string `json:"customName" binding:"required,min=2"`
}

type AddOfflineCustomerRequest struct {
	CustomerName string `json:"customerName" binding:"required,min=2"`
	CustomName   string `json:"customName" binding:"omitempty,min=2"`
}

type UpdateConnectionRequest struct {
	CustomName string `json:"customName" binding:"required,min=2"`
}

type BankAccountInput struct {
	ID                string `json:"id"`
	AccountHolderName string `json:"accountHolderName" binding:"required,min=2"`
	AccountNumber     string `json:"accountNumber"`
	Sheba             string `json:"sheba" binding:"required,min=20"`
	CardNumber        string `json:"cardNumber" binding:"required,min=16"`
	BankName          string `json:"bankName" binding:"required,min=2"`
	DeclaredAmount    string `json:"declaredAmount" binding:"required,amount"`
}

type CreateTransactionRequest struct {
	ToCustomerID        string             `json:"toCustomerId" binding:"required,uuid"`
	Description         string             `json:"description" binding:"required,min=5"`
	Type                string             `json:"type" binding:"required,oneof=deposit_from_customer deposit_to_customer"`
	DeclaredTotalAmount string             `json:"declaredTotalAmount" binding:"omitempty,amount"`
	Accounts            []BankAccountInput `json:"accounts" binding:"required,min=1,dive"`
}

// UpdateTransactionRequest is a partial update. When Accounts is present it
// replaces the account list: entries with an id are updated, entries without
// one are added and accounts not listed are removed.
type UpdateTransactionRequest struct {
	Description         *string             `json:"description" binding:"omitempty,min=5"`
	DeclaredTotalAmount *string             `json:"declaredTotalAmount" binding:"omitempty,amount"`
	Type                *string             `json:"type" binding:"omitempty,oneof=deposit_from_customer deposit_to_customer"`
	Status              *string             `json:"status" binding:"omitempty,oneof=pending accepted rejected"`
	Accounts            *[]BankAccountInput `json:"accounts" binding:"omitempty,min=1,dive"`
}

type ReceiptRequest struct {
	AccountID     string `json:"accountId" binding:"required"`
	Amount        string `json:"amount" binding:"required,amount"`
	TrackingCode  string `json:"trackingCode"`
	DepositID     string `json:"depositId"`
	Description   string `json:"description"`
	DepositorName string `json:"depositorName" binding:"required,min=2"`
	ReceiptDate   string `json:"receiptDate" binding:"required"`
}

type UpdateReceiptRequest struct {
	Amount        *string `json:"amount" binding:"omitempty,amount"`
	TrackingCode  *string `json:"trackingCode"`
	DepositID     *string `json:"depositId"`
	Description   *string `json:"description"`
	DepositorName *string `json:"depositorName" binding:"omitempty,min=2"`
	ReceiptDate   *string `json:"receiptDate"`
}

// Response models

// SessionUser is the identity resolved from a session token
type SessionUser struct {
	UserID   string `json:"id"`
	Role     string `json:"type"`
	Username string `json:"username"`
}

// AuthResponse is the result of a login. The HTTP layer moves Token into the
// session cookie and blanks it before writing the body.
type AuthResponse struct {
	Status    string      `json:"status"`
	User      interface{} `json:"user"`
	Token     string      `json:"token,omitempty"`
	ExpiresIn int         `json:"expiresIn,omitempty"`
}

// CurrentUser is the profile behind a session. Customer fields are empty for admins.
type CurrentUser struct {
	SessionUser
	Name              string    `json:"name,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Address           string    `json:"address,omitempty"`
	UniqueCode        *string   `json:"uniqueCode,omitempty"`
	PreferredCurrency string    `json:"preferredCurrency,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type MeResponse struct {
	User *CurrentUser `json:"user"`
}

type CustomerResponse struct {
	Customer *Customer `json:"customer"`
}

type CustomersResponse struct {
	Customers []Customer `json:"customers"`
}

type ConnectionResponse struct {
	Connection *CustomerConnection `json:"connection"`
}

type ConnectionsResponse struct {
	Connections []ConnectionWithCustomer `json:"connections"`
}

type OfflineCustomerResponse struct {
	Customer   *Customer           `json:"customer"`
	Connection *CustomerConnection `json:"connection"`
}

type RequestResponse struct {
	Request *CustomerRequest `json:"request"`
}

type RequestsResponse struct {
	ReceivedRequests []CustomerRequest `json:"receivedRequests"`
	SentRequests     []CustomerRequest `json:"sentRequests"`
}

type TransactionResponse struct {
	Transaction *TransactionView `json:"transaction"`
}

type TransactionsResponse struct {
	Transactions []TransactionView `json:"transactions"`
}

type ReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}
