package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
)

// fakeRepository is an in-memory Repository for service tests
type fakeRepository struct {
	mu           sync.Mutex
	admins       map[string]models.Admin
	customers    map[string]models.Customer
	connections  map[string]models.CustomerConnection
	requests     map[string]models.CustomerRequest
	transactions map[string]models.CustomerTransaction
	accounts     map[string]models.BankAccount
	receipts     map[string]models.Receipt

	// createCustomerErrs are returned, in order, by the next CreateCustomer calls
	createCustomerErrs []error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		admins:       map[string]models.Admin{},
		customers:    map[string]models.Customer{},
		connections:  map[string]models.CustomerConnection{},
		requests:     map[string]models.CustomerRequest{},
		transactions: map[string]models.CustomerTransaction{},
		accounts:     map[string]models.BankAccount{},
		receipts:     map[string]models.Receipt{},
	}
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

func (f *fakeRepository) GetAdminByUsername(_ context.Context, username string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) GetAdminByID(_ context.Context, id string) (*models.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.admins[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *fakeRepository) UpsertAdmin(_ context.Context, admin *models.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.admins {
		if a.Username == admin.Username {
			a.Password = admin.Password
			f.admins[id] = a
			admin.ID = id
			return nil
		}
	}
	newID(&admin.ID)
	admin.CreatedAt = time.Now().UTC()
	f.admins[admin.ID] = *admin
	return nil
}

func (f *fakeRepository) CreateCustomer(_ context.Context, customer *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createCustomerErrs) > 0 {
		err := f.createCustomerErrs[0]
		f.createCustomerErrs = f.createCustomerErrs[1:]
		if err != nil {
			return err
		}
	}
	return f.insertCustomerLocked(customer)
}

func (f *fakeRepository) insertCustomerLocked(customer *models.Customer) error {
	for _, c := range f.customers {
		if customer.Username != nil && c.Username != nil && *c.Username == *customer.Username {
			return apperrors.ErrUsernameTaken
		}
		if customer.UniqueCode != nil && c.UniqueCode != nil && *c.UniqueCode == *customer.UniqueCode {
			return apperrors.ErrUniqueCodeTaken
		}
	}
	newID(&customer.ID)
	customer.CreatedAt = time.Now().UTC()
	f.customers[customer.ID] = *customer
	return nil
}

func (f *fakeRepository) findCustomer(match func(models.Customer) bool) *models.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if match(c) {
			return &c
		}
	}
	return nil
}

func (f *fakeRepository) GetCustomerByID(_ context.Context, id string) (*models.Customer, error) {
	return f.findCustomer(func(c models.Customer) bool { return c.ID == id }), nil
}

func (f *fakeRepository) GetCustomerByUsername(_ context.Context, username string) (*models.Customer, error) {
	return f.findCustomer(func(c models.Customer) bool { return c.Username != nil && *c.Username == username }), nil
}

func (f *fakeRepository) GetCustomerByUniqueCode(_ context.Context, code string) (*models.Customer, error) {
	return f.findCustomer(func(c models.Customer) bool { return c.UniqueCode != nil && *c.UniqueCode == code }), nil
}

func (f *fakeRepository) ListCustomers(_ context.Context) ([]models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.Values(f.customers), nil
}

func (f *fakeRepository) UpdateCustomer(_ context.Context, customer *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers[customer.ID] = *customer
	return nil
}

func (f *fakeRepository) DeleteCustomer(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for cid, c := range f.connections {
		if c.OwnerID == id || c.ConnectedCustomerID == id {
			delete(f.connections, cid)
		}
	}
	for rid, r := range f.requests {
		if r.FromCustomerID == id || r.ToCustomerID == id {
			delete(f.requests, rid)
		}
	}
	delete(f.customers, id)
	return nil
}

func (f *fakeRepository) CountCustomerTransactions(_ context.Context, customerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo.CountBy(lo.Values(f.transactions), func(t models.CustomerTransaction) bool {
		return t.IsParty(customerID)
	}), nil
}

func (f *fakeRepository) ListConnections(_ context.Context, ownerID string) ([]models.ConnectionWithCustomer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ConnectionWithCustomer
	for _, c := range f.connections {
		if c.OwnerID != ownerID {
			continue
		}
		peer := f.customers[c.ConnectedCustomerID]
		out = append(out, models.ConnectionWithCustomer{
			CustomerConnection: c,
			ConnectedCustomer: models.ConnectedCustomer{
				ID: peer.ID, Name: peer.Name, Username: peer.Username, UniqueCode: peer.UniqueCode, Offline: peer.Offline,
			},
		})
	}
	return out, nil
}

func (f *fakeRepository) GetConnection(_ context.Context, id string) (*models.CustomerConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.connections[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeRepository) FindConnection(_ context.Context, ownerID, connectedID string) (*models.CustomerConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findConnectionLocked(ownerID, connectedID), nil
}

func (f *fakeRepository) findConnectionLocked(ownerID, connectedID string) *models.CustomerConnection {
	for _, c := range f.connections {
		if c.OwnerID == ownerID && c.ConnectedCustomerID == connectedID {
			return &c
		}
	}
	return nil
}

func (f *fakeRepository) UpdateConnectionName(_ context.Context, id, customName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.connections[id]
	c.CustomName = customName
	f.connections[id] = c
	return nil
}

func (f *fakeRepository) DeleteConnection(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.connections, id)
	return nil
}

func (f *fakeRepository) CreateOfflineCustomer(_ context.Context, customer *models.Customer, conn *models.CustomerConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.insertCustomerLocked(customer); err != nil {
		return err
	}
	conn.ConnectedCustomerID = customer.ID
	newID(&conn.ID)
	f.connections[conn.ID] = *conn
	return nil
}

func (f *fakeRepository) withNames(r models.CustomerRequest) models.CustomerRequest {
	r.FromCustomerName = f.customers[r.FromCustomerID].Name
	r.ToCustomerName = f.customers[r.ToCustomerID].Name
	return r
}

func (f *fakeRepository) CreateRequest(_ context.Context, req *models.CustomerRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	newID(&req.ID)
	f.requests[req.ID] = *req
	return nil
}

func (f *fakeRepository) GetRequest(_ context.Context, id string) (*models.CustomerRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.requests[id]; ok {
		r = f.withNames(r)
		return &r, nil
	}
	return nil, nil
}

func (f *fakeRepository) FindPendingRequestBetween(_ context.Context, a, b string) (*models.CustomerRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.Status != models.RequestPending {
			continue
		}
		if (r.FromCustomerID == a && r.ToCustomerID == b) || (r.FromCustomerID == b && r.ToCustomerID == a) {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) listRequests(match func(models.CustomerRequest) bool) []models.CustomerRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CustomerRequest{}
	for _, r := range f.requests {
		if match(r) {
			out = append(out, f.withNames(r))
		}
	}
	return out
}

func (f *fakeRepository) ListReceivedRequests(_ context.Context, customerID string) ([]models.CustomerRequest, error) {
	return f.listRequests(func(r models.CustomerRequest) bool {
		return r.ToCustomerID == customerID && r.Status == models.RequestPending
	}), nil
}

func (f *fakeRepository) ListSentRequests(_ context.Context, customerID string) ([]models.CustomerRequest, error) {
	return f.listRequests(func(r models.CustomerRequest) bool { return r.FromCustomerID == customerID }), nil
}

func (f *fakeRepository) AcceptRequest(_ context.Context, requestID string, connections []*models.CustomerConnection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.requests[requestID]
	if r.Status != models.RequestPending {
		return apperrors.ErrRequestProcessed
	}
	r.Status = models.RequestAccepted
	f.requests[requestID] = r
	for _, c := range connections {
		if existing := f.findConnectionLocked(c.OwnerID, c.ConnectedCustomerID); existing != nil {
			*c = *existing
			continue
		}
		newID(&c.ID)
		f.connections[c.ID] = *c
	}
	return nil
}

func (f *fakeRepository) RejectRequest(_ context.Context, requestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.requests[requestID]
	if r.Status != models.RequestPending {
		return apperrors.ErrRequestProcessed
	}
	r.Status = models.RequestRejected
	f.requests[requestID] = r
	return nil
}

func (f *fakeRepository) storeAccountsLocked(txn *models.CustomerTransaction) {
	for i := range txn.Accounts {
		newID(&txn.Accounts[i].ID)
		txn.Accounts[i].TransactionID = txn.ID
		a := txn.Accounts[i]
		a.Receipts = nil
		f.accounts[a.ID] = a
	}
}

func (f *fakeRepository) CreateTransaction(_ context.Context, txn *models.CustomerTransaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	newID(&txn.ID)
	txn.CreatedAt = time.Now().UTC()
	f.storeAccountsLocked(txn)
	stored := *txn
	stored.Accounts = nil
	f.transactions[txn.ID] = stored
	return nil
}

func (f *fakeRepository) assembleLocked(t models.CustomerTransaction) models.CustomerTransaction {
	t.FromCustomerName = f.customers[t.FromCustomerID].Name
	t.ToCustomerName = f.customers[t.ToCustomerID].Name
	t.Accounts = []models.BankAccount{}
	for _, a := range f.accounts {
		if a.TransactionID != t.ID {
			continue
		}
		a.Receipts = []models.Receipt{}
		for _, r := range f.receipts {
			if r.AccountID == a.ID {
				a.Receipts = append(a.Receipts, r)
			}
		}
		t.Accounts = append(t.Accounts, a)
	}
	sort.Slice(t.Accounts, func(i, j int) bool { return t.Accounts[i].AccountHolderName < t.Accounts[j].AccountHolderName })
	return t
}

func (f *fakeRepository) GetTransaction(_ context.Context, id string) (*models.CustomerTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.transactions[id]
	if !ok {
		return nil, nil
	}
	t = f.assembleLocked(t)
	return &t, nil
}

func (f *fakeRepository) ListTransactions(_ context.Context, customerID string) ([]models.CustomerTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.CustomerTransaction{}
	for _, t := range f.transactions {
		if customerID == "" || t.IsParty(customerID) {
			out = append(out, f.assembleLocked(t))
		}
	}
	return out, nil
}

func (f *fakeRepository) UpdateTransaction(_ context.Context, txn *models.CustomerTransaction, syncAccounts bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if syncAccounts {
		keep := map[string]bool{}
		f.storeAccountsLocked(txn)
		for _, a := range txn.Accounts {
			keep[a.ID] = true
		}
		for id, a := range f.accounts {
			if a.TransactionID == txn.ID && !keep[id] {
				delete(f.accounts, id)
			}
		}
	}
	stored := *txn
	stored.Accounts = nil
	f.transactions[txn.ID] = stored
	return nil
}

func (f *fakeRepository) DeleteTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.transactions, id)
	return nil
}

func (f *fakeRepository) GetAccount(_ context.Context, id string) (*models.BankAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *fakeRepository) CreateReceipt(_ context.Context, receipt *models.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	newID(&receipt.ID)
	receipt.ApprovedBy = append(pq.StringArray{}, receipt.ApprovedBy...)
	f.receipts[receipt.ID] = *receipt
	return nil
}

func (f *fakeRepository) GetReceipt(_ context.Context, id string) (*models.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.receipts[id]; ok {
		r.ApprovedBy = append(pq.StringArray{}, r.ApprovedBy...)
		r.SubmittedByName = f.customers[r.SubmittedBy].Name
		return &r, nil
	}
	return nil, nil
}

func (f *fakeRepository) UpdateReceipt(_ context.Context, receipt *models.Receipt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *receipt
	stored.ApprovedBy = append(pq.StringArray{}, receipt.ApprovedBy...)
	f.receipts[receipt.ID] = stored
	return nil
}

func (f *fakeRepository) DeleteReceipt(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.receipts, id)
	return nil
}

func (f *fakeRepository) ListCustomerReceipts(_ context.Context, customerID string) ([]models.ReceiptRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ReceiptRecord{}
	for _, r := range f.receipts {
		a := f.accounts[r.AccountID]
		t, ok := f.transactions[a.TransactionID]
		if !ok || !t.IsParty(customerID) {
			continue
		}
		out = append(out, models.ReceiptRecord{
			Receipt:           r,
			TransactionID:     a.TransactionID,
			AccountHolderName: a.AccountHolderName,
			BankName:          a.BankName,
		})
	}
	return out, nil
}
