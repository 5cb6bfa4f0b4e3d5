package service

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
)

// Fields a duplicate claim can collide on
const (
	fieldTrackingCode = "trackingCode"
	fieldDepositID    = "depositId"
)

// DuplicateReceipt describes the earlier receipt a new claim collides with
type DuplicateReceipt struct {
	Field             string    `json:"field"`
	MatchedField      string    `json:"matchedField"`
	Value             string    `json:"value"`
	ReceiptID         string    `json:"receiptId"`
	TransactionID     string    `json:"transactionId"`
	AccountHolderName string    `json:"accountHolderName"`
	BankName          string    `json:"bankName"`
	Amount            int64     `json:"amount,string"`
	ReceiptDate       time.Time `json:"receiptDate"`
}

// FindDuplicateReceipt looks for an existing receipt whose tracking code or
// deposit id equals the candidate's tracking code or deposit id, in either
// field. Blank codes never match. excludeID skips the receipt being edited.
func FindDuplicateReceipt(trackingCode, depositID, excludeID string, existing []models.ReceiptRecord) *DuplicateReceipt {
	trackingCode = strings.TrimSpace(trackingCode)
	depositID = strings.TrimSpace(depositID)
	if trackingCode == "" && depositID == "" {
		return nil
	}

	type probe struct {
		field   string
		value   string
		matched string
		get     func(models.ReceiptRecord) string
	}
	probes := []probe{
		{fieldTrackingCode, trackingCode, fieldTrackingCode, func(r models.ReceiptRecord) string { return r.TrackingCode }},
		{fieldDepositID, depositID, fieldDepositID, func(r models.ReceiptRecord) string { return r.DepositID }},
		{fieldTrackingCode, trackingCode, fieldDepositID, func(r models.ReceiptRecord) string { return r.DepositID }},
		{fieldDepositID, depositID, fieldTrackingCode, func(r models.ReceiptRecord) string { return r.TrackingCode }},
	}

	for _, r := range existing {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		p, ok := lo.Find(probes, func(p probe) bool {
			return p.value != "" && strings.TrimSpace(p.get(r)) == p.value
		})
		if !ok {
			continue
		}
		return &DuplicateReceipt{
			Field:             p.field,
			MatchedField:      p.matched,
			Value:             p.value,
			ReceiptID:         r.ID,
			TransactionID:     r.TransactionID,
			AccountHolderName: r.AccountHolderName,
			BankName:          r.BankName,
			Amount:            r.Amount,
			ReceiptDate:       r.ReceiptDate,
		}
	}
	return nil
}

// DuplicateReceiptError is the conflict returned when a claim reuses a code
func DuplicateReceiptError(d *DuplicateReceipt) *apperrors.Error {
	msg := "tracking code has already been used"
	if d.Field == fieldDepositID {
		msg = "deposit id has already been used"
	}
	if d.Field != d.MatchedField {
		msg += " as a " + d.MatchedField
	}
	return apperrors.Conflict(msg).WithDetails(d)
}
