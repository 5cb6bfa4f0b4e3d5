package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zanledger/server/internal/models"
)

// Transaction handlers

func (h *Handler) ListTransactions(c *gin.Context) {
	views, err := h.service.ListTransactions(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionsResponse{Transactions: views})
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	view, err := h.service.CreateTransaction(c.Request.Context(), currentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.TransactionResponse{Transaction: view})
}

func (h *Handler) GetTransaction(c *gin.Context) {
	view, err := h.service.GetTransaction(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionResponse{Transaction: view})
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	var req models.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	view, err := h.service.UpdateTransaction(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionResponse{Transaction: view})
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	if err := h.service.DeleteTransaction(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *Handler) GetTransactionReport(c *gin.Context) {
	report, err := h.service.GetTransactionReport(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TransactionReportResponse{Report: report})
}

// Receipt handlers

func (h *Handler) SubmitReceipt(c *gin.Context) {
	var req models.ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	receipt, err := h.service.SubmitReceipt(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ReceiptResponse{Receipt: receipt})
}

func (h *Handler) UpdateReceipt(c *gin.Context) {
	var req models.UpdateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	receipt, err := h.service.UpdateReceipt(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReceiptResponse{Receipt: receipt})
}

func (h *Handler) DeleteReceipt(c *gin.Context) {
	if err := h.service.DeleteReceipt(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *Handler) ApproveReceipt(c *gin.Context) {
	receipt, err := h.service.ApproveReceipt(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReceiptResponse{Receipt: receipt})
}

func (h *Handler) MarkReceiptNeedsFollowUp(c *gin.Context) {
	receipt, err := h.service.MarkReceiptNeedsFollowUp(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReceiptResponse{Receipt: receipt})
}
