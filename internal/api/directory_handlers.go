package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zanledger/server/internal/models"
)

// Customer handlers

func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.service.ListCustomers(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CustomersResponse{Customers: customers})
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req models.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	customer, err := h.service.CreateCustomer(c.Request.Context(), currentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CustomerResponse{Customer: customer})
}

func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.service.GetCustomer(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CustomerResponse{Customer: customer})
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	var req models.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	customer, err := h.service.UpdateCustomer(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CustomerResponse{Customer: customer})
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	if err := h.service.DeleteCustomer(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Connection handlers

func (h *Handler) ListConnections(c *gin.Context) {
	connections, err := h.service.ListConnections(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ConnectionsResponse{Connections: connections})
}

func (h *Handler) AddOfflineCustomer(c *gin.Context) {
	var req models.AddOfflineCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := h.service.AddOfflineCustomer(c.Request.Context(), currentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) UpdateConnection(c *gin.Context) {
	var req models.UpdateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	conn, err := h.service.UpdateConnection(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ConnectionResponse{Connection: conn})
}

func (h *Handler) DeleteConnection(c *gin.Context) {
	if err := h.service.DeleteConnection(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Request handlers

func (h *Handler) ListRequests(c *gin.Context) {
	resp, err := h.service.ListRequests(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var req models.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	request, err := h.service.CreateRequest(c.Request.Context(), currentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.RequestResponse{Request: request})
}

func (h *Handler) AcceptRequest(c *gin.Context) {
	request, err := h.service.AcceptRequest(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RequestResponse{Request: request})
}

func (h *Handler) RejectRequest(c *gin.Context) {
	request, err := h.service.RejectRequest(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RequestResponse{Request: request})
}
