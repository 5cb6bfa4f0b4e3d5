package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/zanledger/server/internal/models"
	"github.com/zanledger/server/internal/service"
	"github.com/zanledger/server/internal/utils"
)

// Options holds the HTTP-level settings of the handler
type Options struct {
	CookieSecure   bool
	AllowedOrigins []string
}

// Handler holds the service and exposes it over HTTP
type Handler struct {
	service service.Service
	options Options
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, opts Options) *Handler {
	registerValidators()
	return &Handler{
		service: svc,
		options: opts,
	}
}

// NewRouter builds the gin engine with logging, recovery, CORS and all routes
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger())

	if len(h.options.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     h.options.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h.SetupRoutes(router)
	return router
}

// SetupRoutes registers every endpoint under /api
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.POST("/register", h.Register)

	protected := api.Group("")
	protected.Use(AuthMiddleware(h.service))
	protected.GET("/auth/me", h.Me)

	customers := protected.Group("/customers")
	customers.GET("", RequireRole(models.RoleAdmin), h.ListCustomers)
	customers.POST("", RequireRole(models.RoleAdmin), h.CreateCustomer)
	customers.GET("/:id", h.GetCustomer)
	customers.PATCH("/:id", h.UpdateCustomer)
	customers.DELETE("/:id", RequireRole(models.RoleAdmin), h.DeleteCustomer)

	connections := protected.Group("/connections", RequireRole(models.RoleCustomer))
	connections.GET("", h.ListConnections)
	connections.POST("/offline", h.AddOfflineCustomer)
	connections.PATCH("/:id", h.UpdateConnection)
	connections.DELETE("/:id", h.DeleteConnection)

	requests := protected.Group("/requests", RequireRole(models.RoleCustomer))
	requests.GET("", h.ListRequests)
	requests.POST("", h.CreateRequest)
	requests.POST("/:id/accept", h.AcceptRequest)
	requests.POST("/:id/reject", h.RejectRequest)

	transactions := protected.Group("/transactions")
	transactions.GET("", h.ListTransactions)
	transactions.POST("", RequireRole(models.RoleCustomer), h.CreateTransaction)
	transactions.GET("/:id", h.GetTransaction)
	transactions.PATCH("/:id", h.UpdateTransaction)
	transactions.DELETE("/:id", h.DeleteTransaction)
	transactions.GET("/:id/summary", h.GetTransactionReport)
	transactions.POST("/:id/receipts", RequireRole(models.RoleCustomer), h.SubmitReceipt)

	receipts := protected.Group("/receipts", RequireRole(models.RoleCustomer))
	receipts.PATCH("/:id", h.UpdateReceipt)
	receipts.DELETE("/:id", h.DeleteReceipt)
	receipts.POST("/:id/approve", h.ApproveReceipt)
	receipts.POST("/:id/needs-follow-up", h.MarkReceiptNeedsFollowUp)
}

// Authentication handlers

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookie(c, resp.Token, int(h.service.TokenTTL().Seconds()))

	// The token only travels in the HttpOnly cookie
	resp.Token = ""
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	h.setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *Handler) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, token, maxAge, "/", "", h.options.CookieSecure, true)
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	customer, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CustomerResponse{Customer: customer})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.CurrentUser(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MeResponse{User: user})
}
