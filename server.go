package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bizsuite/erp_backend/config"
	"github.com/bizsuite/erp_backend/middlewares"
	"github.com/bizsuite/erp_backend/models"
	"github.com/bizsuite/erp_backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	if err := models.MigrateTable(); err != nil {
		config.GetLogger().Fatalf("migration failed: %v", err)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Correlation-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middlewares.CorrelationMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/businesses", createBusiness)

	api := router.Group("/api/v1", middlewares.AuthMiddleware())
	{
		api.GET("/business", getBusiness)
		api.PUT("/number-series/:module", updateNumberSeriesModule)

		api.POST("/products", createProduct)
		api.GET("/products", listProducts)
		api.GET("/products/:id", getProduct)
		api.GET("/products/:id/movements", listProductMovements)

		api.POST("/accounts", createAccount)
		api.GET("/accounts", listAccounts)
		api.GET("/accounts/:id", getAccount)

		api.GET("/stock-movements", listStockMovements)

		api.POST("/stock-counts", createStockCount)
		api.GET("/stock-counts/:id", getStockCount)
		api.PATCH("/stock-counts/:id", updateStockCount)
		api.POST("/stock-counts/:id/complete", completeStockCount)

		api.POST("/purchase-orders", createPurchaseOrder)
		api.GET("/purchase-orders/:id", getPurchaseOrder)
		api.POST("/purchase-orders/:id/receive", receivePurchaseOrder)
		api.POST("/purchase-orders/:id/cancel", cancelPurchaseOrder)

		api.POST("/invoices", createInvoice)
		api.GET("/invoices", listInvoices)
		api.GET("/invoices/:id", getInvoice)

		api.POST("/offers", createOffer)
		api.GET("/offers/:id", getOffer)
		api.POST("/offers/:id/convert", convertOfferToInvoice)

		api.POST("/invoice-returns", createInvoiceReturn)
		api.GET("/invoice-returns/:id", getInvoiceReturn)
		api.PATCH("/invoice-returns/:id", updateInvoiceReturn)
		api.POST("/invoice-returns/:id/status", updateStatusInvoiceReturn)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		config.GetLogger().Infof("listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.GetLogger().Fatalf("listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.GetLogger().Errorf("shutdown failed: %v", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Not-found covers rows
// owned by another tenant as well; the response does not reveal which.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorDocumentLocked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorInvalidStateTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		config.LogError(config.GetLogger(), "server", "writeError", "internal", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// createBusiness registers a tenant and mints a bootstrap owner token so the
// caller can start using the tenant-scoped API immediately.
func createBusiness(c *gin.Context) {
	var input models.NewBusiness
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	business, err := models.CreateBusiness(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := utils.JwtGenerate(1, business.ID.String(), "owner", false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"business": business, "token": token})
}

func getBusiness(c *gin.Context) {
	businessId, ok := utils.GetBusinessIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	business, err := models.GetBusinessById(c.Request.Context(), businessId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, business)
}

type numberSeriesPrefixInput struct {
	Prefix string `json:"prefix" binding:"required"`
}

func updateNumberSeriesModule(c *gin.Context) {
	var input numberSeriesPrefixInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	module, err := models.UpdateTransactionNumberSeriesModule(c.Request.Context(), c.Param("module"), input.Prefix)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

func createProduct(c *gin.Context) {
	var input models.NewProduct
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := models.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func listProducts(c *gin.Context) {
	products, err := models.GetProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func getProduct(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	product, err := models.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func listProductMovements(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	movements, err := models.GetStockMovements(c.Request.Context(), &id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

func createAccount(c *gin.Context) {
	var input models.NewAccount
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, err := models.CreateAccount(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func listAccounts(c *gin.Context) {
	accounts, err := models.GetAccounts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func getAccount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	account, err := models.GetAccount(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func listStockMovements(c *gin.Context) {
	movements, err := models.GetStockMovements(c.Request.Context(), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

func createStockCount(c *gin.Context) {
	var input models.NewStockCount
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stockCount, err := models.CreateStockCount(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stockCount)
}

func getStockCount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	stockCount, err := models.GetStockCount(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stockCount)
}

func updateStockCount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.UpdateStockCountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stockCount, err := models.UpdateStockCount(c.Request.Context(), id, &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stockCount)
}

func completeStockCount(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	stockCount, err := models.CompleteStockCount(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stockCount)
}

func createPurchaseOrder(c *gin.Context) {
	var input models.NewPurchaseOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := models.CreatePurchaseOrder(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func getPurchaseOrder(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	order, err := models.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func receivePurchaseOrder(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	order, err := models.ReceivePurchaseOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func cancelPurchaseOrder(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	order, err := models.CancelPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func createInvoice(c *gin.Context) {
	var input models.NewInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoice, err := models.CreateInvoice(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func listInvoices(c *gin.Context) {
	invoices, err := models.GetInvoices(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func getInvoice(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.GetInvoice(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func createOffer(c *gin.Context) {
	var input models.NewOffer
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offer, err := models.CreateOffer(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offer)
}

func getOffer(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	offer, err := models.GetOffer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, offer)
}

func convertOfferToInvoice(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	invoice, err := models.ConvertOfferToInvoice(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func createInvoiceReturn(c *gin.Context) {
	var input models.NewInvoiceReturn
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ret, err := models.CreateInvoiceReturn(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ret)
}

func getInvoiceReturn(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	ret, err := models.GetInvoiceReturn(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}

func updateInvoiceReturn(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.UpdateInvoiceReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ret, err := models.UpdateInvoiceReturn(c.Request.Context(), id, &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}

type statusInput struct {
	Status models.InvoiceReturnStatus `json:"status" binding:"required"`
}

func updateStatusInvoiceReturn(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ret, err := models.UpdateStatusInvoiceReturn(c.Request.Context(), id, input.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}
