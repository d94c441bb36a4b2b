package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/rentdesk/backend/internal/application/billing"
	leasingapp "github.com/rentdesk/backend/internal/application/leasing"
	"github.com/rentdesk/backend/internal/infrastructure/event"
	"github.com/rentdesk/backend/internal/infrastructure/persistence"
	"github.com/rentdesk/backend/internal/infrastructure/persistence/models"
	"github.com/rentdesk/backend/internal/infrastructure/storage"
	"github.com/rentdesk/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testServer wires the full request path against an in-memory database
type testServer struct {
	router   *gin.Engine
	officeID uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ContractModel{},
		&models.InstallmentModel{},
		&models.PaymentModel{},
	))

	logger := zap.NewNop()
	contractRepo := persistence.NewGormContractRepository(db)
	installmentRepo := persistence.NewGormInstallmentRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)

	bus := event.NewInMemoryEventBus(logger)
	objectStorage := storage.NewStubObjectStorage()

	installmentService := billingapp.NewInstallmentService(installmentRepo, contractRepo, bus, logger)
	paymentService := billingapp.NewPaymentService(paymentRepo, installmentRepo, objectStorage, bus, logger)
	notificationService := billingapp.NewNotificationService(installmentRepo, contractRepo, logger)
	contractService := leasingapp.NewContractService(contractRepo, objectStorage, bus, logger)

	bus.Subscribe(billingapp.NewContractCreatedHandler(installmentService, logger))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	contractHandler := NewContractHandler(contractService)
	installmentHandler := NewInstallmentHandler(installmentService)
	paymentHandler := NewPaymentHandler(paymentService)
	notificationHandler := NewNotificationHandler(notificationService)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.OfficeMiddleware())

	api := router.Group("/api/v1")
	leasing := api.Group("/leasing")
	leasing.POST("/contracts", contractHandler.Create)
	leasing.GET("/contracts", contractHandler.List)
	leasing.GET("/contracts/:id", contractHandler.GetByID)
	leasing.PUT("/contracts/:id/notifications", contractHandler.SetNotificationConfig)

	billing := api.Group("/billing")
	billing.POST("/contracts/:id/installments/generate", installmentHandler.Generate)
	billing.GET("/contracts/:id/installments", installmentHandler.ListByContract)
	billing.GET("/installments", installmentHandler.List)
	billing.GET("/installments/:id", installmentHandler.GetByID)
	billing.PUT("/installments/:id/items", installmentHandler.UpsertLineItem)
	billing.DELETE("/installments/:id/items/:itemId", installmentHandler.RemoveLineItem)
	billing.POST("/installments/:id/late-fee", installmentHandler.AddLateFee)
	billing.PUT("/installments/:id/agreement", installmentHandler.SetAgreement)
	billing.PUT("/installments/:id/notification-override", installmentHandler.SetNotificationOverride)
	billing.POST("/installments/:id/mark-paid", paymentHandler.MarkPaidWithoutReceipt)
	billing.GET("/installments/:id/payments", paymentHandler.ListByInstallment)
	billing.POST("/payments", paymentHandler.Record)
	billing.GET("/notifications/reminders", notificationHandler.ListReminders)

	return &testServer{
		router:   router,
		officeID: uuid.New(),
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.OfficeHeaderKey, s.officeID.String())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createContract(t *testing.T) uuid.UUID {
	t.Helper()
	body := `{
		"property_label": "Av. Rivadavia 1234 3B",
		"property_address": "Av. Rivadavia 1234, CABA",
		"occupant": {"name": "María González", "email": "maria@example.com"},
		"owner": {"name": "Jorge Pérez"},
		"start_date": "2024-01-15T00:00:00Z",
		"end_date": "2024-06-30T00:00:00Z",
		"due_day": 10,
		"rent_amount": "100000",
		"escalation_type": "NONE",
		"deposit_amount": "200000",
		"guarantee_type": "PROPERTY"
	}`
	w := s.do(t, http.MethodPost, "/api/v1/leasing/contracts", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestContractCreate_GeneratesInstallments(t *testing.T) {
	s := newTestServer(t)
	contractID := s.createContract(t)

	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/billing/contracts/%s/installments", contractID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			PeriodKey string `json:"period"`
			Status    string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// Jan through Jun inclusive
	require.Len(t, resp.Data, 6)
	assert.Equal(t, "2024-01", resp.Data[0].PeriodKey)
	assert.Equal(t, "2024-06", resp.Data[5].PeriodKey)
}

func TestGenerateEndpoint_Idempotent(t *testing.T) {
	s := newTestServer(t)
	contractID := s.createContract(t)

	w := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/billing/contracts/%s/installments/generate", contractID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Created int `json:"created"`
			Skipped int `json:"skipped"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Data.Created)
	assert.Equal(t, 6, resp.Data.Skipped)
}

func TestUpsertLineItemEndpoint(t *testing.T) {
	s := newTestServer(t)
	contractID := s.createContract(t)
	installmentID := s.firstInstallmentID(t, contractID)

	body := `{"type": "EXPENSES", "label": "Expensas", "amount": 35000}`
	w := s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/billing/installments/%s/items", installmentID), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			TotalAmount string `json:"total_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "135000", resp.Data.TotalAmount)
}

func TestUpsertLineItemEndpoint_RejectsInvalidType(t *testing.T) {
	s := newTestServer(t)
	contractID := s.createContract(t)
	installmentID := s.firstInstallmentID(t, contractID)

	body := `{"type": "GIFT", "label": "Regalo", "amount": 1000}`
	w := s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/billing/installments/%s/items", installmentID), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordPaymentEndpoint(t *testing.T) {
	s := newTestServer(t)
	contractID := s.createContract(t)
	installmentID := s.firstInstallmentID(t, contractID)

	body := fmt.Sprintf(`{"installment_id": %q, "amount": 40000, "method": "TRANSFER"}`, installmentID)
	w := s.do(t, http.MethodPost, "/api/v1/billing/payments", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The installment reflects the partial payment
	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/billing/installments/%s", installmentID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Status     string `json:"status"`
			PaidAmount string `json:"paid_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PARTIAL", resp.Data.Status)
	assert.Equal(t, "40000", resp.Data.PaidAmount)
}

func TestMarkPaidWithoutReceiptEndpoint(t *testing.T) {
	s := newTestServer(t)
	contractID := s.createContract(t)
	installmentID := s.firstInstallmentID(t, contractID)

	w := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/billing/installments/%s/mark-paid", installmentID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/billing/installments/%s", installmentID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Status                string `json:"status"`
			HasUnverifiedPayments bool   `json:"has_unverified_payments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PAID", resp.Data.Status)
	assert.True(t, resp.Data.HasUnverifiedPayments)
}

func TestSetAgreementEndpoint(t *testing.T) {
	s := newTestServer(t)
	contractID := s.createContract(t)
	installmentID := s.firstInstallmentID(t, contractID)

	w := s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/billing/installments/%s/agreement", installmentID), `{"in_agreement": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "IN_AGREEMENT", resp.Data.Status)
}

func TestInstallmentEndpoints_UnknownID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/billing/installments/%s", uuid.New()), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/billing/installments/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListInstallments_StatusFilterValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/billing/installments?status=BOGUS", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (s *testServer) firstInstallmentID(t *testing.T, contractID uuid.UUID) uuid.UUID {
	t.Helper()
	w := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/billing/contracts/%s/installments", contractID), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data)
	return resp.Data[0].ID
}
