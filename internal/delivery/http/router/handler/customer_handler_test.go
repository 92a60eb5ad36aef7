package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"concierge/internal/delivery/http/validator"
	"concierge/internal/domain/entity"
	"concierge/internal/mocks"
	"concierge/internal/usecase"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()

	return e
}

func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCustomerHandler_Register(t *testing.T) {
	uc := &mocks.CustomerUsecase{}
	h := NewCustomerHandler(uc, testHandlerLogger())
	e := newTestEcho()

	created := &entity.Customer{CustomerID: "cust-1", Name: "Ada", Status: entity.StatusNew}
	uc.On("Register", mock.Anything, mock.MatchedBy(func(input *usecase.RegisterCustomerInput) bool {
		return input.Name == "Ada" && input.Mobile == "+1 555 123 4567"
	})).Return(created, nil)

	body := `{"name":"Ada","mobile":"+1 555 123 4567","email":"ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/customer", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Register(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			CustomerID string `json:"customer_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "cust-1", resp.Data.CustomerID)
}

func TestCustomerHandler_Register_MissingName(t *testing.T) {
	uc := &mocks.CustomerUsecase{}
	h := NewCustomerHandler(uc, testHandlerLogger())
	e := newTestEcho()

	req := httptest.NewRequest(http.MethodPost, "/customer", strings.NewReader(`{"mobile":"123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.Register(e.NewContext(req, rec))
	require.Error(t, err, "validation failures bubble to the error handler")

	uc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestCustomerHandler_Register_InvalidTimestamp(t *testing.T) {
	uc := &mocks.CustomerUsecase{}
	h := NewCustomerHandler(uc, testHandlerLogger())
	e := newTestEcho()

	body := `{"name":"Ada","mobile":"123","timestamp":"today at seven"}`
	req := httptest.NewRequest(http.MethodPost, "/customer", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Register(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerHandler_List(t *testing.T) {
	uc := &mocks.CustomerUsecase{}
	h := NewCustomerHandler(uc, testHandlerLogger())
	e := newTestEcho()

	uc.On("List", mock.Anything).Return([]*entity.Customer{
		{CustomerID: "a"}, {CustomerID: "b"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.List(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"customer_id":"a"`)
}

func TestCustomerHandler_GetByID(t *testing.T) {
	uc := &mocks.CustomerUsecase{}
	h := NewCustomerHandler(uc, testHandlerLogger())
	e := newTestEcho()

	uc.On("GetByID", mock.Anything, "cust-1").
		Return(&entity.Customer{CustomerID: "cust-1", Status: entity.StatusArrived}, nil)

	req := httptest.NewRequest(http.MethodGet, "/customer/cust-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("cust-1")

	require.NoError(t, h.GetByID(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"arrived"`)
}
