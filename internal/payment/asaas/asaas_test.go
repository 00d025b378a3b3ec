package asaas

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "test-key", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestIsConfirmedStatus(t *testing.T) {
	for _, status := range []string{"RECEIVED", "confirmed", "RECEIVED_IN_CASH", "RECEIVED_OUT_OF_DATE", "RECEIVED_IN_ADVANCE", "RECEIVED_BILL"} {
		assert.True(t, IsConfirmedStatus(status), status)
	}
	for _, status := range []string{"", "PENDING", "OVERDUE", "REFUNDED"} {
		assert.False(t, IsConfirmedStatus(status), status)
	}
}

func TestFindOrCreateCustomerReusesExisting(t *testing.T) {
	var posts int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("access_token"))
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/customers", r.URL.Path)
			assert.Equal(t, "12345678901", r.URL.Query().Get("cpfCnpj"))
			_, _ = w.Write([]byte(`{"data":[{"id":"cus_1","name":"Ana","cpfCnpj":"12345678901"}],"totalCount":1}`))
		default:
			posts++
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	customer, err := client.FindOrCreateCustomer(context.Background(), CustomerInput{Name: "Ana", CpfCnpj: "12345678901"})
	require.NoError(t, err)
	assert.Equal(t, "cus_1", customer.ID)
	assert.Zero(t, posts)
}

func TestFindOrCreateCustomerCreatesWhenMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"data":[],"totalCount":0}`))
			return
		}
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Bruno", body["name"])
		assert.Equal(t, "11999998888", body["mobilePhone"])
		_, _ = w.Write([]byte(`{"id":"cus_new","name":"Bruno"}`))
	})

	customer, err := client.FindOrCreateCustomer(context.Background(), CustomerInput{
		Name:        "Bruno",
		CpfCnpj:     "12345678000199",
		MobilePhone: "11999998888",
	})
	require.NoError(t, err)
	assert.Equal(t, "cus_new", customer.ID)
}

func TestCreatePixPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/payments":
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "PIX", body["billingType"])
			assert.Equal(t, "2026-01-02", body["dueDate"])
			assert.Equal(t, "user_1_100_qty3", body["externalReference"])
			_, _ = w.Write([]byte(`{"id":"pay_1","status":"PENDING","value":27.5,"dueDate":"2026-01-02","billingType":"PIX"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/payments/pay_1/pixQrCode":
			_, _ = w.Write([]byte(`{"encodedImage":"aW1n","payload":"000201pix"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	payment, err := client.CreatePixPayment(context.Background(), PixPaymentInput{
		CustomerID:        "cus_1",
		Value:             decimal.RequireFromString("27.50"),
		DueDate:           time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		Description:       "Compra de 3 crédito(s)",
		ExternalReference: "user_1_100_qty3",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", payment.ID)
	assert.True(t, payment.Value.Equal(decimal.RequireFromString("27.5")))
	assert.Equal(t, "aW1n", payment.QrCodeImage)
	assert.Equal(t, "000201pix", payment.CopyPaste)
}

func TestGetPaymentErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/payments/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"code":"invalid_action","description":"Cobrança removida"}]}`))
	})

	_, err := client.GetPayment(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetPayment(context.Background(), "pay_x")
	require.ErrorIs(t, err, ErrResponseInvalid)
	assert.Contains(t, err.Error(), "invalid_action")

	_, err = client.GetPayment(context.Background(), " ")
	assert.ErrorIs(t, err, ErrConfigInvalid)
}
