package asaas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("asaas config invalid")
	ErrRequestFailed   = errors.New("asaas request failed")
	ErrResponseInvalid = errors.New("asaas response invalid")
	ErrNotFound        = errors.New("asaas resource not found")
)

const (
	DefaultBaseURL   = "https://api.asaas.com/v3"
	BillingTypePix   = "PIX"
	accessHeaderName = "access_token"
	dueDateLayout    = "2006-01-02"
)

// 已确认的支付状态
var confirmedStatuses = map[string]struct{}{
	"RECEIVED":             {},
	"RECEIVED_IN_CASH":     {},
	"RECEIVED_OUT_OF_DATE": {},
	"RECEIVED_IN_ADVANCE":  {},
	"RECEIVED_BILL":        {},
	"CONFIRMED":            {},
}

// IsConfirmedStatus 判断网关状态是否为已收款
func IsConfirmedStatus(status string) bool {
	_, ok := confirmedStatuses[strings.ToUpper(strings.TrimSpace(status))]
	return ok
}

// Config Asaas 配置
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client Asaas v3 REST 客户端
type Client struct {
	http *resty.Client
}

// Customer 客户
type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CpfCnpj     string `json:"cpfCnpj"`
	MobilePhone string `json:"mobilePhone"`
}

// CustomerInput 创建客户输入
type CustomerInput struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	CpfCnpj     string `json:"cpfCnpj"`
	MobilePhone string `json:"mobilePhone,omitempty"`
}

// Payment 支付单
type Payment struct {
	ID                string          `json:"id"`
	Customer          string          `json:"customer"`
	Status            string          `json:"status"`
	Value             decimal.Decimal `json:"value"`
	NetValue          decimal.Decimal `json:"netValue"`
	BillingType       string          `json:"billingType"`
	Description       string          `json:"description"`
	ExternalReference string          `json:"externalReference"`
	DueDate           string          `json:"dueDate"`
	InvoiceURL        string          `json:"invoiceUrl"`
}

// PixPaymentInput 创建 PIX 支付输入
type PixPaymentInput struct {
	CustomerID        string
	Value             decimal.Decimal
	DueDate           time.Time
	Description       string
	ExternalReference string
}

// PixPayment 创建结果（含二维码）
type PixPayment struct {
	Payment
	QrCodeImage string // base64 PNG
	CopyPaste   string // PIX 复制粘贴码
}

type errorResponse struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

func (e *errorResponse) message() string {
	if e == nil || len(e.Errors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		parts = append(parts, strings.TrimSpace(item.Code+" "+item.Description))
	}
	return strings.Join(parts, "; ")
}

type customerList struct {
	Data       []Customer `json:"data"`
	TotalCount int        `json:"totalCount"`
}

type pixQrCode struct {
	EncodedImage   string `json:"encodedImage"`
	Payload        string `json:"payload"`
	ExpirationDate string `json:"expirationDate"`
}

// NewClient 创建客户端
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api_key is required", ErrConfigInvalid)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader(accessHeaderName, apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "credit-ledger")
	return &Client{http: httpClient}, nil
}

// FindOrCreateCustomer 按 CPF/CNPJ 查找客户，不存在则创建
func (c *Client) FindOrCreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	if strings.TrimSpace(input.CpfCnpj) == "" {
		return nil, fmt.Errorf("%w: cpfCnpj is required", ErrConfigInvalid)
	}

	var list customerList
	if err := c.do(ctx, http.MethodGet, "/customers", map[string]string{"cpfCnpj": input.CpfCnpj}, nil, &list); err != nil {
		return nil, err
	}
	if len(list.Data) > 0 {
		return &list.Data[0], nil
	}

	var created Customer
	if err := c.do(ctx, http.MethodPost, "/customers", nil, input, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: customer id missing", ErrResponseInvalid)
	}
	return &created, nil
}

// CreatePixPayment 创建 PIX 支付并获取二维码
func (c *Client) CreatePixPayment(ctx context.Context, input PixPaymentInput) (*PixPayment, error) {
	if input.CustomerID == "" || !input.Value.IsPositive() {
		return nil, fmt.Errorf("%w: customer and positive value are required", ErrConfigInvalid)
	}
	body := map[string]interface{}{
		"customer":          input.CustomerID,
		"billingType":       BillingTypePix,
		"value":             input.Value.Round(2).InexactFloat64(),
		"dueDate":           input.DueDate.Format(dueDateLayout),
		"description":       input.Description,
		"externalReference": input.ExternalReference,
	}

	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payments", nil, body, &payment); err != nil {
		return nil, err
	}
	if payment.ID == "" {
		return nil, fmt.Errorf("%w: payment id missing", ErrResponseInvalid)
	}

	var qr pixQrCode
	if err := c.do(ctx, http.MethodGet, "/payments/"+payment.ID+"/pixQrCode", nil, nil, &qr); err != nil {
		return nil, err
	}
	return &PixPayment{
		Payment:     payment,
		QrCodeImage: qr.EncodedImage,
		CopyPaste:   qr.Payload,
	}, nil
}

// GetPayment 查询支付单
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, fmt.Errorf("%w: payment id is required", ErrConfigInvalid)
	}
	var payment Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body interface{}, out interface{}) error {
	var apiErr errorResponse
	req := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(out).
		SetError(&apiErr)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if resp != nil && resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp != nil && resp.IsError() {
		msg := apiErr.message()
		if msg == "" {
			msg = resp.Status()
		}
		return fmt.Errorf("%w: status=%d %s", ErrResponseInvalid, resp.StatusCode(), msg)
	}
	if err != nil {
		if resp != nil && resp.IsSuccess() {
			return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
		}
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return nil
}
