package payment_gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	paypalPathToken   = "/v1/oauth2/token"
	paypalPathOrders  = "/v2/checkout/orders"
	paypalPathCapture = "/v2/checkout/orders/%s/capture"
	paypalPathRefund  = "/v2/payments/captures/%s/refund"

	paypalIntentCapture      = "CAPTURE"
	paypalStatusCompleted    = "COMPLETED"
	paypalLinkRelApprove     = "approve"
	paypalLinkRelPayerAction = "payer-action"

	// tokenExpiryLeeway renews the cached OAuth token slightly before PayPal expires it.
	tokenExpiryLeeway = time.Minute
)

type paypalService struct {
	BaseUrl      string
	ClientID     string
	ClientSecret string
	ReturnUrl    string
	CancelUrl    string
	HTTPClient   *http.Client
	Log          *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalService(internalConfig *config.InternalConfig, logger *zap.Logger) contracts.PaymentGatewayService {
	timeout := time.Duration(internalConfig.PaymentGateway.RequestTimeoutInSeconds) * time.Second
	return &paypalService{
		BaseUrl:      strings.TrimRight(internalConfig.PaymentGateway.BaseUrl, "/"),
		ClientID:     internalConfig.PaymentGateway.ClientID,
		ClientSecret: internalConfig.PaymentGateway.ClientSecret,
		ReturnUrl:    internalConfig.PaymentGateway.ReturnUrl,
		CancelUrl:    internalConfig.PaymentGateway.CancelUrl,
		HTTPClient:   &http.Client{Timeout: timeout},
		Log:          logger,
	}
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type paypalCreateOrderRequest struct {
	Intent             string                    `json:"intent"`
	PurchaseUnits      []paypalPurchaseUnitInput `json:"purchase_units"`
	ApplicationContext *paypalApplicationContext `json:"application_context,omitempty"`
}

type paypalPurchaseUnitInput struct {
	ReferenceID string       `json:"reference_id"`
	Amount      paypalAmount `json:"amount"`
}

type paypalApplicationContext struct {
	ReturnUrl string `json:"return_url,omitempty"`
	CancelUrl string `json:"cancel_url,omitempty"`
}

type paypalOrderResponse struct {
	ID            string                     `json:"id"`
	Status        string                     `json:"status"`
	Links         []paypalLink               `json:"links"`
	Payer         *paypalPayer               `json:"payer,omitempty"`
	PaymentSource map[string]json.RawMessage `json:"payment_source,omitempty"`
	PurchaseUnits []paypalPurchaseUnit       `json:"purchase_units"`
}

type paypalPayer struct {
	PayerID string `json:"payer_id"`
}

type paypalPurchaseUnit struct {
	ReferenceID string          `json:"reference_id"`
	Payee       *paypalPayee    `json:"payee,omitempty"`
	Payments    *paypalPayments `json:"payments,omitempty"`
}

type paypalPayee struct {
	MerchantID string `json:"merchant_id"`
}

type paypalPayments struct {
	Captures []paypalCapture `json:"captures"`
}

type paypalCapture struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	CreateTime    string               `json:"create_time"`
	StatusDetails *paypalStatusDetails `json:"status_details,omitempty"`
}

type paypalStatusDetails struct {
	Reason string `json:"reason"`
}

type paypalRefundRequest struct {
	Amount      paypalAmount `json:"amount"`
	NoteToPayer string       `json:"note_to_payer,omitempty"`
}

type paypalRefundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type paypalErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id"`
	// OAuth failures use a different shape.
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (s *paypalService) CreateOrder(ctx context.Context, referenceID string, amount float64, currency string) (*contracts.ProviderOrder, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("paypalService.CreateOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingAppointmentIDKey, referenceID),
	)

	request := paypalCreateOrderRequest{
		Intent: paypalIntentCapture,
		PurchaseUnits: []paypalPurchaseUnitInput{{
			ReferenceID: referenceID,
			Amount:      paypalAmount{CurrencyCode: currency, Value: formatAmount(amount)},
		}},
	}
	if s.ReturnUrl != "" || s.CancelUrl != "" {
		request.ApplicationContext = &paypalApplicationContext{ReturnUrl: s.ReturnUrl, CancelUrl: s.CancelUrl}
	}

	order := new(paypalOrderResponse)
	if _, err := s.do(ctx, constvars.MethodPost, paypalPathOrders, request, order); err != nil {
		return nil, err
	}

	result := &contracts.ProviderOrder{OrderID: order.ID, Status: order.Status}
	for _, link := range order.Links {
		if link.Rel == paypalLinkRelApprove || link.Rel == paypalLinkRelPayerAction {
			result.ApprovalURL = link.Href
			break
		}
	}

	s.Log.Info("paypalService.CreateOrder succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderIDKey, order.ID),
	)
	return result, nil
}

func (s *paypalService) CaptureOrder(ctx context.Context, orderID string) (*contracts.ProviderCapture, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("paypalService.CaptureOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderIDKey, orderID),
	)

	order := new(paypalOrderResponse)
	raw, err := s.do(ctx, constvars.MethodPost, fmt.Sprintf(paypalPathCapture, url.PathEscape(orderID)), struct{}{}, order)
	if err != nil {
		return nil, err
	}

	result := &contracts.ProviderCapture{
		Status:        order.Status,
		PaymentMethod: "paypal",
		Raw:           raw,
	}
	if order.Payer != nil {
		result.PayerID = order.Payer.PayerID
	}
	for method := range order.PaymentSource {
		result.PaymentMethod = method
		break
	}

	var capture *paypalCapture
	for _, unit := range order.PurchaseUnits {
		if unit.Payee != nil && result.MerchantID == "" {
			result.MerchantID = unit.Payee.MerchantID
		}
		if unit.Payments != nil && len(unit.Payments.Captures) > 0 && capture == nil {
			capture = &unit.Payments.Captures[0]
		}
	}
	if capture == nil {
		return nil, &contracts.ProviderError{StatusCode: constvars.StatusBadGateway, Name: "CAPTURE_MISSING", Message: "capture response carried no capture", Body: string(raw)}
	}

	result.CaptureID = capture.ID
	result.CapturedAt = capture.CreateTime
	result.ProcessorResponse = capture.Status
	if capture.Status != paypalStatusCompleted {
		reason := capture.Status
		if capture.StatusDetails != nil && capture.StatusDetails.Reason != "" {
			reason = capture.StatusDetails.Reason
		}
		return nil, &contracts.ProviderError{StatusCode: constvars.StatusBadGateway, Name: "CAPTURE_" + capture.Status, Message: reason, Body: string(raw)}
	}

	s.Log.Info("paypalService.CaptureOrder succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOrderIDKey, orderID),
		zap.String(constvars.LoggingCaptureIDKey, capture.ID),
	)
	return result, nil
}

func (s *paypalService) RefundCapture(ctx context.Context, captureID string, amount float64, currency, note string) (*contracts.ProviderRefund, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("paypalService.RefundCapture called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingCaptureIDKey, captureID),
	)

	request := paypalRefundRequest{
		Amount:      paypalAmount{CurrencyCode: currency, Value: formatAmount(amount)},
		NoteToPayer: note,
	}

	refund := new(paypalRefundResponse)
	raw, err := s.do(ctx, constvars.MethodPost, fmt.Sprintf(paypalPathRefund, url.PathEscape(captureID)), request, refund)
	if err != nil {
		return nil, err
	}

	s.Log.Info("paypalService.RefundCapture succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingCaptureIDKey, captureID),
		zap.String(constvars.LoggingStatusKey, refund.Status),
	)
	return &contracts.ProviderRefund{
		RefundID:          refund.ID,
		Status:            refund.Status,
		ProcessorResponse: refund.Status,
		Raw:               raw,
	}, nil
}

// do sends an authenticated JSON request with a fresh idempotency key and decodes a 2xx body into out.
func (s *paypalService) do(ctx context.Context, method, path string, body, out interface{}) ([]byte, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.BaseUrl+path, bytes.NewReader(payload))
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	req.Header.Set(constvars.HeaderAuthorization, constvars.HeaderBearerPrefix+token)
	req.Header.Set(constvars.HeaderPayPalRequestID, uuid.NewString())
	req.Header.Set(constvars.HeaderPrefer, "return=representation")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exceptions.ErrDecodeResponse(err, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, parseProviderError(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return raw, exceptions.ErrDecodeResponse(err, path)
	}
	return raw, nil
}

func (s *paypalService) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, s.BaseUrl+paypalPathToken, strings.NewReader(form.Encode()))
	if err != nil {
		return "", exceptions.ErrCreateHTTPRequest(err)
	}
	req.SetBasicAuth(s.ClientID, s.ClientSecret)
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationForm)
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationJSON)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return "", exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", exceptions.ErrDecodeResponse(err, paypalPathToken)
	}
	if resp.StatusCode != constvars.StatusOK {
		return "", parseProviderError(resp.StatusCode, raw)
	}

	tokenResponse := new(paypalTokenResponse)
	if err := json.Unmarshal(raw, tokenResponse); err != nil {
		return "", exceptions.ErrDecodeResponse(err, paypalPathToken)
	}

	s.accessToken = tokenResponse.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(tokenResponse.ExpiresIn)*time.Second - tokenExpiryLeeway)
	return s.accessToken, nil
}

func parseProviderError(statusCode int, raw []byte) *contracts.ProviderError {
	providerErr := &contracts.ProviderError{StatusCode: statusCode, Body: string(raw)}

	var body paypalErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		providerErr.Name = http.StatusText(statusCode)
		return providerErr
	}
	providerErr.Name = body.Name
	providerErr.Message = body.Message
	providerErr.DebugID = body.DebugID
	if providerErr.Name == "" {
		providerErr.Name = body.Error
		providerErr.Message = body.ErrorDescription
	}
	return providerErr
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
