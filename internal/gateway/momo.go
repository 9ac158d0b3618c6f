package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tour-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MoMoGateway talks to the MoMo e-wallet create-payment API and
// verifies IPN callback signatures. MoMo has no official Go SDK, so the
// requests are signed and posted by hand per their v2 gateway docs.
type MoMoGateway interface {
	CreatePayment(ctx context.Context, orderID, orderInfo string, amount int64, redirectURL string) (payURL string, err error)
	VerifyIPNSignature(callback MoMoIPNRequest) bool
}

// MoMoIPNRequest is the callback body MoMo posts after a payment
// attempt. ResultCode 0 means success.
type MoMoIPNRequest struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

const momoRequestType = "captureWallet"

type momoGateway struct {
	config utils.MoMoConfig
	client *http.Client
	log    *zap.Logger
}

func NewMoMoGateway(config utils.MoMoConfig, logger *zap.Logger) MoMoGateway {
	return &momoGateway{
		config: config,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    logger.With(zap.String("gateway", "momo")),
	}
}

func (g *momoGateway) sign(raw string) string {
	mac := hmac.New(sha256.New, []byte(g.config.SecretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreatePayment signs and posts a create-payment request, returning the
// wallet URL the customer is redirected to.
func (g *momoGateway) CreatePayment(ctx context.Context, orderID, orderInfo string, amount int64, redirectURL string) (string, error) {
	requestID := uuid.New().String()

	// Fields must be concatenated in alphabetical key order
	raw := fmt.Sprintf("accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		g.config.AccessKey, amount, "", g.config.IPNURL, orderID, orderInfo,
		g.config.PartnerCode, redirectURL, requestID, momoRequestType)

	payload := momoCreateRequest{
		PartnerCode: g.config.PartnerCode,
		AccessKey:   g.config.AccessKey,
		RequestID:   requestID,
		Amount:      amount,
		OrderID:     orderID,
		OrderInfo:   orderInfo,
		RedirectURL: redirectURL,
		IPNURL:      g.config.IPNURL,
		ExtraData:   "",
		RequestType: momoRequestType,
		Signature:   g.sign(raw),
		Lang:        "en",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal momo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build momo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Error("MoMo request failed",
			zap.String("order_id", orderID), zap.Error(err))
		return "", fmt.Errorf("momo request: %w", err)
	}
	defer resp.Body.Close()

	var result momoCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode momo response: %w", err)
	}

	if result.ResultCode != 0 {
		g.log.Warn("MoMo rejected payment request",
			zap.String("order_id", orderID),
			zap.Int("result_code", result.ResultCode),
			zap.String("message", result.Message))
		return "", fmt.Errorf("momo error %d: %s", result.ResultCode, result.Message)
	}

	g.log.Info("MoMo payment created", zap.String("order_id", orderID))

	return result.PayURL, nil
}

// VerifyIPNSignature recomputes the HMAC over the callback fields and
// compares it to the delivered signature in constant time.
func (g *momoGateway) VerifyIPNSignature(callback MoMoIPNRequest) bool {
	raw := fmt.Sprintf("accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		g.config.AccessKey, callback.Amount, callback.ExtraData, callback.Message,
		callback.OrderID, callback.OrderInfo, callback.OrderType, callback.PartnerCode,
		callback.PayType, callback.RequestID, callback.ResponseTime,
		callback.ResultCode, callback.TransID)

	expected := g.sign(raw)

	return hmac.Equal([]byte(expected), []byte(callback.Signature))
}
