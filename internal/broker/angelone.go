package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pquerna/otp/totp"

	"angel-trader/internal/errors"
	"angel-trader/internal/models"
)

const defaultAngelBaseURL = "https://apiconnect.angelbroking.com"

// AngelOneBroker is a thin client for the Angel One SmartAPI. It covers
// session management and account/market-data reads; order routing to
// the real exchange is deliberately not wired and those operations
// report an explicit unsupported error instead of crashing.
type AngelOneBroker struct {
	apiKey     string
	clientID   string
	pin        string
	totpSecret string
	baseURL    string

	jwtToken     string
	refreshToken string
	feedToken    string

	client *http.Client
	mu     sync.RWMutex
}

// AngelConfig holds configuration for the Angel One broker.
type AngelConfig struct {
	APIKey     string
	ClientID   string
	PIN        string
	TOTPSecret string
	BaseURL    string
	HTTPClient *http.Client
}

// NewAngelOneBroker creates a new Angel One broker instance.
func NewAngelOneBroker(cfg AngelConfig) *AngelOneBroker {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAngelBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &AngelOneBroker{
		apiKey:     cfg.APIKey,
		clientID:   cfg.ClientID,
		pin:        cfg.PIN,
		totpSecret: cfg.TOTPSecret,
		baseURL:    baseURL,
		client:     client,
	}
}

type angelResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"errorcode"`
	Data    json.RawMessage `json:"data"`
}

// Login authenticates with the SmartAPI using the client PIN and a
// freshly generated TOTP code.
func (a *AngelOneBroker) Login(ctx context.Context) error {
	if a.apiKey == "" || a.clientID == "" || a.pin == "" || a.totpSecret == "" {
		return errors.ErrInvalidCredentials
	}

	code, err := totp.GenerateCode(a.totpSecret, time.Now())
	if err != nil {
		return errors.Wrap(err, "generating TOTP")
	}

	payload := map[string]string{
		"clientcode": a.clientID,
		"password":   a.pin,
		"totp":       code,
	}
	var data struct {
		JWTToken     string `json:"jwtToken"`
		RefreshToken string `json:"refreshToken"`
		FeedToken    string `json:"feedToken"`
	}
	if err := a.post(ctx, "/rest/auth/angelbroking/user/v1/loginByPassword", payload, &data); err != nil {
		return errors.Wrap(err, "login")
	}

	a.mu.Lock()
	a.jwtToken = data.JWTToken
	a.refreshToken = data.RefreshToken
	a.feedToken = data.FeedToken
	a.mu.Unlock()
	return nil
}

// Logout invalidates the session.
func (a *AngelOneBroker) Logout(ctx context.Context) error {
	if !a.IsAuthenticated() {
		return nil
	}
	payload := map[string]string{"clientcode": a.clientID}
	err := a.post(ctx, "/rest/secure/angelbroking/user/v1/logout", payload, nil)

	a.mu.Lock()
	a.jwtToken = ""
	a.refreshToken = ""
	a.feedToken = ""
	a.mu.Unlock()
	return err
}

// IsAuthenticated reports whether a session token is held.
func (a *AngelOneBroker) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.jwtToken != ""
}

// GetProfile fetches the account profile.
func (a *AngelOneBroker) GetProfile(ctx context.Context) (*models.AccountInfo, error) {
	if !a.IsAuthenticated() {
		return nil, errors.ErrNotAuthenticated
	}
	var data struct {
		ClientCode string `json:"clientcode"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Broker     string `json:"broker"`
	}
	if err := a.get(ctx, "/rest/secure/angelbroking/user/v1/getProfile", &data); err != nil {
		return nil, errors.Wrap(err, "fetching profile")
	}
	return &models.AccountInfo{
		ClientID: data.ClientCode,
		Name:     data.Name,
		Email:    data.Email,
		Broker:   "AngelOne",
	}, nil
}

// GetMargin fetches the RMS funds and margin figures.
func (a *AngelOneBroker) GetMargin(ctx context.Context) (map[string]float64, error) {
	if !a.IsAuthenticated() {
		return nil, errors.ErrNotAuthenticated
	}
	var data struct {
		Net               string `json:"net"`
		AvailableCash     string `json:"availablecash"`
		UtilisedDebits    string `json:"utiliseddebits"`
		AvailableIntraday string `json:"availableintradaypayin"`
	}
	if err := a.get(ctx, "/rest/secure/angelbroking/user/v1/getRMS", &data); err != nil {
		return nil, errors.Wrap(err, "fetching margin")
	}
	out := map[string]float64{}
	for key, raw := range map[string]string{
		"net":              data.Net,
		"available_margin": data.AvailableCash,
		"used_margin":      data.UtilisedDebits,
	} {
		var v float64
		fmt.Sscanf(raw, "%f", &v)
		out[key] = v
	}
	return out, nil
}

// GetRMSLimits is not wired for the live client.
func (a *AngelOneBroker) GetRMSLimits(ctx context.Context) (map[string]interface{}, error) {
	return nil, errors.Wrap(errors.ErrUnsupported, "GetRMSLimits")
}

// GetLTP fetches the last traded price for a symbol.
func (a *AngelOneBroker) GetLTP(ctx context.Context, symbol string, exchange models.Exchange) (float64, error) {
	if !a.IsAuthenticated() {
		return 0, errors.ErrNotAuthenticated
	}
	payload := map[string]string{
		"exchange":      string(exchange),
		"tradingsymbol": symbol,
	}
	var data struct {
		LTP float64 `json:"ltp"`
	}
	if err := a.post(ctx, "/rest/secure/angelbroking/order/v1/getLtpData", payload, &data); err != nil {
		return 0, errors.Wrapf(err, "fetching LTP for %s", symbol)
	}
	return data.LTP, nil
}

// GetQuote fetches LTP and wraps it in a quote record. The SmartAPI LTP
// endpoint carries no depth, so bid/ask are left zero.
func (a *AngelOneBroker) GetQuote(ctx context.Context, symbol string, exchange models.Exchange) (*models.Quote, error) {
	ltp, err := a.GetLTP(ctx, symbol, exchange)
	if err != nil {
		return nil, err
	}
	return &models.Quote{
		Symbol:    symbol,
		Exchange:  exchange,
		LTP:       ltp,
		Timestamp: time.Now(),
	}, nil
}

// GetHistorical is not wired for the live client.
func (a *AngelOneBroker) GetHistorical(ctx context.Context, req HistoricalRequest) ([]models.Candle, error) {
	return nil, errors.Wrap(errors.ErrUnsupported, "GetHistorical")
}

// PlaceOrder is not wired: live order routing stays out of scope.
func (a *AngelOneBroker) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	return nil, errors.Wrap(errors.ErrUnsupported, "PlaceOrder")
}

// ModifyOrder is not wired for the live client.
func (a *AngelOneBroker) ModifyOrder(ctx context.Context, orderID string, req ModifyRequest) (bool, error) {
	return false, errors.Wrap(errors.ErrUnsupported, "ModifyOrder")
}

// CancelOrder is not wired for the live client.
func (a *AngelOneBroker) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	return false, errors.Wrap(errors.ErrUnsupported, "CancelOrder")
}

// GetOrderStatus is not wired for the live client.
func (a *AngelOneBroker) GetOrderStatus(ctx context.Context, orderID string) (*models.Order, error) {
	return nil, errors.Wrap(errors.ErrUnsupported, "GetOrderStatus")
}

// GetOrderHistory is not wired for the live client.
func (a *AngelOneBroker) GetOrderHistory(ctx context.Context) ([]models.Order, error) {
	return nil, errors.Wrap(errors.ErrUnsupported, "GetOrderHistory")
}

// GetPositions is not wired for the live client.
func (a *AngelOneBroker) GetPositions(ctx context.Context) ([]models.Position, error) {
	return nil, errors.Wrap(errors.ErrUnsupported, "GetPositions")
}

// GetHoldings is not wired for the live client.
func (a *AngelOneBroker) GetHoldings(ctx context.Context) ([]models.Holding, error) {
	return nil, errors.Wrap(errors.ErrUnsupported, "GetHoldings")
}

// ConvertPosition is not wired for the live client.
func (a *AngelOneBroker) ConvertPosition(ctx context.Context, symbol string, exchange models.Exchange, from, to models.ProductType) (bool, error) {
	return false, errors.Wrap(errors.ErrUnsupported, "ConvertPosition")
}

// SquareOffPosition is not wired for the live client.
func (a *AngelOneBroker) SquareOffPosition(ctx context.Context, symbol string, exchange models.Exchange, product models.ProductType, quantity int) (string, error) {
	return "", errors.Wrap(errors.ErrUnsupported, "SquareOffPosition")
}

func (a *AngelOneBroker) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return a.do(req, out)
}

func (a *AngelOneBroker) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	return a.do(req, out)
}

func (a *AngelOneBroker) do(req *http.Request, out interface{}) error {
	a.mu.RLock()
	token := a.jwtToken
	a.mu.RUnlock()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-PrivateKey", a.apiKey)
	req.Header.Set("X-SourceID", "WEB")
	req.Header.Set("X-UserType", "USER")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope angelResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if !envelope.Status {
		return errors.NewBrokerError(envelope.Code, envelope.Message, nil)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

// Ensure AngelOneBroker implements Broker interface
var _ Broker = (*AngelOneBroker)(nil)
