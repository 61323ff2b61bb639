package broker

import (
	"fmt"

	"angel-trader/internal/errors"
	"angel-trader/internal/models"
)

// ValidateOrderRequest checks an order request against the allowed
// grammar. It returns a ValidationError describing the first violation,
// or nil if the request is acceptable.
func ValidateOrderRequest(req OrderRequest) error {
	if req.Symbol == "" {
		return errors.NewValidationError("symbol", req.Symbol, "symbol is required")
	}
	if req.Exchange == "" {
		return errors.NewValidationError("exchange", req.Exchange, "exchange is required")
	}
	if req.Side != models.TransactionBuy && req.Side != models.TransactionSell {
		return errors.NewValidationError("side", req.Side, fmt.Sprintf("invalid transaction type: %s", req.Side))
	}
	if req.Quantity <= 0 {
		return errors.NewValidationError("quantity", req.Quantity, "quantity must be positive")
	}
	switch req.Type {
	case models.OrderTypeMarket, models.OrderTypeLimit, models.OrderTypeStopLoss, models.OrderTypeStopLossMarket:
	default:
		return errors.NewValidationError("type", req.Type, fmt.Sprintf("invalid order type: %s", req.Type))
	}
	switch req.Product {
	case models.ProductIntraday, models.ProductDelivery, models.ProductCarryForward:
	default:
		return errors.NewValidationError("product", req.Product, fmt.Sprintf("invalid product type: %s", req.Product))
	}
	if req.Type == models.OrderTypeLimit && req.Price <= 0 {
		return errors.NewValidationError("price", req.Price, "price required for LIMIT orders")
	}
	if (req.Type == models.OrderTypeStopLoss || req.Type == models.OrderTypeStopLossMarket) && req.TriggerPrice <= 0 {
		return errors.NewValidationError("trigger_price", req.TriggerPrice, "trigger price required for STOPLOSS orders")
	}
	return nil
}
