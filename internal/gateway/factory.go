package gateway

import (
	"fmt"
	"strings"
)

// New selects a gateway implementation by driver name. An empty driver
// defaults to the mock so the service runs without provider credentials.
func New(driver string, cfg *Config) (PaymentGateway, error) {
	switch strings.ToLower(driver) {
	case "", "mock":
		return NewMockGateway(cfg), nil
	case "stripe":
		return NewStripeGateway(cfg)
	default:
		return nil, fmt.Errorf("unsupported payment gateway: %s", driver)
	}
}
