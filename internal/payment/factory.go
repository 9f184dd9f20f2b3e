package payment

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the configured gateway. The provider is chosen once at startup;
// shared logic never branches on it again.
func New(provider string, sipay SipayConfig, iyzico IyzicoConfig, logger *zap.Logger) (Gateway, error) {
	switch provider {
	case "sipay":
		if sipay.MerchantKey == "" || sipay.AppKey == "" || sipay.AppSecret == "" {
			return nil, fmt.Errorf("sipay credentials are not configured")
		}
		return NewSipayGateway(sipay, logger), nil
	case "iyzico":
		if iyzico.APIKey == "" || iyzico.SecretKey == "" {
			return nil, fmt.Errorf("iyzico credentials are not configured")
		}
		return NewIyzicoGateway(iyzico, logger), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", provider)
	}
}
