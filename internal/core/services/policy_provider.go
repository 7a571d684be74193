package services

import (
	"github.com/maziwaops/dairy_credit_app/internal/core/domain"
	portssvc "github.com/maziwaops/dairy_credit_app/internal/core/ports/services"
	"github.com/maziwaops/dairy_credit_app/internal/platform/config"
	"github.com/shopspring/decimal"
)

// configPolicyProvider derives tier defaults from application configuration.
type configPolicyProvider struct {
	newTier         portssvc.TierPolicy
	establishedTier portssvc.TierPolicy
	premiumTier     portssvc.TierPolicy
	absoluteCap     decimal.Decimal
}

// NewPolicyProvider creates a PolicyProvider backed by the loaded configuration.
func NewPolicyProvider(cfg config.CreditPolicyConfig) portssvc.PolicyProvider {
	defaultMax := decimal.NewFromFloat(cfg.DefaultMaxCreditAmount)
	return &configPolicyProvider{
		newTier: portssvc.TierPolicy{
			LimitPercentage: decimal.NewFromFloat(cfg.NewTierPercentage),
			MaxCreditAmount: defaultMax,
		},
		establishedTier: portssvc.TierPolicy{
			LimitPercentage: decimal.NewFromFloat(cfg.EstablishedTierPercentage),
			MaxCreditAmount: defaultMax,
		},
		premiumTier: portssvc.TierPolicy{
			LimitPercentage: decimal.NewFromFloat(cfg.PremiumTierPercentage),
			MaxCreditAmount: defaultMax,
		},
		absoluteCap: decimal.NewFromFloat(cfg.AbsoluteCreditCeiling),
	}
}

var _ portssvc.PolicyProvider = (*configPolicyProvider)(nil)

// DefaultsForTier returns the limit percentage and cap for a tier. An unknown
// tier gets the most conservative (NEW) defaults.
func (p *configPolicyProvider) DefaultsForTier(tier domain.FarmerTier) portssvc.TierPolicy {
	switch tier {
	case domain.TierEstablished:
		return p.establishedTier
	case domain.TierPremium:
		return p.premiumTier
	default:
		return p.newTier
	}
}

// AbsoluteCap returns the global ceiling no profile cap may exceed.
func (p *configPolicyProvider) AbsoluteCap() decimal.Decimal {
	return p.absoluteCap
}
