package underwriting

import (
	"log/slog"

	"loan-origination/internal/config"
)

// Policy names and config keys as they appear in the policy store.
const (
	PolicyCreditScore = "Credit Score Threshold"
	PolicyFOIRLimits  = "FOIR Limits"
	PolicyMinIncome   = "Minimum Income"
	PolicyMaxTenure   = "Maximum Tenure"

	keyMinCreditScore = "min_credit_score_auto_approve"
	keyMaxFOIR        = "max_foir_auto_approve"
	keyMinIncome      = "min_monthly_income"
	keyMaxTenure      = "max_tenure_months"
)

// Documented defaults, used whenever the policy store has no value for a key.
const (
	DefaultMinCreditScore = 720
	DefaultMaxFOIR        = 0.5
	DefaultMinIncome      = 30000
	DefaultMaxTenure      = 60
)

// Provider resolves a single policy configuration value, falling back to the
// supplied default when the policy or key is absent.
type Provider interface {
	Value(policyName, key string, def float64) float64
}

type configProvider struct {
	values map[string]map[string]float64
	logger *slog.Logger
}

// NewConfigProvider builds a Provider over the policy values loaded from
// configuration. Lookups that miss are logged and resolved to the default so
// a broken policy file degrades to documented behaviour instead of failing.
func NewConfigProvider(cfg config.PolicyConfig, logger *slog.Logger) Provider {
	return &configProvider{
		values: cfg.Values,
		logger: logger.With("component", "PolicyProvider"),
	}
}

func (p *configProvider) Value(policyName, key string, def float64) float64 {
	policy, ok := p.values[policyName]
	if !ok {
		p.logger.Warn("Policy not configured, using default", "policy", policyName, "key", key, "default", def)
		return def
	}
	v, ok := policy[key]
	if !ok {
		p.logger.Warn("Policy key not configured, using default", "policy", policyName, "key", key, "default", def)
		return def
	}
	return v
}

// Thresholds are the resolved limits the threshold policy evaluates against.
type Thresholds struct {
	MinCreditScore int
	MaxFOIR        float64
	MinIncome      float64
	MaxTenure      int
}

func LoadThresholds(p Provider) Thresholds {
	return Thresholds{
		MinCreditScore: int(p.Value(PolicyCreditScore, keyMinCreditScore, DefaultMinCreditScore)),
		MaxFOIR:        p.Value(PolicyFOIRLimits, keyMaxFOIR, DefaultMaxFOIR),
		MinIncome:      p.Value(PolicyMinIncome, keyMinIncome, DefaultMinIncome),
		MaxTenure:      int(p.Value(PolicyMaxTenure, keyMaxTenure, DefaultMaxTenure)),
	}
}
