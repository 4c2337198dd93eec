package customer

import (
	"strings"
	"time"
)

type Customer struct {
	CustomerID    string    `json:"customerId"`
	Name          string    `json:"name"`
	Mobile        string    `json:"mobile"`
	City          string    `json:"city"`
	CreditScore   int       `json:"creditScore"`
	MonthlyIncome float64   `json:"monthlyIncome"`
	ExistingEMI   float64   `json:"existingEmi"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NormalizeName lowercases and trims a name for matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeMobile strips whitespace and hyphens so formatted numbers compare
// equal to their bare form.
func NormalizeMobile(mobile string) string {
	replacer := strings.NewReplacer(" ", "", "-", "")
	return replacer.Replace(strings.TrimSpace(mobile))
}
