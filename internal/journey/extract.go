package journey

import (
	"regexp"
	"strconv"
	"strings"
)

// Free-text extraction for the collection stages. Each extractor is
// forgiving about phrasing but strict about the value it returns;
// failure to extract re-prompts the applicant, it is never an error.

var (
	crorePattern  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:crores?|cr)\b`)
	lakhPattern   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:lakhs?|lacs?|l)\b`)
	thousandsKPat = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*k\b`)
	plainAmount   = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)`)

	yearsPattern  = regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)\b`)
	monthsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:months?|mos?)\b`)
	bareNumber    = regexp.MustCompile(`^\s*(\d+)\s*$`)

	mobilePattern = regexp.MustCompile(`(?:\+?91[\s-]?)?([6-9]\d{9})\b`)
)

// extractAmount understands "50 lakh", "1.5 cr", "300k", "5,00,000" and
// plain digits.
func extractAmount(message string) (float64, bool) {
	if m := crorePattern.FindStringSubmatch(message); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v > 0 {
			return v * 10000000, true
		}
	}
	if m := lakhPattern.FindStringSubmatch(message); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v > 0 {
			return v * 100000, true
		}
	}
	if m := thousandsKPat.FindStringSubmatch(message); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v > 0 {
			return v * 1000, true
		}
	}
	if m := plainAmount.FindStringSubmatch(message); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// extractTenure returns a tenure in months. "3 years" and "36 months"
// are explicit; a bare small number reads as years, a bare larger one
// as months.
func extractTenure(message string) (int, bool) {
	if m := yearsPattern.FindStringSubmatch(message); m != nil {
		v, err := strconv.Atoi(m[1])
		if err == nil && v > 0 {
			return v * 12, true
		}
	}
	if m := monthsPattern.FindStringSubmatch(message); m != nil {
		v, err := strconv.Atoi(m[1])
		if err == nil && v > 0 {
			return v, true
		}
	}
	if m := bareNumber.FindStringSubmatch(message); m != nil {
		v, err := strconv.Atoi(m[1])
		if err == nil && v > 0 {
			if v <= 10 {
				return v * 12, true
			}
			return v, true
		}
	}
	return 0, false
}

// extractMobile returns a normalized 10-digit Indian mobile number.
func extractMobile(message string) (string, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, message)
	if m := mobilePattern.FindStringSubmatch(cleaned); m != nil {
		return m[1], true
	}
	return "", false
}

// extractNumber pulls the first plain number out of a message; used for
// income, obligation and credit score answers.
func extractNumber(message string) (float64, bool) {
	if m := plainAmount.FindStringSubmatch(message); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err == nil && v >= 0 {
			return v, true
		}
	}
	return 0, false
}

func isAffirmative(message string) bool {
	switch strings.ToLower(strings.TrimSpace(message)) {
	case "yes", "y", "yeah", "yep", "ok", "okay", "sure", "confirm", "accept", "proceed", "go ahead":
		return true
	}
	return false
}

func isNegative(message string) bool {
	switch strings.ToLower(strings.TrimSpace(message)) {
	case "no", "n", "nope", "decline", "cancel", "reject", "not now":
		return true
	}
	return false
}

func isRestart(message string) bool {
	switch strings.ToLower(strings.TrimSpace(message)) {
	case "restart", "start over", "reset", "new application":
		return true
	}
	return false
}
