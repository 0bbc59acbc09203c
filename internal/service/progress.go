package service

import (
	"github.com/noah-isme/sma-registration-console/internal/models"
	"github.com/noah-isme/sma-registration-console/pkg/i18n"
)

var progressSteps = []string{"application", "interview", "financial", "finalized"}

// StepIndexFor maps a status onto the four-step review progress bar.
func StepIndexFor(status models.Status) int {
	switch status {
	case models.StatusApproved, models.StatusScheduled:
		return 1
	case models.StatusFinancial:
		return 2
	case models.StatusFinalized:
		return 3
	default:
		return 0
	}
}

// Steps returns the translated labels of the progress bar.
func Steps(t i18n.Func) []string {
	out := make([]string, len(progressSteps))
	for i, key := range progressSteps {
		out[i] = t("steps." + key)
	}
	return out
}
