package dto

import "github.com/noah-isme/sma-registration-console/internal/models"

// DateFilterRequest sets the meeting-slot date prefix. An empty date clears it.
type DateFilterRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// SelectionRequest replaces the selected row ids.
type SelectionRequest struct {
	IDs []models.ID `json:"ids"`
}

// BulkRemoveRequest carries the operator's answer to the removal prompt.
type BulkRemoveRequest struct {
	Confirmed bool `json:"confirmed"`
}

// BulkRejectRequest rejects every selected row with one reason.
type BulkRejectRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// StatusUpdateRequest changes the status of the open registration.
type StatusUpdateRequest struct {
	Status          models.Status `json:"status" validate:"required,oneof=pending scheduled in_review approved rejected"`
	RejectionReason string        `json:"rejectionReason" validate:"max=1000"`
}

// Composition modes accepted by CompositionRequest.
const (
	CompositionReject     = "reject"
	CompositionBulkReject = "bulk_reject"
	CompositionCancel     = "cancel"
)

// CompositionRequest opens or closes the rejection composer.
type CompositionRequest struct {
	Mode   string  `json:"mode" validate:"required,oneof=reject bulk_reject cancel"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

// ColumnInput is one column of a saved layout.
type ColumnInput struct {
	Key      string `json:"key" validate:"required,max=64"`
	Label    string `json:"label" validate:"max=128"`
	Visible  bool   `json:"visible"`
	Width    int    `json:"width" validate:"gte=0,lte=2000"`
	Category string `json:"category,omitempty" validate:"max=32"`
}

// ColumnsRequest replaces the column layout.
type ColumnsRequest struct {
	Columns []ColumnInput `json:"columns" validate:"required,min=1,dive"`
}

// ToModels converts the payload into columns.
func (r ColumnsRequest) ToModels() []models.Column {
	out := make([]models.Column, len(r.Columns))
	for i, col := range r.Columns {
		out[i] = models.Column{
			Key:      col.Key,
			Label:    col.Label,
			Visible:  col.Visible,
			Width:    col.Width,
			Category: col.Category,
		}
	}
	return out
}

// LanguageRequest switches the console language.
type LanguageRequest struct {
	Language string `json:"language" validate:"required,min=2,max=8"`
}
