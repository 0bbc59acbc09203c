package models

// Status captures the review state of a registration request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"

	// Reserved for the financial and finalisation steps; the API does not emit them yet.
	StatusFinancial Status = "financial"
	StatusFinalized Status = "finalized"
)

// StatusInfo is the display descriptor of a status.
type StatusInfo struct {
	Code  Status `json:"code"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusOrder = []Status{StatusPending, StatusScheduled, StatusInReview, StatusApproved, StatusRejected}

var statusColors = map[Status]string{
	StatusPending:   "warning",
	StatusScheduled: "info",
	StatusInReview:  "primary",
	StatusApproved:  "success",
	StatusRejected:  "danger",
}

// Valid reports whether s is part of the vocabulary.
func (s Status) Valid() bool {
	_, ok := statusColors[s]
	return ok
}

// StatusVocabulary returns the ordered status descriptors labelled through t.
func StatusVocabulary(t func(string) string) []StatusInfo {
	out := make([]StatusInfo, 0, len(statusOrder))
	for _, s := range statusOrder {
		out = append(out, DescribeStatus(s, t))
	}
	return out
}

// DescribeStatus returns the descriptor for s. Unknown statuses yield an empty descriptor.
func DescribeStatus(s Status, t func(string) string) StatusInfo {
	color, ok := statusColors[s]
	if !ok {
		return StatusInfo{}
	}
	label := string(s)
	if t != nil {
		label = t("status." + string(s))
	}
	return StatusInfo{Code: s, Label: label, Color: color}
}
