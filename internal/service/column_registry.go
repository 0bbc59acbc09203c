package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/sma-registration-console/internal/models"
	"github.com/noah-isme/sma-registration-console/pkg/i18n"
)

// Column categories used to group optional columns.
const (
	CategoryFamily   = "family"
	CategoryFather   = "father"
	CategoryMother   = "mother"
	CategoryGuardian = "guardian"
	CategoryOther    = "other"
)

type columnDef struct {
	key      string
	width    int
	category string
	extra    bool
	render   func(t i18n.Func) models.RenderFunc
}

var columnDefs = []columnDef{
	{key: "id", width: 70},
	{key: "guardianName", width: 200},
	{key: "role", width: 110, render: roleRenderer},
	{key: "phone", width: 140},
	{key: "studentCount", width: 90},
	{key: "submissionDate", width: 130, render: dateRenderer},
	{key: "status", width: 150, render: statusRenderer},
	{key: "meetingSlot", width: 160},

	{key: "address", width: 240, category: CategoryFamily, extra: true},
	{key: "familyMembers", width: 110, category: CategoryFamily, extra: true, render: countRenderer},
	{key: "familyStatus", width: 140, category: CategoryFamily, extra: true},
	{key: "fatherName", width: 180, category: CategoryFather, extra: true},
	{key: "fatherPhone", width: 140, category: CategoryFather, extra: true},
	{key: "fatherProfession", width: 160, category: CategoryFather, extra: true},
	{key: "motherName", width: 180, category: CategoryMother, extra: true},
	{key: "motherPhone", width: 140, category: CategoryMother, extra: true},
	{key: "motherProfession", width: 160, category: CategoryMother, extra: true},
	{key: "guardianRelation", width: 140, category: CategoryGuardian, extra: true},
	{key: "discoverySource", width: 160, category: CategoryOther, extra: true},
	{key: "notes", width: 260, category: CategoryOther, extra: true},
}

// DefaultColumns builds the always-visible columns followed by the optional
// ones (hidden by default), labelled through t.
func DefaultColumns(t i18n.Func) []models.Column {
	columns := make([]models.Column, 0, len(columnDefs))
	for _, def := range columnDefs {
		col := models.Column{
			Key:      def.key,
			Label:    t("columns." + def.key),
			Visible:  !def.extra,
			Width:    def.width,
			Category: def.category,
		}
		if def.render != nil {
			col.Render = def.render(t)
		}
		columns = append(columns, col)
	}
	return columns
}

// ColumnCategories returns the localized labels of optional column groups.
func ColumnCategories(t i18n.Func) map[string]string {
	out := make(map[string]string)
	for _, def := range columnDefs {
		if def.category == "" {
			continue
		}
		out[def.category] = t("categories." + def.category)
	}
	return out
}

func statusRenderer(t i18n.Func) models.RenderFunc {
	return func(value interface{}) string {
		var status models.Status
		switch v := value.(type) {
		case models.Status:
			status = v
		case string:
			status = models.Status(v)
		default:
			return ""
		}
		return models.DescribeStatus(status, t).Label
	}
}

func roleRenderer(t i18n.Func) models.RenderFunc {
	return func(value interface{}) string {
		raw := strings.ToLower(strings.TrimSpace(fmt.Sprint(value)))
		switch models.ParentRole(raw) {
		case models.RoleFather, models.RoleMother, models.RoleGuardian:
			return t("roles." + raw)
		}
		if value == nil {
			return ""
		}
		return fmt.Sprint(value)
	}
}

var submissionLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

func dateRenderer(i18n.Func) models.RenderFunc {
	return func(value interface{}) string {
		raw, ok := value.(string)
		if !ok {
			return ""
		}
		raw = strings.TrimSpace(raw)
		for _, layout := range submissionLayouts {
			if ts, err := time.Parse(layout, raw); err == nil {
				return ts.Format("2006-01-02")
			}
		}
		return raw
	}
}

func countRenderer(i18n.Func) models.RenderFunc {
	return func(value interface{}) string {
		if n, ok := value.(int); ok {
			if n <= 0 {
				return ""
			}
			return fmt.Sprintf("%d", n)
		}
		if value == nil {
			return ""
		}
		return fmt.Sprint(value)
	}
}
