package models

import "fmt"

// RenderFunc turns a raw row value into its display form.
type RenderFunc func(value interface{}) string

// Column describes one table column. Render is a capability attached at load
// time and never serialised.
type Column struct {
	Key      string     `json:"key"`
	Label    string     `json:"label"`
	Visible  bool       `json:"visible"`
	Width    int        `json:"width,omitempty"`
	Category string     `json:"category,omitempty"`
	Render   RenderFunc `json:"-"`
}

// Display renders value with the column renderer, or with fmt when none is attached.
func (c Column) Display(value interface{}) string {
	if c.Render != nil {
		return c.Render(value)
	}
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// VisibleColumns filters the columns flagged visible, preserving order.
func VisibleColumns(columns []Column) []Column {
	out := make([]Column, 0, len(columns))
	for _, col := range columns {
		if col.Visible {
			out = append(out, col)
		}
	}
	return out
}
