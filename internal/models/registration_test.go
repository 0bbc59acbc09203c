package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshalJSON(t *testing.T) {
	cases := []struct {
		raw  string
		want ID
	}{
		{`42`, 42},
		{`"42"`, 42},
		{`" 7 "`, 7},
		{`""`, 0},
		{`null`, 0},
	}
	for _, tc := range cases {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &id), tc.raw)
		assert.Equal(t, tc.want, id, tc.raw)
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &id))
}

func TestRegistrationRequestDecodesMixedIdentifiers(t *testing.T) {
	var rows []RegistrationRequest
	payload := `[{"id":"3","parentId":9,"guardianName":"Amina"},{"id":4}]`
	require.NoError(t, json.Unmarshal([]byte(payload), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, ID(9), rows[0].ParentKey())
	assert.Equal(t, ID(4), rows[1].ParentKey())
	assert.Equal(t, "Amina", rows[0].Field("guardianName"))
	assert.Equal(t, ID(9), rows[0].Field("parentId"))
	assert.Nil(t, rows[0].Field("nope"))
}

func TestPrimaryContact(t *testing.T) {
	mother := &ParentInfo{FirstName: "Salma"}
	detail := &RegistrationDetail{PrimaryRole: RoleMother, Mother: mother}
	assert.Same(t, mother, detail.PrimaryContact())

	detail.PrimaryRole = RoleGuardian
	assert.Nil(t, detail.PrimaryContact())

	var missing *RegistrationDetail
	assert.Nil(t, missing.PrimaryContact())
}

func TestDescribeStatus(t *testing.T) {
	upper := func(key string) string { return "[" + key + "]" }

	info := DescribeStatus(StatusApproved, upper)
	assert.Equal(t, StatusInfo{Code: StatusApproved, Label: "[status.approved]", Color: "success"}, info)

	assert.Equal(t, "rejected", DescribeStatus(StatusRejected, nil).Label)
	assert.Equal(t, StatusInfo{}, DescribeStatus("archived", upper))
	assert.False(t, StatusFinancial.Valid())

	vocabulary := StatusVocabulary(upper)
	require.Len(t, vocabulary, 5)
	assert.Equal(t, StatusPending, vocabulary[0].Code)
	assert.Equal(t, StatusRejected, vocabulary[4].Code)
}

func TestColumnDisplay(t *testing.T) {
	plain := Column{Key: "studentCount"}
	assert.Equal(t, "3", plain.Display(3))
	assert.Equal(t, "", plain.Display(nil))

	rendered := Column{Key: "status", Render: func(v interface{}) string { return "x" }}
	assert.Equal(t, "x", rendered.Display("pending"))

	cols := VisibleColumns([]Column{{Key: "a", Visible: true}, {Key: "b"}, {Key: "c", Visible: true}})
	require.Len(t, cols, 2)
	assert.Equal(t, "c", cols[1].Key)
}
