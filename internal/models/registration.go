package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a registration identifier. The remote API emits it either as a JSON
// number or as a numeric string, both decode to the same value.
type ID int64

// UnmarshalJSON accepts numbers, numeric strings, empty strings and null.
func (id *ID) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*id = 0
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		text = strings.TrimSpace(s)
		if text == "" {
			*id = 0
			return nil
		}
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid identifier %s: %w", string(raw), err)
	}
	*id = ID(value)
	return nil
}

// String renders the identifier as decimal text.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParentRole identifies which adult filed the registration.
type ParentRole string

const (
	RoleFather   ParentRole = "father"
	RoleMother   ParentRole = "mother"
	RoleGuardian ParentRole = "guardian"
)

// RegistrationRequest is one row of the registration list.
type RegistrationRequest struct {
	ID             ID     `json:"id"`
	ParentID       ID     `json:"parentId,omitempty"`
	GuardianName   string `json:"guardianName"`
	Role           string `json:"role"`
	Phone          string `json:"phone"`
	StudentCount   int    `json:"studentCount"`
	SubmissionDate string `json:"submissionDate"`
	Status         Status `json:"status"`
	MeetingSlot    string `json:"meetingSlot,omitempty"`

	Address          string `json:"address,omitempty"`
	FamilyMembers    int    `json:"familyMembers,omitempty"`
	FamilyStatus     string `json:"familyStatus,omitempty"`
	FatherName       string `json:"fatherName,omitempty"`
	FatherPhone      string `json:"fatherPhone,omitempty"`
	FatherProfession string `json:"fatherProfession,omitempty"`
	MotherName       string `json:"motherName,omitempty"`
	MotherPhone      string `json:"motherPhone,omitempty"`
	MotherProfession string `json:"motherProfession,omitempty"`
	GuardianRelation string `json:"guardianRelation,omitempty"`
	DiscoverySource  string `json:"discoverySource,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// ParentKey is the identifier used by the detail and mutation endpoints.
func (r RegistrationRequest) ParentKey() ID {
	if r.ParentID != 0 {
		return r.ParentID
	}
	return r.ID
}

// Field returns the raw value stored under a column key, or nil for unknown keys.
func (r RegistrationRequest) Field(key string) interface{} {
	switch key {
	case "id":
		return r.ID
	case "parentId":
		return r.ParentKey()
	case "guardianName":
		return r.GuardianName
	case "role":
		return r.Role
	case "phone":
		return r.Phone
	case "studentCount":
		return r.StudentCount
	case "submissionDate":
		return r.SubmissionDate
	case "status":
		return r.Status
	case "meetingSlot":
		return r.MeetingSlot
	case "address":
		return r.Address
	case "familyMembers":
		return r.FamilyMembers
	case "familyStatus":
		return r.FamilyStatus
	case "fatherName":
		return r.FatherName
	case "fatherPhone":
		return r.FatherPhone
	case "fatherProfession":
		return r.FatherProfession
	case "motherName":
		return r.MotherName
	case "motherPhone":
		return r.MotherPhone
	case "motherProfession":
		return r.MotherProfession
	case "guardianRelation":
		return r.GuardianRelation
	case "discoverySource":
		return r.DiscoverySource
	case "notes":
		return r.Notes
	default:
		return nil
	}
}

// ParentInfo describes the father, mother or guardian of a registration.
type ParentInfo struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	FirstNameLatin string `json:"firstNameLatin,omitempty"`
	LastNameLatin  string `json:"lastNameLatin,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	Profession     string `json:"profession,omitempty"`
	Employer       string `json:"employer,omitempty"`
	NationalID     string `json:"nationalId,omitempty"`
	Relation       string `json:"relation,omitempty"`
}

// FamilyInfo holds household level answers.
type FamilyInfo struct {
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	FamilyStatus    string `json:"familyStatus,omitempty"`
	MembersCount    int    `json:"membersCount,omitempty"`
	DiscoverySource string `json:"discoverySource,omitempty"`
	Comments        string `json:"comments,omitempty"`
}

// Student is a child enrolled through a registration request.
type Student struct {
	ID             ID     `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	FirstNameLatin string `json:"firstNameLatin,omitempty"`
	LastNameLatin  string `json:"lastNameLatin,omitempty"`
	BirthDate      string `json:"birthDate,omitempty"`
	BirthPlace     string `json:"birthPlace,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Nationality    string `json:"nationality,omitempty"`

	CurrentGrade   string `json:"currentGrade,omitempty"`
	RequestedGrade string `json:"requestedGrade,omitempty"`
	Repeater       bool   `json:"repeater"`
	PreviousSchool string `json:"previousSchool,omitempty"`
	Term1Result    string `json:"term1Result,omitempty"`
	Term2Result    string `json:"term2Result,omitempty"`
	Term3Result    string `json:"term3Result,omitempty"`

	MedicalStatus string `json:"medicalStatus,omitempty"`
	NeedsBus      bool   `json:"needsBus"`
	BusLine       string `json:"busLine,omitempty"`
	BloodType     string `json:"bloodType,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// RegistrationDetail is the expanded record behind a list row.
type RegistrationDetail struct {
	ParentID        ID          `json:"parentId"`
	PrimaryRole     ParentRole  `json:"primaryRole"`
	Father          *ParentInfo `json:"father,omitempty"`
	Mother          *ParentInfo `json:"mother,omitempty"`
	Guardian        *ParentInfo `json:"guardian,omitempty"`
	Family          FamilyInfo  `json:"family"`
	Students        []Student   `json:"students"`
	Status          Status      `json:"status"`
	RejectionReason string      `json:"rejectionReason,omitempty"`
}

// PrimaryContact returns the parent block matching PrimaryRole, if present.
func (d *RegistrationDetail) PrimaryContact() *ParentInfo {
	if d == nil {
		return nil
	}
	switch d.PrimaryRole {
	case RoleFather:
		return d.Father
	case RoleMother:
		return d.Mother
	case RoleGuardian:
		return d.Guardian
	default:
		return nil
	}
}

// StatusUpdate is the mutation payload accepted by the remote API.
type StatusUpdate struct {
	ParentID        ID     `json:"parentId"`
	Status          Status `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}
