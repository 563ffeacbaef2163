package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Role is a skill a user offers or a project needs.
type Role string

const (
	RoleDeveloper Role = "DEVELOPER"
	RoleDesigner  Role = "DESIGNER"
	RoleProduct   Role = "PRODUCT"
	RoleMarketing Role = "MARKETING"
	RoleBusiness  Role = "BUSINESS"
	RoleFinance   Role = "FINANCE"
	RoleData      Role = "DATA"
	RoleResearch  Role = "RESEARCH"
	RoleOther     Role = "OTHER"
)

var AllRoles = []Role{
	RoleDeveloper, RoleDesigner, RoleProduct, RoleMarketing, RoleBusiness,
	RoleFinance, RoleData, RoleResearch, RoleOther,
}

type ProjectType string

const (
	ProjectTypeStartup   ProjectType = "STARTUP"
	ProjectTypeResearch  ProjectType = "RESEARCH"
	ProjectTypeSocial    ProjectType = "SOCIAL"
	ProjectTypeHackathon ProjectType = "HACKATHON"
	ProjectTypeAcademic  ProjectType = "ACADEMIC"
	ProjectTypeOther     ProjectType = "OTHER"
)

var AllProjectTypes = []ProjectType{
	ProjectTypeStartup, ProjectTypeResearch, ProjectTypeSocial,
	ProjectTypeHackathon, ProjectTypeAcademic, ProjectTypeOther,
}

// Year is the study year shown on a profile.
type Year string

const (
	YearFirst    Year = "FIRSTYEAR"
	YearSecond   Year = "SECONDYEAR"
	YearThird    Year = "THIRDYEAR"
	YearFourth   Year = "FOURTHYEAR"
	YearGraduate Year = "GRADUATE"
)

var AllYears = []Year{YearFirst, YearSecond, YearThird, YearFourth, YearGraduate}

type ContactPurpose string

const (
	ContactPurposeMoreDetails ContactPurpose = "MOREDETAILS"
	ContactPurposeJoin        ContactPurpose = "JOIN"
	ContactPurposeMentor      ContactPurpose = "MENTOR"
	ContactPurposeInvest      ContactPurpose = "INVEST"
)

var AllContactPurposes = []ContactPurpose{
	ContactPurposeMoreDetails, ContactPurposeJoin, ContactPurposeMentor, ContactPurposeInvest,
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) Decided() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

func (r Role) Valid() bool           { return contains(AllRoles, r) }
func (t ProjectType) Valid() bool    { return contains(AllProjectTypes, t) }
func (y Year) Valid() bool           { return contains(AllYears, y) }
func (p ContactPurpose) Valid() bool { return contains(AllContactPurposes, p) }

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// EnumList is a list of enum values stored as a JSON array in a text column,
// e.g. ["DEVELOPER","DESIGNER"]. Each element is quoted, so a LIKE on
// %"DEVELOPER"% matches exactly one value.
type EnumList[T ~string] []T

func (l *EnumList[T]) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal enum list: %v", value)
	}

	if len(bytes) == 0 {
		*l = EnumList[T]{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

func (l EnumList[T]) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]T(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// MarshalJSON renders a nil list as [] rather than null.
func (l EnumList[T]) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]T(l))
}

// Overlaps reports whether l and other share at least one value.
func (l EnumList[T]) Overlaps(other []T) bool {
	for _, v := range l {
		if contains(other, v) {
			return true
		}
	}
	return false
}

// LikePattern is the SQL LIKE pattern matching one element of an EnumList column.
func LikePattern[T ~string](v T) string {
	return `%"` + string(v) + `"%`
}
