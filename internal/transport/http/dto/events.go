package dto

import (
	"encoding/json"
	"time"
)

// Wire models use the camelCase field names the calendar frontend speaks.

type DepartmentResp struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type EventResp struct {
	ID int64 `json:"id"`

	Title     string `json:"title"`
	DateStart string `json:"dateStart"`
	DateEnd   string `json:"dateEnd"`
	TimeStart string `json:"timeStart,omitempty"`
	TimeEnd   string `json:"timeEnd,omitempty"`
	Place     string `json:"place,omitempty"`
	Format    string `json:"format,omitempty"`

	DepartmentID  *int64           `json:"departmentId"`
	DepartmentIDs []int64          `json:"departmentIds"`
	Departments   []DepartmentResp `json:"departments,omitempty"`

	Labels            []string        `json:"labels,omitempty"`
	LimitParticipants *int            `json:"limitParticipants"`
	Description       string          `json:"description,omitempty"`
	PostLink          *string         `json:"postLink"`
	RegLink           *string         `json:"regLink"`
	ResponsibleLink   *string         `json:"responsibleLink"`
	Repeat            json.RawMessage `json:"repeat,omitempty"`

	Status    string    `json:"status"`
	RequestID *int64    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
