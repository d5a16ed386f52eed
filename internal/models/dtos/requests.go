package dtos

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"droneworks/opsdesk/internal/apperrors"
	"droneworks/opsdesk/internal/constants"
	"droneworks/opsdesk/internal/timewindow"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

/* ---------- Schedules ---------- */

type CreateScheduleRequest struct {
	JobID   string  `json:"jobId"`
	PilotID string  `json:"pilotId"`
	DroneID string  `json:"droneId"`
	StartAt string  `json:"startAt"`
	EndAt   string  `json:"endAt"`
	Status  *string `json:"status,omitempty"`
}

// Validate checks the request and returns the parsed window and the
// status to store (ASSIGNED unless explicitly overridden). Range
// errors surface before any storage work, as 400s.
func (r *CreateScheduleRequest) Validate() (timewindow.Window, constants.ScheduleStatus, error) {
	verr := &apperrors.ValidationError{}
	if !isUUID(r.JobID) {
		verr.Add("jobId", "Invalid job")
	}
	if !isUUID(r.PilotID) {
		verr.Add("pilotId", "Invalid pilot")
	}
	if !isUUID(r.DroneID) {
		verr.Add("droneId", "Invalid drone")
	}
	if r.StartAt == "" {
		verr.Add("startAt", "Start time is required")
	}
	if r.EndAt == "" {
		verr.Add("endAt", "End time is required")
	}

	status := constants.ScheduleAssigned
	if r.Status != nil {
		status = constants.ScheduleStatus(*r.Status)
		if !status.Valid() {
			verr.Add("status", "Invalid status")
		}
	}

	if len(verr.Fields) > 0 {
		return timewindow.Window{}, "", verr
	}

	win, err := timewindow.Parse(r.StartAt, r.EndAt)
	if err == timewindow.ErrInvalidRange {
		return timewindow.Window{}, "", apperrors.Validation("endAt", "endAt must be after startAt")
	}
	if err != nil {
		return timewindow.Window{}, "", apperrors.Validation("startAt", "Invalid date format, expected RFC 3339")
	}
	return win, status, nil
}

type UpdateScheduleRequest struct {
	PilotID *string `json:"pilotId,omitempty"`
	DroneID *string `json:"droneId,omitempty"`
	StartAt *string `json:"startAt,omitempty"`
	EndAt   *string `json:"endAt,omitempty"`
	Status  *string `json:"status,omitempty"`
}

func (r *UpdateScheduleRequest) Validate() error {
	verr := &apperrors.ValidationError{}
	if r.PilotID != nil && !isUUID(*r.PilotID) {
		verr.Add("pilotId", "Invalid pilot")
	}
	if r.DroneID != nil && !isUUID(*r.DroneID) {
		verr.Add("droneId", "Invalid drone")
	}
	if r.Status != nil && !constants.ScheduleStatus(*r.Status).Valid() {
		verr.Add("status", "Invalid status")
	}
	if r.StartAt != nil && *r.StartAt == "" {
		verr.Add("startAt", "Start time is required")
	}
	if r.EndAt != nil && *r.EndAt == "" {
		verr.Add("endAt", "End time is required")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (r *UpdateScheduleRequest) Empty() bool {
	return r.PilotID == nil && r.DroneID == nil && r.StartAt == nil && r.EndAt == nil && r.Status == nil
}

type ScheduleListParams struct {
	Page     int
	PageSize int
	JobID    string
	SiteID   string
	PilotID  string
	DroneID  string
	Status   string
	From     string // startAt >= from (RFC 3339)
	To       string // endAt <= to (RFC 3339)
}

func ScheduleListParamsFromQuery(q url.Values) ScheduleListParams {
	return ScheduleListParams{
		Page:     parsePage(q.Get("page")),
		PageSize: parsePageSize(q.Get("pageSize")),
		JobID:    q.Get("jobId"),
		SiteID:   q.Get("siteId"),
		PilotID:  q.Get("pilotId"),
		DroneID:  q.Get("droneId"),
		Status:   q.Get("status"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	}
}

// CacheKey is a stable string form of the params, used as the list
// cache key suffix.
func (p ScheduleListParams) CacheKey() string {
	return fmt.Sprintf("%d:%d:%s:%s:%s:%s:%s:%s:%s",
		p.Page, p.PageSize, p.JobID, p.SiteID, p.PilotID, p.DroneID, p.Status, p.From, p.To)
}

func (p ScheduleListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

/* ---------- Jobs ---------- */

type CreateJobRequest struct {
	Name   string `json:"name"`
	SiteID string `json:"siteId"`
	Type   string `json:"type"`
}

func (r *CreateJobRequest) Validate() error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(r.Name) == "" {
		verr.Add("name", "Name is required")
	}
	if !isUUID(r.SiteID) {
		verr.Add("siteId", "Invalid site")
	}
	if !constants.JobType(r.Type).Valid() {
		verr.Add("type", "Invalid job type")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

type UpdateJobRequest struct {
	Name *string `json:"name,omitempty"`
	Type *string `json:"type,omitempty"`
}

func (r *UpdateJobRequest) Validate() error {
	verr := &apperrors.ValidationError{}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		verr.Add("name", "Name is required")
	}
	if r.Type != nil && !constants.JobType(*r.Type).Valid() {
		verr.Add("type", "Invalid job type")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

type JobListParams struct {
	Page             int
	PageSize         int
	SiteID           string
	Type             string
	Query            string
	IncludeSchedules bool
}

func JobListParamsFromQuery(q url.Values) JobListParams {
	return JobListParams{
		Page:             parsePage(q.Get("page")),
		PageSize:         parsePageSize(q.Get("pageSize")),
		SiteID:           q.Get("siteId"),
		Type:             q.Get("type"),
		Query:            q.Get("q"),
		IncludeSchedules: q.Get("includeSchedules") == "true",
	}
}

func (p JobListParams) Offset() int { return (p.Page - 1) * p.PageSize }

/* ---------- Drones ---------- */

type CreateDroneRequest struct {
	Name         string  `json:"name"`
	SerialNumber string  `json:"serialNumber"`
	Status       *string `json:"status,omitempty"`
}

func (r *CreateDroneRequest) Validate() (constants.DroneStatus, error) {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(r.Name) == "" {
		verr.Add("name", "Name is required")
	}
	if len(strings.TrimSpace(r.SerialNumber)) < 3 {
		verr.Add("serialNumber", "Serial number is required")
	}

	status := constants.DroneAvailable
	if r.Status != nil {
		status = constants.DroneStatus(*r.Status)
		if !status.Valid() {
			verr.Add("status", "Invalid status")
		}
	}
	if len(verr.Fields) > 0 {
		return "", verr
	}
	return status, nil
}

type UpdateDroneRequest struct {
	Name         *string `json:"name,omitempty"`
	SerialNumber *string `json:"serialNumber,omitempty"`
	Status       *string `json:"status,omitempty"`
}

func (r *UpdateDroneRequest) Validate() error {
	verr := &apperrors.ValidationError{}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		verr.Add("name", "Name is required")
	}
	if r.SerialNumber != nil && len(strings.TrimSpace(*r.SerialNumber)) < 3 {
		verr.Add("serialNumber", "Serial number is required")
	}
	if r.Status != nil && !constants.DroneStatus(*r.Status).Valid() {
		verr.Add("status", "Invalid status")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

type DroneListParams struct {
	Page             int
	PageSize         int
	Query            string
	Status           string
	IncludeSchedules bool
}

func DroneListParamsFromQuery(q url.Values) DroneListParams {
	return DroneListParams{
		Page:             parsePage(q.Get("page")),
		PageSize:         parsePageSize(q.Get("pageSize")),
		Query:            q.Get("q"),
		Status:           q.Get("status"),
		IncludeSchedules: q.Get("includeSchedules") == "true",
	}
}

func (p DroneListParams) Offset() int { return (p.Page - 1) * p.PageSize }

/* ---------- Sites ---------- */

type SiteRequest struct {
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	Description         string   `json:"Description"`
	SiteManager         string   `json:"siteManager"`
	Phone               string   `json:"phone"`
	Code                string   `json:"code"`
	Emirate             string   `json:"emirate"`
	City                string   `json:"city"`
	AssetType           string   `json:"assetType"`
	GlassSurfaceType    string   `json:"glassSurfaceType"`
	MaxApprovedPressure *float64 `json:"maxApprovedPressure"`
	Height              *float64 `json:"height"`
	PanelWidth          *float64 `json:"panelWidth"`
	PanelHeight         *float64 `json:"panelHeight"`
	TetherRequired      *bool    `json:"tetherRequired"`
	EstimatedTime       *float64 `json:"estimatedTime"`
	ActualTime          *float64 `json:"actualTime"`
	AccessConstraints   []string `json:"accessConstraints"`
}

func (r *SiteRequest) Validate() error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(r.Name) == "" {
		verr.Add("name", "Name is required")
	}
	if strings.TrimSpace(r.SiteManager) == "" {
		verr.Add("siteManager", "Site manager name is required")
	}
	if len(strings.TrimSpace(r.Phone)) < 6 {
		verr.Add("phone", "Phone is required")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

type SiteListParams struct {
	Page      int
	PageSize  int
	Query     string
	Emirate   string
	AssetType string
}

func SiteListParamsFromQuery(q url.Values) SiteListParams {
	return SiteListParams{
		Page:      parsePage(q.Get("page")),
		PageSize:  parsePageSize(q.Get("pageSize")),
		Query:     q.Get("q"),
		Emirate:   q.Get("emirate"),
		AssetType: q.Get("assetType"),
	}
}

func (p SiteListParams) Offset() int { return (p.Page - 1) * p.PageSize }

/* ---------- Auth ---------- */

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(r.Name) == "" {
		verr.Add("name", "Name is required")
	}
	if !strings.Contains(r.Email, "@") {
		verr.Add("email", "Invalid email")
	}
	if len(strings.TrimSpace(r.Phone)) < 6 {
		verr.Add("phone", "Phone is required")
	}
	if len(r.Password) < 8 {
		verr.Add("password", "Password must be at least 8 characters")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	verr := &apperrors.ValidationError{}
	if !strings.Contains(r.Email, "@") {
		verr.Add("email", "Invalid email")
	}
	if r.Password == "" {
		verr.Add("password", "Password is required")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

/* ---------- Statistics ---------- */

type StatisticsParams struct {
	From string
	To   string
}

/* ---------- helpers ---------- */

func parsePage(s string) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return 1
}

func parsePageSize(s string) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		if n > MaxPageSize {
			return MaxPageSize
		}
		return n
	}
	return DefaultPageSize
}
