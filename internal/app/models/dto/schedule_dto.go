package dto

import (
	"strings"
	"time"

	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/pkg/helpers"
)

// ScheduleRequest represents schedule creation and update data
type ScheduleRequest struct {
	Type       string   `json:"type" binding:"required" example:"Mass"`
	Date       string   `json:"date" binding:"required,isodate" example:"2025-06-01"`
	Time       string   `json:"time" binding:"required,clock" example:"09:30"`
	MinistryID string   `json:"ministryId" binding:"required"`
	Volunteers []string `json:"volunteers" binding:"required,min=1,dive,required"`
	Notes      *string  `json:"notes"`
}

// RecurringScheduleRequest creates one schedule per occurrence of an RRULE starting at Date
type RecurringScheduleRequest struct {
	ScheduleRequest
	Recurrence string `json:"recurrence" binding:"required" example:"FREQ=WEEKLY;COUNT=4"`
}

// RequestChangeRequest carries the optional reason of a change request
type RequestChangeRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// ScheduleVolunteerResponse is a volunteer listed under a schedule
type ScheduleVolunteerResponse struct {
	ID              string `json:"id"`
	ParticipationID string `json:"participationId"`
	Name            string `json:"name"`
	Status          string `json:"status" enums:"pending,confirmed,exchange_requested"`
}

// ScheduleResponse is the management view of a schedule
type ScheduleResponse struct {
	ID            string                      `json:"id"`
	Date          string                      `json:"date" example:"2025-06-01"`
	Time          string                      `json:"time" example:"09:30"`
	Type          string                      `json:"type"`
	MinistryID    string                      `json:"ministryId"`
	Ministry      string                      `json:"ministry"`
	MinistryColor string                      `json:"ministryColor"`
	Notes         *string                     `json:"notes"`
	CreatedAt     time.Time                   `json:"createdAt"`
	Volunteers    []ScheduleVolunteerResponse `json:"volunteers"`
}

// NewScheduleResponse flattens a schedule detail
func NewScheduleResponse(detail *models.ScheduleDetail) ScheduleResponse {
	volunteers := make([]ScheduleVolunteerResponse, 0, len(detail.Volunteers))
	for _, v := range detail.Volunteers {
		volunteers = append(volunteers, ScheduleVolunteerResponse{
			ID:              v.VolunteerID,
			ParticipationID: v.ParticipationID,
			Name:            v.Name,
			Status:          StatusLabel(v.Status),
		})
	}
	return ScheduleResponse{
		ID:            detail.ID,
		Date:          helpers.FormatDate(detail.Date),
		Time:          helpers.FormatClock(detail.Time),
		Type:          detail.Type,
		MinistryID:    detail.MinistryID,
		Ministry:      detail.MinistryName,
		MinistryColor: detail.MinistryColor,
		Notes:         detail.Notes,
		CreatedAt:     detail.CreatedAt,
		Volunteers:    volunteers,
	}
}

// NewScheduleResponses flattens a list of schedule details
func NewScheduleResponses(details []*models.ScheduleDetail) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(details))
	for _, d := range details {
		out = append(out, NewScheduleResponse(d))
	}
	return out
}

// ParticipationResponse is one participation joined with its schedule
type ParticipationResponse struct {
	ID            string     `json:"id"`
	ScheduleID    string     `json:"scheduleId"`
	Date          string     `json:"date" example:"2025-06-01"`
	Time          string     `json:"time" example:"09:30"`
	Type          string     `json:"type"`
	Ministry      string     `json:"ministry"`
	MinistryColor string     `json:"ministryColor"`
	Notes         *string    `json:"notes,omitempty"`
	VolunteerID   string     `json:"volunteerId"`
	Volunteer     string     `json:"volunteer"`
	Status        string     `json:"status" enums:"pending,confirmed,exchange_requested"`
	ChangeReason  *string    `json:"changeReason,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// NewParticipationResponse flattens a participation view
func NewParticipationResponse(view *models.ParticipationView) ParticipationResponse {
	return ParticipationResponse{
		ID:            view.ID,
		ScheduleID:    view.ScheduleID,
		Date:          helpers.FormatDate(view.Date),
		Time:          helpers.FormatClock(view.Time),
		Type:          view.ScheduleType,
		Ministry:      view.MinistryName,
		MinistryColor: view.MinistryColor,
		Notes:         view.Notes,
		VolunteerID:   view.VolunteerID,
		Volunteer:     view.VolunteerName,
		Status:        StatusLabel(view.Status),
		ChangeReason:  view.ChangeReason,
		ConfirmedAt:   view.ConfirmedAt,
		CreatedAt:     view.ScheduleCreatedAt,
	}
}

// NewParticipationResponses flattens a list of participation views
func NewParticipationResponses(views []*models.ParticipationView) []ParticipationResponse {
	out := make([]ParticipationResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewParticipationResponse(v))
	}
	return out
}

// ParticipationStatusResponse is returned after a volunteer responds to a participation
type ParticipationStatusResponse struct {
	ID           string     `json:"id"`
	Status       string     `json:"status" enums:"confirmed,exchange_requested"`
	ChangeReason *string    `json:"changeReason,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmedAt,omitempty"`
}

// StatusLabel renders a participation status the way clients display it
func StatusLabel(status models.ParticipationStatus) string {
	return strings.ToLower(string(status))
}

// Participation event types pushed to connected managers
const (
	EventParticipationConfirmed       = "participation.confirmed"
	EventParticipationChangeRequested = "participation.change_requested"
)

// ParticipationEvent describes a volunteer response to a participation
type ParticipationEvent struct {
	Type            string    `json:"type" enums:"participation.confirmed,participation.change_requested"`
	ParticipationID string    `json:"participationId"`
	ScheduleID      string    `json:"scheduleId"`
	MinistryID      string    `json:"ministryId"`
	VolunteerID     string    `json:"volunteerId"`
	Status          string    `json:"status"`
	ChangeReason    *string   `json:"changeReason,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}
