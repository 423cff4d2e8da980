package models

import "time"

// Schedule is a dated service slot of a ministry.
// Date is midnight UTC of the calendar day; Time is the UTC clock value on 1970-01-01.
type Schedule struct {
	ID          string
	Type        string
	Date        time.Time
	Time        time.Time
	Notes       *string
	MinistryID  string
	CreatedByID string
	CreatedAt   time.Time
}

// Participation is one volunteer's assignment to a schedule
type Participation struct {
	ID           string
	ScheduleID   string
	VolunteerID  string
	Status       ParticipationStatus
	ChangeReason *string
	ConfirmedAt  *time.Time
}

// ScheduleVolunteer is a participation as seen from its schedule
type ScheduleVolunteer struct {
	ParticipationID string
	VolunteerID     string
	Name            string
	Status          ParticipationStatus
}

// ScheduleDetail is a schedule joined with its ministry and volunteers
type ScheduleDetail struct {
	Schedule
	MinistryName  string
	MinistryColor string
	Volunteers    []ScheduleVolunteer
}

// ParticipationView is a participation joined with its schedule, ministry and volunteer
type ParticipationView struct {
	ID                string
	ScheduleID        string
	ScheduleType      string
	Date              time.Time
	Time              time.Time
	Notes             *string
	MinistryID        string
	MinistryName      string
	MinistryColor     string
	VolunteerID       string
	VolunteerName     string
	Status            ParticipationStatus
	ChangeReason      *string
	ConfirmedAt       *time.Time
	ScheduleCreatedAt time.Time
}

// ScheduleFilter narrows schedule listings
type ScheduleFilter struct {
	// RestrictMinistries limits results to MinistryIDs, even when it is empty
	RestrictMinistries bool
	MinistryIDs        []string
}

// ParticipationFilter narrows participation listings and counts
type ParticipationFilter struct {
	VolunteerID        string
	RestrictMinistries bool
	MinistryIDs        []string
	Status             ParticipationStatus
	MinistryName       string
	Search             string
	DateFrom           *time.Time
	ConfirmedFrom      *time.Time
	ConfirmedTo        *time.Time
}
