package dto

// DashboardSummary holds the counters shown on the home page.
// Managers receive the first three fields, volunteers the last two.
type DashboardSummary struct {
	ActiveVolunteers    *int `json:"activeVolunteers,omitempty"`
	PendingSchedules    *int `json:"pendingSchedules,omitempty"`
	ConfirmationsToday  *int `json:"confirmationsToday,omitempty"`
	UpcomingSchedules   *int `json:"upcomingSchedules,omitempty"`
	PendingConfirmation *int `json:"pendingConfirmation,omitempty"`
}

// ReportFilterRequest holds the query parameters of the schedule report
type ReportFilterRequest struct {
	Status   string `form:"status" example:"confirmed"`
	Ministry string `form:"ministry" example:"Liturgy"`
	Search   string `form:"search"`
}

// ReportExportRequest selects the export format of the schedule report
type ReportExportRequest struct {
	ReportFilterRequest
	Format string `form:"format" binding:"required" example:"csv"`
}
