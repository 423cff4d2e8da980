package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
)

func TestParseReportFilter(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.ReportFilterRequest
		want    models.ParticipationFilter
		wantErr bool
	}{
		{"empty", dto.ReportFilterRequest{}, models.ParticipationFilter{}, false},
		{"wildcards", dto.ReportFilterRequest{Status: "TODOS", Ministry: "all"}, models.ParticipationFilter{}, false},
		{"lower case status", dto.ReportFilterRequest{Status: "confirmed"}, models.ParticipationFilter{Status: models.ParticipationConfirmed}, false},
		{"exchange requested", dto.ReportFilterRequest{Status: "Exchange_Requested"}, models.ParticipationFilter{Status: models.ParticipationExchangeRequested}, false},
		{"ministry and search", dto.ReportFilterRequest{Ministry: " Liturgy ", Search: " bia "}, models.ParticipationFilter{MinistryName: "Liturgy", Search: "bia"}, false},
		{"unknown status", dto.ReportFilterRequest{Status: "cancelled"}, models.ParticipationFilter{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReportFilter(&tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type reportFixture struct {
	*fixture
	director    *models.User
	coordinator *models.User
	bia         *models.User
	caio        *models.User
}

// newReportFixture creates a Liturgy schedule with Bia confirmed and Caio pending,
// and a Music schedule with Caio pending. The coordinator belongs to Music only.
func newReportFixture(t *testing.T) *reportFixture {
	f := &reportFixture{fixture: newFixture(t)}
	ctx := context.Background()
	f.director = f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	music := f.ministry(t, "Music")
	f.coordinator = f.user(t, "Carla Coordinator", models.RoleCoordinator)
	f.join(t, f.coordinator, music)
	f.bia = f.user(t, "Bia Volunteer", models.RoleVolunteer)
	f.caio = f.user(t, "Caio Volunteer", models.RoleVolunteer)

	f.services.Schedule.WithClock(func() time.Time { return time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC) })

	mass, err := f.services.Schedule.Create(ctx, identityOf(f.director), scheduleRequest(liturgy.ID, "2025-06-01", f.bia, f.caio))
	require.NoError(t, err)
	_, err = f.services.Schedule.Confirm(ctx, identityOf(f.bia), participationOf(t, mass, f.bia))
	require.NoError(t, err)

	choir := scheduleRequest(music.ID, "2025-05-25", f.caio)
	choir.Type = "Choir rehearsal"
	_, err = f.services.Schedule.Create(ctx, identityOf(f.director), choir)
	require.NoError(t, err)
	return f
}

func TestReportSchedules(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	rows, err := f.services.Report.Schedules(ctx, identityOf(f.director), &dto.ReportFilterRequest{Status: "todos"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// ordered by schedule date
	assert.Equal(t, "2025-05-25", rows[0].Date)
	assert.Equal(t, "Choir rehearsal", rows[0].Type)

	rows, err = f.services.Report.Schedules(ctx, identityOf(f.director), &dto.ReportFilterRequest{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "pending", r.Status)
	}

	rows, err = f.services.Report.Schedules(ctx, identityOf(f.director), &dto.ReportFilterRequest{Ministry: "Liturgy", Search: "BIA"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Bia Volunteer", rows[0].Volunteer)
	assert.Equal(t, "confirmed", rows[0].Status)

	rows, err = f.services.Report.Schedules(ctx, identityOf(f.director), &dto.ReportFilterRequest{Search: "choir"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReportSchedules_Scope(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	rows, err := f.services.Report.Schedules(ctx, identityOf(f.coordinator), &dto.ReportFilterRequest{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Music", rows[0].Ministry)

	_, err = f.services.Report.Schedules(ctx, identityOf(f.bia), &dto.ReportFilterRequest{})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.services.Report.Schedules(ctx, identityOf(f.director), &dto.ReportFilterRequest{Status: "bogus"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestReportExport_CSV(t *testing.T) {
	f := newReportFixture(t)

	var buf bytes.Buffer
	err := f.services.Report.Export(context.Background(), identityOf(f.director), &dto.ReportExportRequest{
		ReportFilterRequest: dto.ReportFilterRequest{Status: "confirmed"},
		Format:              "CSV",
	}, &buf)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"date", "time", "type", "ministry", "volunteer", "status", "change_reason", "confirmed_at"}, records[0])
	assert.Equal(t, []string{"2025-06-01", "09:30", "Mass", "Liturgy", "Bia Volunteer", "confirmed", "", "2025-05-20T14:00:00Z"}, records[1])
}

func TestReportExport_UnsupportedFormat(t *testing.T) {
	f := newReportFixture(t)

	var buf bytes.Buffer
	err := f.services.Report.Export(context.Background(), identityOf(f.director), &dto.ReportExportRequest{Format: "pdf"}, &buf)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Zero(t, buf.Len())
}
