package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
)

func TestScheduleCreate_AssignsPendingVolunteers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)
	caio := f.user(t, "Caio Volunteer", models.RoleVolunteer)

	notes := "  bring the candles "
	req := scheduleRequest(liturgy.ID, "2025-06-01", bia, caio, bia)
	req.Notes = &notes

	schedule, err := f.services.Schedule.Create(ctx, identityOf(director), req)
	require.NoError(t, err)

	assert.Equal(t, "2025-06-01", schedule.Date)
	assert.Equal(t, "09:30", schedule.Time)
	assert.Equal(t, "Liturgy", schedule.Ministry)
	require.NotNil(t, schedule.Notes)
	assert.Equal(t, "bring the candles", *schedule.Notes)
	require.Len(t, schedule.Volunteers, 2)
	for _, v := range schedule.Volunteers {
		assert.Equal(t, "pending", v.Status)
	}
}

func TestScheduleCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)

	tests := []struct {
		name   string
		mutate func(r *dto.ScheduleRequest)
		target error
	}{
		{"bad date", func(r *dto.ScheduleRequest) { r.Date = "01/06/2025" }, apperrors.ErrValidationFailed},
		{"bad time", func(r *dto.ScheduleRequest) { r.Time = "25:00" }, apperrors.ErrValidationFailed},
		{"blank type", func(r *dto.ScheduleRequest) { r.Type = "  " }, apperrors.ErrValidationFailed},
		{"no volunteers", func(r *dto.ScheduleRequest) { r.Volunteers = []string{""} }, apperrors.ErrValidationFailed},
		{"unknown volunteer", func(r *dto.ScheduleRequest) { r.Volunteers = append(r.Volunteers, "ghost") }, apperrors.ErrBadRequest},
		{"unknown ministry", func(r *dto.ScheduleRequest) { r.MinistryID = "missing" }, apperrors.ErrResourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := scheduleRequest(liturgy.ID, "2025-06-01", bia)
			tt.mutate(req)
			_, err := f.services.Schedule.Create(ctx, identityOf(director), req)
			assert.ErrorIs(t, err, tt.target)
		})
	}
	assert.Equal(t, 0, f.store.Transactions)
}

func TestScheduleCreate_CoordinatorOutsideMinistry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	liturgy := f.ministry(t, "Liturgy")
	music := f.ministry(t, "Music")
	coordinator := f.user(t, "Carla Coordinator", models.RoleCoordinator)
	f.join(t, coordinator, music)
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)

	_, err := f.services.Schedule.Create(ctx, identityOf(coordinator), scheduleRequest(liturgy.ID, "2025-06-01", bia))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.services.Schedule.Create(ctx, identityOf(coordinator), scheduleRequest(music.ID, "2025-06-01", bia))
	assert.NoError(t, err)
}

func TestScheduleCreate_RollsBackOnParticipationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)

	boom := errors.New("insert failed")
	f.store.Fail("Participations.CreateMany", boom)

	_, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", bia))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, f.store.Rollbacks)

	schedules, err := f.services.Schedule.ListManagement(ctx, identityOf(director))
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestScheduleUpdate_ReconcilesVolunteers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	a := f.user(t, "A Volunteer", models.RoleVolunteer)
	b := f.user(t, "B Volunteer", models.RoleVolunteer)
	c := f.user(t, "C Volunteer", models.RoleVolunteer)
	d := f.user(t, "D Volunteer", models.RoleVolunteer)

	schedule, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", a, b, c))
	require.NoError(t, err)

	bParticipation := participationOf(t, schedule, b)
	_, err = f.services.Schedule.Confirm(ctx, identityOf(b), bParticipation)
	require.NoError(t, err)

	req := scheduleRequest(liturgy.ID, "2025-06-08", b, c, d)
	req.Type = "Evening Mass"
	updated, err := f.services.Schedule.Update(ctx, identityOf(director), schedule.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "2025-06-08", updated.Date)
	assert.Equal(t, "Evening Mass", updated.Type)

	statuses := map[string]string{}
	for _, v := range updated.Volunteers {
		statuses[v.ID] = v.Status
	}
	assert.Equal(t, map[string]string{
		b.ID: "confirmed",
		c.ID: "pending",
		d.ID: "pending",
	}, statuses)
	assert.Equal(t, bParticipation, participationOf(t, updated, b))
}

func TestScheduleUpdate_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	a := f.user(t, "A Volunteer", models.RoleVolunteer)
	b := f.user(t, "B Volunteer", models.RoleVolunteer)

	schedule, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", a))
	require.NoError(t, err)

	f.store.Fail("Participations.CreateMany", errors.New("insert failed"))
	_, err = f.services.Schedule.Update(ctx, identityOf(director), schedule.ID, scheduleRequest(liturgy.ID, "2025-07-01", b))
	require.Error(t, err)

	unchanged, err := f.services.Schedule.Get(ctx, identityOf(director), schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", unchanged.Date)
	require.Len(t, unchanged.Volunteers, 1)
	assert.Equal(t, a.ID, unchanged.Volunteers[0].ID)
}

func TestScheduleDelete_RemovesParticipations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)

	schedule, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", bia))
	require.NoError(t, err)
	participationID := participationOf(t, schedule, bia)

	require.NoError(t, f.services.Schedule.Delete(ctx, identityOf(director), schedule.ID))

	_, found := f.store.Participations().Get(participationID)
	assert.False(t, found)
	_, err = f.services.Schedule.Get(ctx, identityOf(director), schedule.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestScheduleListManagement_ScopedForCoordinators(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	music := f.ministry(t, "Music")
	coordinator := f.user(t, "Carla Coordinator", models.RoleCoordinator)
	f.join(t, coordinator, music)
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)

	_, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", bia))
	require.NoError(t, err)
	_, err = f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(music.ID, "2025-06-02", bia))
	require.NoError(t, err)
	_, err = f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(music.ID, "2025-06-09", bia))
	require.NoError(t, err)

	all, err := f.services.Schedule.ListManagement(ctx, identityOf(director))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := f.services.Schedule.ListManagement(ctx, identityOf(coordinator))
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.Equal(t, "2025-06-09", scoped[0].Date)
	assert.Equal(t, "2025-06-02", scoped[1].Date)

	_, err = f.services.Schedule.ListManagement(ctx, identityOf(bia))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestParticipationTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)
	caio := f.user(t, "Caio Volunteer", models.RoleVolunteer)

	now := time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC)
	f.services.Schedule.WithClock(func() time.Time { return now })

	schedule, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", bia, caio))
	require.NoError(t, err)
	biaID := participationOf(t, schedule, bia)
	caioID := participationOf(t, schedule, caio)

	t.Run("confirm", func(t *testing.T) {
		resp, err := f.services.Schedule.Confirm(ctx, identityOf(bia), biaID)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", resp.Status)
		require.NotNil(t, resp.ConfirmedAt)
		assert.True(t, now.Equal(*resp.ConfirmedAt))

		stored, ok := f.store.Participations().Get(biaID)
		require.True(t, ok)
		assert.Equal(t, models.ParticipationConfirmed, stored.Status)
	})

	t.Run("confirmed is final", func(t *testing.T) {
		_, err := f.services.Schedule.Confirm(ctx, identityOf(bia), biaID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
		assert.Equal(t, "participation already confirmed", apperrors.PublicMessage(err, ""))

		reason := "travel"
		_, err = f.services.Schedule.RequestChange(ctx, identityOf(bia), biaID, &reason)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	})

	t.Run("request change", func(t *testing.T) {
		reason := "  travelling that weekend "
		resp, err := f.services.Schedule.RequestChange(ctx, identityOf(caio), caioID, &reason)
		require.NoError(t, err)
		assert.Equal(t, "exchange_requested", resp.Status)
		require.NotNil(t, resp.ChangeReason)
		assert.Equal(t, "travelling that weekend", *resp.ChangeReason)

		_, err = f.services.Schedule.Confirm(ctx, identityOf(caio), caioID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
		assert.Equal(t, "change already requested for this participation", apperrors.PublicMessage(err, ""))
	})

	t.Run("other volunteer", func(t *testing.T) {
		_, err := f.services.Schedule.Confirm(ctx, identityOf(caio), biaID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("unknown participation", func(t *testing.T) {
		_, err := f.services.Schedule.RequestChange(ctx, identityOf(bia), "missing", nil)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestRequestChange_WithoutReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)

	schedule, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", bia))
	require.NoError(t, err)

	blank := "   "
	resp, err := f.services.Schedule.RequestChange(ctx, identityOf(bia), participationOf(t, schedule, bia), &blank)
	require.NoError(t, err)
	assert.Nil(t, resp.ChangeReason)
}

func TestConfirm_ConcurrentCallsSucceedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)

	schedule, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", bia))
	require.NoError(t, err)
	participationID := participationOf(t, schedule, bia)

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.services.Schedule.Confirm(ctx, identityOf(bia), participationID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
	}
	assert.Equal(t, 1, successes)
}

func TestScheduleCreateRecurring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)

	schedules, err := f.services.Schedule.CreateRecurring(ctx, identityOf(director), &dto.RecurringScheduleRequest{
		ScheduleRequest: *scheduleRequest(liturgy.ID, "2025-06-01", bia),
		Recurrence:      "FREQ=WEEKLY;COUNT=4",
	})
	require.NoError(t, err)

	dates := make([]string, 0, len(schedules))
	for _, s := range schedules {
		dates = append(dates, s.Date)
		require.Len(t, s.Volunteers, 1)
		assert.Equal(t, "pending", s.Volunteers[0].Status)
	}
	assert.Equal(t, []string{"2025-06-01", "2025-06-08", "2025-06-15", "2025-06-22"}, dates)
	assert.Equal(t, 1, f.store.Transactions)
}

func TestScheduleCreateRecurring_RollsBackEveryOccurrence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)

	f.store.Fail("Participations.CreateMany", errors.New("insert failed"))
	_, err := f.services.Schedule.CreateRecurring(ctx, identityOf(director), &dto.RecurringScheduleRequest{
		ScheduleRequest: *scheduleRequest(liturgy.ID, "2025-06-01", bia),
		Recurrence:      "FREQ=WEEKLY;COUNT=3",
	})
	require.Error(t, err)

	schedules, err := f.services.Schedule.ListManagement(ctx, identityOf(director))
	require.NoError(t, err)
	assert.Empty(t, schedules)
}

func TestExpandRecurrence(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	dates, err := ExpandRecurrence("RRULE:FREQ=WEEKLY;INTERVAL=2;COUNT=3", start)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.True(t, dates[2].Equal(time.Date(2025, 6, 29, 0, 0, 0, 0, time.UTC)))

	dates, err = ExpandRecurrence("FREQ=WEEKLY;COUNT=52", start)
	require.NoError(t, err)
	assert.Len(t, dates, MaxRecurringOccurrences)

	_, err = ExpandRecurrence("FREQ=DAILY;COUNT=53", start)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = ExpandRecurrence("FREQ=DAILY", start)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = ExpandRecurrence("FREQ=SOMETIMES", start)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestReconcileVolunteers(t *testing.T) {
	toAdd, toRemove := ReconcileVolunteers([]string{"A", "B", "C"}, []string{"B", "C", "D"})
	assert.Equal(t, []string{"D"}, toAdd)
	assert.Equal(t, []string{"A"}, toRemove)

	toAdd, toRemove = ReconcileVolunteers([]string{"A"}, []string{"A"})
	assert.Empty(t, toAdd)
	assert.Empty(t, toRemove)

	toAdd, toRemove = ReconcileVolunteers(nil, []string{"A", "B"})
	assert.Equal(t, []string{"A", "B"}, toAdd)
	assert.Empty(t, toRemove)
}

func TestListMineAndAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)
	caio := f.user(t, "Caio Volunteer", models.RoleVolunteer)

	_, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-08", bia))
	require.NoError(t, err)
	_, err = f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", bia, caio))
	require.NoError(t, err)

	mine, err := f.services.Schedule.ListMine(ctx, identityOf(bia))
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2025-06-01", mine[0].Date)
	assert.Equal(t, "2025-06-08", mine[1].Date)

	all, err := f.services.Schedule.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []dto.ParticipationEvent
}

func (n *recordingNotifier) ParticipationChanged(event dto.ParticipationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func TestParticipationTransitions_PublishEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	now := time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC)
	f.services.Schedule.WithNotifier(notifier).WithClock(func() time.Time { return now })

	director := f.user(t, "Ana Director", models.RoleDirector)
	liturgy := f.ministry(t, "Liturgy")
	bia := f.user(t, "Bia Volunteer", models.RoleVolunteer)
	caio := f.user(t, "Caio Volunteer", models.RoleVolunteer)
	schedule, err := f.services.Schedule.Create(ctx, identityOf(director), scheduleRequest(liturgy.ID, "2025-06-01", bia, caio))
	require.NoError(t, err)

	_, err = f.services.Schedule.Confirm(ctx, identityOf(bia), participationOf(t, schedule, bia))
	require.NoError(t, err)
	reason := " travelling "
	_, err = f.services.Schedule.RequestChange(ctx, identityOf(caio), participationOf(t, schedule, caio), &reason)
	require.NoError(t, err)

	// rejected transitions publish nothing
	_, err = f.services.Schedule.Confirm(ctx, identityOf(bia), participationOf(t, schedule, bia))
	require.Error(t, err)

	require.Len(t, notifier.events, 2)
	confirmed := notifier.events[0]
	assert.Equal(t, dto.EventParticipationConfirmed, confirmed.Type)
	assert.Equal(t, schedule.ID, confirmed.ScheduleID)
	assert.Equal(t, liturgy.ID, confirmed.MinistryID)
	assert.Equal(t, bia.ID, confirmed.VolunteerID)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, now, confirmed.Timestamp)

	changed := notifier.events[1]
	assert.Equal(t, dto.EventParticipationChangeRequested, changed.Type)
	assert.Equal(t, "exchange_requested", changed.Status)
	require.NotNil(t, changed.ChangeReason)
	assert.Equal(t, "travelling", *changed.ChangeReason)
}
