package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/mocks"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
)

const testPassword = "secret123"

type fixture struct {
	store    *mocks.Store
	services *Services
	jwt      *auth.JWTService
	seq      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := mocks.NewStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: 8 * time.Hour,
		TokenIssuer:    "test",
	})
	svc := NewServices(Dependencies{
		Transactor:     store,
		Users:          store.Users(),
		Ministries:     store.Ministries(),
		Memberships:    store.Memberships(),
		Schedules:      store.Schedules(),
		Participations: store.Participations(),
		JWT:            jwtService,
	}, zerolog.Nop())
	return &fixture{store: store, services: svc, jwt: jwtService}
}

// user stores a member directly, bypassing role rules
func (f *fixture) user(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	f.seq++
	hashed, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	u := &models.User{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@parish.org",
		Password: hashed,
		CPF:      fmt.Sprintf("cpf-%03d", f.seq),
		RG:       fmt.Sprintf("rg-%03d", f.seq),
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) ministry(t *testing.T, name string) *models.Ministry {
	t.Helper()
	m := &models.Ministry{Name: name, Description: name + " ministry of the parish", IsActive: true}
	require.NoError(t, f.store.Ministries().Create(context.Background(), m))
	return m
}

func (f *fixture) join(t *testing.T, u *models.User, ministries ...*models.Ministry) {
	t.Helper()
	ids := make([]string, 0, len(ministries))
	for _, m := range ministries {
		ids = append(ids, m.ID)
	}
	require.NoError(t, f.store.Memberships().ReplaceForUser(context.Background(), u.ID, ids, u.Role == models.RoleCoordinator))
}

func identityOf(u *models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role}
}

func scheduleRequest(ministryID, date string, volunteers ...*models.User) *dto.ScheduleRequest {
	ids := make([]string, 0, len(volunteers))
	for _, v := range volunteers {
		ids = append(ids, v.ID)
	}
	return &dto.ScheduleRequest{
		Type:       "Mass",
		Date:       date,
		Time:       "09:30",
		MinistryID: ministryID,
		Volunteers: ids,
	}
}

// participationOf finds the participation id of volunteer in schedule
func participationOf(t *testing.T, schedule *dto.ScheduleResponse, volunteer *models.User) string {
	t.Helper()
	for _, v := range schedule.Volunteers {
		if v.ID == volunteer.ID {
			return v.ParticipationID
		}
	}
	t.Fatalf("volunteer %s not assigned to schedule %s", volunteer.ID, schedule.ID)
	return ""
}
