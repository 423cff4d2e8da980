package routes

import (
	"github.com/gin-gonic/gin"
	appAuth "github.com/yigit/parishscheduler/internal/app/auth"
	"github.com/yigit/parishscheduler/internal/app/controllers"
	"github.com/yigit/parishscheduler/internal/middleware"
	"github.com/yigit/parishscheduler/internal/pkg/websocket"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	Member    *controllers.MemberController
	Ministry  *controllers.MinistryController
	Schedule  *controllers.ScheduleController
	Dashboard *controllers.DashboardController
	Report    *controllers.ReportController
	Health    *controllers.HealthController
	Events    *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	loginLimiter *middleware.IPRateLimiter,
) {
	router.GET("/health", ctrl.Health.Health)
	router.GET("/ping", ctrl.Health.Ping)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", ctrl.Health.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", loginLimiter.Handler(), ctrl.Auth.Login)
		auth.GET("/me", authMiddleware.JWTAuth(), ctrl.Auth.Me)
	}

	// WebSocket handshakes may carry the token as a query parameter
	v1.GET("/schedules/events",
		websocket.TokenFromQuery(),
		authMiddleware.JWTAuth(),
		authMiddleware.Require(appAuth.ActionScheduleManage),
		ctrl.Events.HandleConnection,
	)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	members := authenticated.Group("/members")
	members.Use(authMiddleware.Require(appAuth.ActionMemberManage))
	{
		members.GET("", ctrl.Member.ListMembers)
		members.GET("/:id", ctrl.Member.GetMember)
		members.POST("", ctrl.Member.CreateMember)
		members.PUT("/:id", ctrl.Member.UpdateMember)
		members.PUT("/:id/toggle-status", ctrl.Member.ToggleMemberStatus)
		members.DELETE("/:id", ctrl.Member.DeleteMember)
	}

	ministries := authenticated.Group("/ministries")
	{
		ministriesRead := ministries.Group("")
		ministriesRead.Use(authMiddleware.Require(appAuth.ActionMinistryRead))
		{
			ministriesRead.GET("", ctrl.Ministry.ListMinistries)
			ministriesRead.GET("/:id", ctrl.Ministry.GetMinistry)
		}

		// Director-only writes
		ministriesWrite := ministries.Group("")
		ministriesWrite.Use(authMiddleware.Require(appAuth.ActionMinistryWrite))
		{
			ministriesWrite.POST("", ctrl.Ministry.CreateMinistry)
			ministriesWrite.PUT("/:id", ctrl.Ministry.UpdateMinistry)
			ministriesWrite.PUT("/:id/toggle-status", ctrl.Ministry.ToggleMinistryStatus)
			ministriesWrite.DELETE("/:id", ctrl.Ministry.DeleteMinistry)
		}
	}

	schedules := authenticated.Group("/schedules")
	{
		management := schedules.Group("/management")
		management.Use(authMiddleware.Require(appAuth.ActionScheduleManage))
		{
			management.GET("", ctrl.Schedule.ListManagedSchedules)
			management.POST("", ctrl.Schedule.CreateSchedule)
			management.POST("/recurring", ctrl.Schedule.CreateRecurringSchedules)
			management.GET("/:id", ctrl.Schedule.GetSchedule)
			management.PUT("/:id", ctrl.Schedule.UpdateSchedule)
			management.DELETE("/:id", ctrl.Schedule.DeleteSchedule)
		}

		schedules.GET("/my", authMiddleware.Require(appAuth.ActionScheduleViewOwn), ctrl.Schedule.ListMySchedules)
		schedules.GET("/all", authMiddleware.Require(appAuth.ActionScheduleViewAll), ctrl.Schedule.ListAllSchedules)

		participation := schedules.Group("/participation")
		participation.Use(authMiddleware.Require(appAuth.ActionParticipationRespond))
		{
			participation.POST("/:id/confirm", ctrl.Schedule.ConfirmParticipation)
			participation.POST("/:id/request-change", ctrl.Schedule.RequestParticipationChange)
		}
	}

	authenticated.GET("/dashboard/summary", authMiddleware.Require(appAuth.ActionDashboardView), ctrl.Dashboard.GetSummary)

	reports := authenticated.Group("/reports")
	reports.Use(authMiddleware.Require(appAuth.ActionReportView))
	{
		reports.GET("/schedules", ctrl.Report.GetScheduleReport)
		reports.GET("/schedules/export", ctrl.Report.ExportScheduleReport)
	}
}
