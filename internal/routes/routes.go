package routes

import (
	"github.com/gin-gonic/gin"

	"dobtasks/internal/handlers"
	"dobtasks/internal/middleware"
	"dobtasks/internal/models"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	taskHandler *handlers.TaskHandler,
	departmentHandler *handlers.DepartmentHandler,
	settingHandler *handlers.SettingHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/signup", userHandler.Register)
	r.POST("/password-reset", authHandler.PasswordReset)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	r.GET("/", taskHandler.Dashboard)
	r.GET("/tasks", taskHandler.ListOwn)
	r.GET("/tasks/:status", taskHandler.ListOwn)
	r.POST("/update_task_status", taskHandler.UpdateTaskStatus)
	r.POST("/logout", authHandler.Logout)

	// TASK MANAGEMENT (staff)
	tasks := r.Group("/admin/tasks", middleware.RequireStaff())
	{
		tasks.POST("/", taskHandler.Create)
		tasks.GET("/", taskHandler.GetAll)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.POST("/bulk", taskHandler.BulkUpdate)
	}
	r.POST("/admin-action/send-reminders", middleware.RequireStaff(), taskHandler.SendReminders)

	// USERS (staff; scoping happens in the service layer)
	users := r.Group("/admin/users", middleware.RequireStaff())
	{
		users.GET("/", userHandler.List)
		users.GET("/:id", userHandler.GetByID)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	// DEPARTMENTS (admin)
	depts := r.Group("/admin/departments", middleware.RequireRoles(models.RoleAdmin))
	{
		depts.POST("/", departmentHandler.Create)
		depts.GET("/", departmentHandler.List)
		depts.PUT("/:id", departmentHandler.Update)
		depts.DELETE("/:id", departmentHandler.Delete)
	}

	// SETTINGS (admin)
	settings := r.Group("/admin/settings", middleware.RequireRoles(models.RoleAdmin))
	{
		settings.GET("/", settingHandler.Get)
		settings.PUT("/", settingHandler.Update)
	}

	// REPORTS (staff)
	reports := r.Group("/reports", middleware.RequireStaff())
	{
		reports.GET("/summary", reportHandler.GetSummary)
		reports.GET("/summary/pdf", reportHandler.GetSummaryPDF)
	}

	return r
}
