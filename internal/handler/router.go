package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Student *StudentHandler
	Teacher *TeacherHandler
	Admin   *AdminHandler
}

// RouteOptions carries optional per-route middleware; nil entries are skipped
type RouteOptions struct {
	LoginLimiter      gin.HandlerFunc
	SubmitIdempotency gin.HandlerFunc
}

// RegisterRoutes mounts the API on r. Access control is applied globally
// by the route policy, not per group.
func RegisterRoutes(r gin.IRouter, h *Handlers, opts RouteOptions) {
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", chain(h.Auth.Login, opts.LoginLimiter)...)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/register/teacher", h.Auth.RegisterTeacher)
		auth.POST("/register/student", h.Auth.RegisterStudent)
		auth.POST("/refresh-access-token", h.Auth.RefreshAccessToken)
		auth.POST("/logout", h.Auth.Logout)
	}

	me := api.Group("/me")
	{
		me.GET("", h.Auth.Me)
		me.POST("/logout-all", h.Auth.LogoutAll)
	}

	student := api.Group("/student")
	{
		student.GET("/levels/:levelId/activities", h.Student.ListActivities)
		student.GET("/levels/:levelId/content", h.Student.ListContent)
		student.GET("/levels/:levelId/activity-submissions", h.Student.ListSubmissions)
		student.GET("/levels/:levelId/can-complete", h.Student.CanCompleteLevel)
		student.POST("/levels/:levelId/complete", h.Student.CompleteLevel)
		student.GET("/content/:contentId", h.Student.GetContent)
		student.GET("/activities/:activityId", h.Student.GetActivity)
		student.POST("/activities/:activityId/submit", chain(h.Student.Submit, opts.SubmitIdempotency)...)
		student.GET("/activities/:activityId/latest-submission", h.Student.LatestSubmission)
		student.GET("/progress", h.Student.ListProgress)
	}

	teacher := api.Group("/teacher")
	{
		teacher.PUT("/students/:studentId/courses/:courseId/levels/:levelId/progress", h.Teacher.UpdateProgress)
		teacher.GET("/students/:studentId/courses/:courseId/progress", h.Teacher.ListProgress)
		teacher.POST("/activity-submissions/:submissionId/grade", h.Teacher.GradeSubmission)
	}

	admin := api.Group("/admin")
	{
		admin.PUT("/users/:userId/status", h.Admin.UpdateUserStatus)
	}
}

func chain(final gin.HandlerFunc, before ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(before)+1)
	for _, m := range before {
		if m != nil {
			out = append(out, m)
		}
	}
	return append(out, final)
}
