package server

const (
	RouteVerify   = "/api/verify"
	RouteRegister = "/api/register"
	RouteLogout   = "/api/logout"
	RouteSession  = "/api/session"

	RouteFeatureEnter = "/api/feature/enter"
	RouteFeatureLeave = "/api/feature/leave"

	RouteAdminCodes      = "/api/admin/codes"
	RouteAdminCodeToggle = "/api/admin/codes/{code}/toggle"
	RouteAdminCode       = "/api/admin/codes/{code}"
	RouteAdminStudents   = "/api/admin/students"
	RouteAdminStudent    = "/api/admin/students/{name}"
)

func (s *Server) initRoutes() {
	// LOGIN / LOGOUT
	s.RegisterRouteFunc("POST "+RouteVerify, ChainMiddleware(s.VerifyHandler(), s.Middleware()...))
	s.RegisterRouteFunc("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), s.Middleware()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.Middleware()...))
	s.RegisterRouteFunc("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), s.Middleware()...))

	// Exclusive-resource feature
	s.RegisterRouteFunc("POST "+RouteFeatureEnter, ChainMiddleware(s.FeatureEnterHandler(), s.Middleware()...))
	s.RegisterRouteFunc("POST "+RouteFeatureLeave, ChainMiddleware(s.FeatureLeaveHandler(), s.Middleware()...))

	// Educator routes (require an educator session)
	s.RegisterRouteFunc("GET "+RouteAdminCodes, ChainMiddleware(s.ListCodesHandler(), s.Middleware(s.RequireEducator)...))
	s.RegisterRouteFunc("POST "+RouteAdminCodes, ChainMiddleware(s.CreateCodeHandler(), s.Middleware(s.RequireEducator)...))
	s.RegisterRouteFunc("POST "+RouteAdminCodeToggle, ChainMiddleware(s.ToggleCodeHandler(), s.Middleware(s.RequireEducator)...))
	s.RegisterRouteFunc("DELETE "+RouteAdminCode, ChainMiddleware(s.DeleteCodeHandler(), s.Middleware(s.RequireEducator)...))
	s.RegisterRouteFunc("GET "+RouteAdminStudents, ChainMiddleware(s.ListStudentsHandler(), s.Middleware(s.RequireEducator)...))
	s.RegisterRouteFunc("PATCH "+RouteAdminStudent, ChainMiddleware(s.RenameStudentHandler(), s.Middleware(s.RequireEducator)...))
	s.RegisterRouteFunc("DELETE "+RouteAdminStudent, ChainMiddleware(s.DeleteStudentHandler(), s.Middleware(s.RequireEducator)...))
}
