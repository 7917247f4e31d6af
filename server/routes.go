package server

func (s *Server) initRoutes() {
	// Customer authentication
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteValidateSession, ChainMiddleware(s.ValidateSessionHandler(), s.APIMiddleware()...))

	// Administrative authentication
	s.RegisterRouteFunc("GET "+RouteValidateAdmin, ChainMiddleware(s.ValidateAdminHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAdminLogin, ChainMiddleware(s.AdminLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteValidateAdminSession, ChainMiddleware(s.ValidateAdminSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAdminLogout, ChainMiddleware(s.AdminLogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCheckAuth, ChainMiddleware(s.CheckAuthHandler(), s.APIMiddleware()...))
}
