package server

const (
	RouteAuthLogin            = "/auth/login"
	RouteAuthLogout           = "/auth/logout"
	RouteValidateSession      = "/auth/validate-session"
	RouteValidateAdmin        = "/auth/validate-admin"
	RouteAdminLogin           = "/auth/admin-login"
	RouteValidateAdminSession = "/auth/validate-admin-session"
	RouteAdminLogout          = "/auth/admin-logout"
	RouteCheckAuth            = "/auth/check-auth"
)
