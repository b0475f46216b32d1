package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/RealCodeCrafter/trt-backend/internal/api/http/handlers"
	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/domain"
	"github.com/RealCodeCrafter/trt-backend/internal/observability"
)

var (
	staffRoles      = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}
	superAdminRoles = []domain.Role{domain.RoleSuperAdmin}
	anyRole         = []domain.Role{domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin}
)

// Route is one entry of the route table. A non-empty Roles puts the access
// guard and a role guard for exactly those roles in front of the handler.
type Route struct {
	Method  string
	Path    string
	Handler fiber.Handler
	Roles   []domain.Role
}

// Public reports whether the route is reachable without a token.
func (r Route) Public() bool {
	return len(r.Roles) == 0
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Parts      *handlers.PartsHandler
	Categories *handlers.CategoriesHandler
	Contact    *handlers.ContactHandler
	Uploads    *handlers.UploadsHandler
	Guard      *auth.AccessGuard
	Metrics    *observability.Metrics
}

// Routes returns the route table. Static /products paths precede /products/:id.
func Routes(cfg RouteConfig) []Route {
	return []Route{
		{Method: fiber.MethodGet, Path: "/health/live", Handler: cfg.Health.Live},
		{Method: fiber.MethodGet, Path: "/health/ready", Handler: cfg.Health.Ready},

		{Method: fiber.MethodPost, Path: "/auth/register", Handler: cfg.Auth.Register},
		{Method: fiber.MethodPost, Path: "/auth/login", Handler: cfg.Auth.Login},
		{Method: fiber.MethodPost, Path: "/auth/add-admin", Handler: cfg.Auth.AddAdmin, Roles: superAdminRoles},
		{Method: fiber.MethodGet, Path: "/auth/me", Handler: cfg.Auth.Me, Roles: anyRole},

		{Method: fiber.MethodPost, Path: "/products", Handler: cfg.Parts.Create, Roles: staffRoles},
		{Method: fiber.MethodGet, Path: "/products", Handler: cfg.Parts.SearchByName},
		{Method: fiber.MethodGet, Path: "/products/all", Handler: cfg.Parts.List},
		{Method: fiber.MethodGet, Path: "/products/all/count", Handler: cfg.Parts.Count},
		{Method: fiber.MethodGet, Path: "/products/oem/all", Handler: cfg.Parts.OEMs},
		{Method: fiber.MethodGet, Path: "/products/oem/:oem", Handler: cfg.Parts.TrtCodesByOEM},
		{Method: fiber.MethodGet, Path: "/products/trt/:trt", Handler: cfg.Parts.BrandsByTrtCode},
		{Method: fiber.MethodGet, Path: "/products/brand/:brand", Handler: cfg.Parts.ModelsByBrand},
		{Method: fiber.MethodGet, Path: "/products/part/search", Handler: cfg.Parts.Search},
		{Method: fiber.MethodGet, Path: "/products/part/category/:categoryId", Handler: cfg.Parts.ByCategory},
		{Method: fiber.MethodGet, Path: "/products/parts/categories", Handler: cfg.Parts.Categories},
		{Method: fiber.MethodGet, Path: "/products/uploads/:imageName", Handler: cfg.Parts.Image},
		{Method: fiber.MethodGet, Path: "/products/:id", Handler: cfg.Parts.Get},
		{Method: fiber.MethodPut, Path: "/products/:id", Handler: cfg.Parts.Update, Roles: staffRoles},
		{Method: fiber.MethodDelete, Path: "/products/:id", Handler: cfg.Parts.Delete, Roles: staffRoles},

		{Method: fiber.MethodPost, Path: "/categories", Handler: cfg.Categories.Create, Roles: staffRoles},
		{Method: fiber.MethodGet, Path: "/categories", Handler: cfg.Categories.List},
		{Method: fiber.MethodGet, Path: "/categories/:id", Handler: cfg.Categories.Get},
		{Method: fiber.MethodPatch, Path: "/categories/:id", Handler: cfg.Categories.Update, Roles: staffRoles},
		{Method: fiber.MethodDelete, Path: "/categories/:id", Handler: cfg.Categories.Delete, Roles: staffRoles},

		{Method: fiber.MethodPost, Path: "/contact", Handler: cfg.Contact.Send},
		{Method: fiber.MethodGet, Path: "/contact", Handler: cfg.Contact.Info},

		{Method: fiber.MethodGet, Path: "/uploads/:bucket/:name", Handler: cfg.Uploads.Serve},
	}
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}
	for _, r := range Routes(cfg) {
		chain := make([]fiber.Handler, 0, 3)
		if !r.Public() {
			chain = append(chain, cfg.Guard.Handle, auth.RequireRoles(r.Roles...))
		}
		chain = append(chain, r.Handler)
		app.Add(r.Method, r.Path, chain...)
	}
}
