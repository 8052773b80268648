// Package auth decides which screen a session may render. The decision is
// a UI concern only; the backend re-validates every request.
package auth

import (
	"slices"

	"github.com/tgienger/tkrm/internal/models"
)

// Decision is the outcome of a gate check
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	}
	return "unknown"
}

// Decide maps a session (nil when absent) and the roles a route requires
// to an outcome. An empty role set admits any session.
func Decide(sess *models.Session, required []models.Role) Decision {
	if sess == nil || !sess.Valid() {
		return RedirectLogin
	}
	if len(required) > 0 && !slices.Contains(required, sess.Role) {
		return RedirectUnauthorized
	}
	return Allow
}

// Route names a client-visible screen
type Route string

const (
	RouteLogin        Route = "/"
	RouteDashboard    Route = "/dashboard"
	RouteAdmin        Route = "/admin"
	RouteManager      Route = "/manager"
	RouteEmployee     Route = "/employee"
	RouteTasks        Route = "/tasks"
	RouteUnauthorized Route = "/unauthorized"
)

// Policy maps protected routes to the roles allowed on them. Routes
// missing from the policy are public.
type Policy map[Route][]models.Role

// DefaultPolicy is the route table of the application
var DefaultPolicy = Policy{
	RouteDashboard: {models.RoleAdmin, models.RoleManager, models.RoleEmployee},
	RouteAdmin:     {models.RoleAdmin},
	RouteManager:   {models.RoleManager, models.RoleAdmin},
	RouteEmployee:  {models.RoleEmployee},
	RouteTasks:     {models.RoleAdmin, models.RoleManager, models.RoleEmployee},
}

// SessionProvider supplies the current session
type SessionProvider interface {
	Read() (models.Session, bool)
}

// Gate evaluates the policy against the current session. It carries no
// state between checks; the session is read again on every call.
type Gate struct {
	sessions SessionProvider
	policy   Policy
}

func NewGate(sessions SessionProvider, policy Policy) *Gate {
	return &Gate{sessions: sessions, policy: policy}
}

// Protected reports whether the route requires a session
func (g *Gate) Protected(route Route) bool {
	_, ok := g.policy[route]
	return ok
}

// Check decides whether the current session may render route
func (g *Gate) Check(route Route) Decision {
	required, ok := g.policy[route]
	if !ok {
		return Allow
	}
	var sess *models.Session
	if s, ok := g.sessions.Read(); ok {
		sess = &s
	}
	return Decide(sess, required)
}

// Resolve returns the route that should actually be rendered
func (g *Gate) Resolve(route Route) (Route, Decision) {
	d := g.Check(route)
	switch d {
	case RedirectLogin:
		return RouteLogin, d
	case RedirectUnauthorized:
		return RouteUnauthorized, d
	}
	return route, d
}
