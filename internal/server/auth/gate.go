package auth

import "strings"

// Access is the class of a route.
type Access int

const (
	AccessAuthenticated Access = iota
	AccessPublic
	AccessAdmin
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessAdmin:
		return "admin"
	default:
		return "authenticated"
	}
}

// Decision is the outcome of applying the gate to a request.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionRedirectLogin
	DecisionForbidden
)

// Rule matches a path exactly, or as a prefix when Prefix is set.
type Rule struct {
	Path   string
	Prefix bool
}

// Gate classifies request paths. Public rules are consulted first, then the
// admin namespace; anything unmatched requires authentication. A public
// rule therefore shadows the admin namespace, so none may start with the
// admin prefix.
type Gate struct {
	public      []Rule
	adminPrefix string
}

// DefaultPublicRules lists the routes reachable without a session.
var DefaultPublicRules = []Rule{
	{Path: "/"},
	{Path: "/index"},
	{Path: "/events"},
	{Path: "/comparisons"},
	{Path: "/articles/", Prefix: true},
	{Path: "/search"},
	{Path: "/login"},
	{Path: "/register"},
	{Path: "/forgot-password"},
	{Path: "/reset-password"},
	{Path: "/logout"},
	{Path: "/static/", Prefix: true},
	{Path: "/uploads/", Prefix: true},
	{Path: "/healthz"},
}

// NewGate builds a gate from public rules and the admin namespace prefix
// (e.g. "/admin").
func NewGate(public []Rule, adminPrefix string) *Gate {
	return &Gate{public: public, adminPrefix: strings.TrimSuffix(adminPrefix, "/")}
}

// NewDefaultGate returns the gate used by the site.
func NewDefaultGate() *Gate {
	return NewGate(DefaultPublicRules, "/admin")
}

// Classify returns the access class of path.
func (g *Gate) Classify(path string) Access {
	if path == "" {
		path = "/"
	}

	for _, r := range g.public {
		if r.matches(path) {
			return AccessPublic
		}
	}

	if g.adminPrefix != "" && (path == g.adminPrefix || strings.HasPrefix(path, g.adminPrefix+"/")) {
		return AccessAdmin
	}

	return AccessAuthenticated
}

// Decide applies Classify to path for the given principal (nil when
// anonymous).
func (g *Gate) Decide(path string, p *Principal) Decision {
	switch g.Classify(path) {
	case AccessPublic:
		return DecisionAllow
	case AccessAdmin:
		if p == nil {
			return DecisionRedirectLogin
		}
		if !p.IsAdmin() {
			return DecisionForbidden
		}
		return DecisionAllow
	default:
		if p == nil {
			return DecisionRedirectLogin
		}
		return DecisionAllow
	}
}

func (r Rule) matches(path string) bool {
	if r.Prefix {
		return strings.HasPrefix(path, r.Path)
	}
	return path == r.Path
}
