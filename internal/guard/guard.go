// Package guard decides, per portal path, whether a session may see the page
// or must be redirected. Routes are declared in a table rather than in code.
package guard

import (
	"fmt"
	"os"
	"strings"

	"github.com/quarkfin/platform-go/internal/domain"

	"gopkg.in/yaml.v3"
)

// Redirect targets.
const (
	LoginPath      = "/login"
	HomePath       = "/platform"
	OnboardingPath = "/onboarding"
)

// Match selects how a rule's pattern is compared with the path.
type Match string

const (
	Exact  Match = "exact"
	Prefix Match = "prefix"
)

// Requirement is what a session needs to see a route.
type Requirement string

const (
	// Public routes are visible to everyone.
	Public Requirement = "public"
	// Anonymous routes (login, signup) send signed-in users home.
	Anonymous Requirement = "anonymous"
	// Authenticated routes need a signed-in user.
	Authenticated Requirement = "authenticated"
	// Onboarded routes also need the onboarding checklist finished.
	Onboarded Requirement = "onboarded"
	// Entry routes always redirect: home when signed in, login otherwise.
	Entry Requirement = "entry"
)

// Rule is one row of the route table.
type Rule struct {
	Pattern  string      `yaml:"pattern" json:"pattern"`
	Match    Match       `yaml:"match" json:"match"`
	Requires Requirement `yaml:"requires" json:"requires"`
}

// matches compares path to the rule. Prefix rules match whole path segments,
// so /platform covers /platform/x but not /platformx.
func (r Rule) matches(path string) bool {
	if r.Match == Prefix {
		p := strings.TrimSuffix(r.Pattern, "/")
		return path == p || strings.HasPrefix(path, p+"/")
	}
	return path == r.Pattern
}

// Table is an ordered route table; the first matching rule wins.
type Table []Rule

// Decision is the outcome for one path.
type Decision struct {
	Allow    bool   `json:"allow"`
	Redirect string `json:"redirect,omitempty"`
	Rule     *Rule  `json:"rule,omitempty"`
}

func allow(r *Rule) Decision { return Decision{Allow: true, Rule: r} }
func redirect(to string, r *Rule) Decision { return Decision{Redirect: to, Rule: r} }

// DefaultTable is the portal's built-in route table.
func DefaultTable() Table {
	return Table{
		{Pattern: "/", Match: Exact, Requires: Entry},
		{Pattern: "/login", Match: Exact, Requires: Anonymous},
		{Pattern: "/signup", Match: Exact, Requires: Anonymous},
		{Pattern: "/pricing", Match: Exact, Requires: Public},
		{Pattern: "/auth/", Match: Prefix, Requires: Public},
		{Pattern: "/platform", Match: Prefix, Requires: Authenticated},
		{Pattern: "/dashboard", Match: Prefix, Requires: Authenticated},
		{Pattern: "/assessment-report", Match: Prefix, Requires: Authenticated},
		{Pattern: "/onboarding", Match: Prefix, Requires: Authenticated},
	}
}

// Decide applies the table to path for session (nil when signed out).
// Paths no rule covers need a signed-in user.
func (t Table) Decide(path string, session *domain.Session) Decision {
	signedIn := session.Authenticated()

	for i := range t {
		r := &t[i]
		if !r.matches(path) {
			continue
		}
		switch r.Requires {
		case Public:
			return allow(r)
		case Anonymous:
			if signedIn {
				return redirect(HomePath, r)
			}
			return allow(r)
		case Entry:
			if signedIn {
				return redirect(HomePath, r)
			}
			return redirect(LoginPath, r)
		case Onboarded:
			if !signedIn {
				return redirect(LoginPath, r)
			}
			if !session.OnboardingCompleted {
				return redirect(OnboardingPath, r)
			}
			return allow(r)
		default:
			if !signedIn {
				return redirect(LoginPath, r)
			}
			return allow(r)
		}
	}

	if !signedIn {
		return redirect(LoginPath, nil)
	}
	return allow(nil)
}

// Validate rejects rules with unknown match modes or requirements.
func (t Table) Validate() error {
	for i, r := range t {
		if r.Pattern == "" || !strings.HasPrefix(r.Pattern, "/") {
			return fmt.Errorf("rule %d: pattern must start with '/'", i)
		}
		switch r.Match {
		case Exact, Prefix:
		default:
			return fmt.Errorf("rule %d (%s): unknown match %q", i, r.Pattern, r.Match)
		}
		switch r.Requires {
		case Public, Anonymous, Authenticated, Onboarded, Entry:
		default:
			return fmt.Errorf("rule %d (%s): unknown requirement %q", i, r.Pattern, r.Requires)
		}
	}
	return nil
}

type tableFile struct {
	Rules Table `yaml:"rules"`
}

// ParseTable decodes a YAML route table. A rule without match is exact.
func ParseTable(data []byte) (Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse route table: %w", err)
	}
	for i := range f.Rules {
		if f.Rules[i].Match == "" {
			f.Rules[i].Match = Exact
		}
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("parse route table: no rules")
	}
	if err := f.Rules.Validate(); err != nil {
		return nil, err
	}
	return f.Rules, nil
}

// LoadTable reads a YAML route table from path.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route table: %w", err)
	}
	return ParseTable(data)
}
