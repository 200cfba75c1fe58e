package internal

import (
	"cmp"
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/go-chi/chi/v5"
)

var paramPattern = regexp.MustCompile(`\{[^}]*\}`)

// Routes maps a path suffix to the endpoints bound at it.
type Routes map[string]Methods

// Methods maps an HTTP method to its endpoint.
type Methods map[string]*Endpoint

// Params holds path parameters of a matched route.
type Params map[string]string

// Route is an endpoint registered at its full path.
type Route struct {
	Endpoint *Endpoint
	Method   string
	Path     string
	Name     string
	key      string
}

// Tree is the registry of every route. It is assembled at startup and frozen
// before serving; after Freeze it is read-only.
type Tree struct {
	mux    *chi.Mux
	index  map[string]*Route
	routes []*Route
	mu     sync.Mutex
	frozen bool
}

// Node is a path prefix within a Tree.
type Node struct {
	tree   *Tree
	prefix string
}

// NewTree returns an empty, unfrozen tree.
func NewTree() *Tree {
	return &Tree{}
}

// Root returns the node for "/".
func (t *Tree) Root() *Node {
	return &Node{tree: t, prefix: "/"}
}

// Subroute returns a child node whose prefix is n's prefix joined with prefix.
func (n *Node) Subroute(prefix string) *Node {
	return &Node{tree: n.tree, prefix: joinPath(n.prefix, prefix)}
}

// Prefix returns the node's full path prefix.
func (n *Node) Prefix() string {
	return n.prefix
}

// Config binds endpoints below n, each at its own method and path suffix.
func (n *Node) Config(eps ...*Endpoint) *Node {
	for _, ep := range eps {
		if ep == nil {
			panic("newsdesk: nil endpoint registered under " + n.prefix)
		}
		n.tree.add(ep, joinPath(n.prefix, ep.path))
	}
	return n
}

// ConfigMap binds endpoints by suffix and method. The map must agree with
// each endpoint's own method and path.
func (n *Node) ConfigMap(routes Routes) *Node {
	suffixes := make([]string, 0, len(routes))
	for s := range routes {
		suffixes = append(suffixes, s)
	}
	slices.Sort(suffixes)

	for _, suffix := range suffixes {
		methods := routes[suffix]
		names := make([]string, 0, len(methods))
		for m := range methods {
			names = append(names, m)
		}
		slices.Sort(names)

		for _, m := range names {
			ep := methods[m]
			if ep == nil {
				panic(fmt.Sprintf("newsdesk: nil endpoint for %s %s", m, suffix))
			}
			if !strings.EqualFold(m, ep.method) || joinPath("/", suffix) != joinPath("/", ep.path) {
				panic(fmt.Sprintf("newsdesk: route %s %s is bound to endpoint %s %s", m, suffix, ep.method, ep.path))
			}
			n.Config(ep)
		}
	}
	return n
}

func (t *Tree) add(ep *Endpoint, full string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		panic(fmt.Sprintf("newsdesk: cannot register %s %s on a frozen tree", ep.method, full))
	}
	name := ep.name
	if name == "" {
		name = deriveName(ep.method, full)
	}
	t.routes = append(t.routes, &Route{
		Endpoint: ep,
		Method:   ep.method,
		Path:     full,
		Name:     name,
		key:      ep.method + " " + paramPattern.ReplaceAllString(full, "{}"),
	})
}

// Freeze validates the tree and builds the dispatcher. Routes registered
// twice under the same method and path (parameter names ignored), and
// client names used twice, are reported together.
func (t *Tree) Freeze() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return nil
	}

	slices.SortStableFunc(t.routes, compareRoutes)

	var errs []error
	byKey := make(map[string]*Route, len(t.routes))
	byName := make(map[string]*Route, len(t.routes))
	for _, r := range t.routes {
		if prev, dup := byKey[r.key]; dup {
			errs = append(errs, fmt.Errorf("%w: %s %s conflicts with %s %s", ErrDuplicateRoute, r.Method, r.Path, prev.Method, prev.Path))
			continue
		}
		if prev, dup := byName[r.Name]; dup {
			errs = append(errs, fmt.Errorf("%w: name %q used by %s %s and %s %s", ErrDuplicateRoute, r.Name, prev.Method, prev.Path, r.Method, r.Path))
			continue
		}
		byKey[r.key] = r
		byName[r.Name] = r
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	mux := chi.NewMux()
	lookup := make(map[string]*Route, len(t.routes))
	for _, r := range t.routes {
		mux.Method(r.Method, r.Path, http.NotFoundHandler())
		lookup[r.Method+" "+r.Path] = r
	}

	t.mux = mux
	t.index = lookup
	t.frozen = true
	return nil
}

// Frozen reports whether Freeze succeeded.
func (t *Tree) Frozen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frozen
}

// Lookup matches a request. A path registered only for other methods does
// not match.
func (t *Tree) Lookup(method, urlPath string) (*Route, Params, bool) {
	if !t.Frozen() {
		return nil, nil, false
	}

	rctx := chi.NewRouteContext()
	pattern := t.mux.Find(rctx, method, urlPath)
	if pattern == "" {
		return nil, nil, false
	}
	r, ok := t.index[method+" "+pattern]
	if !ok {
		return nil, nil, false
	}

	params := make(Params, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return r, params, true
}

// Routes returns every route sorted by path, then method.
func (t *Tree) Routes() []*Route {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := slices.Clone(t.routes)
	slices.SortStableFunc(out, compareRoutes)
	return out
}

func compareRoutes(a, b *Route) int {
	return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
}

func joinPath(prefix, suffix string) string {
	return path.Join("/", prefix, suffix)
}

// deriveName turns "GET /posts/{slug}" into "GetPostsBySlug".
func deriveName(method, full string) string {
	var b strings.Builder
	b.WriteString(title(strings.ToLower(method)))
	for _, seg := range strings.Split(full, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") {
			name, _, _ := strings.Cut(strings.Trim(seg, "{}"), ":")
			b.WriteString("By")
			seg = name
		}
		for _, word := range strings.FieldsFunc(seg, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			b.WriteString(title(word))
		}
	}
	return b.String()
}

func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
