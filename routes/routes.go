// Package routes is the client-side route table of the video browser SPA.
//
// The table is static and ordered; the first matching pattern wins. It has
// no server-side role beyond documenting which paths the bucket's error
// document fallback must hand to the SPA.
package routes

import (
	"net/url"
	"strings"
)

// Route maps a path pattern to a view.
type Route struct {
	// Pattern is a slash-separated path; segments starting with ':' capture a parameter.
	Pattern string

	// Name identifies the view component.
	Name string

	// Props passes captured parameters to the view as properties.
	Props bool
}

// Match is a resolved route.
type Match struct {
	Route  Route
	Params map[string]string
}

// Table is the application's route table.
var Table = []Route{
	{Pattern: "/", Name: "VideoList"},
	{Pattern: "/video/:fileKey", Name: "VideoPlayer", Props: true},
}

// Resolve finds the first route in table matching path. Query strings and
// fragments are ignored; a trailing slash is not significant.
func Resolve(table []Route, path string) (Match, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	got := split(path)

	for _, r := range table {
		want := split(r.Pattern)
		if len(want) != len(got) {
			continue
		}

		params := map[string]string{}
		ok := true
		for i, seg := range want {
			if name, isParam := strings.CutPrefix(seg, ":"); isParam {
				if got[i] == "" {
					ok = false
					break
				}
				v, err := url.PathUnescape(got[i])
				if err != nil {
					v = got[i]
				}
				params[name] = v
				continue
			}
			if seg != got[i] {
				ok = false
				break
			}
		}
		if ok {
			return Match{Route: r, Params: params}, true
		}
	}
	return Match{}, false
}

// Lookup resolves path against Table.
func Lookup(path string) (Match, bool) {
	return Resolve(Table, path)
}

// Props returns the properties passed to the view: the captured parameters
// when the route enables props, nothing otherwise.
func (m Match) Props() map[string]string {
	if !m.Route.Props {
		return nil
	}
	return m.Params
}

func split(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
