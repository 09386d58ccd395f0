package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

const maxBodyBytes = 1 << 20

// params are the flat string parameters of one request. Sources in order
// of precedence: chi URL params, a JSON object body, then the query string
// and form body.
type params map[string]string

func (p params) get(name string) string { return strings.TrimSpace(p[name]) }

// readParams collects params for r.
func readParams(w http.ResponseWriter, r *http.Request) (params, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	p := params{}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var body map[string]any
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, game.InputMissing("Invalid JSON body")
		}
		for k, v := range body {
			p[k] = flatten(v)
		}
	}

	if err := r.ParseForm(); err != nil {
		return nil, game.InputMissing("Invalid form body")
	}
	for k, vs := range r.Form {
		if _, set := p[k]; !set && len(vs) > 0 {
			p[k] = vs[0]
		}
	}

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, k := range rctx.URLParams.Keys {
			if k != "*" {
				p[k] = rctx.URLParams.Values[i]
			}
		}
	}
	return p, nil
}

// flatten turns a JSON value into the flat string form; arrays become
// comma-separated lists so "words": ["cat","dog"] works like "cat,dog".
func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, flatten(e))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

// intParam parses a required integer parameter.
func (p params) intParam(name string) (int, error) {
	raw := p.get(name)
	if raw == "" {
		return 0, game.InputMissing("Missing %s", name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, game.InputMissing("Invalid %s", name)
	}
	return n, nil
}

// action is the shared shape of every endpoint.
type action func(ctx context.Context, p params) (any, error)

// handle adapts an action to an http.HandlerFunc.
func handle(a action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := readParams(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out, err := a(r.Context(), p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
