// Package roster exposes the solve engine over HTTP: POST /api/roster/plan
// runs one solve, GET /api/roster/logs returns past audit records.
package roster

import (
	"context"
	"encoding/json"
	"net/http"

	engine "rosterd/core/roster"
)

// Solver runs one solve per request. Implemented by *roster.Engine.
type Solver interface {
	Solve(ctx context.Context, req engine.Request) engine.Result
}

// NewPlanHandler returns an HTTP handler running one solve per POST request.
// Malformed payloads and rejected requests map to 400; everything else,
// including infeasible and timed-out solves, returns 200 with the outcome in
// the body.
func NewPlanHandler(solver Solver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var wire planRequest
		if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req, err := wire.toRequest()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res := solver.Solve(r.Context(), req)

		w.Header().Set("Content-Type", "application/json")
		if res.Outcome == engine.OutcomeConfigError {
			w.WriteHeader(http.StatusBadRequest)
		}
		if err := json.NewEncoder(w).Encode(toResponse(res)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
