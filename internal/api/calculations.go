package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/yourusername/trade-journal/internal/growth"
	"github.com/yourusername/trade-journal/internal/metrics"
	"github.com/yourusername/trade-journal/internal/models"
)

// Estimate is the reply of the estimate endpoint
type Estimate struct {
	Policy       string              `json:"policy"`
	PolicyName   string              `json:"policy_name"`
	Params       map[string]float64  `json:"params"`
	Result       growth.GrowthResult `json:"result"`
	CalibratedAt *time.Time          `json:"calibrated_at,omitempty"`
}

func (s *Server) project(req *models.CalculationRequest) (Estimate, error) {
	scenario, err := req.Scenario()
	if err != nil {
		return Estimate{}, err
	}
	name, policy, err := s.policies.Resolve(req.Policy)
	if err != nil {
		return Estimate{}, err
	}
	result, err := growth.NewModel(policy).Project(scenario)
	if err != nil {
		return Estimate{}, err
	}
	metrics.RecordCalculation(name, result.NoEdge)

	estimate := Estimate{
		Policy:     name,
		PolicyName: policy.Name(),
		Params:     policy.Params(),
		Result:     result,
	}
	if name == PolicyCalibrated {
		if act, ok := s.policies.Active().Load(); ok {
			at := act.ActivatedAt
			estimate.CalibratedAt = &at
		}
	}
	return estimate, nil
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req models.CalculationRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	estimate, err := s.project(&req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	message := "estimate computed"
	if estimate.Result.NoEdge {
		message = "no positive edge: profit is zero"
	}
	s.respond(w, http.StatusOK, message, estimate)
}

func (s *Server) handleCreateCalculation(w http.ResponseWriter, r *http.Request) {
	var req models.CalculationRequest
	if err := s.decode(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	estimate, err := s.project(&req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	userID := UserIDFromContext(r.Context())
	calc := &models.Calculation{UserID: userID, ObservedProfit: req.ObservedProfit}
	calc.ApplyResult(estimate.Policy, estimate.Result)
	if err := s.calculations.Create(r.Context(), calc); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.recordChange(userID, "calculation", calc.ID.String(), "create")
	s.respond(w, http.StatusCreated, "calculation saved", calc)
}

func (s *Server) handleListCalculations(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	calcs, err := s.calculations.List(r.Context(), UserIDFromContext(r.Context()), opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, fmt.Sprintf("%d calculations", len(calcs)), calcs)
}

func (s *Server) handleGetCalculation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	calc, err := s.calculations.GetByID(r.Context(), UserIDFromContext(r.Context()), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "calculation found", calc)
}

func (s *Server) handleDeleteCalculation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	userID := UserIDFromContext(r.Context())
	if err := s.calculations.Delete(r.Context(), userID, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.recordChange(userID, "calculation", id.String(), "delete")
	s.respond(w, http.StatusOK, "calculation deleted", nil)
}
