package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmoralo/bc3tree/internal/store"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.orchestrator.BudgetStore().List(r.Context())
	if err != nil {
		s.log.Error("list budgets failed", "error", err)
		jsonError(w, "failed to list budgets", http.StatusInternalServerError)
		return
	}
	if budgets == nil {
		budgets = []store.Budget{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"budgets": budgets,
		"count":   len(budgets),
	})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetID")
	budget, treeJSON, _, err := s.orchestrator.BudgetStore().Get(r.Context(), budgetID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "budget not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get budget failed", "budget_id", budgetID, "error", err)
		jsonError(w, "failed to load budget", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"budget": budget,
		"tree":   json.RawMessage(treeJSON),
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetID")
	budget, _, reportJSON, err := s.orchestrator.BudgetStore().Get(r.Context(), budgetID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "budget not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get report failed", "budget_id", budgetID, "error", err)
		jsonError(w, "failed to load report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"budget_id": budget.ID,
		"valid":     budget.Valid,
		"report":    json.RawMessage(reportJSON),
	})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "budgetID")
	err := s.orchestrator.BudgetStore().Delete(r.Context(), budgetID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "budget not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("delete budget failed", "budget_id", budgetID, "error", err)
		jsonError(w, "failed to delete budget", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": budgetID})
}
