package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vitalmed/loan-ledger/internal/cep"
	"github.com/vitalmed/loan-ledger/pkg/response"
)

// CEPResolver resolves postal codes to addresses.
type CEPResolver interface {
	Lookup(ctx context.Context, code string) (*cep.Address, error)
}

type CEPHandler struct {
	client CEPResolver
}

func NewCEPHandler(client CEPResolver) *CEPHandler {
	return &CEPHandler{client: client}
}

// Lookup handles GET /cep/{cep}
func (h *CEPHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	address, err := h.client.Lookup(r.Context(), mux.Vars(r)["cep"])
	if err != nil {
		switch {
		case errors.Is(err, cep.ErrInvalidCEP):
			response.BadRequest(w, "Invalid CEP", err)
		case errors.Is(err, cep.ErrCEPNotFound):
			response.NotFound(w, "CEP not found")
		default:
			response.InternalServerError(w, "CEP lookup failed", err)
		}
		return
	}

	response.Success(w, address)
}
