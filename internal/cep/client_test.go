package cep_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalmed/loan-ledger/internal/cep"
)

func TestClient_Lookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/01001000/json/":
			w.Write([]byte(`{"cep":"01001-000","logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`))
		case "/99999999/json/":
			w.Write([]byte(`{"erro":true}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	client := cep.NewClient(server.URL, 2*time.Second, nil, time.Hour)

	t.Run("resolves a known CEP, with or without the dash", func(t *testing.T) {
		for _, code := range []string{"01001000", "01001-000"} {
			address, err := client.Lookup(context.Background(), code)

			require.NoError(t, err)
			assert.Equal(t, "Praça da Sé", address.Street)
			assert.Equal(t, "São Paulo", address.City)
			assert.Equal(t, "SP", address.State)
		}
	})

	t.Run("well-formed but nonexistent CEP", func(t *testing.T) {
		address, err := client.Lookup(context.Background(), "99999-999")

		assert.ErrorIs(t, err, cep.ErrCEPNotFound)
		assert.Nil(t, address)
	})

	t.Run("malformed CEP never reaches the API", func(t *testing.T) {
		for _, code := range []string{"", "1234", "123456789"} {
			address, err := client.Lookup(context.Background(), code)

			assert.ErrorIs(t, err, cep.ErrInvalidCEP)
			assert.Nil(t, address)
		}
	})
}
