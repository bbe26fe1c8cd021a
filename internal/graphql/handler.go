package graphql

import (
	"encoding/json"
	"net/http"

	gql "github.com/graphql-go/graphql"
	"github.com/rs/zerolog/log"

	"github.com/ifscdir/ifscdir/internal/directory"
)

// Handler serves GraphQL queries over HTTP. POST bodies carry the usual
// {query, variables, operationName} document; GET accepts ?query= for
// convenience.
type Handler struct {
	schema gql.Schema
}

// NewHandler builds the schema and wraps it in an HTTP handler.
func NewHandler(svc *directory.Service) (*Handler, error) {
	schema, err := NewSchema(svc)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema}, nil
}

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request

	switch r.Method {
	case http.MethodGet:
		req.Query = r.URL.Query().Get("query")
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid GraphQL request body", http.StatusBadRequest)
			return
		}
	}

	if req.Query == "" {
		http.Error(w, "Missing GraphQL query", http.StatusBadRequest)
		return
	}

	result := gql.Do(gql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Error().Err(err).Msg("Failed to encode GraphQL response")
	}
}
