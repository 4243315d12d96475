package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/crm-backend/api/responses"
	"github.com/angelmondragon/crm-backend/api/validators"
	"github.com/angelmondragon/crm-backend/internal/graph"
	pkgerrors "github.com/angelmondragon/crm-backend/pkg/errors"
	"github.com/angelmondragon/crm-backend/pkg/logger"
	"github.com/angelmondragon/crm-backend/pkg/metrics"
	"github.com/graphql-go/graphql"
)

const maxOperationNameLen = 128

// GraphQLExecutor runs one GraphQL operation.
type GraphQLExecutor interface {
	Execute(ctx context.Context, req graph.Request) *graphql.Result
}

type graphQLBody struct {
	Query         string         `json:"query" validate:"required"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
	Extensions    map[string]any `json:"extensions"`
}

// GraphQL serves the schema over POST (JSON body) and GET (query parameters).
// Operation-level failures are part of the GraphQL result and still answer 200;
// only malformed transport requests get an error envelope.
func GraphQL(exec GraphQLExecutor, m *metrics.GraphQLMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := graphQLRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil && req.OperationName != "" {
			ctx = logg.WithOperation(ctx, req.OperationName)
		}

		start := time.Now()
		result := exec.Execute(ctx, req)
		m.Observe(req.OperationName, result.HasErrors(), time.Since(start))

		if logg != nil && result.HasErrors() {
			logg.Warn(logg.WithField(ctx, "graphql_errors", len(result.Errors)), "graphql.result_errors")
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}

func graphQLRequest(r *http.Request) (graph.Request, error) {
	switch r.Method {
	case http.MethodPost:
		var body graphQLBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return graph.Request{}, err
		}
		return graph.Request{
			Query:         body.Query,
			Variables:     body.Variables,
			OperationName: validators.SanitizeString(body.OperationName, maxOperationNameLen),
		}, nil
	case http.MethodGet:
		query := validators.SanitizeString(r.URL.Query().Get("query"), 0)
		if query == "" {
			return graph.Request{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"query": "is required"})
		}
		var vars map[string]any
		if err := validators.ParseQueryJSON(r, "variables", &vars); err != nil {
			return graph.Request{}, err
		}
		return graph.Request{
			Query:         query,
			Variables:     vars,
			OperationName: validators.SanitizeString(r.URL.Query().Get("operationName"), maxOperationNameLen),
		}, nil
	}
	return graph.Request{}, pkgerrors.New(pkgerrors.CodeValidation, "method not allowed")
}
