package http

import (
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

type countryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

func sortedCountryCounts(m map[string]int) []countryCount {
	out := make([]countryCount, 0, len(m))
	for k, v := range m {
		out = append(out, countryCount{Country: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}

func issueMaps(issues []domain.ValidationIssue) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(issues))
	for _, i := range issues {
		out = append(out, map[string]interface{}{
			"code":          string(i.Code),
			"message":       i.Message,
			"feature_index": i.FeatureIndex,
			"feature_name":  i.FeatureName,
		})
	}
	return out
}

// buildSchema creates the GraphQL schema wired to our services. Resolvers
// act for the client stored in the request context.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	countryCountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CountryCount",
		Fields: graphql.Fields{
			"country": &graphql.Field{Type: graphql.String},
			"count":   &graphql.Field{Type: graphql.Int},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ValidationSummary",
		Fields: graphql.Fields{
			"valid":               &graphql.Field{Type: graphql.Boolean},
			"error_count":         &graphql.Field{Type: graphql.Int},
			"warning_count":       &graphql.Field{Type: graphql.Int},
			"feature_count":       &graphql.Field{Type: graphql.Int},
			"total_area_hectares": &graphql.Field{Type: graphql.Float},
			"country_counts": &graphql.Field{
				Type: graphql.NewList(countryCountType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s, ok := p.Source.(domain.ValidationSummary)
					if !ok {
						return nil, nil
					}
					return sortedCountryCounts(s.CountryCounts), nil
				},
			},
		},
	})

	exportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Export",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.String},
			"file_url":           &graphql.Field{Type: graphql.String},
			"file_size_bytes":    &graphql.Field{Type: graphql.Int},
			"commodity":          &graphql.Field{Type: graphql.String},
			"supplier_ids":       &graphql.Field{Type: graphql.NewList(graphql.String)},
			"validation_summary": &graphql.Field{Type: summaryType},
			"created_at":         &graphql.Field{Type: graphql.DateTime},
		},
	})

	supplierType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Supplier",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"country":    &graphql.Field{Type: graphql.String},
			"commodity":  &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	issueType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ValidationIssue",
		Fields: graphql.Fields{
			"code":          &graphql.Field{Type: graphql.String},
			"message":       &graphql.Field{Type: graphql.String},
			"feature_index": &graphql.Field{Type: graphql.Int},
			"feature_name":  &graphql.Field{Type: graphql.String},
		},
	})

	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ValidationReport",
		Fields: graphql.Fields{
			"valid":         &graphql.Field{Type: graphql.Boolean},
			"feature_count": &graphql.Field{Type: graphql.Int},
			"errors":        &graphql.Field{Type: graphql.NewList(issueType)},
			"warnings":      &graphql.Field{Type: graphql.NewList(issueType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"exports": &graphql.Field{
				Type:        graphql.NewList(exportType),
				Description: "Export history, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, _ := p.Args["limit"].(int)
					offset, _ := p.Args["offset"].(int)
					page, err := deps.Exports.List(p.Context, ClientIDFromCtx(p.Context), limit, offset)
					if err != nil {
						return nil, err
					}
					return page.Records, nil
				},
			},
			"export": &graphql.Field{
				Type:        exportType,
				Description: "Get an export by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Exports.Get(p.Context, ClientIDFromCtx(p.Context), id)
				},
			},
			"suppliers": &graphql.Field{
				Type:        graphql.NewList(supplierType),
				Description: "Suppliers of the calling client",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Suppliers.List(p.Context, ClientIDFromCtx(p.Context))
				},
			},
			"validateGeometry": &graphql.Field{
				Type:        reportType,
				Description: "Validate a GeoJSON FeatureCollection passed as a string",
				Args: graphql.FieldConfigArgument{
					"document": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					doc := p.Args["document"].(string)
					report, err := deps.Validation.Validate(p.Context, []byte(doc))
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"valid":         report.Valid,
						"feature_count": report.FeatureCount,
						"errors":        issueMaps(report.Errors),
						"warnings":      issueMaps(report.Warnings),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
