package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/core/usecases"
	"github.com/lootaura/lootaura/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL read schema over session state.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	latLngType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LatLng",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"west":  &graphql.Field{Type: graphql.Float},
			"south": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"north": &graphql.Field{Type: graphql.Float},
		},
	})

	viewportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Viewport",
		Fields: graphql.Fields{
			"center": &graphql.Field{Type: latLngType},
			"bounds": &graphql.Field{Type: boundsType},
			"zoom":   &graphql.Field{Type: graphql.Float},
		},
	})

	saleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Sale",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"title":      &graphql.Field{Type: graphql.String},
			"lat":        &graphql.Field{Type: graphql.Float},
			"lng":        &graphql.Field{Type: graphql.Float},
			"city":       &graphql.Field{Type: graphql.String},
			"state":      &graphql.Field{Type: graphql.String},
			"zip":        &graphql.Field{Type: graphql.String},
			"categories": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"start_date": &graphql.Field{Type: graphql.String},
			"end_date":   &graphql.Field{Type: graphql.String},
			"featured":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	commitType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Commit",
		Fields: graphql.Fields{
			"data":   &graphql.Field{Type: graphql.NewList(saleType)},
			"seq":    &graphql.Field{Type: graphql.Int},
			"source": &graphql.Field{Type: graphql.String},
		},
	})

	sessionArg := graphql.FieldConfigArgument{
		"session": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"viewport": &graphql.Field{
				Type:        viewportType,
				Description: "Current viewport for a session, if set",
				Args:        sessionArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sid, _ := p.Args["session"].(string)
					sess := deps.Sessions.Get(sid)
					v, ok := sess.Viewport.Get(p.Context)
					if !ok {
						return nil, nil
					}
					return v, nil
				},
			},
			"lastCommit": &graphql.Field{
				Type:        commitType,
				Description: "Most recently admitted batch for a lane",
				Args: graphql.FieldConfigArgument{
					"session": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lane":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sid, _ := p.Args["session"].(string)
					lane, _ := p.Args["lane"].(string)
					sess := deps.Sessions.Get(sid)
					return sess.LastCommit(domain.Lane(lane)), nil
				},
			},
			"resolveLocation": &graphql.Field{
				Type:        viewportType,
				Description: "Run the initial-location priority chain",
				Args:        sessionArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sid, _ := p.Args["session"].(string)
					loc := deps.Resolver.Resolve(p.Context, usecases.ResolveRequest{SessionID: sid}, false)
					return geospatial.ViewportFor(loc), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// GraphQLHandler serves POST /graphql.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)

	return func(c *fiber.Ctx) error {
		if err != nil {
			return errInternal(c, "schema init: "+err.Error())
		}

		var req graphqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "malformed body: "+err.Error())
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			Context:        c.UserContext(),
		})
		return c.JSON(result)
	}
}
