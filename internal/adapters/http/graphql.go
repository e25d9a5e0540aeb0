package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/runmate-app/runmate/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	profileType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Profile",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"username":   &graphql.Field{Type: graphql.String},
			"full_name":  &graphql.Field{Type: graphql.String},
			"avatar_url": &graphql.Field{Type: graphql.String},
		},
	})

	runType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Run",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"pace_min_km": &graphql.Field{Type: graphql.Float},
			"start_time":  &graphql.Field{Type: graphql.String},
			"created_by":  &graphql.Field{Type: graphql.String},
			"distance_m":  &graphql.Field{Type: graphql.Float},
		},
	})

	runWithCreatorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RunWithCreator",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"pace_min_km": &graphql.Field{Type: graphql.Float},
			"start_time":  &graphql.Field{Type: graphql.String},
			"created_by":  &graphql.Field{Type: graphql.String},
			"creator":     &graphql.Field{Type: profileType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"runsNearby": &graphql.Field{
				Type:        graphql.NewList(runType),
				Description: "Find runs near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 5000},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					radius := p.Args["radius"].(int)
					limit := p.Args["limit"].(int)
					return deps.Runs.FindNearby(p.Context, lat, lng, radius, limit, nil)
				},
			},
			"runsInBox": &graphql.Field{
				Type:        graphql.NewList(runType),
				Description: "List runs inside a bounding box",
				Args: graphql.FieldConfigArgument{
					"lat_min": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lat_max": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng_min": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng_max": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					b := domain.Bounds{
						LatMin: p.Args["lat_min"].(float64),
						LatMax: p.Args["lat_max"].(float64),
						LngMin: p.Args["lng_min"].(float64),
						LngMax: p.Args["lng_max"].(float64),
					}
					limit := p.Args["limit"].(int)
					return deps.Runs.FindInBox(p.Context, b, limit)
				},
			},
			"run": &graphql.Field{
				Type:        runWithCreatorType,
				Description: "Get a run by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Runs.GetByID(p.Context, id)
				},
			},
			"upcomingRuns": &graphql.Field{
				Type:        graphql.NewList(runWithCreatorType),
				Description: "Upcoming runs with creator profiles",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					offset := p.Args["offset"].(int)
					runs, _, err := deps.Runs.ListUpcoming(p.Context, offset, limit)
					return runs, err
				},
			},
			"profile": &graphql.Field{
				Type:        profileType,
				Description: "Get a profile by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Profiles.GetByID(p.Context, id)
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
