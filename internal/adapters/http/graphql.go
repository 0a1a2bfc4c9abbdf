package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services. Object
// fields resolve through the domain types' json tags.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"name":      &graphql.Field{Type: graphql.String},
			"country":   &graphql.Field{Type: graphql.String},
			"longitude": &graphql.Field{Type: graphql.Float},
			"latitude":  &graphql.Field{Type: graphql.Float},
		},
	})

	jobType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Job",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: graphql.String},
			"vessel_name": &graphql.Field{Type: graphql.String},
			"rate":        &graphql.Field{Type: graphql.Float},
			"currency":    &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: locationType},
			"posted_by":   &graphql.Field{Type: graphql.String},
			"starts_at":   &graphql.Field{Type: graphql.DateTime},
			"closes_at":   &graphql.Field{Type: graphql.DateTime},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	eventType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Event",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: locationType},
			"host_id":     &graphql.Field{Type: graphql.String},
			"starts_at":   &graphql.Field{Type: graphql.DateTime},
			"ends_at":     &graphql.Field{Type: graphql.DateTime},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	postType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"author_id":  &graphql.Field{Type: graphql.String},
			"body":       &graphql.Field{Type: graphql.String},
			"image_url":  &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"kind":     &graphql.Field{Type: graphql.String},
			"title":    &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{Type: graphql.String},
			"point":    &graphql.Field{Type: geoPointType},
		},
	})

	areaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AreaResult",
		Fields: graphql.Fields{
			"count":    &graphql.Field{Type: graphql.Int},
			"features": &graphql.Field{Type: graphql.NewList(featureType)},
		},
	})

	pageArgs := func(def int) graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
			"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: def},
			"offset":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		}
	}
	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"jobs": &graphql.Field{
				Type:        graphql.NewList(jobType),
				Description: "List jobs with their locations",
				Args:        pageArgs(50),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Jobs.List(p.Context, domain.JobFilter{
						Category: p.Args["category"].(string),
						Include:  []string{"location"},
						Limit:    p.Args["limit"].(int),
						Offset:   p.Args["offset"].(int),
					})
				},
			},
			"job": &graphql.Field{
				Type:        jobType,
				Description: "Get a job by ID",
				Args:        idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Jobs.Get(p.Context, p.Args["id"].(string))
				},
			},
			"events": &graphql.Field{
				Type:        graphql.NewList(eventType),
				Description: "List events with their locations",
				Args:        pageArgs(50),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Events.List(p.Context, domain.EventFilter{
						Category: p.Args["category"].(string),
						Include:  []string{"location"},
						Limit:    p.Args["limit"].(int),
						Offset:   p.Args["offset"].(int),
					})
				},
			},
			"event": &graphql.Field{
				Type:        eventType,
				Description: "Get an event by ID",
				Args:        idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Events.Get(p.Context, p.Args["id"].(string))
				},
			},
			"posts": &graphql.Field{
				Type:        graphql.NewList(postType),
				Description: "Newest feed posts",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Posts.Feed(p.Context, p.Args["limit"].(int), p.Args["offset"].(int))
				},
			},
			"featuresInArea": &graphql.Field{
				Type:        areaType,
				Description: "Placeable jobs or events inside a bounding box",
				Args: graphql.FieldConfigArgument{
					"kind":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"ne_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"ne_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"sw_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"sw_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind, ok := domain.ParseFeatureKind(p.Args["kind"].(string))
					if !ok {
						return nil, errUnknownKind
					}
					box := domain.BoundingBox{
						NorthEast: domain.GeoPoint{Lat: p.Args["ne_lat"].(float64), Lon: p.Args["ne_lon"].(float64)},
						SouthWest: domain.GeoPoint{Lat: p.Args["sw_lat"].(float64), Lon: p.Args["sw_lon"].(float64)},
					}
					if !box.Valid() {
						return nil, errInvalidBox
					}
					return deps.Listing.InArea(p.Context, kind, box)
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
