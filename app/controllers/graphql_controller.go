package controllers

import (
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/catalog"
	"github.com/licorgest/licorgest/pkg/bind"
	gqlschema "github.com/licorgest/licorgest/pkg/graphql"
	"github.com/licorgest/licorgest/pkg/response"
)

// GraphQLController exposes a read-only catalog query endpoint, so kiosk
// builds can fetch exactly the fields they render.
type GraphQLController struct {
	schema graphql.Schema
}

func NewGraphQLController(store *catalog.Store) (*GraphQLController, error) {
	variantType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Variant",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.Int},
			"name": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(api.Variant).Name(), nil
				},
			},
			"category": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(api.Variant).CategoryName(), nil
				},
			},
			"presentation": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(api.Variant).Cantidad, nil
				},
			},
			"price": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(api.Variant).Precio, nil
				},
			},
			"stock": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(api.Variant).Stock, nil
				},
			},
			"image": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(api.Variant).Imagen, nil
				},
			},
		},
	})

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"variants": &graphql.Field{
				Type: graphql.NewList(variantType),
				Args: graphql.FieldConfigArgument{
					"q":        &graphql.ArgumentConfig{Type: graphql.String},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, _ := p.Args["q"].(string)
					category, _ := p.Args["category"].(string)
					return store.Snapshot().Filter(q, category), nil
				},
			},
			"variant": &graphql.Field{
				Type: variantType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					v, ok := store.Snapshot().Get(int64(id))
					if !ok {
						return nil, nil
					}
					return v, nil
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return store.Snapshot().Categories(), nil
				},
			},
		},
	})

	schema, err := gqlschema.NewSchema(rootQuery)
	if err != nil {
		return nil, err
	}
	return &GraphQLController{schema: schema}, nil
}

// Query executes one GraphQL request.
func (c *GraphQLController) Query(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query     string                 `json:"query" validate:"required"`
		Variables map[string]interface{} `json:"variables"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         c.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		Context:        r.Context(),
	})
	response.Success(w, result)
}
