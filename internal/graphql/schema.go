// Package graphql exposes the directory query layer as a GraphQL schema,
// mirroring the REST surface: banks, bank, branches (as a connection of
// edges) and branch by IFSC.
package graphql

import (
	gql "github.com/graphql-go/graphql"

	"github.com/ifscdir/ifscdir/internal/database"
	"github.com/ifscdir/ifscdir/internal/directory"
)

// NewSchema builds the query schema over the given service.
func NewSchema(svc *directory.Service) (gql.Schema, error) {
	bankType := gql.NewObject(gql.ObjectConfig{
		Name: "Bank",
		Fields: gql.Fields{
			"id":   &gql.Field{Type: gql.NewNonNull(gql.Int)},
			"name": &gql.Field{Type: gql.NewNonNull(gql.String)},
		},
	})

	branchType := gql.NewObject(gql.ObjectConfig{
		Name: "Branch",
		Fields: gql.Fields{
			"ifsc":     &gql.Field{Type: gql.NewNonNull(gql.String)},
			"branch":   &gql.Field{Type: gql.String},
			"address":  &gql.Field{Type: gql.String},
			"city":     &gql.Field{Type: gql.String},
			"district": &gql.Field{Type: gql.String},
			"state":    &gql.Field{Type: gql.String},
			"bankId":   &gql.Field{Type: gql.NewNonNull(gql.Int)},
			"bank":     &gql.Field{Type: bankType},
		},
	})

	branchEdgeType := gql.NewObject(gql.ObjectConfig{
		Name: "BranchEdge",
		Fields: gql.Fields{
			"node": &gql.Field{Type: branchType},
		},
	})

	branchesConnectionType := gql.NewObject(gql.ObjectConfig{
		Name: "BranchesConnection",
		Fields: gql.Fields{
			"edges": &gql.Field{Type: gql.NewList(branchEdgeType)},
			"total": &gql.Field{Type: gql.Int},
		},
	})

	pagingArgs := gql.FieldConfigArgument{
		"page":     &gql.ArgumentConfig{Type: gql.Int, DefaultValue: 1},
		"pageSize": &gql.ArgumentConfig{Type: gql.Int, DefaultValue: directory.DefaultPageSize},
	}

	queryType := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"banks": &gql.Field{
				Type: gql.NewList(bankType),
				Args: mergeArgs(pagingArgs, gql.FieldConfigArgument{
					"search": &gql.ArgumentConfig{Type: gql.String},
				}),
				Resolve: func(p gql.ResolveParams) (any, error) {
					page, err := svc.ListBanks(intArg(p, "page"), intArg(p, "pageSize"), stringArg(p, "search"))
					if err != nil {
						return nil, err
					}
					out := make([]map[string]any, 0, len(page.Items))
					for _, b := range page.Items {
						out = append(out, bankMap(b))
					}
					return out, nil
				},
			},
			"bank": &gql.Field{
				Type: bankType,
				Args: gql.FieldConfigArgument{
					"bankId": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.Int)},
				},
				Resolve: func(p gql.ResolveParams) (any, error) {
					bank, err := svc.GetBank(int64(intArg(p, "bankId")))
					if err != nil || bank == nil {
						return nil, err
					}
					return bankMap(bank), nil
				},
			},
			"branches": &gql.Field{
				Type: branchesConnectionType,
				Args: mergeArgs(pagingArgs, gql.FieldConfigArgument{
					"bankName": &gql.ArgumentConfig{Type: gql.String},
					"city":     &gql.ArgumentConfig{Type: gql.String},
					"district": &gql.ArgumentConfig{Type: gql.String},
					"state":    &gql.ArgumentConfig{Type: gql.String},
					"search":   &gql.ArgumentConfig{Type: gql.String},
				}),
				Resolve: func(p gql.ResolveParams) (any, error) {
					filters := directory.BranchFilters{
						BankName: stringArg(p, "bankName"),
						City:     stringArg(p, "city"),
						District: stringArg(p, "district"),
						State:    stringArg(p, "state"),
					}
					page, err := svc.ListBranches(intArg(p, "page"), intArg(p, "pageSize"), filters, stringArg(p, "search"))
					if err != nil {
						return nil, err
					}
					edges := make([]map[string]any, 0, len(page.Items))
					for _, b := range page.Items {
						edges = append(edges, map[string]any{"node": branchMap(b)})
					}
					return map[string]any{"edges": edges, "total": page.Total}, nil
				},
			},
			"branch": &gql.Field{
				Type: branchType,
				Args: gql.FieldConfigArgument{
					"ifsc": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
				},
				Resolve: func(p gql.ResolveParams) (any, error) {
					branch, err := svc.GetBranchByIFSC(stringArg(p, "ifsc"))
					if err != nil || branch == nil {
						return nil, err
					}
					return branchMap(branch), nil
				},
			},
		},
	})

	return gql.NewSchema(gql.SchemaConfig{Query: queryType})
}

func bankMap(b *database.Bank) map[string]any {
	return map[string]any{"id": int(b.ID), "name": b.Name}
}

func branchMap(b *database.BranchDetail) map[string]any {
	return map[string]any{
		"ifsc":     b.IFSC,
		"branch":   b.BranchName,
		"address":  b.Address,
		"city":     b.City,
		"district": b.District,
		"state":    b.State,
		"bankId":   int(b.BankID),
		"bank":     bankMap(&b.Bank),
	}
}

func intArg(p gql.ResolveParams, name string) int {
	if v, ok := p.Args[name].(int); ok {
		return v
	}
	return 0
}

func stringArg(p gql.ResolveParams, name string) string {
	if v, ok := p.Args[name].(string); ok {
		return v
	}
	return ""
}

func mergeArgs(base, extra gql.FieldConfigArgument) gql.FieldConfigArgument {
	merged := gql.FieldConfigArgument{}
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
