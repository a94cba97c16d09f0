package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/websymbols-mcp/internal/query"
)

var (
	queryContext      []string
	namesTarget       string
	completePosition  int
	completeDeprecate bool
	completeLimit     int
	searchLimit       int
	searchNamespaces  []string
	searchKinds       []string
	searchLibraries   []string
)

var namesCmd = &cobra.Command{
	Use:     "names <namespace> <kind> <name>",
	Short:   "Print the forms a name takes",
	Example: "  websymbols names html elements MyButton --target completion",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQuery(cmd, func(svc *query.Service) error {
			forms, err := svc.Names(cmd.Context(), query.NamesRequest{
				Target:     target(args),
				Name:       args[2],
				NameTarget: namesTarget,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(forms, "\n"))
			return nil
		})
	},
}

var renameCmd = &cobra.Command{
	Use:     "rename <namespace> <kind> <old-name> <new-name> <occurrence>",
	Short:   "Print how an occurrence changes when a symbol is renamed",
	Example: "  websymbols rename html elements MyButton FancyButton my-button",
	Args:    cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQuery(cmd, func(svc *query.Service) error {
			renamed, err := svc.AdjustRename(cmd.Context(), query.RenameRequest{
				Target:     target(args),
				OldName:    args[2],
				NewName:    args[3],
				Occurrence: args[4],
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renamed)
			return nil
		})
	},
}

var matchCmd = &cobra.Command{
	Use:     "match <namespace> <kind> <name>",
	Short:   "Match a name against the loaded symbols",
	Example: "  websymbols match html attributes size --context /html/elements/my-button",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQuery(cmd, func(svc *query.Service) error {
			resp, err := svc.Match(cmd.Context(), query.MatchRequest{
				Target:  target(args),
				Name:    args[2],
				Context: queryContext,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, resp.Symbols)
		})
	},
}

var completeCmd = &cobra.Command{
	Use:     "complete <namespace> <kind> [name]",
	Short:   "Propose completions for a partially typed name",
	Example: "  websymbols complete html elements my-b",
	Args:    cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 3 {
			name = args[2]
		}
		return withQuery(cmd, func(svc *query.Service) error {
			resp, err := svc.Complete(cmd.Context(), query.CompleteRequest{
				Target:            target(args),
				Name:              name,
				Position:          completePosition,
				Context:           queryContext,
				IncludeDeprecated: completeDeprecate,
				Limit:             completeLimit,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		})
	},
}

var symbolCmd = &cobra.Command{
	Use:     "symbol <path>",
	Short:   "Resolve a symbol reference path and print its documentation",
	Example: "  websymbols symbol /html/elements/my-button/html/attributes/size",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQuery(cmd, func(svc *query.Service) error {
			symbols, err := svc.Symbol(cmd.Context(), args[0], queryContext)
			if err != nil {
				return err
			}
			return printJSON(cmd, symbols)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Full-text search over loaded contributions",
	Example: "  websymbols search \"status badge\" --namespace html",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withQuery(cmd, func(svc *query.Service) error {
			resp, err := svc.Search(cmd.Context(), query.SearchRequest{
				Query:      strings.Join(args, " "),
				Limit:      searchLimit,
				Namespaces: searchNamespaces,
				Kinds:      searchKinds,
				Libraries:  searchLibraries,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, resp.Hits)
		})
	},
}

func init() {
	namesCmd.Flags().StringVar(&namesTarget, "target", "query", "Name target: query, storage or completion")

	for _, c := range []*cobra.Command{matchCmd, completeCmd, symbolCmd} {
		c.Flags().StringSliceVar(&queryContext, "context", nil, "Enclosing symbol paths, outermost first")
	}

	completeCmd.Flags().IntVar(&completePosition, "position", -1, "Cursor position within the name (default: end)")
	completeCmd.Flags().BoolVar(&completeDeprecate, "include-deprecated", false, "Include deprecated symbols")
	completeCmd.Flags().IntVar(&completeLimit, "limit", 50, "Maximum number of proposals")

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results (1-100)")
	searchCmd.Flags().StringSliceVar(&searchNamespaces, "namespace", nil, "Filter by namespace")
	searchCmd.Flags().StringSliceVar(&searchKinds, "kind", nil, "Filter by kind")
	searchCmd.Flags().StringSliceVar(&searchLibraries, "library", nil, "Filter by library")

	rootCmd.AddCommand(namesCmd, renameCmd, matchCmd, completeCmd, symbolCmd, searchCmd)
}

func target(args []string) query.Target {
	return query.Target{Namespace: args[0], Kind: args[1]}
}

// withQuery opens the database, restores the stored manifests and runs fn
// against the query service
func withQuery(cmd *cobra.Command, fn func(*query.Service) error) error {
	server, err := openServer(cmd.Context())
	if err != nil {
		return err
	}
	defer server.Close()
	return fn(server.Query())
}
