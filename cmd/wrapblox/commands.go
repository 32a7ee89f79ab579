package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	wrapblox "github.com/jamesprial/go-wrapblox"
	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
	"github.com/jamesprial/go-wrapblox/pkg/types"
	"github.com/jamesprial/go-wrapblox/pkg/validation"
)

type cli struct {
	out       io.Writer
	client    *wrapblox.Client
	endpoints map[string]string
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "wrapblox",
		Short:         "Call Roblox web API endpoints from the command line",
		Long:          "wrapblox issues raw or typed calls against the Roblox web APIs.\nConfiguration is read from WRAPBLOX_* environment variables.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.connect()
		},
	}
	root.PersistentFlags().StringToStringVar(&c.endpoints, "endpoint", nil, "override an api group base URL (Group=URL), repeatable")

	root.AddCommand(c.getCmd(), c.listCmd(), c.userCmd(), c.badgeCmd(), c.groupCmd())
	return root
}

func (c *cli) connect() error {
	cfg, err := wrapblox.ConfigFromEnv()
	if err != nil {
		return err
	}
	if len(c.endpoints) > 0 {
		if cfg.Endpoints == nil {
			cfg.Endpoints = make(map[string]string, len(c.endpoints))
		}
		maps.Copy(cfg.Endpoints, c.endpoints)
	}

	client, err := wrapblox.NewClient(cfg)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

func (c *cli) getCmd() *cobra.Command {
	var (
		method  string
		query   []string
		data    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "get <group> <path>",
		Short: "Perform a single endpoint call and print the JSON body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseQuery(query)
			if err != nil {
				return err
			}
			opts := &types.RequestOptions{BypassCache: noCache, Query: params}
			if data != "" {
				var body any
				if err := json.Unmarshal([]byte(data), &body); err != nil {
					return fmt.Errorf("--data is not valid JSON: %w", err)
				}
				opts.Body = body
			}

			raw, err := c.client.FetchEndpoint(cmd.Context(), method, args[0], args[1], opts)
			if err != nil {
				return describe(err)
			}
			if raw == nil {
				return nil
			}
			return c.print(raw)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter as key=value, repeatable")
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the response cache")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var (
		query      []string
		maxResults int
		perPage    int
	)

	cmd := &cobra.Command{
		Use:   "list <group> <path>",
		Short: "Collect items from a paginated endpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseQuery(query)
			if err != nil {
				return err
			}
			items, err := c.client.FetchEndpointList(cmd.Context(), http.MethodGet, args[0], args[1],
				&types.RequestOptions{Query: params},
				&types.PagingPolicy{MaxResults: maxResults, PerPage: perPage})
			if err != nil {
				return describe(err)
			}
			return c.print(items)
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter as key=value, repeatable")
	cmd.Flags().IntVar(&maxResults, "max", 100, "maximum number of items")
	cmd.Flags().IntVar(&perPage, "per-page", types.PerPage100, "page size (10, 25, 50 or 100)")
	return cmd
}

func (c *cli) userCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <id|username>",
		Short: "Show an account by id or username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				user *types.User
				err  error
			)
			if id, convErr := strconv.ParseInt(args[0], 10, 64); convErr == nil {
				user, err = c.client.GetUser(cmd.Context(), id)
			} else if validation.IsValidUsername(args[0]) {
				user, err = c.client.LookupUser(cmd.Context(), args[0])
			} else {
				return fmt.Errorf("%q is neither a user id nor a valid username", args[0])
			}
			if err != nil {
				return describe(err)
			}
			return c.print(user)
		},
	}
}

func (c *cli) badgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "badge <id>",
		Short: "Show a badge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("badge id must be a number: %w", err)
			}
			badge, err := c.client.GetBadge(cmd.Context(), id)
			if err != nil {
				return describe(err)
			}
			return c.print(badge)
		},
	}
}

func (c *cli) groupCmd() *cobra.Command {
	var roles bool

	cmd := &cobra.Command{
		Use:   "group <id>",
		Short: "Show a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("group id must be a number: %w", err)
			}
			if roles {
				list, err := c.client.GetGroupRoles(cmd.Context(), id)
				if err != nil {
					return describe(err)
				}
				return c.print(list)
			}
			group, err := c.client.GetGroup(cmd.Context(), id)
			if err != nil {
				return describe(err)
			}
			return c.print(group)
		},
	}
	cmd.Flags().BoolVar(&roles, "roles", false, "list the group's roles instead")
	return cmd
}

func (c *cli) print(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(out))
	return err
}

func parseQuery(pairs []string) (types.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(types.Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("query parameter %q must be key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

// describe expands a RequestError into the upstream's error list.
func describe(err error) error {
	var reqErr *pkgerrs.RequestError
	if !errors.As(err, &reqErr) {
		return err
	}
	detail, fmtErr := reqErr.Format()
	if fmtErr != nil || detail == reqErr.Error() {
		return err
	}
	return fmt.Errorf("%w\n%s", err, detail)
}
