/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/crudkit/database"
)

type rootOptions struct {
	configPath string
	envFiles   []string
	output     string
}

// NewRootCommand builds the operations CLI. Applications embedding it
// register their models with the database package before Execute so the
// tables command can create them.
func NewRootCommand(name string) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           name,
		Short:         "Inspect and bootstrap the crudkit database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("CRUDKIT_CONFIG"), "YAML config file")
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, ".env files loaded before the config")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")

	root.AddCommand(
		newHealthCommand(opts),
		newStatsCommand(opts),
		newTablesCommand(opts),
	)
	return root
}

func newHealthCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Ping the database and report pool usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context) error {
				status := database.GetHealthStatus(ctx)
				if err := opts.print(cmd.OutOrStdout(), status); err != nil {
					return err
				}
				if !status.Healthy {
					return fmt.Errorf("database unhealthy: %s", status.LastError)
				}
				return nil
			})
		},
	}
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print connection pool statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context) error {
				return opts.print(cmd.OutOrStdout(), database.GetDatabaseStats())
			})
		},
	}
}

func newTablesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Create missing tables for the registered models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), opts, func(ctx context.Context) error {
				tables, err := database.CreateTables(ctx)
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), map[string][]string{"tables": tables})
			})
		},
	}
}

func withDatabase(ctx context.Context, opts *rootOptions, fn func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := database.LoadConfig(opts.configPath, opts.envFiles...)
	if err != nil {
		return err
	}
	if _, err := database.InitDB(ctx, cfg); err != nil {
		return err
	}
	defer func() { _ = database.CloseDB() }()
	return fn(ctx)
}

func (o *rootOptions) print(w io.Writer, v interface{}) error {
	switch o.output {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
}
