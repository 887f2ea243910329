// Command cmsctl runs operator tasks against the configured storage.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/deptsite/deptcms/config"
	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/record"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/internal/core/validation"
	"github.com/deptsite/deptcms/internal/storage"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "cmsctl",
		Usage: "Department CMS operator tools",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "driver", Usage: "override STORAGE_DRIVER", Sources: cli.EnvVars("CMSCTL_DRIVER")},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			resourcesCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply storage migrations and create unique indexes",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, reg, err := load(c)
			if err != nil {
				return err
			}
			store, err := storage.Open(ctx, &cfg.Storage, reg.All())
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(c.Root().Writer, "Storage %q is up to date\n", cfg.Storage.Driver)
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert demo content into empty resources",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "resource", Usage: "limit seeding to these resources"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, reg, err := load(c)
			if err != nil {
				return err
			}
			store, err := storage.Open(ctx, &cfg.Storage, reg.All())
			if err != nil {
				return err
			}
			defer store.Close()

			svc := record.NewService(reg, store, validation.NewValidator(), filter.NewCompiler(reg))
			n, err := seed(ctx, svc, demoContent, c.StringSlice("resource"), c.Root().Writer)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "Seeded %d records\n", n)
			return nil
		},
	}
}

func resourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "resources",
		Usage: "List registered resources and their fields",
		Action: func(ctx context.Context, c *cli.Command) error {
			reg, err := schema.Default()
			if err != nil {
				return err
			}
			return printResources(c.Root().Writer, reg)
		},
	}
}

func load(c *cli.Command) (*config.Config, *schema.Registry, error) {
	if driver := c.Root().String("driver"); driver != "" {
		os.Setenv("STORAGE_DRIVER", driver)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	config.SetupLogger(cfg.Log, os.Stderr)

	reg, err := schema.Default()
	if err != nil {
		return nil, nil, err
	}
	return cfg, reg, nil
}

func printResources(w io.Writer, reg *schema.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESOURCE\tLABEL\tREQUIRED\tUNIQUE\tCOUNTERS\tROUTES")
	for _, def := range reg.All() {
		var required, unique, counters []string
		for _, f := range def.Counters() {
			counters = append(counters, f.Name)
		}
		for _, f := range def.Fields {
			if f.Required {
				required = append(required, f.Name)
			}
			if f.Unique != "" {
				unique = append(unique, f.Name)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			def.Name, def.DisplayName(), join(required), join(unique), join(counters), join(extraRoutes(def)))
	}
	return tw.Flush()
}

func extraRoutes(def *schema.ResourceDefinition) []string {
	var routes []string
	if def.Featured != nil {
		routes = append(routes, "featured")
	}
	if def.Upcoming != nil {
		routes = append(routes, "upcoming")
	}
	if def.CategoryField != "" {
		routes = append(routes, "category")
	}
	if len(def.GroupBy) > 0 {
		routes = append(routes, "grouped")
	}
	if def.LikeCounter != "" {
		routes = append(routes, "like")
	}
	if def.ViewCounter != "" {
		routes = append(routes, "view")
	}
	if def.HardDelete {
		routes = append(routes, "permanent")
	}
	return routes
}

func join(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ",")
}
