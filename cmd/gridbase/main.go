package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridbase/gridbase/internal/store"
	"github.com/gridbase/gridbase/internal/workspace"
	"github.com/gridbase/gridbase/pkg/config"
	gridjson "github.com/gridbase/gridbase/pkg/json"
	"github.com/gridbase/gridbase/pkg/logger"
	"github.com/gridbase/gridbase/pkg/model"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var configPath string
	var dataDir string
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "gridbase",
		Short: "gridbase - tabular database engine for notes",
		Long: `gridbase manages spreadsheet-like databases stored as one JSON file each:
typed columns, rows and saved views with filters, sorts and grouping.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := config.Load(configPath, &cfg); err != nil {
					return err
				}
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return logger.Init(logger.Config{
				Level:       cfg.Log.Level,
				Development: cfg.Log.Development,
				Encoding:    cfg.Log.Encoding,
			})
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the data directory")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gridbase %s\n", version)
		},
	})

	root.AddCommand(initCmd(&cfg))
	root.AddCommand(listCmd(&cfg))
	root.AddCommand(viewCmd(&cfg))
	root.AddCommand(addRowCmd(&cfg))
	root.AddCommand(exportCmd(&cfg))
	root.AddCommand(validateCmd(&cfg))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config) (*store.Store, error) {
	opts := []store.Option{}
	if cfg.Backups {
		opts = append(opts, store.WithBackups())
	}
	return store.New(cfg.DataDir, opts...)
}

func initCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init <title>",
		Short: "Create a new database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			ws, err := workspace.Create(st, args[0], workspace.WithIdentity(cfg.Identity))
			if err != nil {
				return err
			}
			fmt.Printf("created database %s (%q)\n", ws.DatabaseID(), args[0])
			return nil
		},
	}
}

func listCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List databases",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			summaries, err := st.List()
			if err != nil {
				return err
			}
			for _, s := range summaries {
				fmt.Printf("%s  %-24s %d columns, %d rows, %d views\n",
					s.ID, s.Title, s.Columns, s.Rows, s.Views)
			}
			return nil
		},
	}
}

func viewCmd(cfg *config.Config) *cobra.Command {
	var viewName string
	var search string

	cmd := &cobra.Command{
		Use:   "view <database-id>",
		Short: "Run a view's pipeline and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := open(cfg, args[0])
			if err != nil {
				return err
			}
			if viewName != "" {
				if err := activateByName(ws, viewName); err != nil {
					return err
				}
			}
			if search != "" {
				ws.SetSearchQuery(search)
			}

			printViewData(ws)
			return nil
		},
	}
	cmd.Flags().StringVar(&viewName, "view", "", "view name (default: the default view)")
	cmd.Flags().StringVar(&search, "search", "", "search query applied before filters")
	return cmd
}

func addRowCmd(cfg *config.Config) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "add-row <database-id>",
		Short: "Append a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := open(cfg, args[0])
			if err != nil {
				return err
			}

			initial := map[string]interface{}{}
			for _, set := range sets {
				name, value, ok := strings.Cut(set, "=")
				if !ok {
					return fmt.Errorf("bad --set %q, want name=value", set)
				}
				col, ok := ws.ColumnByName(name)
				if !ok {
					return fmt.Errorf("no column named %q", name)
				}
				initial[col.ID] = value
			}

			row, err := ws.AddRow(initial)
			if err != nil {
				return err
			}
			fmt.Printf("added row %s\n", row.ID)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "column value as name=value (repeatable)")
	return cmd
}

func exportCmd(cfg *config.Config) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <database-id>",
		Short: "Dump a database as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := open(cfg, args[0])
			if err != nil {
				return err
			}
			data, err := gridjson.MarshalIndent(ws.Database(), "", "  ")
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Println(string(data))
				return nil
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write to file instead of stdout")
	return cmd
}

func validateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <database-id>",
		Short: "Check a database's structural invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			db, err := st.Load(args[0])
			if err != nil {
				return err
			}
			result := model.Validate(db)
			if result.Valid {
				fmt.Println("ok")
				return nil
			}
			for _, msg := range result.Errors {
				fmt.Println(msg)
			}
			return fmt.Errorf("%d structural violations", len(result.Errors))
		},
	}
}

func open(cfg *config.Config, databaseID string) (*workspace.Workspace, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Open(st, databaseID, workspace.WithIdentity(cfg.Identity))
	if err != nil {
		logger.Error("failed to open workspace", zap.String("database_id", databaseID), zap.Error(err))
		return nil, err
	}
	return ws, nil
}

func activateByName(ws *workspace.Workspace, name string) error {
	for _, view := range ws.Views() {
		if view.Name == name {
			return ws.SetActiveView(view.ID)
		}
	}
	return fmt.Errorf("no view named %q", name)
}

func printViewData(ws *workspace.Workspace) {
	data := ws.ViewData()
	columns := ws.Columns()

	printRow := func(row model.Row) {
		parts := make([]string, 0, len(columns))
		for _, col := range columns {
			if !col.Visible {
				continue
			}
			parts = append(parts, fmt.Sprintf("%v", row.Data[col.ID]))
		}
		fmt.Println("  " + strings.Join(parts, " | "))
	}

	if data.GroupedRows != nil {
		for _, key := range data.GroupedRows.Keys() {
			fmt.Printf("%s:\n", key)
			for _, row := range data.GroupedRows.Rows(key) {
				printRow(row)
			}
		}
	} else {
		for _, row := range data.SortedRows {
			printRow(row)
		}
	}
	fmt.Printf("%d of %d rows\n", len(data.FilteredRows), data.TotalCount)
}
