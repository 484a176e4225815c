package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"machinery-service/internal/config"
	"machinery-service/internal/fileio"
	"machinery-service/internal/machinery/service"
	"machinery-service/internal/subsystem"
)

// app: состояние, общее для подкоманд; заполняется в PersistentPreRunE.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
	tables service.Tables
	canon  *service.Canonicalizer
	defs   []subsystem.Definition
}

// RootCommand собирает дерево команд. cfg: значения по умолчанию из окружения.
func RootCommand(cfg config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:           "machinery",
		Short:         "Vessel machinery name canonicalization and reconciliation",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfg.MachineryFile, "machinery-file", cfg.MachineryFile, "alias/critical tables (YAML), empty = built-in")
	pf.StringVar(&a.cfg.SubsystemsFile, "subsystems-file", cfg.SubsystemsFile, "subsystem catalog (YAML), empty = built-in")
	pf.StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.init()
	}

	rootCmd.AddCommand(
		canonicalizeCommand(a),
		reconcileCommand(a),
		overviewCommand(a),
		aliasesCommand(a),
		subsystemsCommand(a),
	)
	return rootCmd
}

func (a *app) init() error {
	a.logger = config.SetupCLILogger(a.cfg)

	tables, err := service.LoadTables(a.cfg.MachineryFile)
	if err != nil {
		return err
	}
	a.tables = tables
	a.canon = service.NewCanonicalizer(tables)
	if n := len(tables.Issues); n > 0 {
		a.logger.Debug().Int("issues", n).Msg("alias table loaded with issues")
	}

	defs, err := subsystem.LoadCatalog(a.cfg.SubsystemsFile)
	if err != nil {
		return err
	}
	a.defs = defs
	return nil
}

func (a *app) reconciler(threshold float64) *service.Reconciler {
	if threshold <= 0 || threshold > 1 {
		threshold = a.cfg.SuggestThreshold
	}
	return service.NewReconciler(a.canon, threshold)
}

func readWorkbook(path string, headerRow int) (fileio.Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileio.Workbook{}, err
	}
	defer f.Close()

	wb, err := fileio.ReadWorkbook(f, path, headerRow)
	if err != nil {
		return fileio.Workbook{}, fmt.Errorf("%s: %w", path, err)
	}
	return wb, nil
}

// readJobs: первый лист выгрузки работ.
func readJobs(path string, headerRow int) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := fileio.ReadAnyMaps(f, path, headerRow)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
