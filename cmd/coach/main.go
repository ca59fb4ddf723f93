// Package main provides the coach CLI: command-line and terminal interfaces
// for training administration.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mesh-intelligence/coach/internal/logging"
	"github.com/mesh-intelligence/coach/internal/paths"
	"github.com/mesh-intelligence/coach/pkg/billing"
	"github.com/mesh-intelligence/coach/pkg/dbcmd"
	"github.com/mesh-intelligence/coach/pkg/framework"
	"github.com/mesh-intelligence/coach/pkg/training"
	"github.com/mesh-intelligence/coach/pkg/tui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	c, err := buildContext()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	resp, err := c.Execute(joinArgs(args))
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return 1
	}
	if text, ok := resp.Text(); ok {
		fmt.Println(text)
	}

	// The tui command installs the Tui resource; the session runs after the
	// command itself has completed.
	if framework.HasResource[tui.Tui](c) {
		if err := tui.Run(c); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	return 0
}

func buildContext() (*framework.Context, error) {
	configDir, err := paths.ResolveConfigDir("")
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.GetString(cfgKeyLogLevel), cfg.GetString(cfgKeyLogFile))
	if err != nil {
		return nil, err
	}

	c := framework.New()
	c.SetLogger(logger)
	if cfg.GetBool(cfgKeyInMemory) {
		c.InMemoryDB(true)
	}
	dataDir, err := paths.ResolveDataDir("", cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	c.SetDataDir(dataDir)

	// DbCommandsPlugin goes last so its tab kinds can register against the
	// catalog the TuiPlugin installs.
	for _, p := range []framework.Plugin{
		tui.TuiPlugin{},
		billing.InvoicePlugin{},
		training.TrainingPlugin{},
		dbcmd.DbCommandsPlugin{},
	} {
		if err := c.AddPlugin(p); err != nil {
			return nil, err
		}
	}

	if err := c.Startup(); err != nil {
		return nil, err
	}
	return c, nil
}

// joinArgs reassembles argv into one command string, quoting arguments the
// tokenizer would otherwise split.
func joinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsAny(arg, " \t\"'") {
			quoted[i] = `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
		} else {
			quoted[i] = arg
		}
	}
	return strings.Join(quoted, " ")
}
