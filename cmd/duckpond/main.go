// Command duckpond is an interactive shell for a DuckDB engine subprocess.
//
// Usage:
//
//	duckpond [flags]
//
// Flags:
//
//	--database   database locator (default from config, else :memory:)
//	--engine     path to the engine binary (default: duckdb from PATH)
//	--readonly   open the database read-only
//	--json       print query results as JSON instead of a table
//	--config     path to YAML config (default: ~/.duckpond.yaml)
//	--log-level  debug|info|warn|error
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/duckpond/duckpond"
	"github.com/duckpond/duckpond/internal/pkg/config"
	"github.com/duckpond/duckpond/internal/pkg/logging"
	"github.com/duckpond/duckpond/internal/pkg/util"
	"github.com/duckpond/duckpond/pkg/duckerr"
)

const cliName string = "duckpond"

var errorColor = color.New(color.FgRed, color.Bold)

func printPrompt() {
	fmt.Print(cliName, "> ")
}

type metaCommand int

const (
	Unknown metaCommand = iota + 1
	Help
	Exit
	ListTables
	ModeTable
	ModeJSON
)

func isMetaCommand(inputBuffer string) bool {
	return len(inputBuffer) > 0 && inputBuffer[:1] == "."
}

func doMetaCommand(inputBuffer string) metaCommand {
	switch strings.ToLower(inputBuffer) {
	case "help":
		return Help
	case "exit", "quit":
		return Exit
	case "tables":
		return ListTables
	case "mode table":
		return ModeTable
	case "mode json":
		return ModeJSON
	default:
		return Unknown
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".duckpond.yaml")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		databaseFlag = pflag.String("database", "", "database locator (file path or :memory:)")
		engineFlag   = pflag.String("engine", "", "path to the engine binary")
		readOnlyFlag = pflag.Bool("readonly", false, "open the database read-only")
		jsonFlag     = pflag.Bool("json", false, "print query results as JSON")
		configFlag   = pflag.String("config", defaultConfigPath(), "path to YAML config file")
		levelFlag    = pflag.String("log-level", "", "log level: debug|info|warn|error")
	)
	pflag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
		os.Exit(1)
	}
	if pflag.CommandLine.Changed("database") {
		cfg.Database = *databaseFlag
	}
	if pflag.CommandLine.Changed("engine") {
		cfg.Engine = *engineFlag
	}
	if pflag.CommandLine.Changed("readonly") {
		cfg.ReadOnly = *readOnlyFlag
	}
	if pflag.CommandLine.Changed("log-level") {
		cfg.LogLevel = *levelFlag
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" && !pflag.CommandLine.Changed("log-level") {
		cfg.LogLevel = level
	}

	logConf := logging.ConsoleConfig()
	l, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s invalid log level %q\n", errorColor.Sprint("Error:"), cfg.LogLevel)
		os.Exit(1)
	}
	logConf.Level = zap.NewAtomicLevelAt(l)

	logger, err := logConf.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // flushes buffer, if any

	conn, err := duckpond.Open(cfg.Database,
		duckpond.WithBinary(cfg.Engine),
		duckpond.WithReadOnly(cfg.ReadOnly),
		duckpond.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
		os.Exit(1)
	}

	jsonMode := *jsonFlag

	wg := new(sync.WaitGroup)
	wg.Add(1)

	go func() {
		defer wg.Done()
		reader := bufio.NewScanner(os.Stdin)
		printPrompt()

		// REPL (Read-eval-print loop) start
		for reader.Scan() {
			if ctx.Err() != nil {
				break
			}

			inputBuffer := strings.TrimSpace(reader.Text())
			switch {
			case inputBuffer == "":
			case isMetaCommand(inputBuffer):
				switch doMetaCommand(inputBuffer[1:]) {
				case Help:
					fmt.Println(".help        - Show available commands")
					fmt.Println(".exit        - Closes program")
					fmt.Println(".tables      - List all tables in the current database")
					fmt.Println(".mode table  - Print results as an ASCII table")
					fmt.Println(".mode json   - Print results as JSON")
				case Exit:
					// Return exits with code 0 by default, os.Exit(0)
					// would exit immediately without any defers
					return
				case ListTables:
					rows, err := conn.FetchAll(ctx, "SHOW TABLES")
					if err != nil {
						printError(err)
						break
					}
					for _, aRow := range rows {
						if name, ok := aRow["name"]; ok {
							fmt.Println(name)
						}
					}
				case ModeTable:
					jsonMode = false
				case ModeJSON:
					jsonMode = true
				case Unknown:
					fmt.Printf("Unrecognized meta command: %s\n", inputBuffer)
				}
			default:
				result, err := conn.Execute(ctx, inputBuffer)
				if err != nil {
					printError(err)
					break
				}
				printResult(result, jsonMode)
			}
			printPrompt()
		}
		// Print an additional line if we encountered an EOF character
		fmt.Println()
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
	case <-done:
	}

	if err := conn.Close(); err != nil {
		fmt.Printf("error closing connection: %s\n", err)
	}

	cancel()
}

func printError(err error) {
	var typed *duckerr.Error
	if errors.As(err, &typed) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorColor.Sprintf("%s Error:", typed.Kind), typed.Message)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", errorColor.Sprint("Error:"), err)
}

func printResult(result *duckpond.QueryResult, jsonMode bool) {
	rows := result.FetchAll()
	if len(rows) == 0 {
		fmt.Println("OK")
		return
	}

	if jsonMode {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		plain := make([]map[string]any, 0, len(rows))
		for _, aRow := range rows {
			record := make(map[string]any, len(aRow))
			for name, value := range aRow {
				if value.Valid {
					record[name] = value.Value
				} else {
					record[name] = nil
				}
			}
			plain = append(plain, record)
		}
		if err := enc.Encode(plain); err != nil {
			printError(err)
		}
		return
	}

	columns := result.Columns()
	cells := make([][]string, 0, len(rows))
	for _, aRow := range rows {
		line := make([]string, 0, len(columns))
		for _, name := range columns {
			line = append(line, aRow[name].String())
		}
		cells = append(cells, line)
	}
	util.PrintTable(os.Stdout, columns, cells)
	fmt.Printf("%d row(s)\n", result.RowCount())
}
