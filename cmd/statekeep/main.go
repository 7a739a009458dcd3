package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"statekeep/internal/capability"
	"statekeep/internal/capture"
	"statekeep/internal/fsutil"
	"statekeep/internal/logging"
	"statekeep/internal/paths"
	"statekeep/internal/profile"
	"statekeep/internal/report"
	"statekeep/internal/restore"
	"statekeep/internal/secrets"
	"statekeep/internal/statedoc"
	"statekeep/internal/targetlock"
	"statekeep/internal/template"
	"statekeep/internal/tui"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) <= 1 {
		runTUI()
		return
	}

	command := strings.ToLower(os.Args[1])
	if handler, ok := commandHandlers()[command]; ok {
		handler()
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
	printUsage()
	os.Exit(1)
}

func commandHandlers() map[string]func() {
	return map[string]func(){
		"backup":    func() { runBackup() },
		"restore":   func() { runRestore() },
		"validate":  func() { runValidate() },
		"templates": runTemplates,
		"resolve":   func() { runResolve() },
		"version":   runVersion,
		"help":      printUsage,
		"--help":    printUsage,
		"-h":        printUsage,
	}
}

// env holds everything the commands derive from the environment and the
// effective shared/machine configuration profile
type env struct {
	logger      *logging.Logger
	storageRoot string
	templateDir string
	machineID   string
	workers     int
	keys        *secrets.KeyCache
}

func newEnv() *env {
	storageRoot := fsutil.StorageRoot(fsutil.DefaultStorageRoot)

	machineID := os.Getenv("STATEKEEP_MACHINE_ID")
	if machineID == "" {
		if hostname, err := os.Hostname(); err == nil {
			machineID = hostname
		} else {
			machineID = "localhost"
		}
	}

	// Shared baseline with machine-specific overrides; env vars win over both
	effective, err := profile.LoadEffective(storageRoot, machineID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring stored config: %v\n", err)
		effective = profile.ConfigProfile{}
	}

	logLevel := os.Getenv("STATEKEEP_LOG_LEVEL")
	if logLevel == "" {
		logLevel, _ = effective.Get("log_level")
	}
	logger := logging.NewLogger(logging.ParseLevel(logLevel))

	templateDir := os.Getenv("STATEKEEP_TEMPLATE_DIR")
	if templateDir == "" {
		if configured, ok := effective.Get("template_dir"); ok {
			templateDir = configured
		} else {
			templateDir = filepath.Join(storageRoot, "templates")
		}
	}

	workers := capture.DefaultWorkers
	if configured, ok := effective.Get("workers"); ok {
		if parsed, err := strconv.Atoi(configured); err == nil && parsed > 0 {
			workers = parsed
		}
	}

	keys := secrets.NewKeyCache(logger)
	if secret := os.Getenv("STATEKEEP_SECRET"); secret != "" {
		keys.Init([]byte(secret), capture.DefaultKeyID)
	}

	return &env{
		logger:      logger,
		storageRoot: storageRoot,
		templateDir: templateDir,
		machineID:   machineID,
		workers:     workers,
		keys:        keys,
	}
}

// capabilities returns the capability set available to this process. Only the
// file capability ships with the core; registry and application-setting
// bindings are supplied by platform collaborators.
func (e *env) capabilities() capability.Set {
	return capability.Set{
		File: capability.NewFileAccess(),
	}
}

// loadTemplate resolves a command argument to a template document: either a
// direct file path or a name looked up in the template directory.
func (e *env) loadTemplate(arg string) (*template.Template, error) {
	if fsutil.FileExists(arg) {
		return template.LoadFile(arg)
	}
	return template.LoadFile(filepath.Join(e.templateDir, arg+".yaml"))
}

func runBackup(args ...string) {
	argv := cliArgs(args)
	if len(argv) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: statekeep backup <template>")
		os.Exit(1)
	}

	e := newEnv()
	defer e.keys.Clear()

	tpl, err := e.loadTemplate(argv[0])
	if err != nil {
		fatal(err)
	}

	engine := capture.NewEngine(e.capabilities(), e.keys, e.logger)
	opts := capture.DefaultOptions(e.machineID)
	opts.Workers = e.workers
	doc, result, err := engine.Run(context.Background(), tpl, opts)
	if err != nil {
		fatal(err)
	}

	store := statedoc.NewStore(paths.NewResolver(e.storageRoot), e.logger)
	if err := store.Save(doc, tpl.Scope); err != nil {
		fatal(err)
	}

	printResult(result)
	exitForResult(e, result)
}

func runRestore(args ...string) {
	argv := cliArgs(args)
	if len(argv) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: statekeep restore <template>")
		os.Exit(1)
	}

	e := newEnv()
	defer e.keys.Clear()

	tpl, err := e.loadTemplate(argv[0])
	if err != nil {
		fatal(err)
	}

	store := statedoc.NewStore(paths.NewResolver(e.storageRoot), e.logger)
	doc, err := store.Load(tpl.Name, tpl.Scope, e.machineID)
	if err != nil {
		fatal(err)
	}

	orchestrator := restore.NewOrchestrator(e.capabilities(), e.keys, targetlock.NewRegistry(), e.logger)
	opts := restore.DefaultOptions()
	opts.Workers = e.workers
	result, err := orchestrator.Run(context.Background(), tpl, doc, opts)
	if err != nil {
		fatal(err)
	}

	printResult(result)
	exitForResult(e, result)
}

func runValidate(args ...string) {
	argv := cliArgs(args)
	if len(argv) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: statekeep validate <template>")
		os.Exit(1)
	}

	e := newEnv()
	tpl, err := e.loadTemplate(argv[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ template %q (version %d, %s scope, %d rules) is valid\n",
		tpl.Name, tpl.Version, tpl.Scope, len(tpl.Rules))
}

func runTemplates() {
	e := newEnv()

	files, err := template.ListDir(e.templateDir)
	if err != nil {
		fatal(err)
	}
	if len(files) == 0 {
		fmt.Printf("No templates found in %s\n", e.templateDir)
		return
	}

	for _, file := range files {
		tpl, err := template.LoadFile(file)
		if err != nil {
			fmt.Printf("✗ %s — %v\n", filepath.Base(file), err)
			continue
		}
		fmt.Printf("✓ %s (version %d, %s scope, %d rules)\n", tpl.Name, tpl.Version, tpl.Scope, len(tpl.Rules))
	}
}

func runResolve(args ...string) {
	argv := cliArgs(args)
	if len(argv) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: statekeep resolve <logical-path> <shared|machine> [machine-id]")
		os.Exit(1)
	}

	e := newEnv()
	machineID := e.machineID
	if len(argv) > 2 {
		machineID = argv[2]
	}

	resolver := paths.NewResolver(e.storageRoot)
	physical, err := resolver.Resolve(argv[0], paths.Scope(argv[1]), machineID)
	if err != nil {
		fatal(err)
	}

	fmt.Println(physical)
}

func runVersion() {
	fmt.Printf("statekeep version %s\n", version)
}

func runTUI() {
	e := newEnv()

	model := tui.NewModel(e.logger, e.templateDir, nil)
	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		fatal(fmt.Errorf("TUI failed: %w", err))
	}
}

func printResult(result *report.Result) {
	symbol := "✓"
	if !result.Completed() {
		symbol = "⚠"
	}
	fmt.Printf("%s %s\n", symbol, result.Summary())
	for _, failure := range result.Failures {
		fmt.Printf("  ✗ %s: %s\n", failure.RuleID, failure.Reason)
	}
}

// exitForResult ends the process with exit code 2 on partial failure. os.Exit
// skips deferred calls, so the key cache is cleared here explicitly.
func exitForResult(e *env, result *report.Result) {
	if !result.Completed() {
		e.keys.Clear()
		os.Exit(2)
	}
}

// cliArgs returns the arguments after the command word, letting handlers be
// invoked both from the dispatch map and directly in tests.
func cliArgs(override []string) []string {
	if len(override) > 0 {
		return override
	}
	if len(os.Args) > 2 {
		return os.Args[2:]
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`statekeep — template-driven configuration backup and restore

Usage: statekeep <command> [arguments]

Commands:
  backup <template>                     Capture the template's rules into a state document
  restore <template>                    Replay the persisted state document onto this machine
  validate <template>                   Load and validate a template document
  templates                             List templates in the template directory
  resolve <path> <scope> [machine-id]   Show the physical location of a logical path
  version                               Show version
  help                                  Show this help

Run without arguments to open the interactive menu.

Environment:
  STATEKEEP_STORAGE_ROOT   Storage tree root (default /var/lib/statekeep)
  STATEKEEP_TEMPLATE_DIR   Template directory (default <root>/templates)
  STATEKEEP_MACHINE_ID     Machine identity (default hostname)
  STATEKEEP_SECRET         Secret for the encryption key; required for sensitive rules
  STATEKEEP_LOG_LEVEL      debug | info | warn | error (default info)`)
}
