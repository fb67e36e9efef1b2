// Package app holds the ushell CLI's cobra root command: flag parsing,
// REPL/`-c`/script-file dispatch, and the version/completion
// subcommands, grounded on the teacher's cmd/drun/app/cli.go structure.
package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phillarmonic/ushell/internal/builtin"
	"github.com/phillarmonic/ushell/internal/config"
	"github.com/phillarmonic/ushell/internal/exec"
	"github.com/phillarmonic/ushell/internal/job"
	"github.com/phillarmonic/ushell/internal/shell"
)

// App is the ushell CLI application.
type App struct {
	version string
	commit  string
	date    string

	rootCmd *cobra.Command

	configFile string
	command    string
	noRC       bool
	sandbox    string
	showVer    bool
}

// NewApp creates the CLI application and its cobra command tree.
func NewApp(version, commit, date string) *App {
	a := &App{version: version, commit: commit, date: date}

	a.rootCmd = &cobra.Command{
		Use:   "ushell [script]",
		Short: "ushell - a POSIX-flavored command shell",
		Long: `ushell is an interactive POSIX-flavored command shell.

Invoked with no arguments it starts an interactive read-eval-print loop.
Given a script file argument, it runs that script and exits. Given -c,
it runs the supplied line and exits.

Examples:
  ushell                      # start an interactive session
  ushell -c 'echo hello'      # run one line and exit
  ushell myscript.sh          # run a script file and exit`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.run,
	}

	a.setupFlags()
	a.setupCommands()
	return a
}

func (a *App) setupFlags() {
	flags := a.rootCmd.Flags()
	flags.StringVarP(&a.configFile, "rc", "", "", "path to an rc file (default: ~/.ushellrc.yml)")
	flags.BoolVarP(&a.noRC, "norc", "", false, "skip loading any rc file")
	flags.StringVarP(&a.command, "command", "c", "", "run this line non-interactively and exit")
	flags.StringVarP(&a.sandbox, "sandbox-mode", "", "", "override the configured command-substitution mode (sandboxed|full)")
	flags.BoolVarP(&a.showVer, "version", "v", false, "print version information and exit")
}

func (a *App) setupCommands() {
	a.rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ShowVersion(a.version, a.commit, a.date)
		},
	})
	a.rootCmd.AddCommand(&cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 "Generate a shell completion script",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.ExactValidArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	})
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

func (a *App) loadConfig() (*config.Config, string, error) {
	if a.noRC {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return nil, "", err
	}
	if a.sandbox != "" {
		cfg.SubstitutionMode = a.sandbox
	}
	return cfg, a.configFile, nil
}

func (a *App) run(cmd *cobra.Command, args []string) error {
	if a.showVer {
		return ShowVersion(a.version, a.commit, a.date)
	}

	cfg, cfgPath, err := a.loadConfig()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}

	streams := exec.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	sh := shell.New(cfg, cfgPath, cwd, streams)
	sh.AttachBuiltins(builtin.New(sh))

	if !a.noRC {
		if err := sourceIfSet(sh, cfg.RCFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if err := sourceIfSet(sh, cfg.AliasesFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	switch {
	case a.command != "":
		return runAndExit(sh.RunLine(a.command))
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading script %q: %w", args[0], err)
		}
		return runAndExit(sh.RunScript(string(data)))
	default:
		return runREPL(sh, a.version)
	}
}

// sourceIfSet runs path as a script against sh if path is non-empty,
// the mechanism an rc file or an alias file (loaded directly or
// extracted from a config-driven profile bundle) gets sourced at
// startup through.
func sourceIfSet(sh *shell.Shell, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}
	if _, err := sh.RunScript(string(data)); err != nil {
		return fmt.Errorf("sourcing %q: %w", path, err)
	}
	return nil
}

// runAndExit reports err to stderr (if non-nil) and exits the process
// with exit, matching the executor's documented exit-code convention.
func runAndExit(exitCode int, err error) error {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode)
	return nil
}

// runREPL drives an interactive read-eval-print loop over stdin. Line
// editing, history navigation, and prompt theming are deliberately
// external concerns (see spec.md's Non-goals); this loop only reads a
// line, hands it to the shell, and reports the result.
func runREPL(sh *shell.Shell, version string) error {
	if isTerminal(os.Stdin) {
		PrintBanner(version)
	}

	stop := make(chan struct{})
	defer close(stop)
	sh.Jobs().StartMonitor(stop, func(j *job.Job) {
		fmt.Fprintf(os.Stdout, "\n[%d]+  Done                    %s\n", j.ID, j.Command)
	})

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, prompt(sh))
		raw, err := reader.ReadString('\n')
		line := strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(line) != "" {
			sh.History().Add(line)
			if _, runErr := sh.RunLine(line); runErr != nil {
				fmt.Fprintln(os.Stderr, runErr)
			}
		}
		if err == io.EOF {
			fmt.Fprintln(os.Stdout)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func prompt(sh *shell.Shell) string {
	return sh.CWD() + " $ "
}
