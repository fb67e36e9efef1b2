package builtin

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/phillarmonic/ushell/internal/exec"
	"github.com/phillarmonic/ushell/internal/job"
)

// signalByName maps the names `kill -s NAME`/`kill -NAME` accept to a
// syscall.Signal. Limited to signals syscall defines on every platform
// ushell targets; SIGSTOP/SIGCONT are handled separately via
// job.Manager's ResumeBackground/ResumeForeground.
func signalByName(name string) (syscall.Signal, bool) {
	switch strings.ToUpper(strings.TrimPrefix(name, "SIG")) {
	case "TERM":
		return syscall.SIGTERM, true
	case "KILL":
		return syscall.SIGKILL, true
	case "INT":
		return syscall.SIGINT, true
	case "HUP":
		return syscall.SIGHUP, true
	case "QUIT":
		return syscall.SIGQUIT, true
	default:
		return 0, false
	}
}

func builtinJobs(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	long := false
	for _, a := range args {
		if a == "-l" {
			long = true
		}
	}

	for _, j := range sh.Jobs().List() {
		marker := " "
		if j.ID == sh.Jobs().Foreground() {
			marker = "+"
		}
		if long {
			fmt.Fprintf(streams.Out, "[%d]%s %d  %-8s %s\n", j.ID, marker, j.PID, j.Status, j.Command)
		} else {
			fmt.Fprintf(streams.Out, "[%d]%s %-8s %s\n", j.ID, marker, j.Status, j.Command)
		}
	}
	return 0, nil
}

func builtinFg(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	designator := "%+"
	if len(args) > 0 {
		designator = args[0]
	}
	id, err := sh.Jobs().Resolve(designator)
	if err != nil {
		fmt.Fprintf(streams.Err, "fg: %s\n", err)
		return 1, nil
	}
	j, ok := sh.Jobs().Get(id)
	if !ok {
		fmt.Fprintf(streams.Err, "fg: %s: no such job\n", designator)
		return 1, nil
	}
	sh.Jobs().Touch(id)
	fmt.Fprintln(streams.Out, j.Command)
	if j.Status == job.StatusStopped {
		if err := sh.Jobs().ResumeForeground(id); err != nil {
			fmt.Fprintf(streams.Err, "fg: %s\n", err)
			return 1, nil
		}
		return 0, nil
	}
	sh.Jobs().SetForeground(id)
	return 0, nil
}

func builtinBg(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	designator := "%+"
	if len(args) > 0 {
		designator = args[0]
	}
	id, err := sh.Jobs().Resolve(designator)
	if err != nil {
		fmt.Fprintf(streams.Err, "bg: %s\n", err)
		return 1, nil
	}
	j, ok := sh.Jobs().Get(id)
	if !ok {
		fmt.Fprintf(streams.Err, "bg: %s: no such job\n", designator)
		return 1, nil
	}
	sh.Jobs().Touch(id)
	if err := sh.Jobs().ResumeBackground(id); err != nil {
		fmt.Fprintf(streams.Err, "bg: %s\n", err)
		return 1, nil
	}
	fmt.Fprintf(streams.Out, "[%d]+ %s &\n", j.ID, j.Command)
	return 0, nil
}

func builtinKill(args []string, streams exec.Streams, cwd string, sh Shell) (int, error) {
	sigName := "TERM"
	rest := args
	if len(args) >= 2 && args[0] == "-s" {
		sigName = args[1]
		rest = args[2:]
	} else if len(args) >= 1 && strings.HasPrefix(args[0], "-") && len(args[0]) > 1 {
		sigName = strings.TrimPrefix(args[0], "-")
		rest = args[1:]
	}

	sig, ok := signalByName(sigName)
	if !ok {
		fmt.Fprintf(streams.Err, "kill: unknown signal %s\n", sigName)
		return 1, nil
	}

	status := 0
	for _, designator := range rest {
		id, err := sh.Jobs().Resolve(designator)
		if err != nil {
			// Not a job designator. A bare number that is no job id is
			// reported as "no such job"; it is never sent to a process id.
			if _, perr := strconv.Atoi(strings.TrimPrefix(designator, "%")); perr == nil {
				fmt.Fprintf(streams.Err, "kill: %s: no such job\n", designator)
				status = 1
				continue
			}
			fmt.Fprintf(streams.Err, "kill: %s\n", err)
			status = 1
			continue
		}
		if _, ok := sh.Jobs().Get(id); !ok {
			fmt.Fprintf(streams.Err, "kill: %s: no such job\n", designator)
			status = 1
			continue
		}
		if err := sh.Jobs().SignalGroup(id, sig); err != nil {
			fmt.Fprintf(streams.Err, "kill: %s\n", err)
			status = 1
			continue
		}
		if sig == syscall.SIGTERM || sig == syscall.SIGKILL {
			if err := sh.Jobs().Terminate(id); err != nil {
				fmt.Fprintf(streams.Err, "kill: %s\n", err)
				status = 1
			}
		}
	}
	return status, nil
}
