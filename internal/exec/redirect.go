package exec

import (
	"io"
	"os"
	"path/filepath"

	"github.com/phillarmonic/ushell/internal/fsutil"
	"github.com/phillarmonic/ushell/internal/redir"
)

// applyRedirections opens every file a stage's redirections name and
// returns the Streams to run that stage against, plus a cleanup
// closing whatever was opened. Redirections are applied in source
// order, so a later clause for the same fd wins, matching Extract's
// documented ordering. Targets go through fsutil so tests can swap in
// an in-memory filesystem instead of the real one.
func applyRedirections(base Streams, cwd string, redirs []redir.Redirection) (Streams, func(), error) {
	s := base
	var opened []io.Closer
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	resolve := func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(cwd, path)
	}

	for _, r := range redirs {
		switch r.Direction {
		case redir.DirIn:
			f, err := fsutil.OpenFile(resolve(r.Target), os.O_RDONLY, 0)
			if err != nil {
				cleanup()
				return Streams{}, nil, err
			}
			opened = append(opened, f)
			s.In = f

		case redir.DirOut, redir.DirErr:
			f, err := fsutil.OpenFile(resolve(r.Target), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				cleanup()
				return Streams{}, nil, err
			}
			opened = append(opened, f)
			if r.Direction == redir.DirErr {
				s.Err = f
			} else {
				s.Out = f
			}

		case redir.DirAppend, redir.DirErrAppend:
			f, err := fsutil.OpenFile(resolve(r.Target), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
			if err != nil {
				cleanup()
				return Streams{}, nil, err
			}
			opened = append(opened, f)
			if r.Direction == redir.DirErrAppend {
				s.Err = f
			} else {
				s.Out = f
			}

		case redir.DirBoth:
			f, err := fsutil.OpenFile(resolve(r.Target), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				cleanup()
				return Streams{}, nil, err
			}
			opened = append(opened, f)
			s.Out = f
			s.Err = f
		}
	}

	return s, cleanup, nil
}
