// Package workspace writes resolved file intents to disk.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/pplxchat/internal/action"
	chaterr "github.com/abdul-hamid-achik/pplxchat/internal/errors"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
)

var log = logger.WithPrefix("workspace")

// ErrDismissed is returned by a Confirmer when the question went away
// without an answer (dialog closed, client disconnected). It counts as "no".
var ErrDismissed = errors.New("confirmation dismissed")

// Confirmer asks whether an existing file may be overwritten.
type Confirmer interface {
	Confirm(ctx context.Context, path string) (bool, error)
}

// Opener surfaces a freshly written file to the user.
type Opener interface {
	Open(ctx context.Context, path, content string) error
}

// Outcome describes what Materialize did.
type Outcome struct {
	Path        string
	Created     bool
	Overwritten bool
	Declined    bool
}

// Written reports whether file content was changed
func (o Outcome) Written() bool {
	return o.Created || o.Overwritten
}

// Options configure a Materializer
type Options struct {
	Roots          []string
	RestrictToRoot bool
}

// Materializer turns an action.Intent into a file on disk
type Materializer struct {
	roots   []string
	guard   *Guard
	confirm Confirmer
	opener  Opener
}

// New creates a materializer. A nil confirmer refuses every overwrite and a
// nil opener does nothing.
func New(opts Options, confirm Confirmer, opener Opener) (*Materializer, error) {
	m := &Materializer{
		roots:   opts.Roots,
		confirm: confirm,
		opener:  opener,
	}
	if m.confirm == nil {
		m.confirm = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
	}
	if m.opener == nil {
		m.opener = NopOpener{}
	}

	if opts.RestrictToRoot {
		root := ""
		if len(opts.Roots) > 0 {
			root = opts.Roots[0]
		}
		g, err := NewGuard(root)
		if err != nil {
			return nil, chaterr.PathResolutionFailed(root, err)
		}
		m.guard = g
	}
	return m, nil
}

// Resolve returns the absolute target path for a filename. A bare name (no
// path separator of either kind) lands in the first workspace root.
func (m *Materializer) Resolve(filename string) (string, error) {
	name := filename
	if !strings.ContainsAny(name, `/\`) && len(m.roots) > 0 {
		name = filepath.Join(m.roots[0], name)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", chaterr.PathResolutionFailed(filename, err)
	}
	if m.guard != nil {
		if err := m.guard.CheckWrite(abs); err != nil {
			return "", chaterr.PathResolutionFailed(filename, err)
		}
	}
	return abs, nil
}

// Materialize writes intent.Code to the resolved path. An existing file is
// only replaced after the Confirmer agrees; a "no", a dismissal or a context
// cancellation while waiting yields Outcome{Declined: true} and a nil error.
func (m *Materializer) Materialize(ctx context.Context, intent action.Intent) (Outcome, error) {
	path, err := m.Resolve(intent.Filename)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Path: path}

	info, err := os.Lstat(path)
	switch {
	case err == nil:
		if info.IsDir() {
			return out, chaterr.WriteFailed(path, fmt.Errorf("%s is a directory", path))
		}
		ok, err := m.confirm.Confirm(ctx, path)
		if err != nil {
			if errors.Is(err, ErrDismissed) || ctx.Err() != nil {
				log.Debug("overwrite of %s dismissed: %v", path, err)
				out.Declined = true
				return out, nil
			}
			return out, chaterr.ConfirmationFailed(path, err)
		}
		if !ok {
			log.Info("kept existing file %s", path)
			out.Declined = true
			return out, nil
		}
		out.Overwritten = true
	case os.IsNotExist(err):
		out.Created = true
	default:
		return out, chaterr.WriteFailed(path, err)
	}

	if err := m.write(path, intent.Code); err != nil {
		return Outcome{Path: path}, chaterr.WriteFailed(path, err)
	}
	log.Info("wrote %s (%d bytes, %s)", path, len(intent.Code), intent.Origin)

	if err := m.opener.Open(ctx, path, intent.Code); err != nil {
		// the file is on disk; failing to show it is not a failed action
		log.Warn("%s", chaterr.GetUserMessage(chaterr.OpenFailed(path, err)))
	}
	return out, nil
}

func (m *Materializer) write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if m.guard == nil {
		return os.WriteFile(path, []byte(content), 0644)
	}

	f, err := openNoFollow(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644, m.guard.Root())
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, path string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, path string) (bool, error) {
	return f(ctx, path)
}
