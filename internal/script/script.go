// Package script runs Lua macros against an editor session.
//
// A State embeds a gopher-lua interpreter with only the base, table,
// string and math libraries opened. Scripts drive the editor through the
// global editor module:
//
//	editor.format("bold")
//	editor.type("Hello")
//	editor.heading("h2")
//	editor.table(2, 3)
//	print(editor.markup())
//
// Validation failures of editor operations are raised as Lua errors, so
// a script can guard them with pcall. No-op operations return false.
package script

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richtext/internal/engine"
	"github.com/dshills/richtext/internal/logging"
)

// ModuleName is the global the editor API is registered under.
const ModuleName = "editor"

// State is a sandboxed Lua interpreter bound to one editor.
//
// gopher-lua states are not goroutine-safe; the mutex serializes scripts
// run from different goroutines.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	editor *engine.Editor
	log    *logging.Logger
	closed bool
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger used for script diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a state whose editor module drives ed.
func New(ed *engine.Editor, opts ...Option) (*State, error) {
	if ed == nil {
		return nil, ErrNoEditor
	}
	s := &State{editor: ed, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("script")

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.register()
	return s, nil
}

// openSafeLibraries opens the libraries that cannot reach the host.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString runs a chunk of Lua. Cancelling ctx aborts the script.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func() error {
		return s.L.DoString(code)
	})
}

// DoFile reads and runs a Lua file.
func (s *State) DoFile(ctx context.Context, path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return s.run(ctx, func() error {
		fn, err := s.L.Load(bytes.NewReader(code), path)
		if err != nil {
			return err
		}
		s.L.Push(fn)
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

func (s *State) run(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	if err := doWithRecovery(fn); err != nil {
		s.log.Warn("script failed: %v", err)
		return err
	}
	return nil
}

// doWithRecovery turns panics from the interpreter into errors.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// GetGlobal returns a global variable, or LNil once closed.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// Close releases the interpreter. It does not close the editor.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
