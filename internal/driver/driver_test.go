package driver

import (
	"bytes"
	"io"
	"log/slog"
	"lox-lang/internal/diag"
	"lox-lang/internal/runtime"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSession(opts ...Option) (*Session, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return NewSession(&stdout, &stderr, opts...), &stdout, &stderr
}

func TestStatusExitCodes(t *testing.T) {
	require.Equal(t, 0, StatusOK.ExitCode())
	require.Equal(t, 65, StatusStaticError.ExitCode())
	require.Equal(t, 70, StatusRuntimeError.ExitCode())
	require.Equal(t, "runtime-error", StatusRuntimeError.String())
}

func TestRunOK(t *testing.T) {
	s, stdout, stderr := newTestSession()
	status, diags := s.Run(`print "hello";`)
	require.Equal(t, StatusOK, status)
	require.Empty(t, diags)
	require.Equal(t, "hello\n", stdout.String())
	require.Empty(t, stderr.String())
}

func TestStaticErrorSkipsExecution(t *testing.T) {
	s, stdout, stderr := newTestSession()
	status, diags := s.Run("print \"side effect\";\nprint ;")
	require.Equal(t, StatusStaticError, status)
	require.Len(t, diags, 1)
	require.Equal(t, diag.Parse, diags[0].Phase)
	require.Equal(t, "E2001", diags[0].Code)
	require.Empty(t, stdout.String())
	require.Equal(t, "[line 2] Error at ';': Expect expression.\n", stderr.String())
}

func TestResolveErrorSkipsExecution(t *testing.T) {
	s, stdout, _ := newTestSession()
	status, diags := s.Run(`print 1; { var a = a; }`)
	require.Equal(t, StatusStaticError, status)
	require.Len(t, diags, 1)
	require.Equal(t, diag.Resolve, diags[0].Phase)
	require.Empty(t, stdout.String())
}

func TestErrorStateResetsBetweenRuns(t *testing.T) {
	s, stdout, _ := newTestSession()

	status, _ := s.Run(`var x = ;`)
	require.Equal(t, StatusStaticError, status)

	status, diags := s.Run(`var x = 2; print x;`)
	require.Equal(t, StatusOK, status)
	require.Empty(t, diags)
	require.Equal(t, "2\n", stdout.String())
}

func TestRuntimeErrorKeepsEarlierState(t *testing.T) {
	s, stdout, stderr := newTestSession()

	status, _ := s.Run(`var total = 10; print total; total = total + nil;`)
	require.Equal(t, StatusRuntimeError, status)
	require.Equal(t, "Operands must be two numbers or two strings.\n[line 1]\n", stderr.String())

	status, _ = s.Run(`print total;`)
	require.Equal(t, StatusOK, status)
	require.Equal(t, "10\n10\n", stdout.String())
}

func TestCustomReporter(t *testing.T) {
	var seen []diag.Diagnostic
	s, _, stderr := newTestSession(WithReporter(func(w io.Writer, d diag.Diagnostic) {
		seen = append(seen, d)
		io.WriteString(w, "! "+d.Message+"\n")
	}))
	s.Run("@ print;")
	require.Len(t, seen, 2)
	require.Equal(t, diag.Scan, seen[0].Phase)
	require.Equal(t, "! Unexpected character: '@'\n! Expect expression.\n", stderr.String())
}

func TestLoggerReceivesPhases(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, _, _ := newTestSession(WithLogger(logger))

	status, _ := s.Run(`fun f() { return 1; } print f();`)
	require.Equal(t, StatusOK, status)
	out := logs.String()
	for _, msg := range []string{"msg=parsed", "msg=resolved", "msg=interpreted", `msg="function call"`, "function=f"} {
		require.Contains(t, out, msg)
	}
}

func TestRuntimeOptionsAndNatives(t *testing.T) {
	s, stdout, _ := newTestSession()
	s.Interpreter().DefineNative("answer", 0, func([]runtime.Value) (runtime.Value, error) {
		return runtime.NumberVal(42), nil
	})
	status, _ := s.Run(`print answer();`)
	require.Equal(t, StatusOK, status)
	require.Equal(t, "42\n", stdout.String())
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lox")
	require.NoError(t, os.WriteFile(path, []byte("print 6 * 7;\n"), 0o644))

	s, stdout, _ := newTestSession()
	status, err := s.RunFile(path)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	require.Equal(t, "42\n", stdout.String())

	_, err = s.RunFile(filepath.Join(dir, "missing.lox"))
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "read script:"))
}

func TestPanicBecomesInternalError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s, stdout, stderr := newTestSession(WithLogger(logger))
	s.Interpreter().DefineNative("boom", 0, func([]runtime.Value) (runtime.Value, error) {
		panic("boom")
	})

	status, diags := s.Run(`print "before"; boom();`)
	require.Equal(t, StatusRuntimeError, status)
	require.Len(t, diags, 1)
	require.Equal(t, "Internal error: boom", diags[0].Message)
	require.Equal(t, "before\n", stdout.String())
	require.Contains(t, stderr.String(), "Internal error: boom")
	require.Contains(t, logs.String(), `msg="internal error"`)
	require.Contains(t, logs.String(), "session="+s.ID)

	// The session is still usable.
	status, _ = s.Run(`print "after";`)
	require.Equal(t, StatusOK, status)
}

func TestSessionIDsAreUnique(t *testing.T) {
	a, _, _ := newTestSession()
	b, _, _ := newTestSession()
	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
}
