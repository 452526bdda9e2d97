package xargs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectCommand builds a command that appends one line per invocation
// (the joined appended arguments) to the returned file.
func collectCommand(t *testing.T) ([]string, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out")
	return []string{"/bin/sh", "-c", `printf '%s\n' "$*" >> ` + out, "sh"}, out
}

func outputLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestDoBatchesByMaxArgs(t *testing.T) {
	cmd, out := collectCommand(t)
	opts := &Options{Command: cmd, MaxArgs: 2}

	code := Do(opts, strings.NewReader("a b c"), zerolog.Nop())
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"a b", "c"}, outputLines(t, out))
}

func TestDoReplaceMode(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	nul := byte(0)
	opts := &Options{
		Command:   []string{"/bin/sh", "-c", `printf '[%s]\n' "$1" >> ` + out, "sh", "@"},
		Replace:   "@",
		Delimiter: &nul,
	}

	code := Do(opts, strings.NewReader("a\x00b\x00"), zerolog.Nop())
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"[a]", "[b]"}, outputLines(t, out))
}

func TestDoReplaceModeOneTokenPerBatch(t *testing.T) {
	cmd, out := collectCommand(t)
	opts := &Options{Command: append(cmd, "@"), Replace: "@"}

	code := Do(opts, strings.NewReader("one\ntwo\nthree\n"), zerolog.Nop())
	assert.Equal(t, ExitOK, code)
	assert.Len(t, outputLines(t, out), 3, "replace mode appends exactly one token per command")
}

func TestDoMaxLines(t *testing.T) {
	cmd, out := collectCommand(t)
	opts := &Options{Command: cmd, MaxLines: 1}

	code := Do(opts, strings.NewReader("a b\nc d\n"), zerolog.Nop())
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"a b", "c d"}, outputLines(t, out))
}

func TestDoEOFString(t *testing.T) {
	cmd, out := collectCommand(t)
	opts := &Options{Command: cmd, EOFString: "STOP"}

	code := Do(opts, strings.NewReader("a b STOP c"), zerolog.Nop())
	assert.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"a b"}, outputLines(t, out))
}

func TestDoEmptyInputRunsOnceUnlessSuppressed(t *testing.T) {
	cmd, out := collectCommand(t)

	code := Do(&Options{Command: cmd}, strings.NewReader(""), zerolog.Nop())
	assert.Equal(t, ExitOK, code)
	_, err := os.Stat(out)
	assert.NoError(t, err, "empty input still runs the command once")

	cmd2, out2 := collectCommand(t)
	code = Do(&Options{Command: cmd2, NoRunIfEmpty: true}, strings.NewReader(""), zerolog.Nop())
	assert.Equal(t, ExitOK, code)
	_, err = os.Stat(out2)
	assert.True(t, os.IsNotExist(err), "-r suppresses the empty invocation")
}

func TestDoExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		command []string
		want    int
	}{
		{"success", []string{"true"}, ExitOK},
		{"child fails", []string{"false"}, ExitChildFailed},
		{"urgent", []string{"/bin/sh", "-c", "exit 255"}, ExitUrgent},
		{"not found", []string{"definitely-not-a-command-xyzzy"}, ExitNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &Options{Command: tt.command}
			code := Do(opts, strings.NewReader("x"), zerolog.Nop())
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestDoParallelRunsEverything(t *testing.T) {
	cmd, out := collectCommand(t)
	opts := &Options{Command: cmd, MaxArgs: 1, Parallelism: 4}

	code := Do(opts, strings.NewReader("a b c d e f g h"), zerolog.Nop())
	assert.Equal(t, ExitOK, code)
	assert.Len(t, outputLines(t, out), 8)
}

func TestDoLargeInputBounded(t *testing.T) {
	// All batches stay within the system limit even for bulk input.
	var input strings.Builder
	for i := 0; i < 20000; i++ {
		input.WriteString("yyyyyyyy ")
	}
	opts := &Options{Command: []string{"true"}}
	code := Do(opts, strings.NewReader(input.String()), zerolog.Nop())
	assert.Equal(t, ExitOK, code)
}

func TestBuilderArgvAssembly(t *testing.T) {
	opts, err := NewBuilderOptions([]string{"echo", "pre"}, LimiterChain{})
	require.NoError(t, err)

	b := NewBuilder(opts)
	require.NoError(t, b.AddArg(hard("a")))
	require.NoError(t, b.AddArg(hard("b")))
	assert.Equal(t, []string{"echo", "pre", "a", "b"}, b.Argv())
}

func TestBuilderReplaceSubstitution(t *testing.T) {
	opts, err := NewBuilderOptions([]string{"cp", "@", "/dest/@"}, LimiterChain{})
	require.NoError(t, err)
	opts.Replace = "@"

	b := NewBuilder(opts)
	require.NoError(t, b.AddArg(hard("file.txt")))
	assert.Equal(t, []string{"cp", "file.txt", "/dest/file.txt"}, b.Argv())
}

func TestParseDelimiterEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  byte
		ok    bool
	}{
		{"x", 'x', true},
		{`\n`, '\n', true},
		{`\t`, '\t', true},
		{`\0`, 0, true},
		{`\\`, '\\', true},
		{`\x41`, 'A', true},
		{`\012`, '\n', true},
		{"ab", 0, false},
		{`\q`, 0, false},
	}
	for _, tt := range tests {
		got, err := ParseDelimiter(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("ParseDelimiter(%q) error = %v, ok %v", tt.input, err, tt.ok)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseDelimiter(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
