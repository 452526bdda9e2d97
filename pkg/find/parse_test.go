package find

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParseArgsRootSplitting(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPaths []string
	}{
		{"no args", nil, []string{"."}},
		{"only expression", []string{"-print"}, []string{"."}},
		{"single root", []string{"/tmp"}, []string{"/tmp"}},
		{"multiple roots", []string{"/a", "/b", "-print"}, []string{"/a", "/b"}},
		{"dash is a root", []string{"-"}, []string{"-"}},
		{"double dash ends flags", []string{"--", "/a"}, []string{"/a"}},
		{"bang ends roots", []string{"/a", "!", "-name", "x"}, []string{"/a"}},
		{"paren ends roots", []string{"(", "-name", "x", ")"}, []string{"."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseArgs(tt.args, nil)
			if err != nil {
				t.Fatalf("ParseArgs(%v) failed: %v", tt.args, err)
			}
			if len(parsed.Paths) != len(tt.wantPaths) {
				t.Fatalf("paths = %v, want %v", parsed.Paths, tt.wantPaths)
			}
			for i := range tt.wantPaths {
				if parsed.Paths[i] != tt.wantPaths[i] {
					t.Errorf("paths = %v, want %v", parsed.Paths, tt.wantPaths)
				}
			}
		})
	}
}

func TestParseArgsFollowFlags(t *testing.T) {
	tests := []struct {
		args []string
		want Follow
	}{
		{[]string{"-print"}, FollowNever},
		{[]string{"-H", "-print"}, FollowRoots},
		{[]string{"-L", "-print"}, FollowAlways},
		{[]string{"-L", "-P", "-print"}, FollowNever},
		{[]string{"-follow"}, FollowAlways},
	}
	for _, tt := range tests {
		parsed, err := ParseArgs(tt.args, nil)
		if err != nil {
			t.Fatalf("ParseArgs(%v) failed: %v", tt.args, err)
		}
		if parsed.Config.Follow != tt.want {
			t.Errorf("ParseArgs(%v) follow = %v, want %v", tt.args, parsed.Config.Follow, tt.want)
		}
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown primary", []string{"-frobnicate"}, "unrecognized flag"},
		{"missing name arg", []string{"-name"}, "missing argument"},
		{"trailing not", []string{"-not"}, "expected an expression"},
		{"trailing bang", []string{"!"}, "expected an expression"},
		{"trailing and", []string{"-name", "x", "-a"}, "expected an expression"},
		{"leading and", []string{"-a", "-name", "x"}, "nothing before it"},
		{"leading or", []string{"-o", "-print"}, "nothing before it"},
		{"unclosed paren", []string{"(", "-name", "x"}, "expecting to find a ')'"},
		{"stray close paren", []string{"-name", "x", ")"}, "closing parentheses"},
		{"empty parens", []string{"(", ")"}, "empty parentheses"},
		{"exec without terminator", []string{"-exec", "echo"}, "missing argument"},
		{"ok with plus", []string{"-ok", "echo", "{}", "+"}, "missing argument"},
		{"bad maxdepth", []string{"-maxdepth", "soon"}, "positive decimal integer"},
		{"bad size suffix", []string{"-size", "5q"}, "suffix"},
		{"bad type", []string{"-type", "z"}, "type argument"},
		{"bad perm", []string{"-perm", "u+q"}, "invalid mode"},
		{"perm plus prefix", []string{"-perm", "+644"}, "'+' prefix"},
		{"bad regextype", []string{"-regextype", "pcre"}, "invalid regex type"},
		{"bad mtime", []string{"-mtime", "x"}, "decimal integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args, nil)
			if err == nil {
				t.Fatalf("ParseArgs(%v) should fail", tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseNewerMissingReference(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	for _, primary := range []string{"-newer", "-anewer", "-cnewer", "-samefile"} {
		if _, err := ParseArgs([]string{primary, missing}, nil); err == nil {
			t.Errorf("%s with a missing reference should be a syntax error", primary)
		}
	}
}

func TestParseDefaultPrintAppended(t *testing.T) {
	parsed, err := ParseArgs([]string{"-name", "x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Matcher.HasSideEffects() {
		t.Error("a tree without actions must get an implicit -print")
	}

	parsed, err = ParseArgs([]string{"-name", "x", "-print0"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	and, ok := parsed.Matcher.(*AndMatcher)
	if ok && len(and.subs) == 2 {
		if _, isPrinter := and.subs[1].(*Printer); isPrinter {
			// The tree already had an action; make sure the top level was
			// not wrapped a second time.
			if inner, ok := and.subs[0].(*AndMatcher); ok {
				for _, sub := range inner.subs {
					if _, doubled := sub.(*Printer); doubled {
						t.Error("print action duplicated")
					}
				}
			}
		}
	}
}

func TestParseDeleteImpliesDepth(t *testing.T) {
	parsed, err := ParseArgs([]string{"-delete"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Config.DepthFirst {
		t.Error("-delete must imply -depth")
	}
}

func TestParseGlobalOptions(t *testing.T) {
	parsed, err := ParseArgs([]string{"-mindepth", "2", "-maxdepth", "5", "-xdev", "-daystart"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg := parsed.Config
	if cfg.MinDepth != 2 || cfg.MaxDepth != 5 {
		t.Errorf("depth filters not recorded: %+v", cfg)
	}
	if !cfg.SameFileSystem || !cfg.TodayStart {
		t.Errorf("global options not recorded: %+v", cfg)
	}
}

func TestParseHelpIgnoresTrailingGarbage(t *testing.T) {
	parsed, err := ParseArgs([]string{"-help", "-frobnicate"}, nil)
	if err != nil {
		t.Fatalf("everything after -help must be ignored: %v", err)
	}
	if !parsed.Config.HelpRequested {
		t.Error("help not recorded")
	}
}

func TestParseExpressionStructure(t *testing.T) {
	config := DefaultConfig()
	m, err := BuildTopLevelMatcher([]string{"-true", "-o", "-false", ",", "-true"}, config, nil)
	if err != nil {
		t.Fatal(err)
	}
	// The comma is the weakest operator: the tree is a list of two OR
	// groups (plus the implicit print).
	and, ok := m.(*AndMatcher)
	if !ok {
		t.Fatalf("top level should be And(expr, print), got %T", m)
	}
	if _, ok := and.subs[0].(*ListMatcher); !ok {
		t.Errorf("comma should build a ListMatcher, got %T", and.subs[0])
	}
}
