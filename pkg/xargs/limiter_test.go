package xargs

import "testing"

func hard(s string) Argument { return Argument{Text: s, Kind: ArgHardTerminated} }
func soft(s string) Argument { return Argument{Text: s, Kind: ArgSoftTerminated} }
func initial(s string) Argument { return Argument{Text: s, Kind: ArgInitial} }

func TestMaxArgsLimiter(t *testing.T) {
	chain := LimiterChain{NewMaxArgsLimiter(2)}

	if err := chain.TryArg(initial("cmd")); err != nil {
		t.Fatal("initial arguments never count against -n")
	}
	if err := chain.TryArg(hard("a")); err != nil {
		t.Fatal(err)
	}
	if err := chain.TryArg(hard("b")); err != nil {
		t.Fatal(err)
	}
	err := chain.TryArg(hard("c"))
	if err == nil {
		t.Fatal("third appended argument must be rejected")
	}
	if ex := err.(*ErrExhausted); ex.OutOfChars {
		t.Error("-n exhaustion is not an out-of-chars condition")
	}
}

func TestMaxCharsLimiter(t *testing.T) {
	// Each argument costs len+1.
	chain := LimiterChain{NewMaxCharsLimiter(8)}

	if err := chain.TryArg(hard("abc")); err != nil { // 4
		t.Fatal(err)
	}
	if err := chain.TryArg(hard("def")); err != nil { // 8
		t.Fatal(err)
	}
	err := chain.TryArg(hard("g")) // would be 10
	if err == nil {
		t.Fatal("limit exceeded must be rejected")
	}
	if ex := err.(*ErrExhausted); !ex.OutOfChars {
		t.Error("-s exhaustion is an out-of-chars condition")
	}
}

func TestMaxLinesLimiter(t *testing.T) {
	chain := LimiterChain{NewMaxLinesLimiter(2)}

	// Soft-terminated tokens belong to the current line.
	for _, arg := range []Argument{soft("a"), soft("b"), hard("c"), soft("d"), hard("e")} {
		if err := chain.TryArg(arg); err != nil {
			t.Fatalf("token %q rejected early: %v", arg.Text, err)
		}
	}
	if err := chain.TryArg(soft("f")); err == nil {
		t.Fatal("third line must be rejected")
	}
}

func TestChainVetoLeavesStateUntouched(t *testing.T) {
	// A veto by the second limiter must not consume capacity in the first.
	chain := LimiterChain{NewMaxArgsLimiter(10), NewMaxCharsLimiter(5)}

	if err := chain.TryArg(hard("abc")); err != nil {
		t.Fatal(err)
	}
	if err := chain.TryArg(hard("toolong")); err == nil {
		t.Fatal("second arg should exceed -s")
	}
	// Capacity for a small argument is still there only if the rejected
	// argument did not leak into the chars accounting.
	if err := chain.TryArg(hard("")); err != nil {
		t.Errorf("rejected argument leaked into limiter state: %v", err)
	}
}

func TestCloneIsolatesCommands(t *testing.T) {
	template := LimiterChain{NewMaxArgsLimiter(1)}

	first := template.Clone()
	if err := first.TryArg(hard("a")); err != nil {
		t.Fatal(err)
	}
	second := template.Clone()
	if err := second.TryArg(hard("b")); err != nil {
		t.Error("a fresh clone starts with full capacity")
	}
}

func TestSystemCharsLimiterHasHeadroom(t *testing.T) {
	limiter := NewSystemCharsLimiter().(*maxCharsLimiter)
	if limiter.maxChars < 4096 {
		t.Errorf("system limit %d is implausibly small", limiter.maxChars)
	}
	if limiter.maxChars > systemArgMax() {
		t.Errorf("system limit %d exceeds ARG_MAX %d", limiter.maxChars, systemArgMax())
	}
}

func TestBatcherBoundProperty(t *testing.T) {
	// For every batch produced under a chars limit, the summed argv bytes
	// stay within the limit.
	const limit = 32
	opts, err := NewBuilderOptions([]string{"cmd"}, LimiterChain{NewMaxCharsLimiter(limit)})
	if err != nil {
		t.Fatal(err)
	}

	builder := NewBuilder(opts)
	var batches [][]string
	for _, text := range []string{"aaaa", "bbbb", "cccc", "dddd", "eeee", "ffff", "gggg"} {
		if err := builder.AddArg(hard(text)); err != nil {
			batches = append(batches, builder.Argv())
			builder = NewBuilder(opts)
			if err := builder.AddArg(hard(text)); err != nil {
				t.Fatalf("argument %q does not fit an empty command", text)
			}
		}
	}
	batches = append(batches, builder.Argv())

	for _, batch := range batches {
		total := 0
		for _, arg := range batch {
			total += len(arg) + 1
		}
		if total > limit {
			t.Errorf("batch %q totals %d bytes, over the %d limit", batch, total, limit)
		}
	}
}
