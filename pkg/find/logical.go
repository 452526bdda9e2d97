package find

// TrueMatcher matches everything (-true, and the global options that parse
// as primaries).
type TrueMatcher struct{ baseMatcher }

func (TrueMatcher) Matches(_ *Entry, _ *MatcherIO) bool { return true }

// FalseMatcher matches nothing (-false).
type FalseMatcher struct{ baseMatcher }

func (FalseMatcher) Matches(_ *Entry, _ *MatcherIO) bool { return false }

// NotMatcher inverts its submatcher (! / -not).
type NotMatcher struct {
	sub Matcher
}

// NewNotMatcher wraps a matcher in a negation.
func NewNotMatcher(sub Matcher) *NotMatcher { return &NotMatcher{sub: sub} }

func (m *NotMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	return !m.sub.Matches(entry, io)
}

func (m *NotMatcher) HasSideEffects() bool               { return m.sub.HasSideEffects() }
func (m *NotMatcher) FinishedDir(dir string, io *MatcherIO) { m.sub.FinishedDir(dir, io) }
func (m *NotMatcher) Finished(io *MatcherIO)             { m.sub.Finished(io) }

// AndMatcher evaluates submatchers left to right and short-circuits on the
// first false.
type AndMatcher struct {
	subs []Matcher
}

func (m *AndMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	for _, sub := range m.subs {
		if !sub.Matches(entry, io) {
			return false
		}
	}
	return true
}

func (m *AndMatcher) HasSideEffects() bool {
	for _, sub := range m.subs {
		if sub.HasSideEffects() {
			return true
		}
	}
	return false
}

func (m *AndMatcher) FinishedDir(dir string, io *MatcherIO) {
	for _, sub := range m.subs {
		sub.FinishedDir(dir, io)
	}
}

func (m *AndMatcher) Finished(io *MatcherIO) {
	for _, sub := range m.subs {
		sub.Finished(io)
	}
}

// OrMatcher evaluates submatchers left to right and short-circuits on the
// first true.
type OrMatcher struct {
	subs []Matcher
}

func (m *OrMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	for _, sub := range m.subs {
		if sub.Matches(entry, io) {
			return true
		}
	}
	return false
}

func (m *OrMatcher) HasSideEffects() bool {
	for _, sub := range m.subs {
		if sub.HasSideEffects() {
			return true
		}
	}
	return false
}

func (m *OrMatcher) FinishedDir(dir string, io *MatcherIO) {
	for _, sub := range m.subs {
		sub.FinishedDir(dir, io)
	}
}

func (m *OrMatcher) Finished(io *MatcherIO) {
	for _, sub := range m.subs {
		sub.Finished(io)
	}
}

// ListMatcher evaluates every submatcher (the comma operator) and yields the
// value of the last one.
type ListMatcher struct {
	subs []Matcher
}

func (m *ListMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	result := false
	for _, sub := range m.subs {
		result = sub.Matches(entry, io)
	}
	return result
}

func (m *ListMatcher) HasSideEffects() bool {
	for _, sub := range m.subs {
		if sub.HasSideEffects() {
			return true
		}
	}
	return false
}

func (m *ListMatcher) FinishedDir(dir string, io *MatcherIO) {
	for _, sub := range m.subs {
		sub.FinishedDir(dir, io)
	}
}

func (m *ListMatcher) Finished(io *MatcherIO) {
	for _, sub := range m.subs {
		sub.Finished(io)
	}
}

// andBuilder accumulates the operands of an implicit or explicit AND.
type andBuilder struct {
	subs []Matcher
}

func (b *andBuilder) add(m Matcher) { b.subs = append(b.subs, m) }

func (b *andBuilder) empty() bool { return len(b.subs) == 0 }

// checkAnd validates that -a has a left-hand operand.
func (b *andBuilder) checkAnd() error {
	if b.empty() {
		return &ParseError{Reason: "invalid expression; you have used a binary operator '-a' with nothing before it"}
	}
	return nil
}

func (b *andBuilder) build() Matcher {
	subs := b.subs
	b.subs = nil
	if len(subs) == 1 {
		return subs[0]
	}
	return &AndMatcher{subs: subs}
}

// orBuilder accumulates AND groups separated by -o.
type orBuilder struct {
	ors []Matcher
	cur andBuilder
}

func (b *orBuilder) add(m Matcher) { b.cur.add(m) }

func (b *orBuilder) checkAnd() error { return b.cur.checkAnd() }

// newOrCondition closes the current AND group at a -o operator.
func (b *orBuilder) newOrCondition(op string) error {
	if b.cur.empty() {
		return &ParseError{Reason: "invalid expression; you have used a binary operator '" + op + "' with nothing before it"}
	}
	b.ors = append(b.ors, b.cur.build())
	return nil
}

func (b *orBuilder) empty() bool { return b.cur.empty() && len(b.ors) == 0 }

func (b *orBuilder) build() Matcher {
	// An empty expression becomes an empty AND group, which is true.
	if !b.cur.empty() || len(b.ors) == 0 {
		b.ors = append(b.ors, b.cur.build())
	}
	ors := b.ors
	b.ors = nil
	if len(ors) == 1 {
		return ors[0]
	}
	return &OrMatcher{subs: ors}
}

// listBuilder accumulates OR groups separated by commas.
type listBuilder struct {
	lists []Matcher
	cur   orBuilder
}

func (b *listBuilder) add(m Matcher) { b.cur.add(m) }

func (b *listBuilder) checkAnd() error { return b.cur.checkAnd() }

func (b *listBuilder) newOrCondition(op string) error { return b.cur.newOrCondition(op) }

// newListCondition closes the current OR group at a comma.
func (b *listBuilder) newListCondition() error {
	if b.cur.empty() {
		return &ParseError{Reason: "invalid expression; you have used a binary operator ',' with nothing before it"}
	}
	b.lists = append(b.lists, b.cur.build())
	return nil
}

func (b *listBuilder) build() Matcher {
	if !b.cur.empty() || len(b.lists) == 0 {
		b.lists = append(b.lists, b.cur.build())
	}
	lists := b.lists
	b.lists = nil
	if len(lists) == 1 {
		return lists[0]
	}
	return &ListMatcher{subs: lists}
}
