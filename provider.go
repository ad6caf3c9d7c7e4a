package rlog

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks Provider

// Provider routes entries to the configured writers. Implementations must be safe
// for concurrent use.
//
// depth is the number of stack frames between the Provider method and the call
// site that should be reported as the origin of the entry. Implementations that
// forward to another Provider add one for their own frame.
type Provider interface {
	// Context returns the key/value context rendered by {context:key} placeholders.
	Context() *Context

	// MinimumLevel returns the lowest level that any writer accepts.
	MinimumLevel() Level

	// MinimumLevelFor returns the lowest level accepted for entries with the given tag.
	MinimumLevelFor(tag string) Level

	// IsEnabled reports whether an entry with tag and level would be written.
	IsEnabled(depth int, tag string, level Level) bool

	// Log writes an entry. err and msg are both optional, msg may be a Lazy
	// producer that is only invoked when the entry is written.
	Log(depth int, tag string, level Level, err error, msg any)
}
