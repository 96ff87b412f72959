// Package displaypath turns the paths a user typed into the form
// shown back to them in messages. It never affects which file is
// opened.
package displaypath

// A Resolver canonicalises a path for display.
type Resolver interface {
	Resolve(path string) string
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(path string) string

func (f ResolverFunc) Resolve(path string) string { return f(path) }

// Default is the resolver for the current platform.
var Default Resolver = ResolverFunc(resolve)

// Identity shows paths exactly as given.
var Identity Resolver = ResolverFunc(func(path string) string { return path })

// Resolve resolves path with Default.
func Resolve(path string) string {
	return Default.Resolve(path)
}
