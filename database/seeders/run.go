// Package seeders provides a registry of named seed functions run by
// `pantry seed`.
//
// Define a seeder in any file in this package:
//
//	func init() {
//	    Register("superadmin", SeedSuperadmin)
//	}
package seeders

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/shashiranjanraj/pantry/pkg/app"
)

// SeederFunc is the signature for a seed function.
type SeederFunc func(ctx context.Context, a *app.Application) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// Names lists registered seeders in registration order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// Run executes the named seeders in registration order, reporting progress
// to out. It stops on the first error.
func Run(ctx context.Context, a *app.Application, out io.Writer, names ...string) error {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	mu.Lock()
	current := make([]seederEntry, 0, len(entries))
	for _, e := range entries {
		if want[e.name] {
			current = append(current, e)
			delete(want, e.name)
		}
	}
	mu.Unlock()

	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return fmt.Errorf("unknown seeder(s): %s", strings.Join(missing, ", "))
	}

	for _, e := range current {
		fmt.Fprintf(out, "  • Running seeder: %s … ", e.name)
		if err := e.fn(ctx, a); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(out, "done")
	}
	return nil
}
