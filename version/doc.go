// Package version reports the tabarchive build version.
//
// Values come from compile-time variables when set and otherwise from the
// build info the Go toolchain embeds:
//
//	go build -ldflags "-X github.com/dendrascience/tabarchive/version.Version=v1.2.0 \
//	  -X github.com/dendrascience/tabarchive/version.Commit=$(git rev-parse HEAD) \
//	  -X github.com/dendrascience/tabarchive/version.Date=$(date -u +%FT%TZ)"
//
// Archives record GetVersion in their manifest.
package version
