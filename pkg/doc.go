// Package pkg holds the libraries behind ghdepup.
//
// # Overview
//
// ghdepup keeps dependencies that are fetched straight from GitHub pinned to
// the newest acceptable release. Each dependency is declared in a flat config
// file:
//
//	HYPER_GH_PROJECT="hyperium/hyper"
//	HYPER_GH_TAG_PREFIX="v"
//	HYPER_GH_VERSION_REQ=">=0.14, <1"
//
// The tool lists the project's tags, turns them into semantic versions,
// picks the highest one that satisfies the requirement and writes
// HYPER_VERSION="0.14.28" back out.
//
// # Architecture
//
//	config files
//	     ↓
//	[kv] flat key/value store
//	     ↓
//	[deps] one descriptor per dependency
//	     ↓
//	[integrations/github] tag lists (cached by [cache], retried by [httputil])
//	     ↓
//	[semver] candidate versions and best version
//	     ↓
//	[render] declaration file, [manifest] Cargo.toml / YAML / JSON targets
//
// [pipeline] drives these steps as one all-or-nothing run: either every tag
// request succeeds and all outputs are written, or nothing is written.
//
// # Quick Start
//
//	store, _ := kv.ReadFiles("deps.env", "versions.env")
//	client, _ := github.NewTagClient(github.Config{Token: token})
//	result, err := pipeline.NewRunner(client, logger).Resolve(ctx, store)
//	if err != nil {
//	    return err // names every failing dependency
//	}
//	fmt.Print(render.Declarations(result.Descriptors, render.Options{}))
//
// # Supporting Packages
//
//   - [errors]: coded errors and multi-error aggregation
//   - [observability]: hook registry with a Prometheus implementation
//   - [buildinfo]: version information injected at build time
//
// [kv]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/kv
// [deps]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/deps
// [integrations/github]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/integrations/github
// [cache]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/httputil
// [semver]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/semver
// [render]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/render
// [manifest]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/manifest
// [pipeline]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/errors
// [observability]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/bjoernmichaelsen/ghdepup/pkg/buildinfo
package pkg
