package main

import (
	"fmt"

	"github.com/Fish-o/whily/pkg/driver"
)

func runFetch(opts *options, args []string) int {
	if _, ok := subcommandArgs(opts, "fetch", args, 0); !ok {
		return 1
	}
	manifest, err := loadManifestFrom(".")
	if err != nil {
		failf("unable to locate %s: %v", manifestName, err)
		return 1
	}
	names := manifest.SourceNames()
	if len(names) == 0 {
		fmt.Fprintln(stdout, "No git sources to fetch.")
		return 0
	}

	status := 0
	for _, name := range names {
		fetched, err := fetchSource(manifest.Sources[name])
		if err != nil {
			failf("%v", err)
			status = 1
			continue
		}
		fmt.Fprintf(stdout, "%s %s -> %s (blake3 %s)\n", fetched.Name, fetched.Version, fetched.File, fetched.Checksum)
	}
	return status
}

func fetchSource(src *driver.SourceSpec) (*driver.FetchedSource, error) {
	home, err := resolveWhilyHome()
	if err != nil {
		return nil, err
	}
	return driver.NewGitFetcher(home).Fetch(src)
}
