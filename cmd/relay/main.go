// Folio Relay is an edge-caching proxy between a portfolio front end and
// its public data sources.
//
// It forwards a small set of GitHub REST paths, shapes GitHub GraphQL and
// LeetCode GraphQL payloads into the dashboard's schema, and layers CDN
// cache directives, entity tags, and a warm in-process memo on top so the
// upstream APIs see a fraction of the dashboard's traffic.
//
// Usage:
//
//	# Start the relay with the default configuration
//	relay run
//
//	# Start with a custom configuration file
//	relay run --config /etc/relay/config.yaml
//
//	# Validate a configuration file without starting
//	relay validate --config /etc/relay/config.yaml
//
//	# Build a catalog JSON file ahead of time (static deploys)
//	relay prefetch --user octocat --out catalog.json
//
//	# Show version information
//	relay version
package main

func main() {
	Execute()
}
