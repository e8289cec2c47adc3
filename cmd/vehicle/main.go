// Vehicle is the operator command line of the vehicle configurator.
//
// It checks and inspects tree documents, builds and checks solutions
// against them, and queries the audit archive of solution events.
//
// Usage:
//
//	# Check a tree and a solutions document
//	vehicle lint data.xml solutions.xml
//
//	# Print the marks and options of a tree
//	vehicle tree show --tree data.xml
//
//	# Build a solution and append it to the solutions document
//	vehicle solutions build --select Color=Red --select Trim=Base --price 20490.25
//
//	# Report solutions that no longer match the tree
//	vehicle solutions check --fail-on-stale
//
//	# Query archived solution events
//	vehicle archive query --action built --since 2026-10-01T00:00:00Z
//
//	# Reload the tree on change and serve metrics
//	vehicle watch --config configurator.yaml
package main

func main() {
	Execute()
}
