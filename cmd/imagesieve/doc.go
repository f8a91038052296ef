// Command imagesieve is the headless front end for the photo triage
// pipeline: scan a directory, review the grouping, manage events, commit
// decisions, and inspect past commits.
package main
