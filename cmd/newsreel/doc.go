// Package main hosts the Newsreel CLI entrypoint and command graph.
//
// The Cobra-based command tree covers running the newsletter pipeline,
// previewing the rendered HTML, configuration scaffolding and inspection,
// and a test notification. It centralizes configuration loading and logger
// setup so subcommands can focus on user experience.
//
// Keep this package lean: new functionality belongs in the internal
// packages first, surfaced here through dedicated commands or flags.
package main
