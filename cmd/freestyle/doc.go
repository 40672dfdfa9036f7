// Package main hosts the freestyle CLI.
//
// The Cobra command tree resolves configuration (after loading a .env file
// from the working directory), builds the structured logger, and hands off to
// the internal packages: process runs a batch, history reads the run store,
// publish uploads delivered assets, schedule repeats process on a cron
// expression, and deps checks the codec tools.
package main
