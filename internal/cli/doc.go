// Package cli defines the taskgrid command tree. It resolves flags
// against file and environment configuration and hands off to the app
// package.
package cli
