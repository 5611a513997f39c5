// ABOUTME: Build-target provider selection
// ABOUTME: Picks the browser backend under js/wasm and the native one elsewhere
// Package auto returns the platform.Provider for the current build target.
package auto
