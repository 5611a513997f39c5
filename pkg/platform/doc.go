// ABOUTME: Platform capability package
// ABOUTME: Defines the injected capability provider used in place of global feature detection
// Package platform defines Provider, the capability source the volume
// controller queries instead of looking at global environment state.
//
// Backends:
//   - native: desktop playback through oto
//   - browser: HTMLMediaElement and Web Audio under js/wasm
//   - auto: picks one of the above for the build target
package platform
