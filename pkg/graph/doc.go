// ABOUTME: Audio processing graph package
// ABOUTME: Defines context, node, and gain contracts used when direct volume is unavailable
// Package graph describes an audio processing pipeline of the shape
// source -> gain -> destination.
//
// A Context is obtained from a platform Provider. Wiring a media element into
// a context is permanent: a second source for the same element fails with
// ErrSourceInUse, and the element cannot be unwired without being recreated.
package graph
