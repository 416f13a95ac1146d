// Package main provides the entry point for the follicle CLI.
//
// follicle gates scalp-photo uploads locally (size, format, brightness,
// sharpness), bounds the payload, and produces a structured analysis
// result, simulated offline by default or from a real backend.
//
// Usage:
//
//	follicle check photo.jpg
//	follicle analyze --consent photo.jpg
//	follicle analyze --consent --backend https://api.example.com photo.jpg
//
// See --help for all available options.
package main

// main is the entry point for follicle.
func main() {
	Execute()
}
