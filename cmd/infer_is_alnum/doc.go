// Package main provides a demo program for running inference with a trained alphanumeric
// character classifier over the printable ASCII range.
package main
