// Package main provides a demo program for running inference with a trained square root
// approximation network.
package main
