// Package main provides a demo program for training a square root approximation network.
// Samples are encoded as the first three powers of the scaled sample and the target is
// the scaled square root.
package main
