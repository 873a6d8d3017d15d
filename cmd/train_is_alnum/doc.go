// Package main provides a demo program for training an alphanumeric character classifier.
// The network sees the eight bits and the scaled code of an ASCII character and learns
// whether the character is a letter or a digit.
package main
