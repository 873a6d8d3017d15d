// Package squareroot provides a synthetic regression dataset for learning square roots.
// The inputs are polynomial features of a scaled integer and the target is its scaled
// square root, which a linear model can only approximate.
package squareroot
