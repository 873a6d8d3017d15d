// Command harness trains and queries the demo classifier and regressor.
//
//	harness train --task classification --artifact-dir runs/alnum
//	harness train --task regression --artifact-dir runs/sqrt --resume
//	harness infer --task classification --artifact-dir runs/alnum --input a
//	harness infer --task regression --artifact-dir runs/sqrt --eval
//	harness devices
//
// The classification task learns whether an ASCII character is alphanumeric.
// The regression task learns the square root of a sample.
package main
