// Package trainer runs supervised training of the dropout -> linear network
// for either task variant.
//
// A run owns one artifact directory:
//
//	{dir}/config.json          the hyperparameters, written once per fresh run
//	{dir}/train/epoch-N/       one checkpoint bundle per completed epoch
//	{dir}/model                the final weights
//	{dir}/experiment.log       log entries of every run in the directory
//
// A fresh run wipes the directory and persists the caller's configuration. A
// resumed run reloads config.json, ignoring the caller's configuration,
// restores the newest checkpoint and continues with the following epoch.
package trainer
