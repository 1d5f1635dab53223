// Package simulation holds the diagnostic test pipeline: population
// generation, stochastic test simulation and metric derivation.
//
// Every function is a pure function of its arguments. Randomness comes only
// from the rand.Source the caller passes in, so a seeded source reproduces a
// run exactly and concurrent runs never share state. Nothing here logs;
// failures are returned as *core.SimulationError values whose messages are
// ready to display.
package simulation
