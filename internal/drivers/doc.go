// Package drivers defines the hardware seam used by the device actors and
// provides simulated implementations.
//
// Actors never touch hardware directly. Each layout component names a
// make/model; a Registry maps that make/model to a driver factory. A layout
// that declares a model with no registered driver is a configuration error,
// reported before anything starts.
//
// Simulated drivers are registered by NewSimRegistry:
//
//	GRIDWORKS__SIMBOOL30AMPRELAY       relay, state held in memory
//	GRIDWORKS__WATERTEMPHIGHPRECISION  tank water temperature, slow drift
//	GRIDWORKS__SIMPM1                  power meter, load set by SetLoad
package drivers
