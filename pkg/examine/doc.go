// Package examine detects the capabilities of a BenQ projector by
// exhaustive trial.
//
// Not every model documents its command set, and firmware within one
// model line differs. The examiner probes every candidate command and
// every candidate mode value from the generic capability table
// against the live device and records what it accepts. The result can
// be turned into a model capability table.
//
// Probing is deliberately slow: each probe is followed by a settle
// delay so the projector's command processor is not overrun, and a
// full sweep pauses between categories. Expect a complete
// DetectProjectorFeatures run to take minutes.
package examine
