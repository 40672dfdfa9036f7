// Package mastering implements the two-pass loudness mastering protocol.
//
// Pass one runs the tonal chain (high-pass, low shelf, presence bell, high
// shelf, compressor) followed by a loudness analysis step and parses the
// measurement report out of the engine's diagnostic text. Pass two re-runs the
// same tonal chain, widens the stereo image slightly, normalizes in linear
// mode seeded with the pass-one measurement, and brick-wall limits. Pass three
// encodes the delivery MP3.
//
// Policy (filter parameters and targets) lives here; mechanism lives behind
// engine.Engine. A measurement that cannot be parsed falls back to the target
// values and never aborts mastering. A render or encode whose output file is
// absent fails the track.
package mastering
