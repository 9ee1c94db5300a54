// Package config provides per-model capability tables for BenQ
// projectors.
//
// Tables are embedded YAML files keyed by sanitized model name. Each
// table lists the commands a model supports, the candidate values for
// its mode categories (video sources, picture modes, aspect ratios and
// so on) and the power settle times used to debounce power state
// transitions.
//
// Two special tables exist alongside the model tables:
//
//   - "all" is the union of every known capability and serves both as
//     the per-key fallback for model tables and as the candidate list
//     for capability probing.
//   - "minimal" is a conservative table used before the model is
//     known, restricted to commands every projector answers.
//
// Load merges a model table over the generic table key by key, so a
// model file only needs to state where it differs.
package config
