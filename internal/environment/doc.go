// Package environment turns a validated document into the variables of one
// environment.
//
// Resolve walks the extends chain from the root ancestor to the target,
// layering common variables, then each environment's own, and records where
// every value came from (common, inherited-from-<env> or local). The result
// still holds stored values; Decrypt opens ciphertext and Interpolate expands
// ${NAME} placeholders from the host environment, in that order.
package environment
