// Package avoimuus implements the source adapter for the Finnish
// Transparency Register (Avoimuusrekisteri).
//
// The register API has no name search, so the full registration list is
// fetched (and cached) and matched locally against company names and
// supplementary names. Each match is expanded with its activity
// notifications into one row per reported lobbying topic.
package avoimuus
