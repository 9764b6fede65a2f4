// Package kpk implements the source adapter for the Slovenian register of
// lobbyists kept by the Commission for the Prevention of Corruption.
//
// The register lists individual lobbyists rather than organisations. A
// search matches the lobbyist's name, employer and declared fields of
// interest.
package kpk
