// Package lobbyfacts implements the source adapter for the EU Transparency
// Register.
//
// A live search matches the term against the register's XML dump (name and
// acronym of each interest representative) and then downloads the
// Commission meetings export from LobbyFacts for the best matches.
package lobbyfacts
