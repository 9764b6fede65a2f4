// Package lobbyreg implements the source adapter for the Austrian
// Lobbying- und Interessenvertretungs-Register.
//
// The register publishes no API. The public alphabetical list is scraped
// with goquery; each table row carries the entry name, its LIVR register
// number, the register category, the named lobbyists and the last update.
package lobbyreg
