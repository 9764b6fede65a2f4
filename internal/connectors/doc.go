// Package connectors holds the source adapters, one package per register.
//
// Every adapter implements driven.SourceAdapter:
//
//   - govuk: UK ministerial and senior officials meetings (discovery and live)
//   - lobbyingie: Irish lobbying.ie CSV exports (discovery and live)
//   - lobbyfacts: EU Transparency Register and Commission meetings (live)
//   - bundestag: German Bundestag Lobbyregister (live)
//   - lobbyreg: Austrian lobbying register (live)
//   - catalonia: Catalan interest group register (live)
//   - avoimuus: Finnish Transparency Register (live)
//   - kpk: Slovenian register of lobbyists (live)
//
// Adapters that talk to upstream services share the rate-limited client in
// httpclient and may cache downloads through a driven.DocumentCache.
package connectors
