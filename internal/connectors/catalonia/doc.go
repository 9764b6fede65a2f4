// Package catalonia implements the source adapter for the Catalan register
// of interest groups, served by the Generalitat's Socrata open data portal.
// Matching happens server side with a case-insensitive SoQL filter.
package catalonia
