// Package bundestag implements the source adapter for the German Bundestag
// Lobbyregister. A live search queries the register's JSON search and
// expands the best matches into one row per regulatory project, carrying
// the project's leading ministry as the counterpart.
package bundestag
