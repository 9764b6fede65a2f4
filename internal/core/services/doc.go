// Package services implements the driving ports.
//
// IndexBuilder turns discovered register documents into a snapshot,
// IndexHandle loads that snapshot once per process, and QueryResolver
// answers boolean name queries from the snapshot or from each
// jurisdiction's live adapter. Scheduler rebuilds the index periodically.
package services
