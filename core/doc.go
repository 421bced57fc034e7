// Package core defines the IOC domain model shared by the search engine,
// storage and API layers of threatshare.
//
// It provides:
//   - the IOC record and its enumerations (types, threat levels, statuses)
//   - per-type value validation and normalization
//   - the submission payload accepted from clients
//   - typed errors (ValidationError, StorageError)
//   - the cache collaborators (Redis, in-process LRU and a tiered combination)
//
// Threat levels carry an explicit ordinal (ThreatLevel.Order). The string
// form of a level must never be used for severity comparisons.
package core
