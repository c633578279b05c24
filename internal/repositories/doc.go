// Package repositories implements durable persistence for session state and the login audit trail.
//
// Key Implementations:
//   - [KeyValueStore] : String key/value contract the session store persists through
//   - [SQLiteStore] : kv_store table backed implementation (default)
//   - [RedisStore] : Redis backed implementation with a configurable key prefix
//   - [MemoryStore] : Process local implementation for tests and `storage.backend = "memory"`
//   - [LoginEventRepository] : login_events table persistence for [models.LoginEvent]
//
// All key/value implementations return [shared.ErrKeyNotFound] for missing keys and treat
// deleting a missing key as success.
package repositories
