// Package ratelimit throttles login attempts per client IP with a sliding
// window over recorded attempts.
//
// Each attempt is recorded with its outcome; only failures count against the
// limit, so a busy shared NAT full of successful logins is never locked out.
// Recording prunes entries older than the window, which keeps the persistent
// stores from growing without bound. Checking is read-only.
//
// [FileStore] shares one JSON document between worker processes the same way
// the session store does; [MemoryStore] and [RedisStore] cover
// single-process and multi-host deployments.
package ratelimit
