// Package lock holds the driven.Locker adapters.
//
//   - local: in-process keyed mutexes, for a single daylog process
//   - redis: SET NX PX leases with token-checked release, for several
//     processes sharing one vault
package lock
