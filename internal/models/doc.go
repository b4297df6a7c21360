// Package models defines the core domain models for mochiyoru.
//
// # Entities
//
//   - Group: a named collection of members sharing one packing list
//   - Item: a named thing to bring, optionally assigned with a quantity
//   - State / Snapshot: the per-browser cache that bridges full-page navigations
//
// Members are identified by display name only. There are no user accounts.
//
// # Design Principles
//
// 1. **Backend owns Group and Item**: the store is authoritative for both
// 2. **Snapshots are disposable**: a State may be stale, missing, or disagree with the store
// 3. **One canonical member shape**: wire variants are decoded at the boundary (see MemberList)
package models
