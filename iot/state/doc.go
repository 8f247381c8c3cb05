/*Package state holds the in-memory gateway/device tree of one monitoring
session and reconciles live broker updates into it.

The tree is seeded from the inventory fetch and only ever mutated in place:
reconciliation updates fields of existing device records, it never creates
or deletes gateways or devices. A single mutex guards the whole tree, so a
reader never observes a half-applied update. Readers work on deep-copied
snapshots.
*/
package state
