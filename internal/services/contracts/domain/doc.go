// Package domain implements the contract lifecycle: the in-memory contract
// store, the per-contract timer engine, and the controller that moves a
// contract from open recruitment through closure to archival and purge.
package domain
