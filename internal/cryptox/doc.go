// Package cryptox holds the cryptographic building blocks of didkeeper:
//
//   - Ed25519 key handling for the 32-byte hex private keys kept on the device
//   - DID formatting and parsing (did:<method>:<hex public key>)
//   - the compact signed assertion (header.payload.signature) used to answer
//     login challenges, and its verification
//   - the passphrase envelope used for encrypted identity backups
//
// Nothing in this package touches storage or the network.
package cryptox
