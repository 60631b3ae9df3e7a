// Package identity owns the device's DID keypair. Every read and write of the
// private key and the DID goes through Manager; both values are always stored
// and removed together.
package identity
