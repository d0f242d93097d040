// Package testutil provides shared fixtures for GridVeil tests: insecure
// fast BGV parameters and a pre-wired algebra/oracle/encryptor bundle.
package testutil
