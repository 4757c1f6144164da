// Package verify compares the live data store against the stored backup snapshot.
//
// Verification is advisory. Check returns the outcome as a Report (or an
// error); Verify is the boundary that logs any error and always reports success
// so a deployment is never blocked by drift.
package verify
