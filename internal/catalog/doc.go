// Package catalog lists the relations visible in the application's data store.
//
// The verification engine and the snapshot store consume a TableSource. A DB
// opened from a DATABASE_URL style DSN is the production source; Static serves
// fixed inventories.
package catalog
