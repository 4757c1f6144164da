// Package state owns the on-disk backup snapshot.
//
// A snapshot records the data store's table inventory, the three configuration
// artifacts a backup must contain and a free-form info payload. Exactly one
// snapshot is live at a time; saving replaces it wholesale. The file is the
// sole source of truth and its absence means "never backed up".
//
// The JSON layout is compatible with snapshots written by earlier deployments:
//
//	{
//	  "last_backup_timestamp": "2025-01-01T12:00:00Z",
//	  "database_tables": ["sessions", "users"],
//	  "config_files": ["pyproject.toml", "replit.nix", ".replit"],
//	  "backup_info": {}
//	}
package state
